package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pyventure/internal/domain/model"
)

type liveEntry struct {
	s       *Session
	expires time.Time
}

// Manager hands out one live Session per session id, so that concurrent
// requests of the same user share invalidation state.
//
// The store stays the source of truth: a live session is only handed out
// while its record exists, and live entries are dropped once the record's
// TTL has passed.
type Manager struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu   sync.Mutex
	live map[string]liveEntry
}

func NewManager(store Store, ttl time.Duration, logger *zap.Logger) *Manager {
	return &Manager{store: store, ttl: ttl, logger: logger, now: time.Now, live: make(map[string]liveEntry)}
}

// Create persists a new session for a backend token obtained at login.
func (m *Manager) Create(ctx context.Context, backendToken string, user model.User) (*Session, error) {
	rec := Record{
		ID:           uuid.NewString(),
		BackendToken: backendToken,
		User:         user,
		CreatedAt:    m.now().UTC(),
	}
	if err := m.store.Save(ctx, rec, m.ttl); err != nil {
		return nil, err
	}
	return m.attach(rec), nil
}

// Get returns the live session for id, loading it from the store if this
// process has not seen it yet. An invalidated live session is returned as is
// until its record is gone, so callers in that window still see it as
// invalid instead of reviving the revoked token from the store.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	e, ok := m.live[id]
	m.mu.Unlock()

	if ok {
		if !e.s.Valid() {
			return e.s, nil
		}
		if m.expired(e) {
			m.forget(id, e.s)
			return nil, ErrNotFound
		}
		// Another instance may have logged the session out.
		exists, err := m.store.Exists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			m.forget(id, e.s)
			return nil, ErrNotFound
		}
		return e.s, nil
	}

	rec, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.attach(*rec), nil
}

func (m *Manager) expired(e liveEntry) bool {
	return !e.expires.IsZero() && !m.now().Before(e.expires)
}

func (m *Manager) attach(rec Record) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.live[rec.ID]; ok {
		return e.s
	}

	user := rec.User
	s := New(rec.ID, rec.BackendToken, &user)
	s.OnInvalidate(func(reason Reason) {
		// The request that hit the 401 may already be cancelled.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.store.Delete(ctx, rec.ID); err != nil {
			// Keep the dead session live so it keeps answering reauth
			// until Prune drops it.
			m.logger.Error("Failed to delete invalidated session", zap.String("session_id", rec.ID), zap.Error(err))
			return
		}
		m.forget(rec.ID, s)
		m.logger.Info("Session invalidated", zap.String("session_id", rec.ID), zap.String("reason", string(reason)))
	})

	var expires time.Time
	if m.ttl > 0 {
		created := rec.CreatedAt
		if created.IsZero() {
			created = m.now()
		}
		expires = created.Add(m.ttl)
	}
	m.live[rec.ID] = liveEntry{s: s, expires: expires}
	return s
}

func (m *Manager) forget(id string, s *Session) {
	m.mu.Lock()
	if e, ok := m.live[id]; ok && e.s == s {
		delete(m.live, id)
	}
	m.mu.Unlock()
}

// Prune drops live sessions whose record TTL has passed and returns how many
// were dropped.
func (m *Manager) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.live {
		if m.expired(e) {
			delete(m.live, id)
			n++
		}
	}
	return n
}

// RunJanitor calls Prune every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Prune(); n > 0 {
				m.logger.Debug("Pruned expired sessions", zap.Int("count", n))
			}
		}
	}
}

// Logout ends a session on user request.
func (m *Manager) Logout(s *Session) bool {
	_, gen := s.Token()
	return s.Invalidate(gen, ReasonLogout)
}
