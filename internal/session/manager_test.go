package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pyventure/internal/domain/model"
)

type memStore struct {
	mu      sync.Mutex
	records map[string]Record
	loads   int
	deletes int

	// deleting receives once Delete is entered; block holds it until closed.
	deleting  chan struct{}
	block     chan struct{}
	deleteErr error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]Record)}
}

func (m *memStore) Save(_ context.Context, rec Record, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return nil
}

func (m *memStore) Load(_ context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (m *memStore) Exists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[id]
	return ok, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if m.deleting != nil {
		m.deleting <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.records, id)
	return nil
}

func (m *memStore) deleteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deletes
}

func TestManagerSharesLiveSession(t *testing.T) {
	store := newMemStore()
	mgr := NewManager(store, time.Hour, zap.NewNop())

	created, err := mgr.Create(t.Context(), "backend", model.User{ID: 9, Username: "neo"})
	require.NoError(t, err)

	got, err := mgr.Get(t.Context(), created.ID())
	require.NoError(t, err)
	assert.Same(t, created, got)
	assert.Equal(t, 0, store.loads)
}

func TestManagerLoadsFromStore(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.Save(t.Context(), Record{ID: "abc", BackendToken: "tok", User: model.User{ID: 2}}, time.Hour))

	mgr := NewManager(store, time.Hour, zap.NewNop())
	s, err := mgr.Get(t.Context(), "abc")
	require.NoError(t, err)

	tok, _ := s.Token()
	assert.Equal(t, "tok", tok)
	assert.Equal(t, int64(2), s.User().ID)
}

func TestManagerGetUnknown(t *testing.T) {
	mgr := NewManager(newMemStore(), time.Hour, zap.NewNop())
	_, err := mgr.Get(t.Context(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvalidationDeletesRecordOnce(t *testing.T) {
	store := newMemStore()
	mgr := NewManager(store, time.Hour, zap.NewNop())

	s, err := mgr.Create(t.Context(), "backend", model.User{ID: 1})
	require.NoError(t, err)
	_, gen := s.Token()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Invalidate(gen, ReasonExpired)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.deletes)
	_, err = mgr.Get(t.Context(), s.ID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogout(t *testing.T) {
	store := newMemStore()
	mgr := NewManager(store, time.Hour, zap.NewNop())

	s, err := mgr.Create(t.Context(), "backend", model.User{ID: 1})
	require.NoError(t, err)

	assert.True(t, mgr.Logout(s))
	assert.False(t, mgr.Logout(s))
	assert.False(t, s.Valid())
}

func TestGetDuringSlowDeleteDoesNotReviveToken(t *testing.T) {
	store := newMemStore()
	store.deleting = make(chan struct{}, 1)
	store.block = make(chan struct{})
	mgr := NewManager(store, time.Hour, zap.NewNop())

	s, err := mgr.Create(t.Context(), "backend", model.User{ID: 1})
	require.NoError(t, err)
	_, gen := s.Token()

	fired := 0
	s.OnInvalidate(func(Reason) { fired++ })

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Invalidate(gen, ReasonExpired)
	}()
	<-store.deleting

	// The record is still in the store while Delete is in progress.
	got, err := mgr.Get(t.Context(), s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.False(t, got.Valid())
	tok, gotGen := got.Token()
	assert.Empty(t, tok)
	assert.False(t, got.Invalidate(gotGen, ReasonExpired))

	close(store.block)
	<-done

	assert.Equal(t, 1, store.deleteCount())
	assert.Equal(t, 1, fired)
	_, err = mgr.Get(t.Context(), s.ID())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFailedDeleteKeepsSessionInvalid(t *testing.T) {
	store := newMemStore()
	store.deleteErr = errors.New("redis down")
	mgr := NewManager(store, time.Hour, zap.NewNop())

	s, err := mgr.Create(t.Context(), "backend", model.User{ID: 1})
	require.NoError(t, err)
	assert.True(t, mgr.Logout(s))

	got, err := mgr.Get(t.Context(), s.ID())
	require.NoError(t, err)
	assert.False(t, got.Valid())
	assert.Equal(t, 0, store.loads)
}

func TestGetDropsSessionRemovedFromStore(t *testing.T) {
	store := newMemStore()
	mgr := NewManager(store, time.Hour, zap.NewNop())

	s, err := mgr.Create(t.Context(), "backend", model.User{ID: 1})
	require.NoError(t, err)

	// Logged out through another instance.
	require.NoError(t, store.Delete(t.Context(), s.ID()))

	_, err = mgr.Get(t.Context(), s.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, mgr.live)
}

func TestExpiredSessionsAreDropped(t *testing.T) {
	store := newMemStore()
	mgr := NewManager(store, time.Hour, zap.NewNop())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	mgr.now = func() time.Time { return now }

	_, err := mgr.Create(t.Context(), "a", model.User{ID: 1})
	require.NoError(t, err)
	now = now.Add(30 * time.Minute)
	second, err := mgr.Create(t.Context(), "b", model.User{ID: 2})
	require.NoError(t, err)

	now = now.Add(45 * time.Minute)
	assert.Equal(t, 1, mgr.Prune())
	assert.Len(t, mgr.live, 1)

	got, err := mgr.Get(t.Context(), second.ID())
	require.NoError(t, err)
	assert.Same(t, second, got)

	now = now.Add(time.Hour)
	_, err = mgr.Get(t.Context(), second.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, mgr.live)
}
