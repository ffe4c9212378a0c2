// Package session holds the backend credentials of one signed-in user and
// coordinates their invalidation.
//
// A Session is shared by every request made on behalf of the same user. When
// any of them sees a 401 from the backend it calls Invalidate with the
// generation its token came from; the credentials are cleared and the
// invalidation callbacks run exactly once for that generation.
package session

import (
	"slices"
	"sync"

	"pyventure/internal/domain/model"
)

// Reason describes why a session ended.
type Reason string

const (
	ReasonExpired Reason = "expired"
	ReasonLogout  Reason = "logout"
)

type Session struct {
	id string

	mu          sync.Mutex
	token       string
	user        *model.User
	generation  uint64
	invalidated bool
	callbacks   []func(Reason)
}

// New returns a session for an already issued backend token.
func New(id, token string, user *model.User) *Session {
	return &Session{id: id, token: token, user: user, generation: 1}
}

func (s *Session) ID() string { return s.id }

// Token returns the bearer token and the generation it belongs to. An empty
// token means the session is not authenticated.
func (s *Session) Token() (string, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.generation
}

func (s *Session) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Valid reports whether the session still holds credentials.
func (s *Session) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.invalidated && s.token != ""
}

// Replace installs fresh credentials and starts a new generation. 401s
// reported against older generations are ignored from now on.
func (s *Session) Replace(token string, user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
	s.generation++
	s.invalidated = false
}

// OnInvalidate registers fn to run when the session is invalidated.
// Callbacks run outside the session lock, in registration order.
func (s *Session) OnInvalidate(fn func(Reason)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

// Invalidate clears the credentials of generation gen. It returns true only
// for the call that actually performed the invalidation.
func (s *Session) Invalidate(gen uint64, reason Reason) bool {
	s.mu.Lock()
	if s.invalidated || gen != s.generation {
		s.mu.Unlock()
		return false
	}
	s.invalidated = true
	s.token = ""
	s.user = nil
	callbacks := slices.Clone(s.callbacks)
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn(reason)
	}
	return true
}
