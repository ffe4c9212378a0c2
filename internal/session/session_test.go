package session

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyventure/internal/domain/model"
)

func TestInvalidateFiresOnceUnderConcurrentCallers(t *testing.T) {
	s := New("sid", "backend-token", &model.User{ID: 7})

	var fired atomic.Int32
	s.OnInvalidate(func(Reason) { fired.Add(1) })

	_, gen := s.Token()

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
		start   = make(chan struct{})
	)
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if s.Invalidate(gen, ReasonExpired) {
				winners.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, int32(1), winners.Load())
	assert.False(t, s.Valid())
	tok, _ := s.Token()
	assert.Empty(t, tok)
	assert.Nil(t, s.User())
}

func TestStaleGenerationDoesNotClearFreshToken(t *testing.T) {
	s := New("sid", "old", &model.User{ID: 1})
	_, oldGen := s.Token()

	s.Replace("new", &model.User{ID: 1})

	assert.False(t, s.Invalidate(oldGen, ReasonExpired))
	tok, gen := s.Token()
	assert.Equal(t, "new", tok)
	assert.Greater(t, gen, oldGen)
	assert.True(t, s.Valid())
}

func TestReplaceAfterInvalidateStartsNewGeneration(t *testing.T) {
	s := New("sid", "a", nil)
	var reasons []Reason
	s.OnInvalidate(func(r Reason) { reasons = append(reasons, r) })

	_, g1 := s.Token()
	require.True(t, s.Invalidate(g1, ReasonExpired))

	s.Replace("b", nil)
	_, g2 := s.Token()
	require.True(t, s.Invalidate(g2, ReasonLogout))

	assert.Equal(t, []Reason{ReasonExpired, ReasonLogout}, reasons)
}

func TestUserReturnsCopy(t *testing.T) {
	s := New("sid", "tok", &model.User{ID: 3, Username: "ana"})
	u := s.User()
	u.Username = "changed"
	assert.Equal(t, "ana", s.User().Username)
}
