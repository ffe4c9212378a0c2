package service

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pyventure/internal/common"
	"pyventure/internal/content"
	"pyventure/internal/domain/model"
	"pyventure/internal/session"
)

func newLevelService(b *fakeBackend, gen *fakeLLM, cache *memCache, q *fakeQueue) *LevelService {
	if q == nil {
		q = &fakeQueue{}
	}
	return NewLevelService(b, gen, cache, q, LevelServiceConfig{CacheTTL: time.Hour}, zap.NewNop())
}

func TestDeriveUnlocks(t *testing.T) {
	levels := []model.Level{{ID: 3}, {ID: 1}, {ID: 2}, {ID: 4, IsUnlocked: true}}
	progress := []model.UserProgress{
		{LevelID: 1, IsCompleted: true},
		{LevelID: 2, IsCompleted: false},
	}

	got := DeriveUnlocks(levels, progress)

	require.Len(t, got, 4)
	ids := []int64{got[0].ID, got[1].ID, got[2].ID, got[3].ID}
	assert.Equal(t, []int64{1, 2, 3, 4}, ids)
	assert.True(t, got[0].IsUnlocked, "first level is always unlocked")
	assert.True(t, got[0].IsCompleted)
	assert.True(t, got[1].IsUnlocked, "previous level completed")
	assert.False(t, got[2].IsUnlocked, "previous level not completed")
	assert.True(t, got[3].IsUnlocked, "backend flag is kept")

	// Input is not modified.
	assert.Equal(t, int64(3), levels[0].ID)
}

func TestDeriveUnlocksEmpty(t *testing.T) {
	assert.Empty(t, DeriveUnlocks(nil, nil))
}

func TestLevelsAddsTopics(t *testing.T) {
	b := &fakeBackend{levels: []model.Level{{ID: 1}, {ID: 9}}}
	svc := newLevelService(b, &fakeLLM{}, newMemCache(), nil)

	levels, err := svc.Levels(t.Context(), session.New("sid", "tok", nil))
	require.NoError(t, err)
	assert.Equal(t, "variables and basic data types", levels[0].Topic)
	assert.Equal(t, content.DefaultTopic, levels[1].Topic)
}

func TestLevelNotFound(t *testing.T) {
	b := &fakeBackend{levels: []model.Level{{ID: 1}}}
	svc := newLevelService(b, &fakeLLM{}, newMemCache(), nil)

	_, err := svc.Level(t.Context(), session.New("sid", "tok", nil), 7)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestContentKey(t *testing.T) {
	assert.Equal(t, "content:3:beginner", ContentKey(3, "beginner"))
	assert.Equal(t, "content:3:very-hard", ContentKey(3, "Very Hard"))
}

func TestContentCachesParsedOutput(t *testing.T) {
	gen := &fakeLLM{content: validContentJSON}
	cache := newMemCache()
	svc := newLevelService(&fakeBackend{}, gen, cache, nil)

	first, err := svc.Content(t.Context(), 3, "")
	require.NoError(t, err)
	assert.False(t, first.Fallback)
	assert.False(t, first.Cached)
	assert.Equal(t, "Counting", first.Content.Title)
	assert.Equal(t, "beginner", first.Difficulty)

	second, err := svc.Content(t.Context(), 3, "beginner")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Content, second.Content)

	calls, _ := gen.counts()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.setCount("content:"))
	assert.Equal(t, first.ContentID, second.ContentID)
}

func TestContentFallbackIsNotCached(t *testing.T) {
	gen := &fakeLLM{content: "Sure! Here is your exercise: title = Loops"}
	cache := newMemCache()
	svc := newLevelService(&fakeBackend{}, gen, cache, nil)

	res, err := svc.Content(t.Context(), 3, "beginner")
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, content.FallbackLevelContent(content.Request{LevelID: 3, Topic: "loops (for and while)"}), res.Content)

	_, err = svc.Content(t.Context(), 3, "beginner")
	require.NoError(t, err)

	calls, _ := gen.counts()
	assert.Equal(t, 2, calls, "fallback must not be served from cache")
	assert.Zero(t, cache.setCount("content:"))
}

func TestServedReturnsSnapshotOfServedContent(t *testing.T) {
	gen := &fakeLLM{content: "not json at all"}
	svc := newLevelService(&fakeBackend{}, gen, newMemCache(), nil)

	shown, err := svc.Content(t.Context(), 4, "beginner")
	require.NoError(t, err)
	require.True(t, shown.Fallback)
	require.NotEmpty(t, shown.ContentID)

	gen.content = validContentJSON
	fresh, err := svc.Content(t.Context(), 4, "beginner")
	require.NoError(t, err)
	assert.False(t, fresh.Fallback)
	assert.NotEqual(t, shown.ContentID, fresh.ContentID)

	got, err := svc.Served(t.Context(), 4, shown.ContentID)
	require.NoError(t, err)
	assert.Equal(t, shown.Content, got.Content)
	assert.True(t, got.Fallback)

	_, err = svc.Served(t.Context(), 5, shown.ContentID)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.Served(t.Context(), 4, "unknown")
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestContentTransportError(t *testing.T) {
	gen := &fakeLLM{contentErr: common.ErrUpstream}
	svc := newLevelService(&fakeBackend{}, gen, newMemCache(), nil)

	_, err := svc.Content(t.Context(), 1, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUpstream)
}

func TestContentInvalidLevel(t *testing.T) {
	svc := newLevelService(&fakeBackend{}, &fakeLLM{}, newMemCache(), nil)
	_, err := svc.Content(t.Context(), 0, "")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestContentConcurrentRequestsShareOneModelCall(t *testing.T) {
	gen := &fakeLLM{content: validContentJSON, block: make(chan struct{})}
	svc := newLevelService(&fakeBackend{}, gen, newMemCache(), nil)

	var wg sync.WaitGroup
	results := make([]*ContentResult, 10)
	errs := make([]error, 10)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = svc.Content(t.Context(), 2, "beginner")
		}()
	}

	assert.Eventually(t, func() bool {
		calls, _ := gen.counts()
		return calls == 1
	}, time.Second, time.Millisecond)
	close(gen.block)
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, "Counting", results[i].Content.Title)
	}
	calls, _ := gen.counts()
	assert.Equal(t, 1, calls)
}

func TestPrepareEnqueuesJob(t *testing.T) {
	q := &fakeQueue{}
	svc := newLevelService(&fakeBackend{}, &fakeLLM{}, newMemCache(), q)

	job, err := svc.Prepare(t.Context(), 4, "")
	require.NoError(t, err)
	assert.Equal(t, model.PrewarmJob{LevelID: 4, Difficulty: "beginner"}, *job)

	require.Len(t, q.items, 1)
	var queued model.PrewarmJob
	require.NoError(t, json.Unmarshal([]byte(q.items[0]), &queued))
	assert.Equal(t, *job, queued)
}

func TestLevelsPropagatesBackendError(t *testing.T) {
	b := &fakeBackend{err: errors.New("boom")}
	svc := newLevelService(b, &fakeLLM{}, newMemCache(), nil)
	_, err := svc.Levels(t.Context(), session.New("sid", "tok", nil))
	assert.EqualError(t, err, "boom")
}
