package service

import (
	"cmp"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"pyventure/internal/clients/backend"
	"pyventure/internal/clients/llm"
	"pyventure/internal/common"
	"pyventure/internal/content"
	"pyventure/internal/domain/model"
)

var levelContentOptions = llm.Options{Temperature: 0.7, TopP: 0.9}

type LevelService struct {
	backend           Backend
	llm               Generator
	cache             Cache
	queue             JobQueue
	topics            *content.Topics
	cacheTTL          time.Duration
	defaultDifficulty string
	logger            *zap.Logger

	inflight singleflight.Group
}

type LevelServiceConfig struct {
	Topics            *content.Topics
	CacheTTL          time.Duration
	DefaultDifficulty string
}

func NewLevelService(b Backend, gen Generator, cache Cache, queue JobQueue, cfg LevelServiceConfig, logger *zap.Logger) *LevelService {
	if cfg.Topics == nil {
		cfg.Topics = content.DefaultTopics()
	}
	return &LevelService{
		backend:           b,
		llm:               gen,
		cache:             cache,
		queue:             queue,
		topics:            cfg.Topics,
		cacheTTL:          cfg.CacheTTL,
		defaultDifficulty: cmp.Or(cfg.DefaultDifficulty, "beginner"),
		logger:            logger,
	}
}

// ContentResult is generated level content and where it came from.
// ContentID fingerprints the exact content served; runs are graded against
// it.
type ContentResult struct {
	ContentID  string             `json:"content_id"`
	LevelID    int64              `json:"level_id"`
	Difficulty string             `json:"difficulty"`
	Topic      string             `json:"topic"`
	Content    model.LevelContent `json:"content"`
	Cached     bool               `json:"cached"`
	Fallback   bool               `json:"fallback"`
}

// Levels returns the catalog in id order with unlock and completion state
// derived from the user's progress.
func (s *LevelService) Levels(ctx context.Context, creds backend.Credentials) ([]model.Level, error) {
	var (
		levels   []model.Level
		progress []model.UserProgress
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		levels, err = s.backend.Levels(gctx, creds)
		return err
	})
	g.Go(func() (err error) {
		progress, err = s.backend.Progress(gctx, creds)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	levels = DeriveUnlocks(levels, progress)
	for i := range levels {
		levels[i].Topic = s.topics.For(levels[i].ID)
	}
	return levels, nil
}

func (s *LevelService) Level(ctx context.Context, creds backend.Credentials, id int64) (*model.Level, error) {
	levels, err := s.Levels(ctx, creds)
	if err != nil {
		return nil, err
	}
	for i := range levels {
		if levels[i].ID == id {
			return &levels[i], nil
		}
	}

	// Not in the catalog listing; ask the backend directly.
	level, err := s.backend.Level(ctx, creds, id)
	if err != nil {
		if backend.IsAPIError(err, 404) {
			return nil, fmt.Errorf("level %d: %w", id, common.ErrNotFound)
		}
		return nil, err
	}
	level.Topic = s.topics.For(level.ID)
	return level, nil
}

// DeriveUnlocks sorts levels by id and marks which are playable. The first
// level is always unlocked; any other level is unlocked when the one before
// it is completed or the backend already flagged it.
func DeriveUnlocks(levels []model.Level, progress []model.UserProgress) []model.Level {
	completed := make(map[int64]bool, len(progress))
	for _, p := range progress {
		if p.IsCompleted {
			completed[p.LevelID] = true
		}
	}

	out := slices.Clone(levels)
	slices.SortFunc(out, func(a, b model.Level) int { return cmp.Compare(a.ID, b.ID) })
	for i := range out {
		out[i].IsCompleted = out[i].IsCompleted || completed[out[i].ID]
		switch {
		case i == 0:
			out[i].IsUnlocked = true
		case out[i-1].IsCompleted:
			out[i].IsUnlocked = true
		}
	}
	return out
}

// ContentKey is the cache key for generated content of a level.
func ContentKey(levelID int64, difficulty string) string {
	return "content:" + strconv.FormatInt(levelID, 10) + ":" + slug.Make(difficulty)
}

func (s *LevelService) normalizeDifficulty(d string) string {
	d = strings.TrimSpace(d)
	if d == "" {
		return s.defaultDifficulty
	}
	return d
}

// Content returns exercise content for a level. Parsed model output is cached;
// the deterministic fallback is returned but never cached so the next request
// tries the model again. Concurrent requests for the same key share one model
// call.
func (s *LevelService) Content(ctx context.Context, levelID int64, difficulty string) (*ContentResult, error) {
	if levelID <= 0 {
		return nil, fmt.Errorf("invalid level id %d: %w", levelID, common.ErrValidation)
	}
	difficulty = s.normalizeDifficulty(difficulty)
	key := ContentKey(levelID, difficulty)
	topic := s.topics.For(levelID)

	var cached model.LevelContent
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("Content cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		res := &ContentResult{LevelID: levelID, Difficulty: difficulty, Topic: topic, Content: cached, Cached: true}
		s.remember(ctx, res)
		return res, nil
	}

	v, err, _ := s.inflight.Do(key, func() (any, error) {
		// A flight for this key may have just finished and filled the cache.
		var again model.LevelContent
		if hit, _ := s.cache.Get(ctx, key, &again); hit {
			return &ContentResult{LevelID: levelID, Difficulty: difficulty, Topic: topic, Content: again, Cached: true}, nil
		}
		return s.generate(ctx, key, content.Request{LevelID: levelID, Topic: topic, Difficulty: difficulty})
	})
	if err != nil {
		return nil, err
	}
	res := *v.(*ContentResult)
	s.remember(ctx, &res)
	return &res, nil
}

// ContentID fingerprints served content together with its level and
// difficulty.
func ContentID(levelID int64, difficulty string, c model.LevelContent) string {
	data, _ := json.Marshal(struct {
		LevelID    int64              `json:"level_id"`
		Difficulty string             `json:"difficulty"`
		Content    model.LevelContent `json:"content"`
	}{levelID, difficulty, c})
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:16])
}

func servedKey(id string) string { return "served:" + id }

// remember stores a snapshot of what is being handed to the player,
// fallback content included, so a later run is graded against it.
func (s *LevelService) remember(ctx context.Context, res *ContentResult) {
	res.ContentID = ContentID(res.LevelID, res.Difficulty, res.Content)
	snapshot := *res
	snapshot.Cached = false
	if err := s.cache.Set(ctx, servedKey(res.ContentID), snapshot, s.cacheTTL); err != nil {
		s.logger.Error("Failed to store served content", zap.String("content_id", res.ContentID), zap.Error(err))
	}
}

// Served returns the content previously served under id for levelID.
func (s *LevelService) Served(ctx context.Context, levelID int64, id string) (*ContentResult, error) {
	var res ContentResult
	hit, err := s.cache.Get(ctx, servedKey(id), &res)
	if err != nil {
		return nil, fmt.Errorf("%w: load served content: %w", common.ErrServiceUnavailable, err)
	}
	if !hit {
		return nil, fmt.Errorf("content %s is no longer available, reload the level: %w", id, common.ErrConflict)
	}
	if res.LevelID != levelID {
		return nil, fmt.Errorf("content %s belongs to level %d: %w", id, res.LevelID, common.ErrValidation)
	}
	return &res, nil
}

func (s *LevelService) generate(ctx context.Context, key string, req content.Request) (*ContentResult, error) {
	raw, err := s.llm.Generate(ctx, content.LevelPrompt(req.Difficulty, req.Topic), levelContentOptions)
	if err != nil {
		return nil, fmt.Errorf("generate content for level %d: %w", req.LevelID, err)
	}

	c, fallback := content.ParseLevelContent(raw, req)
	if fallback {
		s.logger.Warn("Model output unusable, serving fallback content",
			zap.Int64("level_id", req.LevelID), zap.Strings("missing", missingOrInvalid(raw)))
	} else if err := s.cache.Set(ctx, key, c, s.cacheTTL); err != nil {
		s.logger.Error("Failed to cache content", zap.String("key", key), zap.Error(err))
	}

	return &ContentResult{
		LevelID:    req.LevelID,
		Difficulty: req.Difficulty,
		Topic:      req.Topic,
		Content:    c,
		Fallback:   fallback,
	}, nil
}

func missingOrInvalid(raw string) []string {
	var parsed model.LevelContent
	if err := json.Unmarshal([]byte(content.ExtractJSON(raw)), &parsed); err != nil {
		return []string{"invalid json"}
	}
	return content.MissingFields(parsed)
}

// Prepare queues background generation of a level's content.
func (s *LevelService) Prepare(ctx context.Context, levelID int64, difficulty string) (*model.PrewarmJob, error) {
	if levelID <= 0 {
		return nil, fmt.Errorf("invalid level id %d: %w", levelID, common.ErrValidation)
	}
	job := model.PrewarmJob{LevelID: levelID, Difficulty: s.normalizeDifficulty(difficulty)}
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal prewarm job: %w", err)
	}
	if err := s.queue.Push(ctx, string(payload)); err != nil {
		return nil, fmt.Errorf("failed to enqueue prewarm job: %w", err)
	}
	return &job, nil
}
