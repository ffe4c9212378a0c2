package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"pyventure/internal/app/service"
	"pyventure/internal/domain/model"
	"pyventure/internal/platform/queue"
)

// JobSource is the prewarm queue as seen by the worker.
type JobSource interface {
	Pop(ctx context.Context) (string, error)
	Requeue(ctx context.Context, payload string) error
}

type Locker interface {
	Acquire(ctx context.Context, key string) (release func(context.Context) (bool, error), ok bool, err error)
}

// ContentGenerator produces and caches level content.
type ContentGenerator interface {
	Content(ctx context.Context, levelID int64, difficulty string) (*service.ContentResult, error)
}

// ContentWorker fills the content cache ahead of requests. One worker
// processes one job at a time; the per-level lock keeps workers on other
// gateway instances from generating the same content concurrently.
type ContentWorker struct {
	jobs       JobSource
	locks      Locker
	generator  ContentGenerator
	logger     *zap.Logger
	errorDelay time.Duration
}

func NewContentWorker(jobs JobSource, locks Locker, generator ContentGenerator, logger *zap.Logger) *ContentWorker {
	return &ContentWorker{
		jobs:       jobs,
		locks:      locks,
		generator:  generator,
		logger:     logger,
		errorDelay: 5 * time.Second,
	}
}

// Start blocks until ctx is cancelled.
func (w *ContentWorker) Start(ctx context.Context) {
	w.logger.Info("Content worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Content worker stopping")
			return
		default:
		}

		payload, err := w.jobs.Pop(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrEmpty) {
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			w.logger.Error("Failed to pop prewarm job", zap.Error(err))
			w.sleep(ctx, w.errorDelay)
			continue
		}
		w.process(ctx, payload)
	}
}

func (w *ContentWorker) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (w *ContentWorker) process(ctx context.Context, payload string) {
	var job model.PrewarmJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil || job.LevelID <= 0 {
		w.logger.Warn("Dropping malformed prewarm job", zap.String("payload", payload), zap.Error(err))
		return
	}
	log := w.logger.With(zap.Int64("level_id", job.LevelID), zap.String("difficulty", job.Difficulty))

	lockKey := "lock:" + service.ContentKey(job.LevelID, job.Difficulty)
	release, ok, err := w.locks.Acquire(ctx, lockKey)
	if err != nil {
		log.Error("Failed to attempt content lock", zap.Error(err))
		w.requeue(ctx, payload)
		return
	}
	if !ok {
		log.Info("Content is already being generated elsewhere, skipping")
		return
	}
	defer func() {
		// Release even if ctx was cancelled mid-generation.
		relCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		held, err := release(relCtx)
		switch {
		case err != nil:
			log.Error("Failed to release content lock", zap.Error(err))
		case !held:
			log.Warn("Content lock expired before release")
		}
	}()

	start := time.Now()
	res, err := w.generator.Content(ctx, job.LevelID, job.Difficulty)
	if err != nil {
		log.Error("Content generation failed", zap.Error(err))
		return
	}
	log.Info("Content prepared",
		zap.Bool("cached", res.Cached),
		zap.Bool("fallback", res.Fallback),
		zap.Duration("took", time.Since(start)))
}

func (w *ContentWorker) requeue(ctx context.Context, payload string) {
	if err := w.jobs.Requeue(ctx, payload); err != nil {
		w.logger.Error("Failed to requeue prewarm job", zap.Error(err))
	}
}
