package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pyventure/internal/app/service"
	"pyventure/internal/clients/backend"
	"pyventure/internal/clients/llm"
	"pyventure/internal/clients/sandbox"
	"pyventure/internal/content"
	"pyventure/internal/domain/repository"
	"pyventure/internal/platform/cache"
	"pyventure/internal/platform/config"
	"pyventure/internal/platform/database"
	"pyventure/internal/platform/logging"
	"pyventure/internal/platform/queue"
	"pyventure/internal/session"
)

// app holds the long-lived dependencies shared by the subcommands.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	rdb    *redis.Client
	db     *sql.DB

	sessions *session.Manager
	prewarm  *queue.List
	locks    *queue.Locker
	backend  *backend.Client
	llm      *llm.Client
	levels   *service.LevelService
	attempts repository.AttemptRepository
}

func loadBase() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, database.Dialect, error) {
	db, dialect, err := database.Connect(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, dialect, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, logger, err := loadBase()
	if err != nil {
		return nil, err
	}

	db, dialect, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Database connected", zap.String("driver", cfg.DBDriver))

	rdb, err := queue.ConnectRedis(ctx, queue.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("Redis connected", zap.String("addr", cfg.RedisAddr))

	topics, err := content.LoadTopics(cfg.TopicsFile)
	if err != nil {
		db.Close()
		rdb.Close()
		return nil, fmt.Errorf("load topics: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		rdb:      rdb,
		db:       db,
		sessions: session.NewManager(session.NewRedisStore(rdb), cfg.JWTExp, logger),
		prewarm:  queue.NewList(rdb, cfg.PrewarmQueueName, queueWait),
		locks:    queue.NewLocker(rdb, cfg.ContentLockTTL),
		backend:  backend.New(cfg.BackendBaseURL, cfg.HTTPTimeout),
		llm:      llm.New(cfg.LLMBaseURL, cfg.LLMModel, cfg.LLMTimeout),
		attempts: repository.NewSQLAttemptRepository(db, dialect),
	}
	a.levels = service.NewLevelService(a.backend, a.llm, cache.NewRedis(rdb), a.prewarm, service.LevelServiceConfig{
		Topics:            topics,
		CacheTTL:          cfg.ContentCacheTTL,
		DefaultDifficulty: cfg.DefaultDifficulty,
	}, logger)
	return a, nil
}

func (a *app) sandbox() *sandbox.Client {
	return sandbox.New(a.cfg.SandboxBaseURL, a.cfg.SandboxLang, a.cfg.SandboxVersion, a.cfg.HTTPTimeout)
}

func (a *app) Close() {
	if err := a.rdb.Close(); err != nil {
		a.logger.Warn("Failed to close redis", zap.Error(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("Failed to close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}
