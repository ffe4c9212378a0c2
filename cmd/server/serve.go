package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pyventure/internal/api"
	"pyventure/internal/app/service"
	"pyventure/internal/app/worker"
	"pyventure/internal/common/security"
	"pyventure/internal/platform/telemetry"
)

// queueWait bounds a single blocking pop so the worker notices shutdown.
const queueWait = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP gateway and the content prewarm worker",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	shutdownTracing, err := telemetry.Setup(ctx, "pyventure", a.cfg.OTELEndpoint)
	if err != nil {
		logger.Warn("Tracing disabled", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	tokens := security.NewTokens([]byte(a.cfg.JWTKey), a.cfg.JWTExp)
	svc := api.Services{
		Auth:        service.NewAuthService(a.backend, a.sessions, tokens, logger),
		Levels:      a.levels,
		Maps:        service.NewMapService(a.cfg.MapsDir),
		Playground:  service.NewPlaygroundService(a.levels, a.sandbox(), a.llm, a.backend, a.attempts, logger),
		Progress:    service.NewProgressService(a.backend),
		Profile:     service.NewProfileService(a.backend, a.levels),
		Leaderboard: service.NewLeaderboardService(a.backend),
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go a.sessions.RunJanitor(workerCtx, time.Minute)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.NewContentWorker(a.prewarm, a.locks, a.levels, logger).Start(workerCtx)
	}()

	server := &http.Server{
		Addr:         ":" + a.cfg.APIPort,
		Handler:      api.NewRouter(svc, tokens, a.sessions, logger, a.cfg.LLMTimeout+10*time.Second),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: a.cfg.LLMTimeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("port", a.cfg.APIPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			logger.Error("Could not listen", zap.String("port", a.cfg.APIPort), zap.Error(err))
			return err
		}
	}

	logger.Info("Shutting down server")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
		return err
	}
	<-workerDone

	logger.Info("Server and worker stopped gracefully")
	return nil
}
