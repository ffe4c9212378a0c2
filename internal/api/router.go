package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"

	"pyventure/internal/api/handler"
	"pyventure/internal/api/middleware"
	"pyventure/internal/app/service"
	"pyventure/internal/common/security"
)

// Services bundles what the HTTP layer needs.
type Services struct {
	Auth        *service.AuthService
	Levels      *service.LevelService
	Maps        *service.MapService
	Playground  *service.PlaygroundService
	Progress    *service.ProgressService
	Profile     *service.ProfileService
	Leaderboard *service.LeaderboardService
}

func NewRouter(
	svc Services,
	tokens *security.Tokens,
	sessions middleware.SessionLoader,
	logger *zap.Logger,
	requestTimeout time.Duration,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	// Content generation can take a while on a cold cache.
	r.Use(chiMiddleware.Timeout(requestTimeout))

	// Verifies the gateway token if present; Authenticator decides per route.
	r.Use(jwtauth.Verifier(tokens.Auth))

	authenticate := middleware.Authenticator(sessions, logger)

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		handler.NewAuthHandler(svc.Auth, authenticate).RegisterRoutes(v1)

		levelHandler := handler.NewLevelHandler(svc.Levels, svc.Maps, authenticate)
		v1.Route("/levels", levelHandler.RegisterRoutes)

		v1.Group(func(private chi.Router) {
			private.Use(authenticate)

			playgroundHandler := handler.NewPlaygroundHandler(svc.Playground)
			private.Route("/playground", playgroundHandler.RegisterRoutes)

			handler.NewProfileHandler(svc.Profile, svc.Progress).RegisterRoutes(private)

			leaderboardHandler := handler.NewLeaderboardHandler(svc.Leaderboard)
			private.Route("/leaderboard", leaderboardHandler.RegisterRoutes)
		})
	})

	return r
}
