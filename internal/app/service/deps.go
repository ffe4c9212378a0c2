package service

import (
	"context"
	"time"

	"pyventure/internal/clients/backend"
	"pyventure/internal/clients/llm"
	"pyventure/internal/domain/model"
	"pyventure/internal/session"
)

// Backend is the part of the backend REST client the services rely on.
type Backend interface {
	Register(ctx context.Context, req backend.RegisterRequest) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	VerifyTwoFactor(ctx context.Context, email, code string) (*backend.AuthResult, error)
	CurrentUser(ctx context.Context, creds backend.Credentials) (*model.User, error)
	Levels(ctx context.Context, creds backend.Credentials) ([]model.Level, error)
	Level(ctx context.Context, creds backend.Credentials, id int64) (*model.Level, error)
	SubmitCode(ctx context.Context, creds backend.Credentials, levelID int64, code string, isCorrect bool) (*model.SubmissionResult, error)
	Submissions(ctx context.Context, creds backend.Credentials, levelID int64) ([]model.Submission, error)
	Progress(ctx context.Context, creds backend.Credentials) ([]model.UserProgress, error)
	UpdateProgress(ctx context.Context, creds backend.Credentials, upd backend.ProgressUpdate) (*model.UserProgress, error)
	Profile(ctx context.Context, creds backend.Credentials) (*model.Profile, error)
	Achievements(ctx context.Context, creds backend.Credentials) ([]model.Achievement, error)
	Leaderboard(ctx context.Context, creds backend.Credentials, limit int) ([]model.LeaderboardEntry, error)
}

// Generator produces free text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts llm.Options) (string, error)
}

// Executor runs a program and captures its output.
type Executor interface {
	Execute(ctx context.Context, source string) (*model.ExecutionResult, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
}

// JobQueue accepts serialized jobs for the worker.
type JobQueue interface {
	Push(ctx context.Context, payload string) error
}

type Sessions interface {
	Create(ctx context.Context, backendToken string, user model.User) (*session.Session, error)
	Logout(s *session.Session) bool
}
