package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"pyventure/internal/clients/llm"
	"pyventure/internal/common"
	"pyventure/internal/content"
	"pyventure/internal/domain/model"
	"pyventure/internal/domain/repository"
	"pyventure/internal/grading"
	"pyventure/internal/session"
)

var hintOptions = llm.Options{Temperature: 0.5}

type PlaygroundService struct {
	levels   *LevelService
	sandbox  Executor
	llm      Generator
	backend  Backend
	attempts repository.AttemptRepository
	logger   *zap.Logger
}

func NewPlaygroundService(levels *LevelService, sandbox Executor, gen Generator, b Backend, attempts repository.AttemptRepository, logger *zap.Logger) *PlaygroundService {
	return &PlaygroundService{levels: levels, sandbox: sandbox, llm: gen, backend: b, attempts: attempts, logger: logger}
}

// RunRequest carries the content_id of the exercise shown to the player.
type RunRequest struct {
	LevelID   int64  `json:"level_id"`
	ContentID string `json:"content_id"`
	Code      string `json:"code"`
}

type RunResponse struct {
	AttemptID  string                  `json:"attempt_id"`
	Result     model.ExecutionResult   `json:"result"`
	IsCorrect  bool                    `json:"is_correct"`
	MatchMode  grading.Mode            `json:"match_mode,omitempty"`
	Hint       *model.CodeHint         `json:"hint,omitempty"`
	Submission *model.SubmissionResult `json:"submission,omitempty"`
}

// Run executes one playground attempt. The steps are strictly sequential:
// the hint request is only issued after execution finished and the output
// was judged incorrect.
func (s *PlaygroundService) Run(ctx context.Context, sess *session.Session, req RunRequest) (*RunResponse, error) {
	if req.LevelID <= 0 {
		return nil, fmt.Errorf("level_id is required: %w", common.ErrValidation)
	}
	if strings.TrimSpace(req.Code) == "" {
		return nil, fmt.Errorf("code is required: %w", common.ErrValidation)
	}
	if strings.TrimSpace(req.ContentID) == "" {
		return nil, fmt.Errorf("content_id is required: %w", common.ErrValidation)
	}
	user := sess.User()
	if user == nil {
		return nil, common.ErrSessionExpired
	}

	lc, err := s.levels.Served(ctx, req.LevelID, req.ContentID)
	if err != nil {
		return nil, err
	}

	result, err := s.sandbox.Execute(ctx, req.Code)
	if err != nil {
		return nil, fmt.Errorf("execute code: %w", err)
	}

	verdict := grading.Check(result.Stdout, result.Stderr, lc.Content.TestCases)
	resp := &RunResponse{
		AttemptID: uuid.NewString(),
		Result:    *result,
		IsCorrect: verdict.Correct,
		MatchMode: verdict.Mode,
	}

	if !verdict.Correct {
		hint := s.hint(ctx, lc.Content, req.Code)
		resp.Hint = &hint
	}

	sub, err := s.backend.SubmitCode(ctx, sess, req.LevelID, req.Code, verdict.Correct)
	if err != nil {
		return nil, fmt.Errorf("record submission: %w", err)
	}
	resp.Submission = sub

	attempt := &model.RunAttempt{
		ID:        resp.AttemptID,
		UserID:    user.ID,
		LevelID:   req.LevelID,
		CodeHash:  CodeHash(req.Code),
		IsCorrect: verdict.Correct,
		Stdout:    result.Stdout,
		Stderr:    result.Stderr,
		CreatedAt: time.Now().UTC(),
	}
	if resp.Hint != nil {
		attempt.Hint = resp.Hint.Hint
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		// The backend already has the submission; history is best effort.
		s.logger.Error("Failed to store run attempt", zap.String("attempt_id", attempt.ID), zap.Error(err))
	}

	return resp, nil
}

// hint asks the model for advice on incorrect code. Any failure yields the
// fixed fallback hint.
func (s *PlaygroundService) hint(ctx context.Context, lc model.LevelContent, code string) model.CodeHint {
	raw, err := s.llm.Generate(ctx, content.HintPrompt(lc, code), hintOptions)
	if err != nil {
		s.logger.Warn("Hint request failed, using fallback hint", zap.Error(err))
		return content.FallbackHint
	}
	hint, _ := content.ParseHint(raw)
	return hint
}

func (s *PlaygroundService) Attempts(ctx context.Context, userID, levelID int64, limit int) ([]model.RunAttempt, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.attempts.List(ctx, userID, levelID, limit)
}

// CodeHash fingerprints submitted source for the attempt history.
func CodeHash(code string) string {
	sum := blake2b.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
