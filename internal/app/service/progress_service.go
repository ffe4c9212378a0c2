package service

import (
	"context"
	"fmt"

	"pyventure/internal/clients/backend"
	"pyventure/internal/common"
	"pyventure/internal/domain/model"
)

type ProgressService struct {
	backend Backend
}

func NewProgressService(b Backend) *ProgressService {
	return &ProgressService{backend: b}
}

type UpdateProgressRequest struct {
	LevelID     int64 `json:"level_id"`
	Score       int   `json:"score"`
	IsCompleted bool  `json:"is_completed"`
}

func (s *ProgressService) Get(ctx context.Context, creds backend.Credentials) ([]model.UserProgress, error) {
	return s.backend.Progress(ctx, creds)
}

func (s *ProgressService) Update(ctx context.Context, creds backend.Credentials, req UpdateProgressRequest) (*model.UserProgress, error) {
	if req.LevelID <= 0 {
		return nil, fmt.Errorf("level_id is required: %w", common.ErrValidation)
	}
	if req.Score < 0 {
		return nil, fmt.Errorf("score must not be negative: %w", common.ErrValidation)
	}
	return s.backend.UpdateProgress(ctx, creds, backend.ProgressUpdate(req))
}
