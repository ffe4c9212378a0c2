package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"pyventure/internal/clients/backend"
	"pyventure/internal/domain/model"
	"pyventure/internal/leaderboard"
)

const (
	DefaultLeaderboardLimit = 50
	MaxLeaderboardLimit     = 100
)

type LeaderboardService struct {
	backend Backend
}

func NewLeaderboardService(b Backend) *LeaderboardService {
	return &LeaderboardService{backend: b}
}

type LeaderboardQuery struct {
	Limit int
	State leaderboard.State
}

type LeaderboardResponse struct {
	Entries     []model.LeaderboardEntry `json:"entries"`
	Sort        leaderboard.Field        `json:"sort"`
	Direction   leaderboard.Direction    `json:"dir"`
	TotalLevels int                      `json:"total_levels"`
}

// Get fetches the ranking and the level catalog concurrently, fills in each
// entry's completion percent and sorts for display.
func (s *LeaderboardService) Get(ctx context.Context, creds backend.Credentials, q LeaderboardQuery) (*LeaderboardResponse, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	limit = min(limit, MaxLeaderboardLimit)

	var (
		entries []model.LeaderboardEntry
		levels  []model.Level
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		entries, err = s.backend.Leaderboard(gctx, creds, limit)
		return err
	})
	g.Go(func() (err error) {
		levels, err = s.backend.Levels(gctx, creds)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries = leaderboard.Decorate(entries, len(levels))
	return &LeaderboardResponse{
		Entries:     leaderboard.Sort(entries, q.State),
		Sort:        q.State.Field,
		Direction:   q.State.Direction,
		TotalLevels: len(levels),
	}, nil
}
