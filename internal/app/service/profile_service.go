package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"pyventure/internal/clients/backend"
	"pyventure/internal/domain/model"
	"pyventure/internal/leaderboard"
)

type ProfileService struct {
	backend Backend
	levels  *LevelService
}

func NewProfileService(b Backend, levels *LevelService) *ProfileService {
	return &ProfileService{backend: b, levels: levels}
}

// Dashboard is everything the profile page renders in one response.
type Dashboard struct {
	Profile      *model.Profile      `json:"profile"`
	Achievements []model.Achievement `json:"achievements"`
	Levels       []model.Level       `json:"levels"`
	// Percent of catalog levels completed.
	Completion int `json:"completion"`
}

func (s *ProfileService) Profile(ctx context.Context, creds backend.Credentials) (*model.Profile, error) {
	return s.backend.Profile(ctx, creds)
}

func (s *ProfileService) Achievements(ctx context.Context, creds backend.Credentials) ([]model.Achievement, error) {
	return s.backend.Achievements(ctx, creds)
}

// Dashboard fetches profile, achievements and levels concurrently. The first
// failure cancels the others.
func (s *ProfileService) Dashboard(ctx context.Context, creds backend.Credentials) (*Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Profile, err = s.backend.Profile(gctx, creds)
		return err
	})
	g.Go(func() (err error) {
		d.Achievements, err = s.backend.Achievements(gctx, creds)
		return err
	})
	g.Go(func() (err error) {
		d.Levels, err = s.levels.Levels(gctx, creds)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	done := 0
	for _, l := range d.Levels {
		if l.IsCompleted {
			done++
		}
	}
	d.Completion = leaderboard.ProgressPercent(done, len(d.Levels))
	return &d, nil
}
