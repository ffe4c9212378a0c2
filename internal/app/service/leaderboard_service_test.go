package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyventure/internal/domain/model"
	"pyventure/internal/leaderboard"
	"pyventure/internal/session"
)

func entry(rank int, userID int64, score, levels, attempts int) model.LeaderboardEntry {
	return model.LeaderboardEntry{
		Rank:  rank,
		User:  model.User{ID: userID},
		Stats: model.UserStats{UserID: userID, TotalScore: score, TotalCompletedLevels: levels, TotalAttempts: attempts},
	}
}

func TestLeaderboardDecoratesAndSorts(t *testing.T) {
	b := &fakeBackend{
		levels: []model.Level{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}},
		leaderboard: []model.LeaderboardEntry{
			entry(1, 10, 900, 4, 30),
			entry(2, 20, 700, 1, 12),
			entry(3, 30, 500, 2, 50),
		},
	}
	svc := NewLeaderboardService(b)
	creds := session.New("sid", "tok", nil)

	resp, err := svc.Get(t.Context(), creds, LeaderboardQuery{State: leaderboard.State{Field: leaderboard.FieldAttempts, Direction: leaderboard.Asc}})
	require.NoError(t, err)

	assert.Equal(t, 4, resp.TotalLevels)
	require.Len(t, resp.Entries, 3)
	assert.Equal(t, []int64{20, 10, 30}, []int64{resp.Entries[0].User.ID, resp.Entries[1].User.ID, resp.Entries[2].User.ID})
	assert.Equal(t, []int{25, 100, 50}, []int{resp.Entries[0].Progress, resp.Entries[1].Progress, resp.Entries[2].Progress})

	reversed, err := svc.Get(t.Context(), creds, LeaderboardQuery{State: leaderboard.State{Field: leaderboard.FieldAttempts, Direction: leaderboard.Desc}})
	require.NoError(t, err)
	assert.Equal(t, []int64{30, 10, 20}, []int64{reversed.Entries[0].User.ID, reversed.Entries[1].User.ID, reversed.Entries[2].User.ID})
}

func TestLeaderboardError(t *testing.T) {
	svc := NewLeaderboardService(&fakeBackend{err: errors.New("down")})
	_, err := svc.Get(t.Context(), session.New("sid", "tok", nil), LeaderboardQuery{State: leaderboard.DefaultState()})
	assert.EqualError(t, err, "down")
}
