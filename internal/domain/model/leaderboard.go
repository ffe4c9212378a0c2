package model

type LeaderboardEntry struct {
	Rank     int       `json:"rank"`
	User     User      `json:"user"`
	Stats    UserStats `json:"stats"`
	Progress int       `json:"progress"` // percent of levels completed, derived
}
