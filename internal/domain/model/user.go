package model

type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Rank     string `json:"rank"`
}

type UserStats struct {
	UserID               int64 `json:"user_id"`
	TotalAttempts        int   `json:"total_attempts"`
	TotalCompletedLevels int   `json:"total_completed_levels"`
	TotalScore           int   `json:"total_score"`
	TimeSpent            int   `json:"time_spent"`
}

// Profile is the aggregate returned by the backend's /profile endpoint.
type Profile struct {
	User         User           `json:"user"`
	Stats        UserStats      `json:"stats"`
	Progress     []UserProgress `json:"progress"`
	Achievements []Achievement  `json:"achievements"`
}
