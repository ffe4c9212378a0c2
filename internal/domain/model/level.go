package model

type LevelDifficulty string

const (
	DifficultyEasy   LevelDifficulty = "easy"
	DifficultyMedium LevelDifficulty = "medium"
	DifficultyHard   LevelDifficulty = "hard"
)

type Level struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Difficulty  LevelDifficulty `json:"difficulty"`
	Category    string          `json:"category"`
	Topic       string          `json:"topic,omitempty"`
	IsUnlocked  bool            `json:"is_unlocked"`
	IsCompleted bool            `json:"is_completed"`
}

type UserProgress struct {
	UserID      int64  `json:"user_id"`
	LevelID     int64  `json:"level_id"`
	IsCompleted bool   `json:"is_completed"`
	Score       int    `json:"score"`
	Attempts    int    `json:"attempts"`
	LastUpdated string `json:"last_updated"`
	Level       *Level `json:"level,omitempty"`
}

type Achievement struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url"`
	EarnedAt    string `json:"earned_at,omitempty"`
	IsEarned    bool   `json:"is_earned"`
}
