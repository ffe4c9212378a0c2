package model

import "time"

// ExecutionResult is what the sandbox captured from one program run.
type ExecutionResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	Output   string `json:"output,omitempty"`
	ExitCode *int   `json:"code,omitempty"`
}

// SubmissionResult is the backend's answer to a recorded submission.
type SubmissionResult struct {
	Message           string `json:"message,omitempty"`
	LevelCompleted    bool   `json:"level_completed"`
	NextLevelUnlocked bool   `json:"next_level_unlocked"`
	NextLevelID       *int64 `json:"next_level_id,omitempty"`
}

// RunAttempt is the gateway's own record of one playground run.
type RunAttempt struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	LevelID   int64     `json:"level_id"`
	CodeHash  string    `json:"code_hash"`
	IsCorrect bool      `json:"is_correct"`
	Stdout    string    `json:"stdout"`
	Stderr    string    `json:"stderr"`
	Hint      string    `json:"hint,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PrewarmJob asks the worker to generate and cache content ahead of time.
type PrewarmJob struct {
	LevelID    int64  `json:"level_id"`
	Difficulty string `json:"difficulty"`
}

// Submission is a code submission as stored by the backend.
type Submission struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	LevelID   int64  `json:"level_id"`
	Code      string `json:"code"`
	IsCorrect bool   `json:"is_correct"`
	CreatedAt string `json:"created_at,omitempty"`
}
