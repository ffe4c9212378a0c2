package database

import (
	"context"
	"database/sql"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS run_attempts (
		id         VARCHAR(36) PRIMARY KEY,
		user_id    BIGINT NOT NULL,
		level_id   BIGINT NOT NULL,
		code_hash  VARCHAR(64) NOT NULL,
		is_correct BOOLEAN NOT NULL,
		stdout     TEXT NOT NULL,
		stderr     TEXT NOT NULL,
		hint       TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_run_attempts_user_level ON run_attempts (user_id, level_id, created_at)`,
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
