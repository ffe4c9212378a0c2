package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"pyventure/internal/common"
	"pyventure/internal/domain/model"
	"pyventure/internal/platform/database"
)

type AttemptRepository interface {
	Create(ctx context.Context, attempt *model.RunAttempt) error
	// List returns the newest attempts of a user first. levelID 0 means all
	// levels; limit <= 0 means no limit.
	List(ctx context.Context, userID, levelID int64, limit int) ([]model.RunAttempt, error)
	// Stats returns how many attempts a user made on a level and how many
	// of them were correct.
	Stats(ctx context.Context, userID, levelID int64) (total, correct int, err error)
}

type sqlAttemptRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

func NewSQLAttemptRepository(db *sql.DB, dialect database.Dialect) AttemptRepository {
	return &sqlAttemptRepository{db: db, dialect: dialect}
}

func (r *sqlAttemptRepository) Create(ctx context.Context, a *model.RunAttempt) error {
	query := r.dialect.Rebind(`INSERT INTO run_attempts
		(id, user_id, level_id, code_hash, is_correct, stdout, stderr, hint, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.UserID, a.LevelID, a.CodeHash, a.IsCorrect, a.Stdout, a.Stderr, a.Hint, a.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("run attempt %s already recorded: %w", a.ID, common.ErrConflict)
		}
		return fmt.Errorf("sqlAttemptRepository.Create: %w", err)
	}
	return nil
}

func (r *sqlAttemptRepository) List(ctx context.Context, userID, levelID int64, limit int) ([]model.RunAttempt, error) {
	query := `SELECT id, user_id, level_id, code_hash, is_correct, stdout, stderr, hint, created_at
	          FROM run_attempts WHERE user_id = ?`
	args := []any{userID}
	if levelID > 0 {
		query += ` AND level_id = ?`
		args = append(args, levelID)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlAttemptRepository.List: %w", err)
	}
	defer rows.Close()

	attempts := []model.RunAttempt{}
	for rows.Next() {
		var a model.RunAttempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.LevelID, &a.CodeHash, &a.IsCorrect,
			&a.Stdout, &a.Stderr, &a.Hint, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlAttemptRepository.List scan: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlAttemptRepository.List: %w", err)
	}
	return attempts, nil
}

func (r *sqlAttemptRepository) Stats(ctx context.Context, userID, levelID int64) (int, int, error) {
	query := r.dialect.Rebind(`SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0)
	          FROM run_attempts WHERE user_id = ? AND level_id = ?`)
	var total, correct int
	if err := r.db.QueryRowContext(ctx, query, userID, levelID).Scan(&total, &correct); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("sqlAttemptRepository.Stats: %w", err)
	}
	return total, correct, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
