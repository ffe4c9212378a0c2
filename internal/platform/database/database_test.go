package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRebind(t *testing.T) {
	d, err := DialectFor("pgx")
	require.NoError(t, err)

	got := d.Rebind("SELECT * FROM run_attempts WHERE user_id = ? AND level_id = ? LIMIT ?")
	assert.Equal(t, "SELECT * FROM run_attempts WHERE user_id = $1 AND level_id = $2 LIMIT $3", got)
}

func TestSQLiteRebindIsIdentity(t *testing.T) {
	d, err := DialectFor("sqlite")
	require.NoError(t, err)

	q := "SELECT 1 WHERE ? = ?"
	assert.Equal(t, q, d.Rebind(q))
}

func TestDialectForUnknownDriver(t *testing.T) {
	_, err := DialectFor("oracle")
	assert.Error(t, err)
}

func TestConnectAndMigrateSQLite(t *testing.T) {
	ctx := context.Background()
	db, dialect, err := Connect(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "sqlite", dialect.DriverName())
	require.NoError(t, Migrate(ctx, db))
	// Migrations are idempotent.
	require.NoError(t, Migrate(ctx, db))

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM run_attempts").Scan(&n))
	assert.Zero(t, n)
}
