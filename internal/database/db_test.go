package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	q := "SELECT id FROM users WHERE username = ? AND role <> '?' AND id > ?"
	assert.Equal(t, q, MySQL.Rebind(q))
	assert.Equal(t, q, SQLite.Rebind(q))
	assert.Equal(t, "SELECT id FROM users WHERE username = $1 AND role <> '?' AND id > $2", Postgres.Rebind(q))
}

func TestSupportsReturning(t *testing.T) {
	assert.False(t, MySQL.SupportsReturning())
	assert.True(t, Postgres.SupportsReturning())
	assert.True(t, SQLite.SupportsReturning())
}

func TestMigrateSQLite(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	applied, err := Migrate(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, applied)

	for _, table := range []string{"users", "entries", "events", "refresh_tokens"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, table)
	}

	again, err := Migrate(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestSQLiteEnforcesForeignKeys(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = Migrate(context.Background(), db)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO entries (user_id, date, created_at) VALUES (42, '2024-01-01', 'x')`)
	require.Error(t, err)
}

func TestMigrationsEmbeddedForEveryDialect(t *testing.T) {
	for _, d := range []Dialect{MySQL, Postgres, SQLite} {
		entries, err := migrations.ReadDir(d.migrationDir())
		require.NoError(t, err, d)
		assert.NotEmpty(t, entries, d)
	}
}
