package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/carbon-tracker/internal/database"
	"github.com/iliyamo/carbon-tracker/internal/model"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = database.Migrate(context.Background(), db)
	require.NoError(t, err)
	return db
}

func mustCreateUser(t *testing.T, r *UserRepo, name string) *model.Account {
	t.Helper()
	a := &model.Account{Username: name, PasswordHash: "hash-" + name, CreatedAt: t0}
	require.NoError(t, r.Create(context.Background(), a))
	return a
}
