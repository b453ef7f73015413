package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/carbon-tracker/internal/database"
	"github.com/iliyamo/carbon-tracker/internal/model"
)

func TestUserRepo_CreateAndGet(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	ctx := context.Background()

	a := mustCreateUser(t, r, "alice")
	assert.NotZero(t, a.ID)
	assert.Equal(t, model.RoleUser, a.Role)

	got, err := r.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, "hash-alice", got.PasswordHash)
	assert.True(t, got.CreatedAt.Equal(t0))

	byID, err := r.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = r.GetByUsername(ctx, "Alice")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestUserRepo_DuplicateUsername(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	ctx := context.Background()
	mustCreateUser(t, r, "alice")

	err := r.Create(ctx, &model.Account{Username: "alice", PasswordHash: "x", CreatedAt: t0})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUserRepo_ExistsAndRole(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	ctx := context.Background()
	a := mustCreateUser(t, r, "bob")

	ok, err := r.Exists(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.Exists(ctx, a.ID+100)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.SetRole(ctx, "bob", model.RoleAdmin))
	got, err := r.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, got.Role)

	assert.ErrorIs(t, r.SetRole(ctx, "nobody", model.RoleAdmin), ErrAccountNotFound)
}

func TestUserRepo_ListEmpty(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	all, err := r.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestUserRepo_MySQLPaths(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	r := NewUserRepo(&database.DB{DB: sqlDB, Dialect: database.MySQL})
	ctx := context.Background()

	insert := regexp.QuoteMeta("INSERT INTO users (username, password_hash, role, created_at) VALUES (?, ?, ?, ?)")
	mock.ExpectExec(insert).
		WithArgs("carol", "h", "user", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(insert).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'carol'"})
	mock.ExpectExec(insert).
		WillReturnError(errors.New("connection reset"))

	a := &model.Account{Username: "carol", PasswordHash: "h", CreatedAt: t0}
	require.NoError(t, r.Create(ctx, a))
	assert.Equal(t, uint64(7), a.ID)

	err = r.Create(ctx, &model.Account{Username: "carol", PasswordHash: "h", CreatedAt: t0})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	err = r.Create(ctx, &model.Account{Username: "dave", PasswordHash: "h", CreatedAt: t0})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateUsername)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepo_PostgresDuplicate(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	r := NewUserRepo(&database.DB{DB: sqlDB, Dialect: database.Postgres})

	mock.ExpectQuery(regexp.QuoteMeta(
		"INSERT INTO users (username, password_hash, role, created_at) VALUES ($1, $2, $3, $4) RETURNING id")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = r.Create(context.Background(), &model.Account{Username: "erin", PasswordHash: "h", CreatedAt: t0})
	assert.ErrorIs(t, err, ErrDuplicateUsername)
	require.NoError(t, mock.ExpectationsWereMet())
}
