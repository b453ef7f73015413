package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/carbon-tracker/internal/database"
	"github.com/iliyamo/carbon-tracker/internal/emissions"
	"github.com/iliyamo/carbon-tracker/internal/model"
)

func newEntry(accountID uint64, date string, a emissions.Activity) *model.Entry {
	return &model.Entry{
		AccountID: accountID,
		Date:      date,
		Activity:  a,
		Emissions: emissions.Calculate(a),
		CreatedAt: t0,
	}
}

func TestEntryRepo_CreateAndListOrdered(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)
	entries := NewEntryRepo(db)
	ctx := context.Background()
	bob := mustCreateUser(t, users, "bob")
	other := mustCreateUser(t, users, "other")

	first := newEntry(bob.ID, "2024-01-02", emissions.Activity{CarKm: 1})
	second := newEntry(bob.ID, "2024-01-01", emissions.Activity{CarKm: 10, ElectricityKWh: 5, MeatMeals: 1, VegMeals: 1})
	third := newEntry(bob.ID, "2024-01-01", emissions.Activity{})
	for _, e := range []*model.Entry{first, second, third, newEntry(other.ID, "2023-12-31", emissions.Activity{BusKm: 3})} {
		require.NoError(t, entries.Create(ctx, e))
		assert.NotZero(t, e.ID)
	}

	got, err := entries.ListByAccount(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []uint64{second.ID, third.ID, first.ID}, []uint64{got[0].ID, got[1].ID, got[2].ID})
	assert.InDelta(t, 12.85, got[0].Total, 1e-9)
	assert.InDelta(t, 4.25, got[0].Electricity, 1e-9)
	assert.Equal(t, 10.0, got[0].CarKm)
	assert.Equal(t, bob.ID, got[0].AccountID)
	assert.True(t, got[0].CreatedAt.Equal(t0))
}

func TestEntryRepo_ListEmpty(t *testing.T) {
	db := newTestDB(t)
	a := mustCreateUser(t, NewUserRepo(db), "fresh")
	got, err := NewEntryRepo(db).ListByAccount(context.Background(), a.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestEntryRepo_UnknownAccount(t *testing.T) {
	entries := NewEntryRepo(newTestDB(t))
	err := entries.Create(context.Background(), newEntry(999, "2024-01-01", emissions.Activity{}))
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestEntryRepo_MySQLForeignKey(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	r := NewEntryRepo(&database.DB{DB: sqlDB, Dialect: database.MySQL})

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO entries")).
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"})

	err = r.Create(context.Background(), newEntry(5, "2024-01-01", emissions.Activity{}))
	assert.ErrorIs(t, err, ErrAccountNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
