package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/carbon-tracker/internal/model"
)

func TestEventRepo_AppendRecentAndCounts(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)
	events := NewEventRepo(db)
	ctx := context.Background()
	a := mustCreateUser(t, users, "a")
	b := mustCreateUser(t, users, "b")
	mustCreateUser(t, users, "c")

	add := func(id *uint64, kind string, offset time.Duration) *model.Event {
		ev := &model.Event{AccountID: id, Kind: kind, Timestamp: t0.Add(offset)}
		require.NoError(t, events.Append(ctx, ev))
		return ev
	}
	add(&a.ID, model.EventRegister, 0)
	add(&a.ID, model.EventLogin, time.Second)
	add(&a.ID, model.EventLogin, 2*time.Second)
	add(&b.ID, model.EventLogin, 3*time.Second)
	add(nil, model.EventLoginFailed, 4*time.Second)
	last := add(&b.ID, model.EventPageView, 5*time.Second)

	counts, err := events.CountByKindPerAccount(ctx, model.EventLogin)
	require.NoError(t, err)
	assert.Equal(t, map[uint64]int{a.ID: 2, b.ID: 1}, counts)

	recent, err := events.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, last.ID, recent[0].ID)
	assert.Equal(t, model.EventLoginFailed, recent[1].Kind)
	assert.Nil(t, recent[1].AccountID)
	require.NotNil(t, recent[2].AccountID)
	assert.Equal(t, b.ID, *recent[2].AccountID)
	assert.True(t, recent[0].Timestamp.Equal(t0.Add(5*time.Second)))

	n, err := events.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
	recent, err = events.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestEventRepo_SameTimestampNewestIDFirst(t *testing.T) {
	db := newTestDB(t)
	events := NewEventRepo(db)
	ctx := context.Background()
	e1 := &model.Event{Kind: "x", Timestamp: t0}
	e2 := &model.Event{Kind: "y", Timestamp: t0}
	require.NoError(t, events.Append(ctx, e1))
	require.NoError(t, events.Append(ctx, e2))

	recent, err := events.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, e2.ID, recent[0].ID)
}

func TestEventRepo_UnknownAccount(t *testing.T) {
	events := NewEventRepo(newTestDB(t))
	missing := uint64(77)
	err := events.Append(context.Background(), &model.Event{AccountID: &missing, Kind: "login", Timestamp: t0})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
