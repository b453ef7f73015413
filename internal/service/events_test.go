package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/carbon-tracker/internal/model"
)

type recordingPublisher struct {
	got []model.Event
	err error
}

func (p *recordingPublisher) Publish(_ context.Context, ev model.Event) error {
	p.got = append(p.got, ev)
	return p.err
}

type failingEventStore struct{ EventStore }

func (failingEventStore) Append(context.Context, *model.Event) error {
	return errors.New("disk full")
}

func TestLogEvent_StoresAndPublishes(t *testing.T) {
	e := newEnv(t)
	a := e.register(t, "alice", "pw")
	pub := &recordingPublisher{}
	e.events.WithPublisher(pub)

	e.events.LogEvent(context.Background(), &a.ID, "custom_kind", "hello")

	got := e.eventsOfKind(t, "custom_kind")
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Detail)
	require.NotNil(t, got[0].AccountID)
	assert.Equal(t, a.ID, *got[0].AccountID)
	assert.True(t, e.clock.Now().Equal(got[0].Timestamp))

	require.Len(t, pub.got, 1)
	assert.Equal(t, got[0].ID, pub.got[0].ID)
}

func TestLogEvent_FailuresAreSwallowed(t *testing.T) {
	pub := &recordingPublisher{}
	ev := NewEvents(failingEventStore{}, nil, nil, nil).WithPublisher(pub)
	assert.NotPanics(t, func() { ev.LogEvent(context.Background(), nil, "login", "") })
	assert.Empty(t, pub.got, "unstored events are not published")

	e := newEnv(t)
	e.events.WithPublisher(&recordingPublisher{err: errors.New("broker down")})
	e.events.LogEvent(context.Background(), nil, "login_failed", "")
	assert.Len(t, e.eventsOfKind(t, "login_failed"), 1)

	missing := uint64(424242)
	e.events.LogEvent(context.Background(), &missing, "login", "")
	assert.Empty(t, e.eventsOfKind(t, "login"))
}

func TestLoginCountsAndListAccounts(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice", "pw")
	bob := e.register(t, "bob", "pw")
	e.register(t, "carol", "pw")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := e.auth.Login(ctx, "alice", "pw")
		require.NoError(t, err)
	}
	_, err := e.auth.Login(ctx, "bob", "pw")
	require.NoError(t, err)
	_, err = e.auth.Login(ctx, "bob", "nope")
	require.ErrorIs(t, err, ErrAuthenticationFailure)

	counts, err := e.events.LoginCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[uint64]int{alice.ID: 3, bob.ID: 1}, counts)

	usage, err := e.events.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 3)
	assert.Equal(t, "alice", usage[0].Username)
	assert.Equal(t, 3, usage[0].Logins)
	assert.Equal(t, 1, usage[1].Logins)
	assert.Equal(t, 0, usage[2].Logins)

	failed := e.eventsOfKind(t, model.EventLoginFailed)
	require.Len(t, failed, 1)
	assert.Nil(t, failed[0].AccountID)
}

func TestRecentEvents_NewestFirstAndTruncated(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for _, kind := range []string{"a", "b", "c", "d"} {
		e.events.LogEvent(ctx, nil, kind, "")
		e.clock.Advance(time.Minute)
	}

	got, err := e.events.RecentEvents(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d", got[0].Kind)
	assert.Equal(t, "c", got[1].Kind)

	got, err = e.events.RecentEvents(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultRecentEvents, ClampLimit(0))
	assert.Equal(t, DefaultRecentEvents, ClampLimit(-3))
	assert.Equal(t, 1, ClampLimit(1))
	assert.Equal(t, MaxRecentEvents, ClampLimit(MaxRecentEvents+1))
}

func TestClearEvents(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.events.LogEvent(ctx, nil, "a", "")
	e.events.LogEvent(ctx, nil, "b", "")

	n, err := e.events.ClearEvents(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err := e.events.RecentEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOnChangeRunsAfterEveryWrite(t *testing.T) {
	e := newEnv(t)
	calls := 0
	e.events.OnChange(func(context.Context) error {
		calls++
		return errors.New("redis down")
	})
	ctx := context.Background()

	_, err := e.auth.Register(ctx, "dave", "pw")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	_, err = e.auth.Login(ctx, "dave", "pw")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	_, err = e.events.ClearEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	failing := NewEvents(failingEventStore{}, nil, nil, nil).OnChange(func(context.Context) error {
		calls++
		return nil
	})
	failing.LogEvent(ctx, nil, "login", "")
	assert.Equal(t, 3, calls, "a failed append changes nothing")
}
