package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/carbon-tracker/internal/database"
	"github.com/iliyamo/carbon-tracker/internal/model"
	"github.com/iliyamo/carbon-tracker/internal/repository"
	"github.com/iliyamo/carbon-tracker/internal/session"
)

const testSecret = "test-secret"

// fixedClock returns a clock starting at t that can be advanced.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type env struct {
	db        *database.DB
	clock     *fixedClock
	users     *repository.UserRepo
	eventRepo *repository.EventRepo
	sessions  *session.MemoryStore
	accounts  *Accounts
	events    *Events
	ledger    *Ledger
	auth      *Auth
	dashboard *Dashboard
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = database.Migrate(context.Background(), db)
	require.NoError(t, err)

	clock := &fixedClock{t: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	users := repository.NewUserRepo(db)
	eventRepo := repository.NewEventRepo(db)
	sessions := session.NewMemoryStore(24*time.Hour, clock.Now)

	accounts := NewAccounts(users, bcrypt.MinCost).WithClock(clock.Now)
	events := NewEvents(eventRepo, users, nil, nil).WithClock(clock.Now)
	ledger := NewLedger(users, repository.NewEntryRepo(db), events, nil).WithClock(clock.Now)
	auth := NewAuth(accounts, repository.NewTokenRepo(db), sessions, events, nil, TokenSettings{
		Secret: testSecret, AccessTTLMin: 15, RefreshTTLDays: 7,
	}).WithClock(clock.Now)

	return &env{
		db: db, clock: clock, users: users, eventRepo: eventRepo, sessions: sessions,
		accounts: accounts, events: events, ledger: ledger, auth: auth,
		dashboard: NewDashboard(ledger, sessions, events),
	}
}

func (e *env) register(t *testing.T, name, password string) *model.Account {
	t.Helper()
	a, err := e.auth.Register(context.Background(), name, password)
	require.NoError(t, err)
	return a
}

func (e *env) eventsOfKind(t *testing.T, kind string) []model.Event {
	t.Helper()
	all, err := e.eventRepo.Recent(context.Background(), MaxRecentEvents)
	require.NoError(t, err)
	var out []model.Event
	for _, ev := range all {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
