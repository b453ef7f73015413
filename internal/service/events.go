package service

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/iliyamo/carbon-tracker/internal/logging"
	"github.com/iliyamo/carbon-tracker/internal/metrics"
	"github.com/iliyamo/carbon-tracker/internal/model"
)

// Limits applied to RecentEvents.
const (
	DefaultRecentEvents = 50
	MaxRecentEvents     = 500
)

// Publisher fans stored events out to a broker.
type Publisher interface {
	Publish(ctx context.Context, ev model.Event) error
}

// Events is the usage log plus the admin reports built on it.
type Events struct {
	store     EventStore
	users     AccountStore
	publisher Publisher
	onChange  func(ctx context.Context) error
	logger    *log.Logger
	metrics   *metrics.Metrics
	now       Clock
}

// NewEvents wires the usage log.  A nil logger discards output.
func NewEvents(store EventStore, users AccountStore, logger *log.Logger, m *metrics.Metrics) *Events {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Events{store: store, users: users, logger: logger, metrics: m, now: utcNow}
}

// WithPublisher enables broker fan-out of stored events.
func (s *Events) WithPublisher(p Publisher) *Events {
	s.publisher = p
	return s
}

// OnChange registers fn to run after the log gains or loses rows.  The
// server uses it to drop cached admin reports.
func (s *Events) OnChange(fn func(ctx context.Context) error) *Events {
	s.onChange = fn
	return s
}

func (s *Events) changed(ctx context.Context) {
	if s.onChange == nil {
		return
	}
	if err := s.onChange(ctx); err != nil {
		s.logger.Warn("event log change hook failed", "err", err)
	}
}

// WithClock replaces the clock used for event timestamps.
func (s *Events) WithClock(now Clock) *Events {
	s.now = now
	return s
}

// LogEvent appends one event.  Failures are logged and swallowed: the user
// action that triggered the event has already succeeded.
func (s *Events) LogEvent(ctx context.Context, accountID *uint64, kind, detail string) {
	ev := model.Event{AccountID: accountID, Kind: kind, Detail: detail, Timestamp: s.now()}
	if err := s.store.Append(ctx, &ev); err != nil {
		s.metrics.EventLogged(kind, false)
		s.logger.Warn("event log append failed", "kind", kind, "err", err)
		return
	}
	s.metrics.EventLogged(kind, true)
	s.changed(ctx)

	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("event publish failed", "kind", kind, "event_id", ev.ID, "err", err)
	}
}

// LoginCounts maps account id to its number of login events.  Accounts
// that never logged in are absent.
func (s *Events) LoginCounts(ctx context.Context) (map[uint64]int, error) {
	return s.store.CountByKindPerAccount(ctx, model.EventLogin)
}

// ClampLimit maps a requested limit onto 1..MaxRecentEvents, with
// DefaultRecentEvents for zero or negative values.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultRecentEvents
	case limit > MaxRecentEvents:
		return MaxRecentEvents
	default:
		return limit
	}
}

// RecentEvents returns the newest events first, at most ClampLimit(limit).
func (s *Events) RecentEvents(ctx context.Context, limit int) ([]model.Event, error) {
	return s.store.Recent(ctx, ClampLimit(limit))
}

// ClearEvents deletes the whole usage log.
func (s *Events) ClearEvents(ctx context.Context) (int64, error) {
	n, err := s.store.Clear(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("event log cleared", "rows", n)
	s.changed(ctx)
	return n, nil
}

// ListAccounts returns every account with its login count, zero included.
func (s *Events) ListAccounts(ctx context.Context) ([]model.AccountUsage, error) {
	accounts, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.LoginCounts(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.AccountUsage, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, model.AccountUsage{Account: a, Logins: counts[a.ID]})
	}
	return out, nil
}
