package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/carbon-tracker/internal/emissions"
	"github.com/iliyamo/carbon-tracker/internal/metrics"
	"github.com/iliyamo/carbon-tracker/internal/model"
)

// Ledger records emission entries per account and reports over them.
type Ledger struct {
	users   AccountStore
	entries EntryStore
	events  EventLogger
	metrics *metrics.Metrics
	now     Clock
}

// NewLedger wires a ledger.  events and m may be nil.
func NewLedger(users AccountStore, entries EntryStore, events EventLogger, m *metrics.Metrics) *Ledger {
	return &Ledger{users: users, entries: entries, events: events, metrics: m, now: utcNow}
}

// WithClock replaces the clock used for default dates and created_at.
func (l *Ledger) WithClock(now Clock) *Ledger {
	l.now = now
	return l
}

// NormalizeDate validates an ISO calendar date.  An empty string becomes
// today's UTC date.
func NormalizeDate(date string, now time.Time) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return now.UTC().Format(model.DateLayout), nil
	}
	t, err := time.Parse(model.DateLayout, date)
	if err != nil || t.Format(model.DateLayout) != date {
		return "", fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return date, nil
}

// AddEntry validates the activity, derives its emissions and stores raw and
// derived values in one insert.  Nothing is written on validation failure.
func (l *Ledger) AddEntry(ctx context.Context, accountID uint64, date string, a emissions.Activity) (*model.Entry, error) {
	now := l.now()
	date, err := NormalizeDate(date, now)
	if err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	ok, err := l.users.Exists(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAccountNotFound
	}

	e := &model.Entry{
		AccountID: accountID,
		Date:      date,
		Activity:  a,
		Emissions: emissions.Calculate(a),
		CreatedAt: now,
	}
	if err := l.entries.Create(ctx, e); err != nil {
		return nil, err
	}

	l.metrics.EntryAdded(e.Total)
	if l.events != nil {
		l.events.LogEvent(ctx, idPtr(accountID), model.EventEntryAdded,
			fmt.Sprintf("date=%s total=%.4f", e.Date, e.Total))
	}
	return e, nil
}

// ListEntries returns the account's entries oldest first.
func (l *Ledger) ListEntries(ctx context.Context, accountID uint64) ([]model.Entry, error) {
	return l.entries.ListByAccount(ctx, accountID)
}

// CumulativeTotal sums total_emission over every entry of the account.
func (l *Ledger) CumulativeTotal(ctx context.Context, accountID uint64) (float64, error) {
	entries, err := l.ListEntries(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return sumTotals(entries), nil
}

// Summary aggregates count, cumulative total and per-channel sums.
func (l *Ledger) Summary(ctx context.Context, accountID uint64) (model.LedgerSummary, error) {
	entries, err := l.ListEntries(ctx, accountID)
	if err != nil {
		return model.LedgerSummary{}, err
	}
	return Summarize(entries), nil
}

// DailyTotals returns the summed total per date, oldest first.
func (l *Ledger) DailyTotals(ctx context.Context, accountID uint64) ([]model.DailyTotal, error) {
	entries, err := l.ListEntries(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return dailyTotals(entries), nil
}

// Summarize folds entries that are already ordered by date.
func Summarize(entries []model.Entry) model.LedgerSummary {
	s := model.LedgerSummary{Entries: len(entries)}
	for _, e := range entries {
		s.ByChannel.Car += e.Car
		s.ByChannel.Bike += e.Bike
		s.ByChannel.Bus += e.Bus
		s.ByChannel.Electricity += e.Electricity
		s.ByChannel.Food += e.Food
		s.ByChannel.Total += e.Total
	}
	s.CumulativeTotal = s.ByChannel.Total
	if len(entries) > 0 {
		s.FirstDate = entries[0].Date
		s.LastDate = entries[len(entries)-1].Date
	}
	return s
}

func sumTotals(entries []model.Entry) float64 {
	var total float64
	for _, e := range entries {
		total += e.Total
	}
	return total
}

// dailyTotals relies on entries being sorted by date.
func dailyTotals(entries []model.Entry) []model.DailyTotal {
	out := []model.DailyTotal{}
	for _, e := range entries {
		if n := len(out); n > 0 && out[n-1].Date == e.Date {
			out[n-1].Total += e.Total
			continue
		}
		out = append(out, model.DailyTotal{Date: e.Date, Total: e.Total})
	}
	return out
}
