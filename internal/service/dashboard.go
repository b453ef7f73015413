package service

import (
	"context"

	"github.com/iliyamo/carbon-tracker/internal/model"
	"github.com/iliyamo/carbon-tracker/internal/session"
)

// DashboardView is the landing page payload of an authenticated session.
type DashboardView struct {
	Username        string              `json:"username"`
	Role            model.Role          `json:"role"`
	Entries         []model.Entry       `json:"entries"`
	CumulativeTotal float64             `json:"cumulative_total"`
	Summary         model.LedgerSummary `json:"summary"`
}

// Dashboard assembles the landing page and records the session's first
// page view.
type Dashboard struct {
	ledger   *Ledger
	sessions session.Store
	events   EventLogger
}

// NewDashboard wires the landing page.  events may be nil.
func NewDashboard(ledger *Ledger, sessions session.Store, events EventLogger) *Dashboard {
	return &Dashboard{ledger: ledger, sessions: sessions, events: events}
}

// View loads the ledger of sess.  Only the first call per session logs a
// page_view event.
func (d *Dashboard) View(ctx context.Context, sess *session.Session) (*DashboardView, error) {
	entries, err := d.ledger.ListEntries(ctx, sess.AccountID)
	if err != nil {
		return nil, err
	}
	first, err := d.sessions.MarkPageViewed(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if first && d.events != nil {
		d.events.LogEvent(ctx, idPtr(sess.AccountID), model.EventPageView, "dashboard")
	}
	summary := Summarize(entries)
	return &DashboardView{
		Username:        sess.Username,
		Role:            sess.Role,
		Entries:         entries,
		CumulativeTotal: summary.CumulativeTotal,
		Summary:         summary,
	}, nil
}
