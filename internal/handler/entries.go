package handler

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/carbon-tracker/internal/emissions"
	"github.com/iliyamo/carbon-tracker/internal/report"
	"github.com/iliyamo/carbon-tracker/internal/service"
)

// EntryHandler serves the caller's own ledger.
type EntryHandler struct {
	Ledger *service.Ledger
}

func NewEntryHandler(l *service.Ledger) *EntryHandler {
	return &EntryHandler{Ledger: l}
}

// entryReq is the submission body.  Missing quantities count as zero and a
// missing date means today (UTC).
type entryReq struct {
	Date string `json:"date"`
	emissions.Activity
}

// Create validates and records one entry; 201 with the stored entry.
func (h *EntryHandler) Create(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return errorJSON(c, err, "create entry failed")
	}
	var req entryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	e, err := h.Ledger.AddEntry(ctx, sess.AccountID, req.Date, req.Activity)
	if err != nil {
		return errorJSON(c, err, "create entry failed")
	}
	return c.JSON(http.StatusCreated, e)
}

// List returns the caller's history oldest first with its cumulative total.
func (h *EntryHandler) List(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return errorJSON(c, err, "list entries failed")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	entries, err := h.Ledger.ListEntries(ctx, sess.AccountID)
	if err != nil {
		return errorJSON(c, err, "list entries failed")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"entries":          entries,
		"cumulative_total": service.Summarize(entries).CumulativeTotal,
	})
}

// Summary returns count, cumulative total and per-channel sums.
func (h *EntryHandler) Summary(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return errorJSON(c, err, "summary failed")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	s, err := h.Ledger.Summary(ctx, sess.AccountID)
	if err != nil {
		return errorJSON(c, err, "summary failed")
	}
	return c.JSON(http.StatusOK, s)
}

// Chart renders the daily totals as an HTML line chart.
func (h *EntryHandler) Chart(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return errorJSON(c, err, "chart failed")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	days, err := h.Ledger.DailyTotals(ctx, sess.AccountID)
	if err != nil {
		return errorJSON(c, err, "chart failed")
	}
	var buf bytes.Buffer
	if err := report.RenderDailyChart(&buf, sess.Username, days); err != nil {
		return errorJSON(c, err, "chart failed")
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
