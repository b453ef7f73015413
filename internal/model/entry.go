package model

import (
	"time"

	"github.com/iliyamo/carbon-tracker/internal/emissions"
)

// DateLayout is the ISO-8601 calendar date format used for entry dates.
const DateLayout = "2006-01-02"

// Entry mirrors the `entries` table: one submission with its raw activity
// quantities and the emissions derived from them at write time.
type Entry struct {
	ID        uint64 `json:"id"`
	AccountID uint64 `json:"user_id"`
	Date      string `json:"date"`
	emissions.Activity
	emissions.Emissions
	CreatedAt time.Time `json:"created_at"`
}

// DailyTotal is the summed total emission of one calendar date.
type DailyTotal struct {
	Date  string  `json:"date"`
	Total float64 `json:"total_emission"`
}

// LedgerSummary aggregates every entry of one account.
type LedgerSummary struct {
	Entries         int                 `json:"entries"`
	CumulativeTotal float64             `json:"cumulative_total"`
	ByChannel       emissions.Emissions `json:"by_channel"`
	FirstDate       string              `json:"first_date,omitempty"`
	LastDate        string              `json:"last_date,omitempty"`
}
