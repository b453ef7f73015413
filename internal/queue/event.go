// Package queue defines the usage-event payload and publishes it to the
// message broker.  Nothing in this service consumes the queue.
package queue

import (
	"github.com/iliyamo/carbon-tracker/internal/model"
)

// UsageEvent is published for every stored usage-log row.  It carries
// enough for downstream analytics without reading the primary database.
type UsageEvent struct {
	EventID   uint64  `json:"event_id"`
	UserID    *uint64 `json:"user_id"`
	Kind      string  `json:"kind"`
	Detail    string  `json:"detail,omitempty"`
	Timestamp string  `json:"timestamp"`
}

// NewUsageEvent converts a stored event into its wire form.
func NewUsageEvent(ev model.Event) UsageEvent {
	return UsageEvent{
		EventID:   ev.ID,
		UserID:    ev.AccountID,
		Kind:      ev.Kind,
		Detail:    ev.Detail,
		Timestamp: model.FormatTimestamp(ev.Timestamp),
	}
}
