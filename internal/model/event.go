package model

import "time"

// Event kinds written by the service.  Kind is free-form in storage; these
// are the values this codebase produces and reports on.
const (
	EventRegister    = "register"
	EventLogin       = "login"
	EventLoginFailed = "login_failed"
	EventLogout      = "logout"
	EventPageView    = "page_view"
	EventEntryAdded  = "entry_added"
)

// Event is one append-only usage-log row.  AccountID is nil for anonymous
// events such as failed logins.
type Event struct {
	ID        uint64    `json:"id"`
	AccountID *uint64   `json:"user_id"`
	Kind      string    `json:"kind"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AccountUsage is an account row joined with its login count for the admin
// report.
type AccountUsage struct {
	Account
	Logins int `json:"logins"`
}
