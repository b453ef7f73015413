// Package service holds the business operations behind the HTTP handlers
// and the admin CLI.  Services depend on small storage interfaces so tests
// can run against an in-memory SQLite database or a stub.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/carbon-tracker/internal/emissions"
	"github.com/iliyamo/carbon-tracker/internal/model"
	"github.com/iliyamo/carbon-tracker/internal/repository"
)

// Errors surfaced to callers.  Handlers map them with errors.Is.
var (
	ErrInvalidInput          = emissions.ErrInvalidInput
	ErrDuplicateUsername     = repository.ErrDuplicateUsername
	ErrAccountNotFound       = repository.ErrAccountNotFound
	ErrAuthenticationFailure = errors.New("invalid username or password")
	ErrSessionInvalid        = errors.New("session expired or invalid")
)

// AccountStore is the subset of the users repository the services need.
type AccountStore interface {
	Create(ctx context.Context, a *model.Account) error
	GetByUsername(ctx context.Context, username string) (*model.Account, error)
	GetByID(ctx context.Context, id uint64) (*model.Account, error)
	Exists(ctx context.Context, id uint64) (bool, error)
	List(ctx context.Context) ([]model.Account, error)
	SetRole(ctx context.Context, username string, role model.Role) error
}

// EntryStore persists ledger entries.
type EntryStore interface {
	Create(ctx context.Context, e *model.Entry) error
	ListByAccount(ctx context.Context, accountID uint64) ([]model.Entry, error)
}

// EventStore is the append-only usage log.
type EventStore interface {
	Append(ctx context.Context, ev *model.Event) error
	CountByKindPerAccount(ctx context.Context, kind string) (map[uint64]int, error)
	Recent(ctx context.Context, limit int) ([]model.Event, error)
	Clear(ctx context.Context) (int64, error)
}

// TokenStore persists hashed refresh tokens.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, sessionID, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (repository.RefreshGrant, error)
	RevokeByHash(ctx context.Context, tokenHash string, now time.Time) error
	RevokeSession(ctx context.Context, sessionID string, now time.Time) error
}

// EventLogger records usage events without reporting failure.
type EventLogger interface {
	LogEvent(ctx context.Context, accountID *uint64, kind, detail string)
}

// Clock returns the current time.  Every service defaults to UTC wall time.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

func idPtr(id uint64) *uint64 { return &id }
