// Package session holds per-login state that the original UI kept in
// globals: who is logged in and whether this session's first page view has
// been recorded.  A request is Anonymous until a valid session is found for
// its access token; logout deletes the session and the request state falls
// back to Anonymous.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/carbon-tracker/internal/model"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// State is the session-level state machine: Anonymous -> Authenticated on
// login, Authenticated -> Anonymous on logout.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Session is the server-side record of one login.
type Session struct {
	ID             string     `json:"id"`
	AccountID      uint64     `json:"user_id"`
	Username       string     `json:"username"`
	Role           model.Role `json:"role"`
	PageViewLogged bool       `json:"page_view_logged"`
	CreatedAt      time.Time  `json:"created_at"`
}

// StateOf returns Authenticated for a non-nil session with an account.
func StateOf(s *Session) State {
	if s == nil || s.AccountID == 0 {
		return Anonymous
	}
	return Authenticated
}

// Store persists sessions.  Implementations must make MarkPageViewed atomic:
// exactly one caller per session observes first == true.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	MarkPageViewed(ctx context.Context, id string) (first bool, err error)
	Delete(ctx context.Context, id string) error
}
