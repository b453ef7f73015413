package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/iliyamo/carbon-tracker/internal/model"
	"github.com/iliyamo/carbon-tracker/internal/utils"
)

// MaxUsernameLength matches the width of users.username.
const MaxUsernameLength = 191

// Accounts is the credential store: registration, authentication and role
// changes.
type Accounts struct {
	users AccountStore
	cost  int
	now   Clock
}

// NewAccounts returns a credential store hashing with bcrypt at cost.
func NewAccounts(users AccountStore, cost int) *Accounts {
	return &Accounts{users: users, cost: cost, now: utcNow}
}

// WithClock replaces the clock used for created_at.
func (s *Accounts) WithClock(now Clock) *Accounts {
	s.now = now
	return s
}

// Register trims both credentials, hashes the password and inserts the
// account with the user role.  Uniqueness is left to the database
// constraint so two concurrent registrations cannot both succeed.
func (s *Accounts) Register(ctx context.Context, username, password string) (*model.Account, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return nil, fmt.Errorf("%w: username is longer than %d characters", ErrInvalidInput, MaxUsernameLength)
	}

	hash, err := utils.HashPassword(password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	a := &model.Account{
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, a); err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	return a, nil
}

// Authenticate checks a username/password pair.  Unknown usernames and
// wrong passwords both return ErrAuthenticationFailure after the same
// bcrypt work; storage failures are returned as-is.
func (s *Accounts) Authenticate(ctx context.Context, username, password string) (*model.Account, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	a, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, ErrAccountNotFound) {
		utils.BurnPasswordCheck(password, s.cost)
		return nil, ErrAuthenticationFailure
	}
	if err != nil {
		return nil, err
	}
	if !utils.VerifyPassword(a.PasswordHash, password) {
		return nil, ErrAuthenticationFailure
	}
	return a, nil
}

// Promote sets the role of an existing account.
func (s *Accounts) Promote(ctx context.Context, username string, role model.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	return s.users.SetRole(ctx, strings.TrimSpace(username), role)
}

// Get loads an account by id.
func (s *Accounts) Get(ctx context.Context, id uint64) (*model.Account, error) {
	return s.users.GetByID(ctx, id)
}

// Lookup loads an account by username.
func (s *Accounts) Lookup(ctx context.Context, username string) (*model.Account, error) {
	return s.users.GetByUsername(ctx, strings.TrimSpace(username))
}
