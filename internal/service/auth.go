package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/carbon-tracker/internal/metrics"
	"github.com/iliyamo/carbon-tracker/internal/model"
	"github.com/iliyamo/carbon-tracker/internal/repository"
	"github.com/iliyamo/carbon-tracker/internal/session"
	"github.com/iliyamo/carbon-tracker/internal/utils"
)

// TokenSettings configures token signing and lifetimes.
type TokenSettings struct {
	Secret         string
	AccessTTLMin   int
	RefreshTTLDays int
}

// TokenPair is returned on login and refresh.
type TokenPair struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// LoginResult is a successful login: the account, its new session and the
// tokens bound to that session.
type LoginResult struct {
	Account *model.Account
	Session *session.Session
	Tokens  TokenPair
}

// Auth drives the session lifecycle on top of the credential store.
type Auth struct {
	accounts *Accounts
	tokens   TokenStore
	sessions session.Store
	events   EventLogger
	metrics  *metrics.Metrics
	cfg      TokenSettings
	now      Clock
}

// NewAuth wires the session lifecycle.  events and m may be nil.
func NewAuth(accounts *Accounts, tokens TokenStore, sessions session.Store, events EventLogger, m *metrics.Metrics, cfg TokenSettings) *Auth {
	return &Auth{accounts: accounts, tokens: tokens, sessions: sessions, events: events, metrics: m, cfg: cfg, now: utcNow}
}

// WithClock replaces the clock used for token issue and expiry.
func (s *Auth) WithClock(now Clock) *Auth {
	s.now = now
	return s
}

func (s *Auth) logEvent(ctx context.Context, accountID *uint64, kind, detail string) {
	if s.events != nil {
		s.events.LogEvent(ctx, accountID, kind, detail)
	}
}

// Register creates an account and records a register event.
func (s *Auth) Register(ctx context.Context, username, password string) (*model.Account, error) {
	a, err := s.accounts.Register(ctx, username, password)
	if err != nil {
		return nil, err
	}
	s.logEvent(ctx, idPtr(a.ID), model.EventRegister, "")
	return a, nil
}

// Login authenticates and moves the caller from Anonymous to
// Authenticated: a session is created and tokens bound to it are issued.
func (s *Auth) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	a, err := s.accounts.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrAuthenticationFailure) {
			s.metrics.Login(false)
			s.logEvent(ctx, nil, model.EventLoginFailed, "")
		}
		return nil, err
	}

	now := s.now()
	sess := &session.Session{
		AccountID: a.ID,
		Username:  a.Username,
		Role:      a.Role,
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	pair, err := s.issue(ctx, sess, now)
	if err != nil {
		_ = s.sessions.Delete(ctx, sess.ID)
		return nil, err
	}

	s.metrics.Login(true)
	s.logEvent(ctx, idPtr(a.ID), model.EventLogin, "")
	return &LoginResult{Account: a, Session: sess, Tokens: pair}, nil
}

// Refresh rotates a refresh token.  The old token is revoked; the session
// must still exist.
func (s *Auth) Refresh(ctx context.Context, raw string) (*TokenPair, error) {
	now := s.now()
	hash := utils.HashRefreshRaw(raw)
	grant, err := s.tokens.ValidateRefresh(ctx, hash, now)
	if errors.Is(err, repository.ErrTokenInvalid) {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(ctx, grant.SessionID)
	if errors.Is(err, session.ErrNotFound) {
		_ = s.tokens.RevokeSession(ctx, grant.SessionID, now)
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, err
	}
	if sess.AccountID != grant.UserID {
		return nil, ErrSessionInvalid
	}
	if err := s.tokens.RevokeByHash(ctx, hash, now); err != nil {
		return nil, err
	}
	pair, err := s.issue(ctx, sess, now)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// Logout ends sess: it is deleted from the store and every refresh token
// issued for it is revoked.
func (s *Auth) Logout(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return ErrSessionInvalid
	}
	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := s.tokens.RevokeSession(ctx, sess.ID, s.now()); err != nil {
		return fmt.Errorf("revoke session tokens: %w", err)
	}
	s.logEvent(ctx, idPtr(sess.AccountID), model.EventLogout, "")
	return nil
}

// Resolve maps a raw access token to its live session.  Tokens of a logged
// out session are rejected even before they expire.
func (s *Auth) Resolve(ctx context.Context, rawAccess string) (*session.Session, error) {
	claims, err := utils.ParseAccessToken(s.cfg.Secret, rawAccess, s.now())
	if err != nil {
		return nil, ErrSessionInvalid
	}
	accountID, _ := claims.AccountID()
	sess, err := s.sessions.Get(ctx, claims.SessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, err
	}
	if sess.AccountID != accountID {
		return nil, ErrSessionInvalid
	}
	return sess, nil
}

func (s *Auth) issue(ctx context.Context, sess *session.Session, now time.Time) (TokenPair, error) {
	access, err := utils.NewAccessToken(s.cfg.Secret, sess.AccountID, sess.ID, string(sess.Role), s.cfg.AccessTTLMin, now)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays, now)
	if err != nil {
		return TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.tokens.StoreRefresh(ctx, sess.AccountID, sess.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}
	return TokenPair{
		AccessToken:      access.Token,
		AccessExpiresAt:  access.Exp,
		RefreshToken:     refresh.Raw,
		RefreshExpiresAt: refresh.Exp,
	}, nil
}
