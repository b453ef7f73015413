package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/carbon-tracker/internal/database"
	"github.com/iliyamo/carbon-tracker/internal/model"
)

// TokenRepo persists/validates refresh tokens.  Only the SHA-256 hash of a
// token is stored; each row is bound to the session it was issued for.
type TokenRepo struct {
	db      DBTX
	dialect database.Dialect
}

func NewTokenRepo(db *database.DB) *TokenRepo {
	return &TokenRepo{db: db.DB, dialect: db.Dialect}
}

// RefreshGrant is what a valid refresh token resolves to.
type RefreshGrant struct {
	UserID    uint64
	SessionID string
}

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, sessionID, tokenHash string, exp time.Time) error {
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(
		"INSERT INTO refresh_tokens (user_id, session_id, token_hash, expires_at) VALUES (?, ?, ?, ?)"),
		userID, sessionID, tokenHash, model.FormatTimestamp(exp))
	return err
}

// ValidateRefresh returns the grant if a non-revoked, non-expired token
// exists for tokenHash.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string, now time.Time) (RefreshGrant, error) {
	var (
		g         RefreshGrant
		expiresAt string
		revokedAt sql.NullString
	)
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(
		"SELECT user_id, session_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash = ?"),
		tokenHash).Scan(&g.UserID, &g.SessionID, &expiresAt, &revokedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return RefreshGrant{}, ErrTokenInvalid
	}
	if err != nil {
		return RefreshGrant{}, err
	}
	if revokedAt.Valid {
		return RefreshGrant{}, ErrTokenInvalid
	}
	exp, err := model.ParseTimestamp(expiresAt)
	if err != nil || now.UTC().After(exp) {
		return RefreshGrant{}, ErrTokenInvalid
	}
	return g, nil
}

// RevokeByHash marks a token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(
		"UPDATE refresh_tokens SET revoked_at = ? WHERE token_hash = ? AND revoked_at IS NULL"),
		model.FormatTimestamp(now), tokenHash)
	return err
}

// RevokeSession revokes every active token issued for sessionID.
func (r *TokenRepo) RevokeSession(ctx context.Context, sessionID string, now time.Time) error {
	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(
		"UPDATE refresh_tokens SET revoked_at = ? WHERE session_id = ? AND revoked_at IS NULL"),
		model.FormatTimestamp(now), sessionID)
	return err
}
