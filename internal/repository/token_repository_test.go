package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRepo_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	u := mustCreateUser(t, NewUserRepo(db), "tok")
	tokens := NewTokenRepo(db)
	ctx := context.Background()

	require.NoError(t, tokens.StoreRefresh(ctx, u.ID, "sess-1", "hash-a", t0.Add(time.Hour)))
	require.NoError(t, tokens.StoreRefresh(ctx, u.ID, "sess-1", "hash-b", t0.Add(time.Hour)))
	require.NoError(t, tokens.StoreRefresh(ctx, u.ID, "sess-2", "hash-c", t0.Add(time.Hour)))

	g, err := tokens.ValidateRefresh(ctx, "hash-a", t0)
	require.NoError(t, err)
	assert.Equal(t, RefreshGrant{UserID: u.ID, SessionID: "sess-1"}, g)

	_, err = tokens.ValidateRefresh(ctx, "hash-a", t0.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = tokens.ValidateRefresh(ctx, "unknown", t0)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	require.NoError(t, tokens.RevokeByHash(ctx, "hash-a", t0))
	_, err = tokens.ValidateRefresh(ctx, "hash-a", t0)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	require.NoError(t, tokens.RevokeSession(ctx, "sess-1", t0))
	_, err = tokens.ValidateRefresh(ctx, "hash-b", t0)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = tokens.ValidateRefresh(ctx, "hash-c", t0)
	assert.NoError(t, err)
}
