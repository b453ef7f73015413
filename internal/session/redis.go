package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/carbon-tracker/internal/model"
)

// RedisStore keeps each session in a Redis hash that expires with the
// refresh token lifetime.
type RedisStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore returns a store using keys "<prefix>:<id>".
func NewRedisStore(rdb *redis.Client, ttl time.Duration, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "carbon:session"
	}
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: prefix}
}

// markScript sets the page-view flag only on a live session.  Returns -1
// for a missing session, 1 when this call set the flag, 0 otherwise.
var markScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return -1
	end
	return redis.call('HSETNX', KEYS[1], 'page_view_logged', '1')
`)

func (r *RedisStore) key(id string) string { return r.prefix + ":" + id }

func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	k := r.key(s.ID)
	fields := map[string]any{
		"account_id": strconv.FormatUint(s.AccountID, 10),
		"username":   s.Username,
		"role":       string(s.Role),
		"created_at": model.FormatTimestamp(s.CreatedAt),
	}
	_, err := r.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, k, fields)
		if s.PageViewLogged {
			p.HSet(ctx, k, "page_view_logged", "1")
		}
		p.Expire(ctx, k, r.ttl)
		return nil
	})
	return err
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	vals, err := r.rdb.HGetAll(ctx, r.key(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, ErrNotFound
	}
	accountID, err := strconv.ParseUint(vals["account_id"], 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}
	s := &Session{
		ID:             id,
		AccountID:      accountID,
		Username:       vals["username"],
		Role:           model.Role(vals["role"]),
		PageViewLogged: vals["page_view_logged"] == "1",
	}
	if t, err := model.ParseTimestamp(vals["created_at"]); err == nil {
		s.CreatedAt = t
	}
	return s, nil
}

func (r *RedisStore) MarkPageViewed(ctx context.Context, id string) (bool, error) {
	n, err := markScript.Run(ctx, r.rdb, []string{r.key(id)}).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, ErrNotFound
		}
		return false, err
	}
	switch n {
	case -1:
		return false, ErrNotFound
	case 1:
		return true, nil
	default:
		return false, nil
	}
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, r.key(id)).Err()
}
