package middleware

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/carbon-tracker/internal/config"
	"github.com/iliyamo/carbon-tracker/internal/metrics"
)

// limiterScript refills the bucket by whole intervals, then takes one token.
// Returns {allowed, remaining, retry_after_ms}.
var limiterScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		local until_next = interval_ms - (now_ms - last_refill)
		if until_next < 0 then until_next = 0 end
		retry_after_ms = until_next
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill, 'capacity', capacity)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

var errBadReply = errors.New("ratelimit: unexpected script reply")

func passthrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// bucketVerdict is the decoded reply of limiterScript.
type bucketVerdict struct {
	allowed   bool
	remaining int64
	retryMs   int64
}

func takeToken(c echo.Context, rdb *redis.Client, cfg config.RateLimitConfig, key string) (bucketVerdict, error) {
	vals, err := limiterScript.Run(c.Request().Context(), rdb, []string{key},
		time.Now().UnixMilli(),
		cfg.Capacity,
		cfg.RefillTokens,
		cfg.RefillInterval.Milliseconds(),
		int64(cfg.TTL/time.Second),
	).Int64Slice()
	if err != nil {
		return bucketVerdict{}, err
	}
	if len(vals) != 3 {
		return bucketVerdict{}, errBadReply
	}
	return bucketVerdict{allowed: vals[0] == 1, remaining: vals[1], retryMs: vals[2]}, nil
}

// NewTokenBucket limits requests with a token bucket kept in Redis.  When
// Redis fails the request is let through.  Rejections are counted per
// route template on m.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, m *metrics.Metrics) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passthrough
	}
	limit := strconv.Itoa(cfg.Capacity)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			v, err := takeToken(c, rdb, cfg, key)
			if err != nil {
				if cfg.Debug {
					c.Logger().Warnf("ratelimit: key=%s err=%v", key, err)
				}
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(v.remaining, 10))
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			if v.allowed {
				return next(c)
			}

			m.RateLimited(c.Path())
			secs := retryAfterSeconds(v.retryMs)
			h.Set("Retry-After", strconv.Itoa(secs))
			return c.JSON(http.StatusTooManyRequests, echo.Map{
				"error":       "rate limit exceeded",
				"retry_after": secs,
			})
		}
	}
}

func retryAfterSeconds(ms int64) int {
	if ms <= 0 {
		return 0
	}
	return int(math.Ceil(float64(ms) / 1000.0))
}

// rateKeyParts lists, per RATE_LIMIT_KEY_STRATEGY, which request
// attributes identify a bucket.  Unknown strategies use all three.
var rateKeyParts = map[string][]string{
	"ip":         {"ip"},
	"user":       {"user"},
	"route":      {"route"},
	"ip_user":    {"ip", "user"},
	"ip_route":   {"ip", "route"},
	"user_route": {"user", "route"},
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	attrs, ok := rateKeyParts[strings.ToLower(cfg.KeyStrategy)]
	if !ok {
		attrs = []string{"ip", "user", "route"}
	}

	parts := []string{cfg.Prefix}
	for _, a := range attrs {
		var v string
		switch a {
		case "ip":
			if v = c.RealIP(); v == "" {
				v = "unknown"
			}
		case "user":
			v = userID(c)
		case "route":
			v = c.Request().Method + " " + c.Path()
		}
		parts = append(parts, a, v)
	}
	return strings.Join(parts, ":")
}
