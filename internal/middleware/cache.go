package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/carbon-tracker/internal/config"
	"github.com/iliyamo/carbon-tracker/internal/metrics"
)

// captureWriter tees the response body into buf, up to limit bytes, while
// forwarding everything to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	keep := b
	if cw.limit > 0 {
		remain := cw.limit - cw.size
		switch {
		case remain <= 0:
			keep = nil
		case int64(len(b)) > remain:
			keep = b[:remain]
		}
	}
	cw.buf.Write(keep)
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

func (cw *captureWriter) truncated() bool { return cw.limit > 0 && cw.size > cw.limit }

// cacheKeyParts lists, per CACHE_KEY_STRATEGY, which request attributes
// distinguish cached responses.  The default is route plus query.
var cacheKeyParts = map[string][]string{
	"route":              {"route"},
	"route_query":        {"route", "q"},
	"method_route":       {"method", "route"},
	"method_route_query": {"method", "route", "q"},
}

func cacheKeyFrom(cfg config.CacheConfig, c echo.Context) string {
	attrs, ok := cacheKeyParts[strings.ToLower(cfg.KeyStrategy)]
	if !ok {
		attrs = cacheKeyParts["route_query"]
	}
	r := c.Request()
	parts := make([]string, 0, 2*len(attrs))
	for _, a := range attrs {
		switch a {
		case "method":
			parts = append(parts, a, r.Method)
		case "route":
			parts = append(parts, a, c.Path())
		case "q":
			parts = append(parts, a, r.URL.RawQuery)
		}
	}
	sum := sha1.Sum([]byte(strings.Join(parts, ":")))
	return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

// cachedResponse is what a cache entry holds.  Headers are kept so a hit
// replays the same Content-Type as the original response.
type cachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	return json.Marshal(cachedResponse{Status: status, Header: header, Body: body})
}

func decodePayload(bs []byte) (cachedResponse, bool) {
	var cr cachedResponse
	if err := json.Unmarshal(bs, &cr); err != nil || cr.Status == 0 {
		return cachedResponse{}, false
	}
	return cr, true
}

func replay(c echo.Context, cr cachedResponse) error {
	h := c.Response().Header()
	for k, vals := range cr.Header {
		if strings.EqualFold(k, echo.HeaderContentLength) {
			continue
		}
		for _, v := range vals {
			h.Add(k, v)
		}
	}
	h.Set("X-Cache", "HIT")
	c.Response().WriteHeader(cr.Status)
	if len(cr.Body) > 0 {
		_, _ = c.Response().Write(cr.Body)
	}
	return nil
}

// NewRedisCache replays 200 responses from Redis for cfg.TTL.  Hits and
// misses are counted on m.  Mount it after SessionAuth on protected
// routes so unauthenticated requests never reach a cached body.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client, m *metrics.Metrics) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passthrough
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	methods := cfg.MethodSet()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			ctx := c.Request().Context()
			key := cacheKeyFrom(cfg, c)

			if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
				if cr, ok := decodePayload(bs); ok {
					m.CacheLookup(true)
					return replay(c, cr)
				}
			}
			m.CacheLookup(false)

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: int64(cfg.MaxBodyBytes)}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || cw.truncated() {
				return nil
			}

			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
				_ = rdb.Set(context.WithoutCancel(ctx), key, payload, ttl).Err()
			}
			return nil
		}
	}
}

// PurgeCache drops every cached response under prefix.  It is called after
// writes that would make cached reports stale.
func PurgeCache(ctx context.Context, rdb *redis.Client, prefix string) error {
	if rdb == nil {
		return nil
	}
	iter := rdb.Scan(ctx, 0, prefix+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return rdb.Del(ctx, keys...).Err()
}
