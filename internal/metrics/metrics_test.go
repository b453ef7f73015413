package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue sums the samples of a counter family whose labels include
// every pair in want.
func counterValue(t *testing.T, m *Metrics, name string, want map[string]string) float64 {
	t.Helper()
	mfs, err := m.registry.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	metric:
		for _, mt := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range mt.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue metric
				}
			}
			total += mt.GetCounter().GetValue()
		}
	}
	return total
}

func TestMiddlewareCountsByRoute(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/v1/items/:id", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/items/"+id, nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
	assert.Equal(t, 2.0, counterValue(t, m, "carbon_http_requests_total", map[string]string{"method": "GET", "route": "/v1/items/:id", "status": "204"}))
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.Login(true)
	m.Login(false)
	m.Login(false)
	m.EntryAdded(12.85)
	m.EventLogged("login", true)
	m.EventLogged("login", false)
	m.RateLimited("/v1/entries")
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)

	assert.Equal(t, 1.0, counterValue(t, m, "carbon_logins_total", map[string]string{"result": "success"}))
	assert.Equal(t, 2.0, counterValue(t, m, "carbon_logins_total", map[string]string{"result": "failure"}))
	assert.Equal(t, 1.0, counterValue(t, m, "carbon_entries_total", nil))
	assert.InDelta(t, 12.85, counterValue(t, m, "carbon_emissions_kg_total", nil), 1e-9)
	assert.Equal(t, 1.0, counterValue(t, m, "carbon_events_logged_total", map[string]string{"kind": "login"}))
	assert.Equal(t, 1.0, counterValue(t, m, "carbon_event_log_failures_total", nil))
	assert.Equal(t, 1.0, counterValue(t, m, "carbon_rate_limited_total", map[string]string{"route": "/v1/entries"}))
	assert.Equal(t, 2.0, counterValue(t, m, "carbon_cache_lookups_total", map[string]string{"result": "miss"}))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Login(true)
		m.EntryAdded(1)
		m.EventLogged("x", true)
		m.RateLimited("/")
		m.CacheLookup(true)
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.EntryAdded(1)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "carbon_entries_total 1"))
}
