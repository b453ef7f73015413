// Package metrics owns the Prometheus registry of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors registered on one private registry.  A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	logins        *prometheus.CounterVec
	entries       prometheus.Counter
	emissionsKg   prometheus.Counter
	events        *prometheus.CounterVec
	eventFailures prometheus.Counter
	rateLimited   *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
}

// New registers every collector on a fresh registry, plus the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carbon",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "carbon",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carbon",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		entries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "carbon",
			Name:      "entries_total",
			Help:      "Entries written to the ledger.",
		}),
		emissionsKg: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "carbon",
			Name:      "emissions_kg_total",
			Help:      "Sum of total_emission over written entries, kg CO2e.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carbon",
			Name:      "events_logged_total",
			Help:      "Usage events appended by kind.",
		}, []string{"kind"}),
		eventFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "carbon",
			Name:      "event_log_failures_total",
			Help:      "Usage events that could not be stored.",
		}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carbon",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the token bucket, by route.",
		}, []string{"route"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carbon",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.latency, m.logins, m.entries, m.emissionsKg, m.events, m.eventFailures,
		m.rateLimited, m.cacheLookups,
	)
	return m
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records count and latency per route template.  Unmatched
// routes are reported as "unmatched" to keep label cardinality bounded.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if m == nil {
			return next
		}
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if status < http.StatusBadRequest {
					status = http.StatusInternalServerError
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			m.latency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Login records one login attempt.
func (m *Metrics) Login(ok bool) {
	if m == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.logins.WithLabelValues(result).Inc()
}

// EntryAdded records one ledger write and its total.
func (m *Metrics) EntryAdded(totalKg float64) {
	if m == nil {
		return
	}
	m.entries.Inc()
	m.emissionsKg.Add(totalKg)
}

// EventLogged records the outcome of one usage-log append.
func (m *Metrics) EventLogged(kind string, stored bool) {
	if m == nil {
		return
	}
	if !stored {
		m.eventFailures.Inc()
		return
	}
	m.events.WithLabelValues(kind).Inc()
}

// RateLimited records one request rejected with 429.
func (m *Metrics) RateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(route).Inc()
}

// CacheLookup records a response cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
