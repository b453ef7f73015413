package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/carbon-tracker/internal/handler"
	"github.com/iliyamo/carbon-tracker/internal/metrics"
	"github.com/iliyamo/carbon-tracker/internal/middleware"
)

// RegisterRoutes registers the operational endpoints: liveness, readiness
// and the Prometheus scrape.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, m *metrics.Metrics) {
	e.GET("/healthz", handler.Health)
	if db != nil {
		e.GET("/readyz", handler.Ready(db))
	}
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
}

// RegisterPublic registers endpoints that need no session.  cache wraps the
// factor table, which never changes at runtime.
func RegisterPublic(e *echo.Echo, cache echo.MiddlewareFunc) {
	e.GET("/v1/factors", handler.Factors, cache)
	e.POST("/v1/calculate", handler.Calculate)
}

// RegisterAuth registers registration and the session lifecycle.  Register,
// login and refresh are rate limited per client address; logout and /me
// need a live session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, resolver middleware.SessionResolver, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limiter)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, middleware.SessionAuth(resolver))

	e.GET("/v1/me", a.Me, middleware.SessionAuth(resolver))
}
