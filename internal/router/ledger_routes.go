package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/carbon-tracker/internal/authz"
	"github.com/iliyamo/carbon-tracker/internal/handler"
	"github.com/iliyamo/carbon-tracker/internal/middleware"
)

// RegisterLedger registers the caller's own dashboard and entries.  Every
// route needs a session whose role may view its own ledger; the limiter runs
// after authentication so buckets are keyed by account.
func RegisterLedger(e *echo.Echo, entries *handler.EntryHandler, dash *handler.DashboardHandler, resolver middleware.SessionResolver, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.SessionAuth(resolver),
		middleware.RequireCapability(authz.ViewOwnLedger),
		limiter,
	)
	g.GET("/dashboard", dash.Show)
	g.POST("/entries", entries.Create)
	g.GET("/entries", entries.List)
	g.GET("/entries/summary", entries.Summary)
	g.GET("/entries/chart", entries.Chart)
}
