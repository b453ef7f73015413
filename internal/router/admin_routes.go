package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/carbon-tracker/internal/authz"
	"github.com/iliyamo/carbon-tracker/internal/handler"
	"github.com/iliyamo/carbon-tracker/internal/middleware"
)

// RegisterAdmin registers the usage reports under /v1/admin.  Reads need
// view_admin_reports and are served through cache; clearing the log needs
// clear_events.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, resolver middleware.SessionResolver, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/admin", middleware.SessionAuth(resolver))

	reports := middleware.RequireCapability(authz.ViewAdminReports)
	g.GET("/accounts", h.Accounts, reports, cache)
	g.GET("/events", h.RecentEvents, reports, cache)
	g.GET("/login-counts", h.LoginCounts, reports, cache)

	g.DELETE("/events", h.ClearEvents, middleware.RequireCapability(authz.ClearEvents))
}
