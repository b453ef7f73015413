package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/carbon-tracker/internal/service"
)

// DashboardHandler serves the landing view after login.
type DashboardHandler struct {
	Dashboard *service.Dashboard
}

func NewDashboardHandler(d *service.Dashboard) *DashboardHandler {
	return &DashboardHandler{Dashboard: d}
}

// Show returns the caller's entries and cumulative total.  The first call
// of a session is recorded as a page view.
func (h *DashboardHandler) Show(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return errorJSON(c, err, "dashboard failed")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	view, err := h.Dashboard.View(ctx, sess)
	if err != nil {
		return errorJSON(c, err, "dashboard failed")
	}
	return c.JSON(http.StatusOK, view)
}
