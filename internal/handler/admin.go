package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/carbon-tracker/internal/service"
)

// AdminHandler serves the usage reports.  Routes are guarded by capability
// middleware; the handlers themselves do no role checks.
type AdminHandler struct {
	Events *service.Events
}

func NewAdminHandler(ev *service.Events) *AdminHandler {
	return &AdminHandler{Events: ev}
}

// Accounts lists every account with its login count.
func (h *AdminHandler) Accounts(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	usage, err := h.Events.ListAccounts(ctx)
	if err != nil {
		return errorJSON(c, err, "list accounts failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"accounts": usage})
}

// RecentEvents lists the newest events.  ?limit= is clamped to 1..500 and
// defaults to 50; a non-numeric limit is a 400.
func (h *AdminHandler) RecentEvents(c echo.Context) error {
	limit := 0
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be an integer"})
		}
		limit = n
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	events, err := h.Events.RecentEvents(ctx, limit)
	if err != nil {
		return errorJSON(c, err, "list events failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"limit": service.ClampLimit(limit), "events": events})
}

// LoginCounts maps account id to login count; accounts without logins are
// absent.
func (h *AdminHandler) LoginCounts(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	counts, err := h.Events.LoginCounts(ctx)
	if err != nil {
		return errorJSON(c, err, "count logins failed")
	}
	out := make(map[string]int, len(counts))
	for id, n := range counts {
		out[strconv.FormatUint(id, 10)] = n
	}
	return c.JSON(http.StatusOK, echo.Map{"login_counts": out})
}

// ClearEvents empties the event log and returns the number of rows removed.
func (h *AdminHandler) ClearEvents(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	n, err := h.Events.ClearEvents(ctx)
	if err != nil {
		return errorJSON(c, err, "clear events failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}
