package middleware

import (
	"github.com/labstack/echo/v4"
)

// userID returns the account id stored by SessionAuth, or "guest" for
// anonymous requests.  Rate limit keys use it.
func userID(c echo.Context) string {
	if s, ok := c.Get(ContextUserID).(string); ok && s != "" {
		return s
	}
	return "guest"
}
