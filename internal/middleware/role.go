package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/carbon-tracker/internal/authz"
)

// RequireCapability aborts with 403 unless the session's role grants
// capability.  It must run after SessionAuth; without a session the request
// is treated as unauthenticated.
func RequireCapability(capability authz.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := CurrentSession(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
			}
			if !authz.Can(sess.Role, capability) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
