package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/carbon-tracker/internal/session"
)

// Context keys set by SessionAuth.
const (
	ContextSession = "session"
	ContextUserID  = "user_id"
	ContextRole    = "role"
)

// SessionResolver maps a raw access token to its live session.
type SessionResolver interface {
	Resolve(ctx context.Context, rawAccess string) (*session.Session, error)
}

// ErrNoSession is returned by CurrentSession outside SessionAuth.
var ErrNoSession = errors.New("no session in context")

// SessionAuth validates the Bearer access token and loads the session it is
// bound to.  A token that is well signed but whose session was logged out is
// rejected like any other invalid token.  Handlers read the session with
// CurrentSession.
func SessionAuth(resolver SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header looks like "Bearer <jwt>".
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			sess, err := resolver.Resolve(c.Request().Context(), raw)
			if err != nil || sess == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired session"})
			}

			c.Set(ContextSession, sess)
			c.Set(ContextUserID, strconv.FormatUint(sess.AccountID, 10))
			c.Set(ContextRole, string(sess.Role))
			return next(c)
		}
	}
}

// CurrentSession returns the session stored by SessionAuth.
func CurrentSession(c echo.Context) (*session.Session, error) {
	sess, ok := c.Get(ContextSession).(*session.Session)
	if !ok || sess == nil {
		return nil, ErrNoSession
	}
	return sess, nil
}
