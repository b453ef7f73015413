package handler // handler defines http handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/carbon-tracker/internal/middleware"
	"github.com/iliyamo/carbon-tracker/internal/service"
	"github.com/iliyamo/carbon-tracker/internal/session"
)

// dbTimeout bounds the storage work of one request.
const dbTimeout = 5 * time.Second

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// currentSession reads the session stored by middleware.SessionAuth.
func currentSession(c echo.Context) (*session.Session, error) {
	return middleware.CurrentSession(c)
}

// errorJSON maps service errors onto status codes.  Unexpected errors are
// logged and reported as 500 without detail.
func errorJSON(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateUsername):
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
	case errors.Is(err, service.ErrAuthenticationFailure):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case errors.Is(err, service.ErrSessionInvalid), errors.Is(err, session.ErrNotFound), errors.Is(err, middleware.ErrNoSession):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired session"})
	case errors.Is(err, service.ErrAccountNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "account not found"})
	}
	c.Logger().Errorf("%s: %v", fallback, err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": fallback})
}
