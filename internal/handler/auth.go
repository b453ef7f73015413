package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/carbon-tracker/internal/authz"
	"github.com/iliyamo/carbon-tracker/internal/model"
	"github.com/iliyamo/carbon-tracker/internal/service"
	"github.com/iliyamo/carbon-tracker/internal/session"
)

// AuthHandler exposes registration and the session lifecycle.
type AuthHandler struct {
	Auth *service.Auth
}

func NewAuthHandler(a *service.Auth) *AuthHandler {
	return &AuthHandler{Auth: a}
}

// ----- DTOs -----

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID       uint64     `json:"id"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
}
type authResp struct {
	User      userPart  `json:"user"`
	SessionID string    `json:"session_id"`
	Access    tokenPart `json:"access"`
	Refresh   tokenPart `json:"refresh"`
}

// Register: create a user account.  The caller logs in separately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	a, err := h.Auth.Register(ctx, req.Username, req.Password)
	if err != nil {
		return errorJSON(c, err, "create user failed")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"user": userPart{ID: a.ID, Username: a.Username, Role: a.Role},
	})
}

// Login: verify credentials, start a session and return its token pair.
// Unknown usernames and wrong passwords produce the same 401.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	res, err := h.Auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		return errorJSON(c, err, "login failed")
	}
	return c.JSON(http.StatusOK, authResp{
		User:      userPart{ID: res.Account.ID, Username: res.Account.Username, Role: res.Account.Role},
		SessionID: res.Session.ID,
		Access:    tokenPart{Token: res.Tokens.AccessToken, Expires: res.Tokens.AccessExpiresAt},
		Refresh:   tokenPart{Token: res.Tokens.RefreshToken, Expires: res.Tokens.RefreshExpiresAt},
	})
}

// Refresh: validate by hash, revoke old, issue new.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	pair, err := h.Auth.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		return errorJSON(c, err, "refresh failed")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access":  tokenPart{Token: pair.AccessToken, Expires: pair.AccessExpiresAt},
		"refresh": tokenPart{Token: pair.RefreshToken, Expires: pair.RefreshExpiresAt},
	})
}

// Logout ends the current session; its tokens stop working immediately.
func (h *AuthHandler) Logout(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return errorJSON(c, err, "logout failed")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, sess); err != nil {
		return errorJSON(c, err, "logout failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the current session and what its role may do.
func (h *AuthHandler) Me(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return errorJSON(c, err, "load session failed")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user":         userPart{ID: sess.AccountID, Username: sess.Username, Role: sess.Role},
		"session_id":   sess.ID,
		"state":        session.StateOf(sess).String(),
		"capabilities": authz.Capabilities(sess.Role),
		"since":        sess.CreatedAt,
	})
}
