package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Dencheny123/TestWork900/internal/api/metrics"
	"github.com/Dencheny123/TestWork900/internal/core/domain"
	"github.com/Dencheny123/TestWork900/internal/core/ports"
	"github.com/Dencheny123/TestWork900/internal/core/state"
)

// AuthHandler exposes the session operations over HTTP and keeps the cookie
// mirror in sync with the credential store.
type AuthHandler struct {
	state *state.Container
	auth  ports.AuthService
}

func NewAuthHandler(container *state.Container, auth ports.AuthService) *AuthHandler {
	return &AuthHandler{state: container, auth: auth}
}

type sessionResponse struct {
	domain.Session
	// TokenExpiresAt is the unverified exp claim of the access token, when
	// one is present and parseable.
	TokenExpiresAt *time.Time `json:"tokenExpiresAt,omitempty"`
	TokenSubject   string     `json:"tokenSubject,omitempty"`
}

// Login authenticates against the upstream and mirrors the issued tokens
// into cookies.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      domain.Credentials  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var creds domain.Credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	payload, err := h.state.Login(c.Request().Context(), creds)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
		}
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	SetAuthCookies(c, payload.TokenPair)
	return c.JSON(http.StatusOK, h.sessionView())
}

// Logout clears the session, the stored tokens, and the cookie mirror. No
// upstream call is made.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.state.Logout(c.Request().Context()); err != nil {
		return err
	}
	ClearAuthCookies(c)
	return c.JSON(http.StatusOK, h.sessionView())
}

// Me returns the authenticated user's profile, probing the upstream. The
// pipeline transparently refreshes an expired token once.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.UserProfile
// @Failure      401  {object}  map[string]string
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	if h.auth.AccessToken() == "" {
		return domain.ErrNotAuthenticated
	}

	profile, err := h.auth.CurrentUser(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// Session reports the state container snapshot plus unverified claims parsed
// from the access token.
//
// @Summary      Session state
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, h.sessionView())
}

// Check re-validates the session against the upstream and reports the result.
//
// @Summary      Re-validate session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Router       /auth/check [post]
func (h *AuthHandler) Check(c echo.Context) error {
	valid := h.state.CheckAuth(c.Request().Context())
	if !valid {
		ClearAuthCookies(c)
	}
	return c.JSON(http.StatusOK, map[string]bool{"authenticated": valid})
}

// ClearError drops the last session error without changing authentication
// status.
//
// @Summary      Clear session error
// @Tags         auth
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /auth/error [delete]
func (h *AuthHandler) ClearError(c echo.Context) error {
	h.state.ClearError()
	return c.JSON(http.StatusOK, h.sessionView())
}

func (h *AuthHandler) sessionView() sessionResponse {
	resp := sessionResponse{Session: h.state.Snapshot()}

	// The upstream owns the signing secret, so claims are introspected
	// unverified, purely informational.
	token := h.auth.AccessToken()
	if token == "" {
		return resp
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return resp
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		resp.TokenExpiresAt = &exp.Time
	}
	if sub, err := claims.GetSubject(); err == nil {
		resp.TokenSubject = sub
	}
	return resp
}
