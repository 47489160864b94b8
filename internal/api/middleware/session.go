// Package middleware carries the session plumbing at the HTTP boundary:
// hydrating tokens from the cookie mirror, writing refreshed tokens back,
// and the route-boundary redirect for the login entry point.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Dencheny123/TestWork900/internal/api/handler"
	"github.com/Dencheny123/TestWork900/internal/core/domain"
	"github.com/Dencheny123/TestWork900/internal/core/ports"
)

// Session hydrates the credential store from the request cookies (cookie
// values win over durable storage) and mirrors token changes back into the
// response. The write-back runs just before the first response byte, so a
// mid-request silent refresh still reaches the client's cookies.
func Session(auth ports.AuthService, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookieAccess, cookieRefresh := handler.ReadAuthCookies(c)

			if err := auth.InitializeTokens(c.Request().Context(), cookieAccess, cookieRefresh); err != nil {
				log.Warn().Err(err).Msg("token hydration failed")
			}

			c.Response().Before(func() {
				mirrorTokens(c, auth, cookieAccess, cookieRefresh)
			})

			return next(c)
		}
	}
}

// mirrorTokens syncs the response cookies with the credential store unless
// the handler already wrote them explicitly (login and logout do).
func mirrorTokens(c echo.Context, auth ports.AuthService, cookieAccess, cookieRefresh string) {
	if alreadyMirrored(c) {
		return
	}

	access, refresh := auth.AccessToken(), auth.RefreshTokenValue()
	if access == cookieAccess && refresh == cookieRefresh {
		return
	}
	if access == "" {
		if cookieAccess != "" || cookieRefresh != "" {
			handler.ClearAuthCookies(c)
		}
		return
	}
	handler.SetAuthCookies(c, domain.TokenPair{AccessToken: access, RefreshToken: refresh})
}

func alreadyMirrored(c echo.Context) bool {
	for _, v := range c.Response().Header().Values(echo.HeaderSetCookie) {
		if strings.HasPrefix(v, handler.AccessTokenCookie+"=") {
			return true
		}
	}
	return false
}

// LoginRedirect implements the route-boundary contract: an authenticated
// visitor reaching the login entry point is sent to the root. Everything
// else passes through.
func LoginRedirect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method == http.MethodGet && c.Path() == "/login" {
				if access, _ := handler.ReadAuthCookies(c); access != "" {
					return c.Redirect(http.StatusFound, "/")
				}
			}
			return next(c)
		}
	}
}
