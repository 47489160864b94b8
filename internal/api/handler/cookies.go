package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Dencheny123/TestWork900/internal/core/domain"
)

// Cookie mirror of the credential store. The cookies are unsigned and exist
// so the route boundary can check authentication without touching storage.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	accessCookieMaxAge  = 24 * time.Hour
	refreshCookieMaxAge = 7 * 24 * time.Hour
)

func newAuthCookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	}
}

// SetAuthCookies mirrors a token pair into the response cookies: one day for
// the access token, seven days for the refresh token.
func SetAuthCookies(c echo.Context, pair domain.TokenPair) {
	c.SetCookie(newAuthCookie(AccessTokenCookie, pair.AccessToken, accessCookieMaxAge))
	c.SetCookie(newAuthCookie(RefreshTokenCookie, pair.RefreshToken, refreshCookieMaxAge))
}

// ClearAuthCookies expires both mirror cookies.
func ClearAuthCookies(c echo.Context) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ReadAuthCookies returns the mirrored tokens from the request, empty when
// absent.
func ReadAuthCookies(c echo.Context) (access, refresh string) {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		access = cookie.Value
	}
	if cookie, err := c.Cookie(RefreshTokenCookie); err == nil {
		refresh = cookie.Value
	}
	return access, refresh
}
