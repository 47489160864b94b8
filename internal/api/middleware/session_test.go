package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Dencheny123/TestWork900/internal/api/handler"
	"github.com/Dencheny123/TestWork900/internal/core/domain"
)

// mirrorAuth is a minimal AuthService whose tokens the test can flip
// mid-request to simulate a silent refresh or a lost session.
type mirrorAuth struct {
	access       string
	refresh      string
	initAccess   string
	initRefresh  string
	initAttempts int
}

func (s *mirrorAuth) Login(context.Context, string, string) (*domain.AuthPayload, error) {
	return nil, errors.New("not used")
}

func (s *mirrorAuth) Logout(context.Context) error {
	s.access, s.refresh = "", ""
	return nil
}

func (s *mirrorAuth) Refresh(context.Context, string) (*domain.TokenPair, error) {
	return nil, errors.New("not used")
}

func (s *mirrorAuth) CurrentUser(context.Context) (*domain.UserProfile, error) {
	return nil, errors.New("not used")
}

func (s *mirrorAuth) ValidateToken(context.Context) bool { return s.access != "" }
func (s *mirrorAuth) CheckAuth(context.Context) bool     { return s.access != "" }

func (s *mirrorAuth) InitializeTokens(_ context.Context, cookieAccess, cookieRefresh string) error {
	s.initAttempts++
	s.initAccess, s.initRefresh = cookieAccess, cookieRefresh
	if cookieAccess != "" && cookieRefresh != "" {
		s.access, s.refresh = cookieAccess, cookieRefresh
	}
	return nil
}

func (s *mirrorAuth) AccessToken() string       { return s.access }
func (s *mirrorAuth) RefreshTokenValue() string { return s.refresh }

func serve(auth *mirrorAuth, h echo.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	if h == nil {
		h = func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	}
	e := echo.New()
	e.Use(Session(auth, zerolog.Nop()))
	e.Use(LoginRedirect())
	e.GET("/login", func(c echo.Context) error { return c.String(http.StatusOK, "login") })
	e.GET("/probe", h)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func cookiesByName(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := make(map[string]*http.Cookie)
	for _, cookie := range rec.Result().Cookies() {
		out[cookie.Name] = cookie
	}
	return out
}

func TestSession_HydratesTokensFromCookies(t *testing.T) {
	auth := &mirrorAuth{}
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: handler.AccessTokenCookie, Value: "acc"})
	req.AddCookie(&http.Cookie{Name: handler.RefreshTokenCookie, Value: "ref"})

	var seen string
	serve(auth, func(c echo.Context) error {
		seen = auth.AccessToken()
		return c.NoContent(http.StatusOK)
	}, req)

	if auth.initAttempts != 1 {
		t.Fatalf("expected one hydration, got %d", auth.initAttempts)
	}
	if auth.initAccess != "acc" || auth.initRefresh != "ref" {
		t.Fatalf("expected cookie values hydrated, got %q/%q", auth.initAccess, auth.initRefresh)
	}
	if seen != "acc" {
		t.Fatalf("expected handler to see the hydrated token, got %q", seen)
	}
}

func TestSession_MirrorsRefreshedTokens(t *testing.T) {
	auth := &mirrorAuth{}
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: handler.AccessTokenCookie, Value: "old-acc"})
	req.AddCookie(&http.Cookie{Name: handler.RefreshTokenCookie, Value: "old-ref"})

	rec := serve(auth, func(c echo.Context) error {
		// Silent refresh happened somewhere below the handler.
		auth.access, auth.refresh = "new-acc", "new-ref"
		return c.NoContent(http.StatusOK)
	}, req)

	cookies := cookiesByName(rec)
	if cookie, ok := cookies[handler.AccessTokenCookie]; !ok || cookie.Value != "new-acc" {
		t.Fatalf("expected refreshed access cookie, got %+v", cookies)
	}
	if cookie, ok := cookies[handler.RefreshTokenCookie]; !ok || cookie.Value != "new-ref" {
		t.Fatalf("expected refreshed refresh cookie, got %+v", cookies)
	}
}

func TestSession_ClearsCookiesWhenSessionLost(t *testing.T) {
	auth := &mirrorAuth{}
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: handler.AccessTokenCookie, Value: "acc"})
	req.AddCookie(&http.Cookie{Name: handler.RefreshTokenCookie, Value: "ref"})

	rec := serve(auth, func(c echo.Context) error {
		auth.access, auth.refresh = "", ""
		return c.NoContent(http.StatusOK)
	}, req)

	cookies := cookiesByName(rec)
	for _, name := range []string{handler.AccessTokenCookie, handler.RefreshTokenCookie} {
		cookie, ok := cookies[name]
		if !ok || cookie.MaxAge >= 0 || cookie.Value != "" {
			t.Fatalf("expected %s expired, got %+v", name, cookies)
		}
	}
}

func TestSession_UnchangedTokensWriteNoCookies(t *testing.T) {
	auth := &mirrorAuth{}
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: handler.AccessTokenCookie, Value: "acc"})
	req.AddCookie(&http.Cookie{Name: handler.RefreshTokenCookie, Value: "ref"})

	rec := serve(auth, func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, req)

	if len(cookiesByName(rec)) != 0 {
		t.Fatalf("expected no Set-Cookie for an unchanged session, got %v", rec.Header())
	}
}

func TestSession_DoesNotDuplicateHandlerCookies(t *testing.T) {
	auth := &mirrorAuth{}
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)

	rec := serve(auth, func(c echo.Context) error {
		auth.access, auth.refresh = "acc", "ref"
		handler.SetAuthCookies(c, domain.TokenPair{AccessToken: "acc", RefreshToken: "ref"})
		return c.NoContent(http.StatusOK)
	}, req)

	count := 0
	for _, v := range rec.Header().Values(echo.HeaderSetCookie) {
		if len(v) > len(handler.AccessTokenCookie) && v[:len(handler.AccessTokenCookie)+1] == handler.AccessTokenCookie+"=" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected a single access cookie header, got %d", count)
	}
}

func TestLoginRedirect_AuthenticatedVisitorIsSentHome(t *testing.T) {
	auth := &mirrorAuth{}
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: handler.AccessTokenCookie, Value: "acc"})
	req.AddCookie(&http.Cookie{Name: handler.RefreshTokenCookie, Value: "ref"})

	rec := serve(auth, nil, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}
}

func TestLoginRedirect_AnonymousVisitorPassesThrough(t *testing.T) {
	auth := &mirrorAuth{}
	req := httptest.NewRequest(http.MethodGet, "/login", nil)

	rec := serve(auth, nil, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected login page, got %d", rec.Code)
	}
	if rec.Body.String() != "login" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
