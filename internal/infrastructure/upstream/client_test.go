package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Dencheny123/TestWork900/internal/core/domain"
	"github.com/Dencheny123/TestWork900/internal/core/ports"
	"github.com/Dencheny123/TestWork900/internal/infrastructure/storage"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) (*Client, *storage.CredentialStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	creds := storage.NewCredentialStore(storage.NewMemoryKV())
	client := New(srv.URL, creds, 30, zerolog.Nop(), opts...)
	return client, creds
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_AttachesBearerExceptAuthEndpoints(t *testing.T) {
	headers := make(map[string]string)
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		headers["login"] = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, domain.AuthPayload{})
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		headers["me"] = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, domain.UserProfile{Username: "emilys"})
	})
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		headers["products"] = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, domain.ProductPage{})
	})

	client, creds := newTestClient(t, mux)
	ctx := context.Background()
	_ = creds.SetAccessToken(ctx, "tok-123")

	if _, err := client.Me(ctx); err != nil {
		t.Fatalf("Me: %v", err)
	}
	if _, err := client.Products(ctx, ports.ProductsQuery{}); err != nil {
		t.Fatalf("Products: %v", err)
	}
	if _, err := client.Login(ctx, "emilys", "emilyspass"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	if headers["me"] != "Bearer tok-123" {
		t.Fatalf("expected bearer on /auth/me, got %q", headers["me"])
	}
	if headers["products"] != "Bearer tok-123" {
		t.Fatalf("expected bearer on /products, got %q", headers["products"])
	}
	if headers["login"] != "" {
		t.Fatalf("login must go out unauthenticated, got %q", headers["login"])
	}
}

func TestClient_NoTokenMeansNoAuthorizationHeader(t *testing.T) {
	var header atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		header.Store(r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, domain.ProductPage{})
	})

	client, _ := newTestClient(t, mux)
	if _, err := client.Products(context.Background(), ports.ProductsQuery{}); err != nil {
		t.Fatalf("Products: %v", err)
	}
	if got := header.Load().(string); got != "" {
		t.Fatalf("expected no Authorization header, got %q", got)
	}
}

func TestClient_RefreshAndRetryOn401(t *testing.T) {
	var meCalls, refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&meCalls, 1) == 1 {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token Expired!"})
			return
		}
		if r.Header.Get("Authorization") != "Bearer acc-new" {
			t.Errorf("replay must carry the refreshed token, got %q", r.Header.Get("Authorization"))
		}
		writeJSON(w, http.StatusOK, domain.UserProfile{Username: "emilys"})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		var req struct {
			RefreshToken  string `json:"refreshToken"`
			ExpiresInMins int    `json:"expiresInMins"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("refresh body decode: %v", err)
		}
		if req.RefreshToken != "ref-old" {
			t.Errorf("expected stored refresh token, got %q", req.RefreshToken)
		}
		if req.ExpiresInMins != 30 {
			t.Errorf("expected expiresInMins hint 30, got %d", req.ExpiresInMins)
		}
		writeJSON(w, http.StatusOK, domain.TokenPair{AccessToken: "acc-new", RefreshToken: "ref-new"})
	})

	client, creds := newTestClient(t, mux)
	ctx := context.Background()
	_ = creds.SetAccessToken(ctx, "acc-old")
	_ = creds.SetRefreshToken(ctx, "ref-old")

	profile, err := client.Me(ctx)
	if err != nil {
		t.Fatalf("Me after refresh: %v", err)
	}
	if profile.Username != "emilys" {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	if n := atomic.LoadInt32(&refreshCalls); n != 1 {
		t.Fatalf("expected exactly one refresh call, got %d", n)
	}
	if creds.AccessToken() != "acc-new" || creds.RefreshToken() != "ref-new" {
		t.Fatalf("refreshed pair not persisted: %q / %q", creds.AccessToken(), creds.RefreshToken())
	}
}

func TestClient_SecondUnauthorizedIsTerminal(t *testing.T) {
	var meCalls, refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&meCalls, 1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid token"})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		writeJSON(w, http.StatusOK, domain.TokenPair{AccessToken: "acc-2", RefreshToken: "ref-2"})
	})

	var lostCalls int32
	client, creds := newTestClient(t, mux, WithAuthLostHook(func(context.Context) {
		atomic.AddInt32(&lostCalls, 1)
	}))
	ctx := context.Background()
	_ = creds.SetAccessToken(ctx, "acc-1")
	_ = creds.SetRefreshToken(ctx, "ref-1")

	_, err := client.Me(ctx)
	if err == nil {
		t.Fatalf("expected terminal failure")
	}
	apiErr, ok := domain.AsAPIError(err)
	if !ok || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected normalized 401, got %v", err)
	}

	if n := atomic.LoadInt32(&meCalls); n != 2 {
		t.Fatalf("expected one original send and one replay, got %d", n)
	}
	if n := atomic.LoadInt32(&refreshCalls); n != 1 {
		t.Fatalf("expected exactly one refresh, got %d", n)
	}
	if creds.AccessToken() != "" || creds.RefreshToken() != "" {
		t.Fatalf("expected cleared credentials after terminal 401")
	}
	if atomic.LoadInt32(&lostCalls) != 1 {
		t.Fatalf("expected auth-lost hook to fire once")
	}
}

func TestClient_RefreshFailureClearsCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Token Expired!"})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid refresh token"})
	})

	var lost bool
	client, creds := newTestClient(t, mux, WithAuthLostHook(func(context.Context) { lost = true }))
	ctx := context.Background()
	_ = creds.SetAccessToken(ctx, "acc")
	_ = creds.SetRefreshToken(ctx, "ref")

	_, err := client.Me(ctx)
	if err == nil {
		t.Fatalf("expected refresh failure to propagate")
	}
	apiErr, ok := domain.AsAPIError(err)
	if !ok || apiErr.Message != "Invalid refresh token" {
		t.Fatalf("expected the refresh error to surface, got %v", err)
	}
	if creds.AccessToken() != "" || creds.RefreshToken() != "" {
		t.Fatalf("expected all credentials cleared")
	}
	if !lost {
		t.Fatalf("expected auth-lost hook to fire")
	}
}

func TestClient_RefreshEndpoint401NeverRecurses(t *testing.T) {
	var refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "nope"})
	})

	client, creds := newTestClient(t, mux)
	ctx := context.Background()
	_ = creds.SetRefreshToken(ctx, "ref")

	if _, err := client.Refresh(ctx, "ref"); err == nil {
		t.Fatalf("expected refresh error")
	}
	if n := atomic.LoadInt32(&refreshCalls); n != 1 {
		t.Fatalf("a 401 from the refresh endpoint must not trigger another refresh, got %d calls", n)
	}
}

func TestClient_NormalizesErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "down for maintenance"})
	})
	mux.HandleFunc("/products/999", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("not json"))
	})

	client, _ := newTestClient(t, mux)
	ctx := context.Background()

	_, err := client.Products(ctx, ports.ProductsQuery{})
	apiErr, ok := domain.AsAPIError(err)
	if !ok || apiErr.Status != http.StatusServiceUnavailable || apiErr.Message != "down for maintenance" {
		t.Fatalf("expected normalized upstream message, got %v", err)
	}

	// A body without a message field falls back to the status text.
	_, err = client.ProductByID(ctx, 999)
	apiErr, ok = domain.AsAPIError(err)
	if !ok || apiErr.Status != http.StatusNotFound || apiErr.Message != http.StatusText(http.StatusNotFound) {
		t.Fatalf("expected status-text fallback, got %v", err)
	}
}

func TestClient_NetworkFailureIsNormalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	creds := storage.NewCredentialStore(storage.NewMemoryKV())
	client := New(srv.URL, creds, 30, zerolog.Nop())

	_, err := client.Categories(context.Background())
	apiErr, ok := domain.AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != 0 || !strings.Contains(apiErr.Message, domain.NetworkErrorMessage) {
		t.Fatalf("expected normalized network failure, got %+v", apiErr)
	}
}

func TestClient_SearchUsesSearchEndpoint(t *testing.T) {
	var path, query string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		query = r.URL.Query().Get("q")
		writeJSON(w, http.StatusOK, domain.ProductPage{})
	})

	client, _ := newTestClient(t, mux)
	if _, err := client.SearchProducts(context.Background(), "phone", ports.ProductsQuery{Limit: 5}); err != nil {
		t.Fatalf("SearchProducts: %v", err)
	}
	if path != "/products/search" {
		t.Fatalf("expected search endpoint, got %s", path)
	}
	if query != "phone" {
		t.Fatalf("expected q=phone, got %q", query)
	}
}
