// Package upstream implements the request pipeline for the external
// storefront API. It centralises credential attachment, the single silent
// refresh-and-retry on 401, and error normalisation, so that no other
// component is aware of token mechanics.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/Dencheny123/TestWork900/internal/api/metrics"
	"github.com/Dencheny123/TestWork900/internal/core/domain"
	"github.com/Dencheny123/TestWork900/internal/core/ports"
)

const (
	loginPath   = "/auth/login"
	refreshPath = "/auth/refresh"
	mePath      = "/auth/me"
)

// Client talks to the upstream API. It implements ports.AuthGateway and
// ports.ProductGateway.
type Client struct {
	baseURL      string
	http         *http.Client
	creds        ports.CredentialStore
	tokenTTLMins int
	log          zerolog.Logger

	// onAuthLost fires after a terminal authentication failure has cleared
	// the credential store. The HTTP boundary uses it to drop the cookie
	// mirror and force a login redirect.
	onAuthLost func(ctx context.Context)
}

var (
	_ ports.AuthGateway    = (*Client)(nil)
	_ ports.ProductGateway = (*Client)(nil)
)

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient substitutes the transport. Used by tests and for custom
// timeouts.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithAuthLostHook registers a callback invoked when credentials are cleared
// after a failed recovery.
func WithAuthLostHook(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onAuthLost = fn }
}

// New creates a Client for the API at baseURL. Tokens are read from and
// persisted to creds; tokenTTLMins is the expiresInMins hint sent with
// refresh requests.
func New(baseURL string, creds ports.CredentialStore, tokenTTLMins int, log zerolog.Logger, opts ...Option) *Client {
	if tokenTTLMins <= 0 {
		tokenTTLMins = 30
	}
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         &http.Client{},
		creds:        creds,
		tokenTTLMins: tokenTTLMins,
		log:          log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do issues one logical request. The attempt counter travels with the call
// instead of being mutated on a shared request object: attempt 0 is the
// original send, attempt 1 is the single replay after a refresh.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return domain.NewAPIError("Unknown error", http.StatusInternalServerError)
		}
	}

	endpoint := endpointLabel(path)
	timer := prometheus.NewTimer(metrics.UpstreamRequestDuration.WithLabelValues(endpoint))
	defer timer.ObserveDuration()

	status, data, err := c.send(ctx, method, path, query, payload)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return err
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()

	// Single silent recovery: a 401 on anything but the refresh endpoint
	// triggers one refresh and one replay. A refresh failure, or a second
	// 401 on the replay, is terminal: credentials are cleared and the
	// auth-lost hook fires.
	if status == http.StatusUnauthorized && path != refreshPath {
		if _, rerr := c.Refresh(ctx, c.creds.RefreshToken()); rerr != nil {
			c.authLost(ctx)
			return rerr
		}

		status, data, err = c.send(ctx, method, path, query, payload)
		if err != nil {
			metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
			return err
		}
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()

		if status == http.StatusUnauthorized {
			c.authLost(ctx)
			return normalizeStatus(status, data)
		}
	}

	if status >= http.StatusBadRequest {
		return normalizeStatus(status, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			c.log.Warn().Err(err).Str("endpoint", endpoint).Msg("failed to decode upstream response")
			return domain.NewAPIError("Unknown error", http.StatusInternalServerError)
		}
	}
	return nil
}

// send performs a single HTTP exchange and drains the body.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte) (int, []byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, domain.NewAPIError("Unknown error", http.StatusInternalServerError)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	// Login and refresh are the only calls issued without a bearer token.
	// With no token stored the request simply goes out unauthenticated.
	if c.attachAuth(path) {
		if token := c.creds.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("upstream request failed")
		return 0, nil, domain.NewAPIError(domain.NetworkErrorMessage, 0)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, domain.NewAPIError(domain.NetworkErrorMessage, 0)
	}
	return resp.StatusCode, data, nil
}

// attachAuth reports whether the access token should be attached: every
// endpoint except login and refresh carries it.
func (c *Client) attachAuth(path string) bool {
	return path != loginPath && path != refreshPath
}

func (c *Client) authLost(ctx context.Context) {
	if err := c.creds.Clear(ctx); err != nil {
		c.log.Error().Err(err).Msg("failed to clear credentials after auth loss")
	}
	if c.onAuthLost != nil {
		c.onAuthLost(ctx)
	}
}

// normalizeStatus converts a non-2xx response into the canonical APIError,
// preferring the upstream's own message field when present.
func normalizeStatus(status int, body []byte) *domain.APIError {
	var payload struct {
		Message string `json:"message"`
	}
	msg := http.StatusText(status)
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		msg = payload.Message
	}
	return domain.NewAPIError(msg, status)
}

// endpointLabel maps a request path to a low-cardinality metric label.
func endpointLabel(path string) string {
	switch {
	case path == loginPath:
		return "auth_login"
	case path == refreshPath:
		return "auth_refresh"
	case path == mePath:
		return "auth_me"
	case path == "/products":
		return "products"
	case path == "/products/search":
		return "products_search"
	case path == "/products/categories":
		return "product_categories"
	case strings.HasPrefix(path, "/products/category/"):
		return "products_by_category"
	case strings.HasPrefix(path, "/products/"):
		return "product"
	default:
		return "other"
	}
}
