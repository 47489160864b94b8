package upstream

import (
	"context"
	"net/http"

	"github.com/Dencheny123/TestWork900/internal/api/metrics"
	"github.com/Dencheny123/TestWork900/internal/core/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	// RefreshToken is omitted entirely when no token is available; the
	// upstream then falls back to its cookie-based session, mirroring the
	// optional field in the API contract.
	RefreshToken  string `json:"refreshToken,omitempty"`
	ExpiresInMins int    `json:"expiresInMins"`
}

// Login exchanges credentials for the full auth payload. The request is sent
// without a bearer token; persisting the returned pair is the session
// service's responsibility.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.AuthPayload, error) {
	var payload domain.AuthPayload
	body := loginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, loginPath, nil, body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Refresh exchanges the given refresh token (or the upstream session when
// empty) for a new token pair. The new pair is persisted to the credential
// store before returning, so a concurrent request always signs with the
// freshest token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	var pair domain.TokenPair
	body := refreshRequest{RefreshToken: refreshToken, ExpiresInMins: c.tokenTTLMins}
	if err := c.do(ctx, http.MethodPost, refreshPath, nil, body, &pair); err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		return nil, err
	}
	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()

	if err := c.creds.SetAccessToken(ctx, pair.AccessToken); err != nil {
		return nil, err
	}
	if err := c.creds.SetRefreshToken(ctx, pair.RefreshToken); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Me fetches the current user's profile. Besides supplying profile data it
// doubles as the token validity probe.
func (c *Client) Me(ctx context.Context) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	if err := c.do(ctx, http.MethodGet, mePath, nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
