package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Dencheny123/TestWork900/internal/core/domain"
	"github.com/Dencheny123/TestWork900/internal/core/ports"
)

// SessionService implements the session operations on top of the upstream
// gateway and the credential store, keeping the two consistent: a login or
// logout always updates both together.
type SessionService struct {
	gateway ports.AuthGateway
	creds   ports.CredentialStore
	log     zerolog.Logger
}

var _ ports.AuthService = (*SessionService)(nil)

func NewSessionService(gateway ports.AuthGateway, creds ports.CredentialStore, log zerolog.Logger) *SessionService {
	return &SessionService{gateway: gateway, creds: creds, log: log}
}

// Login authenticates against the upstream and stores the returned token
// pair. The raw payload (profile plus tokens) is returned so the HTTP
// boundary can mirror the tokens into cookies.
func (s *SessionService) Login(ctx context.Context, username, password string) (*domain.AuthPayload, error) {
	payload, err := s.gateway.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if err := s.creds.SetAccessToken(ctx, payload.AccessToken); err != nil {
		return nil, err
	}
	if err := s.creds.SetRefreshToken(ctx, payload.RefreshToken); err != nil {
		return nil, err
	}

	s.log.Info().Str("username", payload.Username).Msg("login succeeded")
	return payload, nil
}

// Logout clears the stored tokens. No network call is made; the upstream
// session simply expires on its own.
func (s *SessionService) Logout(ctx context.Context) error {
	return s.creds.Clear(ctx)
}

// Refresh exchanges the supplied refresh token, or the stored one when
// empty, for a new pair. A confirmed-invalid refresh clears every stored
// credential before the error propagates, so no stale token lingers.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		refreshToken = s.creds.RefreshToken()
	}

	pair, err := s.gateway.Refresh(ctx, refreshToken)
	if err != nil {
		if clearErr := s.creds.Clear(ctx); clearErr != nil {
			s.log.Error().Err(clearErr).Msg("failed to clear credentials after refresh failure")
		}
		return nil, err
	}
	return pair, nil
}

// CurrentUser fetches the profile of the authenticated user.
func (s *SessionService) CurrentUser(ctx context.Context) (*domain.UserProfile, error) {
	return s.gateway.Me(ctx)
}

// ValidateToken probes the protected profile endpoint. Failures are logged
// and swallowed; the result is a plain boolean.
func (s *SessionService) ValidateToken(ctx context.Context) bool {
	if _, err := s.CurrentUser(ctx); err != nil {
		s.log.Debug().Err(err).Msg("token validation failed")
		return false
	}
	return true
}

// CheckAuth reports whether a valid session exists. With no access token
// stored it answers false immediately, avoiding a pointless network call.
func (s *SessionService) CheckAuth(ctx context.Context) bool {
	if s.creds.AccessToken() == "" {
		return false
	}
	return s.ValidateToken(ctx)
}

// InitializeTokens hydrates tokens from durable storage and then from the
// cookie mirror. Cookie values win when both are present, so a freshly
// loaded session recovers without a network call.
func (s *SessionService) InitializeTokens(ctx context.Context, cookieAccess, cookieRefresh string) error {
	if err := s.creds.Initialize(ctx); err != nil {
		return err
	}

	if cookieAccess != "" && cookieRefresh != "" {
		if err := s.creds.SetAccessToken(ctx, cookieAccess); err != nil {
			return err
		}
		if err := s.creds.SetRefreshToken(ctx, cookieRefresh); err != nil {
			return err
		}
	}
	return nil
}

// AccessToken returns the currently stored access token.
func (s *SessionService) AccessToken() string {
	return s.creds.AccessToken()
}

// RefreshTokenValue returns the currently stored refresh token.
func (s *SessionService) RefreshTokenValue() string {
	return s.creds.RefreshToken()
}
