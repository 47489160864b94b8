package ports

import (
	"context"

	"github.com/Dencheny123/TestWork900/internal/core/domain"
)

// AuthGateway is the upstream authentication API as seen by the session
// service. Implemented by the request pipeline client.
type AuthGateway interface {
	// Login exchanges credentials for a profile and a token pair.
	Login(ctx context.Context, username, password string) (*domain.AuthPayload, error)

	// Refresh exchanges a refresh token for a new token pair. An empty
	// refreshToken is omitted from the request body. On success the new pair
	// is persisted to the credential store before returning.
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)

	// Me fetches the current user's profile using the stored access token.
	Me(ctx context.Context) (*domain.UserProfile, error)
}

// AuthService exposes the session operations built on top of the gateway and
// the credential store.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*domain.AuthPayload, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	CurrentUser(ctx context.Context) (*domain.UserProfile, error)

	// ValidateToken probes the protected profile endpoint. It never returns
	// an error: any failure is logged and reported as false.
	ValidateToken(ctx context.Context) bool

	// CheckAuth short-circuits to false without a network call when no
	// access token is stored, otherwise delegates to ValidateToken.
	CheckAuth(ctx context.Context) bool

	// InitializeTokens hydrates tokens from durable storage and then from
	// the cookie mirror; cookie values win when both are present.
	InitializeTokens(ctx context.Context, cookieAccess, cookieRefresh string) error

	AccessToken() string
	RefreshTokenValue() string
}
