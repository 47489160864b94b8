package ports

import "context"

// KV is the durable local key-value store backing tokens and state blobs.
// It is the service-side analog of browser local storage: plain string
// values, last writer wins, no merge semantics.
type KV interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// CredentialStore owns the access/refresh token pair. Values live in memory
// and are written through to durable storage; an empty string means unset.
// The store performs no validation and tracks no expiry; token expiry is
// discovered only when the upstream rejects a request.
type CredentialStore interface {
	SetAccessToken(ctx context.Context, token string) error
	SetRefreshToken(ctx context.Context, token string) error

	// AccessToken and RefreshToken return the current in-memory values.
	AccessToken() string
	RefreshToken() string

	// Initialize hydrates in-memory values from durable storage. Idempotent,
	// safe to call on every request.
	Initialize(ctx context.Context) error

	// Clear removes both tokens from memory and durable storage.
	Clear(ctx context.Context) error
}
