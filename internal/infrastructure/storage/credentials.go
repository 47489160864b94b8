// Package storage holds the durable session state of the storefront: the
// credential store owning the token pair and the in-memory KV fallback.
package storage

import (
	"context"
	"sync"

	"github.com/Dencheny123/TestWork900/internal/core/ports"
)

// Durable key names; the cookie mirror uses the same names.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// CredentialStore keeps the token pair in memory and writes every change
// through to the durable KV. The empty string is the unset sentinel.
type CredentialStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
	kv      ports.KV
}

var _ ports.CredentialStore = (*CredentialStore)(nil)

// NewCredentialStore creates a store over the given durable KV. Call
// Initialize to hydrate previously persisted tokens.
func NewCredentialStore(kv ports.KV) *CredentialStore {
	return &CredentialStore{kv: kv}
}

// SetAccessToken overwrites the in-memory value and persists it. The token
// shape is not validated.
func (s *CredentialStore) SetAccessToken(ctx context.Context, token string) error {
	s.mu.Lock()
	s.access = token
	s.mu.Unlock()
	return s.kv.Set(ctx, KeyAccessToken, token)
}

// SetRefreshToken overwrites the in-memory value and persists it.
func (s *CredentialStore) SetRefreshToken(ctx context.Context, token string) error {
	s.mu.Lock()
	s.refresh = token
	s.mu.Unlock()
	return s.kv.Set(ctx, KeyRefreshToken, token)
}

func (s *CredentialStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *CredentialStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

// Initialize hydrates in-memory values from durable storage when present.
// Idempotent: absent keys leave the current values untouched.
func (s *CredentialStore) Initialize(ctx context.Context) error {
	access, ok, err := s.kv.Get(ctx, KeyAccessToken)
	if err != nil {
		return err
	}
	if ok {
		s.mu.Lock()
		s.access = access
		s.mu.Unlock()
	}

	refresh, ok, err := s.kv.Get(ctx, KeyRefreshToken)
	if err != nil {
		return err
	}
	if ok {
		s.mu.Lock()
		s.refresh = refresh
		s.mu.Unlock()
	}
	return nil
}

// Clear removes both tokens from memory and durable storage.
func (s *CredentialStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.access = ""
	s.refresh = ""
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, KeyAccessToken); err != nil {
		return err
	}
	return s.kv.Delete(ctx, KeyRefreshToken)
}
