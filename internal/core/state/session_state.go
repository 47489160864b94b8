// Package state holds the authoritative in-process session state machine:
// anonymous (with or without an error), authenticating, or authenticated.
// All mutations go through the defined actions; the durable part of the
// state survives restarts, the transient part never does.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/Dencheny123/TestWork900/internal/core/domain"
	"github.com/Dencheny123/TestWork900/internal/core/ports"
)

// stateKey is the durable blob holding {user, isAuthenticated}.
const stateKey = "auth-storage"

// initErrorMessage is surfaced when session initialization fails mid-flight.
const initErrorMessage = "Failed to initialize session"

// Container is the session state container. Only user and isAuthenticated
// are persisted; isLoading and error always reset on restart because they
// describe an in-flight operation, not durable session state.
type Container struct {
	mu       sync.Mutex
	auth     ports.AuthService
	kv       ports.KV
	validate *validator.Validate
	log      zerolog.Logger

	user            *domain.UserProfile
	isAuthenticated bool
	isLoading       bool
	lastError       string
}

// NewContainer builds the container and hydrates the durable state blob.
func NewContainer(ctx context.Context, auth ports.AuthService, kv ports.KV, log zerolog.Logger) *Container {
	c := &Container{
		auth:     auth,
		kv:       kv,
		validate: validator.New(),
		log:      log,
	}
	c.load(ctx)
	return c
}

func (c *Container) load(ctx context.Context) {
	raw, ok, err := c.kv.Get(ctx, stateKey)
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to read persisted session state")
		return
	}
	if !ok {
		return
	}

	var durable domain.DurableSessionState
	if err := json.Unmarshal([]byte(raw), &durable); err != nil {
		c.log.Warn().Err(err).Msg("discarding corrupt session state")
		return
	}
	c.user = durable.User
	c.isAuthenticated = durable.IsAuthenticated
}

// persist writes the durable part of the state. Must be called with the
// mutex held.
func (c *Container) persist(ctx context.Context) {
	raw, err := json.Marshal(domain.DurableSessionState{
		User:            c.user,
		IsAuthenticated: c.isAuthenticated,
	})
	if err != nil {
		c.log.Error().Err(err).Msg("failed to encode session state")
		return
	}
	if err := c.kv.Set(ctx, stateKey, string(raw)); err != nil {
		c.log.Warn().Err(err).Msg("failed to persist session state")
	}
}

// InitializeAuth recovers a prior session on startup. With no stored token
// the state settles to anonymous without any network call; otherwise the
// token is probed and the profile fetched.
func (c *Container) InitializeAuth(ctx context.Context, cookieAccess, cookieRefresh string) error {
	if err := c.auth.InitializeTokens(ctx, cookieAccess, cookieRefresh); err != nil {
		return err
	}

	if c.auth.AccessToken() == "" {
		c.mu.Lock()
		c.user = nil
		c.isAuthenticated = false
		c.lastError = ""
		c.persist(ctx)
		c.mu.Unlock()
		return nil
	}

	c.setLoading(true)

	if !c.auth.CheckAuth(ctx) {
		c.mu.Lock()
		c.user = nil
		c.isAuthenticated = false
		c.isLoading = false
		c.persist(ctx)
		c.mu.Unlock()
		return nil
	}

	profile, err := c.auth.CurrentUser(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.isLoading = false
	if err != nil {
		c.log.Warn().Err(err).Msg("session initialization failed")
		c.user = nil
		c.isAuthenticated = false
		c.lastError = initErrorMessage
		c.persist(ctx)
		return err
	}

	c.user = profile
	c.isAuthenticated = true
	c.lastError = ""
	c.persist(ctx)
	return nil
}

// Login validates the form locally first; an invalid form settles to
// anonymous with an error and never reaches the network. A valid form goes
// through the session service, ending authenticated or anonymous(error).
func (c *Container) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthPayload, error) {
	if err := c.validate.Struct(creds); err != nil {
		msg := loginFormError(err)
		c.mu.Lock()
		c.user = nil
		c.isAuthenticated = false
		c.lastError = msg
		c.persist(ctx)
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, msg)
	}

	c.setLoading(true)

	payload, err := c.auth.Login(ctx, creds.Username, creds.Password)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.isLoading = false
	if err != nil {
		c.isAuthenticated = false
		c.lastError = errorMessage(err)
		c.persist(ctx)
		return nil, err
	}

	c.user = payload.Profile()
	c.isAuthenticated = true
	c.lastError = ""
	c.persist(ctx)
	return payload, nil
}

// Logout resets the session to anonymous synchronously. The state is reset
// even when clearing the durable tokens fails.
func (c *Container) Logout(ctx context.Context) error {
	err := c.auth.Logout(ctx)

	c.mu.Lock()
	c.user = nil
	c.isAuthenticated = false
	c.isLoading = false
	c.lastError = ""
	c.persist(ctx)
	c.mu.Unlock()
	return err
}

// CheckAuth re-validates the session. A failed probe settles to anonymous
// with no error; a successful probe keeps the authenticated state, fetching
// the profile only when it is not already cached.
func (c *Container) CheckAuth(ctx context.Context) bool {
	if !c.auth.CheckAuth(ctx) {
		c.reset(ctx)
		return false
	}

	c.mu.Lock()
	cached := c.user != nil
	c.mu.Unlock()

	if !cached {
		profile, err := c.auth.CurrentUser(ctx)
		if err != nil {
			c.log.Debug().Err(err).Msg("auth check failed")
			c.reset(ctx)
			return false
		}
		c.mu.Lock()
		c.user = profile
		c.isAuthenticated = true
		c.persist(ctx)
		c.mu.Unlock()
		return true
	}

	c.mu.Lock()
	c.isAuthenticated = true
	c.persist(ctx)
	c.mu.Unlock()
	return true
}

// ClearError drops the error message without changing the authentication
// status.
func (c *Container) ClearError() {
	c.mu.Lock()
	c.lastError = ""
	c.mu.Unlock()
}

// Snapshot returns the full session view.
func (c *Container) Snapshot() domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	var user *domain.UserProfile
	if c.user != nil {
		u := *c.user
		user = &u
	}
	return domain.Session{
		DurableSessionState: domain.DurableSessionState{
			User:            user,
			IsAuthenticated: c.isAuthenticated,
		},
		TransientSessionState: domain.TransientSessionState{
			IsLoading: c.isLoading,
			Error:     c.lastError,
		},
	}
}

func (c *Container) setLoading(loading bool) {
	c.mu.Lock()
	c.isLoading = loading
	if loading {
		c.lastError = ""
	}
	c.mu.Unlock()
}

func (c *Container) reset(ctx context.Context) {
	c.mu.Lock()
	c.user = nil
	c.isAuthenticated = false
	c.isLoading = false
	c.lastError = ""
	c.persist(ctx)
	c.mu.Unlock()
}

// errorMessage prefers the normalized API message over the raw error text.
func errorMessage(err error) string {
	if apiErr, ok := domain.AsAPIError(err); ok {
		return apiErr.Message
	}
	return err.Error()
}

// loginFormError renders validator output as one human-readable message.
func loginFormError(err error) string {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return "Please correct the form errors"
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed validation (%s)", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
