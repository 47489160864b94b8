package domain

// DurableSessionState is the part of the session that survives a restart.
// It is persisted as a single JSON blob and loaded on startup.
type DurableSessionState struct {
	User            *UserProfile `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// TransientSessionState describes an in-flight auth operation. It is never
// persisted: a fresh process always starts non-loading with no error.
type TransientSessionState struct {
	IsLoading bool   `json:"isLoading"`
	Error     string `json:"error,omitempty"`
}

// Session is the full session view composed from the durable and transient
// parts at read time.
type Session struct {
	DurableSessionState
	TransientSessionState
}
