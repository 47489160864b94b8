package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a local form validation failure. It never reaches
	// the network layer.
	ErrValidation = errors.New("validation failed")

	// ErrNotAuthenticated is returned for operations that require a session
	// when none is established.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// NetworkErrorMessage is the message carried by an APIError when the upstream
// could not be reached at all. The catalog error translation keys on it.
const NetworkErrorMessage = "Network Error"

// APIError is the single normalized shape for every upstream failure.
// Errors are normalized once at the request pipeline boundary and never
// re-wrapped. Status 0 means the request never produced an HTTP response.
type APIError struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// NewAPIError builds an APIError with the given message and status.
func NewAPIError(message string, status int) *APIError {
	return &APIError{Message: message, Status: status}
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
