package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidName rejects form names outside ^[a-z0-9-]+$ before any call.
	ErrInvalidName = errors.New("registry: form name must contain only lowercase letters, numbers, and hyphens")
	// ErrConflict matches 409 responses: the name is taken.
	ErrConflict = errors.New("registry: form with this name already exists")
	// ErrNotFound matches 404 responses.
	ErrNotFound = errors.New("registry: form not found")
)

// APIError is a non-2xx registry response. Message is the server's "error"
// text verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("registry: status %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps well-known statuses onto sentinels for errors.Is.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case 409:
		return ErrConflict
	case 404:
		return ErrNotFound
	default:
		return nil
	}
}

// TransportError wraps network failures talking to the registry.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("registry: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
