package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingRepository is returned before any network call when the form
	// declares no github.repository.
	ErrMissingRepository = errors.New("dispatch: github.repository is not configured")
	// ErrMissingToken is returned before any network call when no token is given.
	ErrMissingToken = errors.New("dispatch: github token is required")
	// ErrUnsupportedFields refuses forms that still contain unknown field types.
	ErrUnsupportedFields = errors.New("dispatch: form contains unsupported field types")
	// ErrNoSchema is returned when there is no parsed form to dispatch.
	ErrNoSchema = errors.New("dispatch: no form schema")
	// ErrDispatchInFlight is returned while another dispatch on the same client
	// is outstanding.
	ErrDispatchInFlight = errors.New("dispatch: a dispatch is already in flight")
)

// TransportError wraps network failures talking to the dispatch endpoint.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("dispatch: transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RemoteError carries a non-2xx response. Body is the raw response JSON,
// kept verbatim for display.
type RemoteError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *RemoteError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("dispatch: remote status %d: %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("dispatch: remote status %d", e.StatusCode)
}

// Message extracts the "error" (and "details" when present) from the body.
func (e *RemoteError) Message() string {
	var body struct {
		Error   string `json:"error"`
		Details any    `json:"details"`
	}
	if err := json.Unmarshal(e.Body, &body); err != nil {
		return strings.TrimSpace(string(e.Body))
	}
	if details, ok := body.Details.(string); ok && details != "" {
		return body.Error + ": " + details
	}
	return body.Error
}
