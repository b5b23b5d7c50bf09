package omdb

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/segmentio/encoding/json"
)

// Common errors
var (
	// ErrMissingCredential indicates no API key could be resolved
	ErrMissingCredential = errors.New("omdb API key is not configured")
	// ErrUnexpectedPayload indicates the body did not have the expected shape
	ErrUnexpectedPayload = errors.New("unexpected omdb payload")
)

// InvalidModeError is returned when a query names an unsupported lookup mode.
// It is raised before any network call.
type InvalidModeError struct {
	Mode string
}

// Error implements the error interface
func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid query mode %q (must be one of id, title, search)", e.Mode)
}

// TransportError represents a non-2xx HTTP status from the service
type TransportError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("omdb API error: status %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// IsUnauthorized checks if the status indicates a rejected API key
func (e *TransportError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// RemoteRejectionError is returned when the HTTP call succeeded but the service
// reported failure in the payload. Message is the service's text, unchanged.
type RemoteRejectionError struct {
	Message string
}

// Error implements the error interface
func (e *RemoteRejectionError) Error() string {
	return e.Message
}

// IsNotFound reports whether the service could not find the requested entity
func (e *RemoteRejectionError) IsNotFound() bool {
	switch e.Message {
	case "Incorrect IMDb ID.", "Movie not found!", "Series not found!", "Game not found!":
		return true
	}
	return false
}

// IsTooManyResults reports whether a search term matched too broadly
func (e *RemoteRejectionError) IsTooManyResults() bool {
	return e.Message == "Too many results."
}

// FieldCoercionWarning records a field that was present but could not be
// converted to its numeric or date form. The field is left missing.
type FieldCoercionWarning struct {
	Field string
	Value string
	Err   error
}

// Error implements the error interface
func (w FieldCoercionWarning) Error() string {
	return fmt.Sprintf("cannot coerce field %s=%q: %v", w.Field, w.Value, w.Err)
}

// Unwrap returns the underlying parse error
func (w FieldCoercionWarning) Unwrap() error {
	return w.Err
}

// MarshalJSON renders the warning as {field, value, error}
func (w FieldCoercionWarning) MarshalJSON() ([]byte, error) {
	out := struct {
		Field string `json:"field"`
		Value string `json:"value"`
		Error string `json:"error,omitempty"`
	}{Field: w.Field, Value: w.Value}
	if w.Err != nil {
		out.Error = w.Err.Error()
	}
	return json.Marshal(out)
}
