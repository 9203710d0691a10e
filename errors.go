package auraxis

import (
	"errors"
	"fmt"
)

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	ErrMsgNotFound           = "no results for query"
	ErrMsgServiceUnavailable = "service unavailable"
	ErrMsgMissingServiceID   = "missing service ID"
	ErrMsgInvalidServiceID   = "service ID not registered"
	ErrMsgBadRequest         = "invalid query syntax"
	ErrMsgResponseFormat     = "unexpected response format"
)

// Common API errors. Wrap these with fmt.Errorf("%w: ...", ErrXxx) for
// additional context; callers match with errors.Is.
var (
	ErrNotFound = errors.New(ErrMsgNotFound)

	// ErrServiceUnavailable means the vendor API is down or the named
	// collection is temporarily disabled. Retrying later usually helps.
	ErrServiceUnavailable = errors.New(ErrMsgServiceUnavailable)

	ErrMissingServiceID = errors.New(ErrMsgMissingServiceID)
	ErrInvalidServiceID = errors.New(ErrMsgInvalidServiceID)
	ErrBadRequest       = errors.New(ErrMsgBadRequest)
	ErrResponseFormat   = errors.New(ErrMsgResponseFormat)
)

// ServerError is returned when the API reports a fault in the response
// body. The vendor signals errors structurally with HTTP 200, so status
// codes alone say nothing.
type ServerError struct {
	// Err is the sentinel the body mapped to, for errors.Is matching.
	Err error
	// Message is the raw error string from the response body.
	Message string
	// URL is the request URL with the service ID redacted.
	URL string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("census: %s (%s)", e.Message, e.URL)
}

func (e *ServerError) Unwrap() error { return e.Err }

// PayloadError is returned when a response decoded fine as JSON but is
// missing a key or holds a value of the wrong shape.
type PayloadError struct {
	Key     string
	Message string
}

func (e *PayloadError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("payload: %s: key %q", e.Message, e.Key)
	}
	return "payload: " + e.Message
}

func (e *PayloadError) Unwrap() error { return ErrResponseFormat }
