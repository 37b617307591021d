package impaktor

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when a call is issued before a base
	// address has been set.
	ErrNotConfigured = errors.New("impaktor: client is not configured")

	// ErrInvalidBaseAddress is returned for a base address that is empty,
	// carries a scheme, or does not name a host.
	ErrInvalidBaseAddress = errors.New("impaktor: invalid base address")

	// ErrNegativeTimeout is returned for a timeout below zero.
	ErrNegativeTimeout = errors.New("impaktor: timeout must not be negative")

	// ErrUnknownTimeUnit is returned for a TimeUnit outside the defined set.
	ErrUnknownTimeUnit = errors.New("impaktor: unknown time unit")

	// ErrTimeoutTooLarge is returned for a timeout beyond what time.Duration holds.
	ErrTimeoutTooLarge = errors.New("impaktor: timeout too large")

	// ErrUnsupportedVerb is returned for a Verb other than GET, POST, PUT,
	// DELETE or PATCH.
	ErrUnsupportedVerb = errors.New("impaktor: unsupported verb")

	errPanic = errors.New("impaktor: panic during call")
)

// Messages carried by transport error outcomes.
const (
	MessageBadStatus     = "Oops! something went wrong"
	MessageTimeout       = "Request timeout"
	MessageNetwork       = "A network error occurred"
	MessageSerialization = "Oops! serialization error occurred"
	MessageNotConfigured = "Client is not configured"
	MessageUnexpected    = "Oops! an unexpected error occurred"
)

// StatusError is a response whose status is 300 or above.
type StatusError struct {
	StatusCode int
	Body       []byte
	Method     string
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("impaktor: %s %s: status %d", e.Method, e.URL, e.StatusCode)
}

// NetworkError is an I/O failure that left no response to inspect.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("impaktor: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeError is a failure to encode a request body or decode a 2xx
// response body.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("impaktor: %s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

const defaultReason = "Oops! Something went wrong"

// APIError is the conventional failure payload: an object with a "message"
// and/or an "error" field.
type APIError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Reason returns the message, else the error, else a generic fallback.
func (e APIError) Reason() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Error != "" {
		return e.Error
	}
	return defaultReason
}
