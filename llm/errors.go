package llm

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure categories.
type ErrorKind string

const (
	// ErrorKindNetwork: the request was sent but no response arrived.
	ErrorKindNetwork ErrorKind = "network"
	// ErrorKindHTTPStatus: a response arrived with status >= 400.
	ErrorKindHTTPStatus ErrorKind = "http_status"
	// ErrorKindMalformedResponse: a successful response lacked the expected fields.
	ErrorKindMalformedResponse ErrorKind = "malformed_response"
	// ErrorKindConfiguration: the call could not be attempted with the current settings.
	ErrorKindConfiguration ErrorKind = "configuration"
	ErrorKindUnknown       ErrorKind = "unknown"
)

// Error is a classified, provider-neutral gateway error.
type Error struct {
	Kind       ErrorKind
	Message    string
	Details    string
	Retryable  bool
	StatusCode int
	// Op is the human-readable label of the operation that failed.
	Op    string
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("HTTP %d: %s", e.StatusCode, msg)
	}
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// StatusError reports that the server answered with an error status.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server responded with status %d", e.StatusCode)
}

// MalformedResponseError reports a response body that could not be decoded
// into the canonical result.
type MalformedResponseError struct {
	Reason string
	Body   []byte
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return "malformed response: " + e.Reason + ": " + e.Err.Error()
	}
	return "malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// IsKind checks if err is a classified error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Kind == kind
	}
	return false
}

// IsRetryableError checks if an error is a classified retryable error.
func IsRetryableError(err error) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Retryable
	}
	return false
}

// NewConfigurationError creates an error for settings that prevent a call.
func NewConfigurationError(message string) *Error {
	return &Error{
		Kind:    ErrorKindConfiguration,
		Message: message,
	}
}

// NewMalformedResponseError creates the error adapters return for undecodable bodies.
func NewMalformedResponseError(reason string, body []byte, err error) *MalformedResponseError {
	return &MalformedResponseError{Reason: reason, Body: body, Err: err}
}
