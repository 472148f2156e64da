package qanything

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
// These can be checked with errors.Is().
var (
	// ErrMissingAPIKey indicates the API key is empty or unset.
	ErrMissingAPIKey = errors.New("qanything: missing API key")

	// ErrInvalidRequest indicates the request parameters are invalid.
	// Precondition failures are reported before any network call is made.
	ErrInvalidRequest = errors.New("qanything: invalid request")

	// ErrRemote indicates the remote service reported a non-success errorCode
	// inside an otherwise well-formed response envelope.
	ErrRemote = errors.New("qanything: remote error")

	// ErrUnavailable indicates the remote service is down or unreachable.
	ErrUnavailable = errors.New("qanything: service unavailable")
)

// ErrorCode is a machine-readable identifier for API failures.
type ErrorCode string

const (
	ErrorCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrorCodeBadStatus    ErrorCode = "BAD_STATUS"
	ErrorCodeRemote       ErrorCode = "REMOTE"
	ErrorCodeUnavailable  ErrorCode = "UNAVAILABLE"
)

// ValidationError represents an error in request parameter validation.
// Validation happens client-side, before any network call.
type ValidationError struct {
	Field  string // The parameter field that failed validation
	Value  any    // The invalid value
	Reason string // Human-readable explanation
	Err    error  // Wrapped error (usually ErrInvalidRequest)
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation failed for '%s' (value: %v): %s (%v)", e.Field, e.Value, e.Reason, e.Err)
	}
	return fmt.Sprintf("validation failed for '%s' (value: %v): %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// APIError represents a transport-level failure: a non-success HTTP status or
// a network error while talking to the remote endpoint.
type APIError struct {
	Code       ErrorCode // Machine-readable code
	Endpoint   string    // API path that failed (e.g., "/chat_stream")
	StatusCode int       // HTTP status code (0 if the request never completed)
	Message    string    // Response body text or network error message
	Err        error     // Wrapped sentinel error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("qanything %s: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("qanything %s: %s", e.Endpoint, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// RemoteError represents a non-success errorCode reported by the remote
// service inside a well-formed response envelope ("0" denotes success).
type RemoteError struct {
	Code string // Remote errorCode (e.g., "1", "102")
	Msg  string // Remote message text
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("qanything: remote error %s: %s", e.Code, e.Msg)
}

func (e *RemoteError) Unwrap() error {
	return ErrRemote
}

// IsAuthError checks if an error is related to authentication.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrMissingAPIKey) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		// HTTP 401/403 indicate auth issues
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}

	return false
}

// IsRetryable checks if an error is potentially retryable.
// The client never retries automatically; callers decide.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrUnavailable) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}

	return false
}

// IsValidationError checks if an error came from client-side request
// validation rather than the network or the remote service.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}

	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
