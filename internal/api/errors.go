package api

import (
	"errors"
	"fmt"
)

// Common API errors
var (
	// ErrInvalidBaseURL is returned when API_BASE is empty or not an absolute URL.
	ErrInvalidBaseURL = errors.New("invalid API base URL")

	// ErrRequestFailed is returned when the request could not be sent or no
	// response was received (DNS, connection refused, timeout).
	ErrRequestFailed = errors.New("request to invoice API failed")

	// ErrUnexpectedStatus is returned for any non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status from invoice API")

	// ErrDecodeResponse is returned when a response body is not the expected JSON.
	ErrDecodeResponse = errors.New("could not decode invoice API response")

	// ErrAnalysisFailed is returned when the VLM answered but its output was not
	// usable structured data.
	ErrAnalysisFailed = errors.New("invoice analysis failed")

	// ErrStatsUnavailable is returned when the dashboard endpoint reports an error.
	ErrStatsUnavailable = errors.New("dashboard statistics unavailable")

	// ErrEmptyQuestion is returned when a chat question is blank.
	ErrEmptyQuestion = errors.New("question is empty")
)

// APIError wraps errors with the endpoint and status of the failed call.
type APIError struct {
	// Op is the client operation that failed (e.g., "Upload", "ListInvoices").
	Op string

	// Endpoint is the method and path that was called.
	Endpoint string

	// StatusCode is the HTTP status, 0 when no response was received.
	StatusCode int

	// Err is the underlying error.
	Err error

	// Details provides additional context, usually a snippet of the body.
	Details string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("api: %s %s failed", e.Op, e.Endpoint)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *APIError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewAPIError creates a new APIError.
func NewAPIError(op, endpoint string, statusCode int, err error, details string) *APIError {
	return &APIError{
		Op:         op,
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Err:        err,
		Details:    details,
	}
}
