package invoice

import (
	"errors"
	"fmt"
	"strings"
)

// Common invoice review errors
var (
	// ErrNotAnInvoice is returned when too few expected fields were extracted
	// for the image to be a real invoice. The user should retake the photo.
	ErrNotAnInvoice = errors.New("image does not look like an invoice")

	// ErrInvalidOverride is returned when a review override is not Field=Value
	// or names an unknown field.
	ErrInvalidOverride = errors.New("invalid field override")

	// ErrMissingImage is returned when a save request has no stored image URL.
	ErrMissingImage = errors.New("missing image URL")
)

// ValidationError reports how many of the expected fields were populated.
type ValidationError struct {
	Populated int
	Expected  int
	Minimum   int
	Missing   []string
	Err       error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invoice: only %d of %d expected fields populated (need %d)", e.Populated, e.Expected, e.Minimum)
	if len(e.Missing) > 0 {
		msg += "; missing: " + strings.Join(e.Missing, ", ")
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ValidationError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewValidationError creates a ValidationError wrapping ErrNotAnInvoice.
func NewValidationError(populated, expected, minimum int, missing []string) *ValidationError {
	return &ValidationError{
		Populated: populated,
		Expected:  expected,
		Minimum:   minimum,
		Missing:   missing,
		Err:       ErrNotAnInvoice,
	}
}

// OverrideError describes a rejected Field=Value override.
type OverrideError struct {
	Input   string
	Message string
}

// Error implements the error interface.
func (e *OverrideError) Error() string {
	return fmt.Sprintf("invoice: override %q: %s: %v", e.Input, e.Message, ErrInvalidOverride)
}

// Unwrap returns ErrInvalidOverride.
func (e *OverrideError) Unwrap() error {
	return ErrInvalidOverride
}
