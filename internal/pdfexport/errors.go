package pdfexport

import (
	"errors"
	"fmt"
)

// Common export errors
var (
	// ErrNoImage is returned when the invoice has no stored image. No request
	// is made in that case.
	ErrNoImage = errors.New("invoice has no image")

	// ErrFetchFailed is returned when the image could not be downloaded.
	ErrFetchFailed = errors.New("failed to fetch invoice image")

	// ErrImageTooLarge is returned when the image exceeds the download limit.
	ErrImageTooLarge = errors.New("invoice image too large")

	// ErrDecodeFailed is returned when the downloaded bytes are not a
	// supported image.
	ErrDecodeFailed = errors.New("failed to decode invoice image")

	// ErrRenderFailed is returned when the PDF could not be built or written.
	ErrRenderFailed = errors.New("failed to render PDF")
)

// ExportError carries the invoice that failed to export.
type ExportError struct {
	Op        string
	InvoiceID int64
	Err       error
	Details   string
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("pdfexport: %s failed for invoice %d: %v (%s)", e.Op, e.InvoiceID, e.Err, e.Details)
	}
	return fmt.Sprintf("pdfexport: %s failed for invoice %d: %v", e.Op, e.InvoiceID, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExportError) Unwrap() error {
	return e.Err
}

// Is implements error matching.
func (e *ExportError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewExportError creates a new ExportError.
func NewExportError(op string, invoiceID int64, err error, details string) *ExportError {
	return &ExportError{
		Op:        op,
		InvoiceID: invoiceID,
		Err:       err,
		Details:   details,
	}
}
