// Package ocr runs a local pre-upload check on invoice files with Google
// Cloud Vision text detection. A photo or PDF with no readable text is
// rejected before it is sent to the extraction backend.
//
// Credentials come from the environment:
//   - GOOGLE_CREDENTIALS: inline service account JSON, OR
//   - GOOGLE_APPLICATION_CREDENTIALS: path to a service account JSON file
//   - otherwise Application Default Credentials are tried
//
// Cloud Vision limits for synchronous calls:
//   - maximum file size 20MB
//   - at most 5 PDF pages are read
package ocr

import (
	"context"
	"io"
	"time"
)

// Checker reports whether an invoice file carries readable text.
type Checker interface {
	// Check detects text in an image (JPEG, PNG, GIF, WEBP, BMP) or PDF.
	// It returns ErrNoText when nothing readable was found.
	Check(ctx context.Context, filename string, r io.Reader) (*Result, error)

	// Close releases the underlying client.
	Close() error
}

// Result is the outcome of a text precheck.
type Result struct {
	// Text is the detected text of all pages in reading order.
	Text string `json:"text"`

	// PageCount is 1 for images and the number of read pages for PDFs.
	PageCount int `json:"page_count"`

	// Confidence is the average page confidence (0.0 to 1.0).
	Confidence float32 `json:"confidence"`

	// LanguageCodes are the detected languages, sorted.
	LanguageCodes []string `json:"language_codes,omitempty"`

	// Duration is how long the Vision call took.
	Duration time.Duration `json:"duration"`
}
