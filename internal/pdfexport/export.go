// Package pdfexport repackages an invoice's stored image into a single A4
// page PDF.
package pdfexport

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/signintech/gopdf"
	"mufawter/internal/logger"
	"mufawter/pkg/models"
)

// DefaultStem names the file when the invoice has no vendor.
const DefaultStem = "فاتورة"

// maxImageBytes bounds the downloaded image.
const maxImageBytes = 25 * 1024 * 1024

// Exporter downloads invoice images and writes them as PDFs.
type Exporter struct {
	httpClient *http.Client
	maxBytes   int64
	log        zerolog.Logger
}

// NewExporter creates an Exporter. A nil client gets a 60 second timeout.
func NewExporter(httpClient *http.Client) *Exporter {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Exporter{
		httpClient: httpClient,
		maxBytes:   maxImageBytes,
		log:        logger.WithComponent("pdfexport"),
	}
}

// Export writes the invoice image as <dir>/<FileName(inv)> and returns the
// written path.
func (e *Exporter) Export(ctx context.Context, inv models.Invoice, dir string) (string, error) {
	const op = "Export"

	doc, err := e.Render(ctx, inv)
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", NewExportError(op, inv.ID, fmt.Errorf("%w: %w", ErrRenderFailed, err), dir)
	}

	path := filepath.Join(dir, FileName(inv))
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return "", NewExportError(op, inv.ID, fmt.Errorf("%w: %w", ErrRenderFailed, err), path)
	}

	e.log.Info().
		Int64("invoice_id", inv.ID).
		Str("path", path).
		Int("bytes", len(doc)).
		Msg("Invoice exported as PDF")

	return path, nil
}

// Render fetches the invoice image and returns the PDF bytes.
func (e *Exporter) Render(ctx context.Context, inv models.Invoice) ([]byte, error) {
	const op = "Render"

	if strings.TrimSpace(inv.ImageURL) == "" {
		return nil, NewExportError(op, inv.ID, ErrNoImage, "")
	}

	raw, err := e.fetch(ctx, inv.ImageURL)
	if err != nil {
		return nil, NewExportError(op, inv.ID, err, inv.ImageURL)
	}

	img, err := embeddable(raw)
	if err != nil {
		return nil, NewExportError(op, inv.ID, err, "")
	}

	doc, err := singlePage(img)
	if err != nil {
		return nil, NewExportError(op, inv.ID, fmt.Errorf("%w: %w", ErrRenderFailed, err), "")
	}
	return doc, nil
}

func (e *Exporter) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			e.log.Warn().Err(closeErr).Msg("Failed to close image response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if int64(len(data)) > e.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, e.maxBytes)
	}
	return data, nil
}

// embeddable returns JPEG and PNG bytes as-is and re-encodes other decodable
// formats as PNG.
func embeddable(raw []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	if format == "jpeg" || format == "png" {
		return raw, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecodeFailed, err)
	}
	return buf.Bytes(), nil
}

// singlePage stretches the image over one A4 portrait page.
func singlePage(img []byte) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	holder, err := gopdf.ImageHolderByBytes(img)
	if err != nil {
		return nil, err
	}
	page := gopdf.Rect{W: gopdf.PageSizeA4.W, H: gopdf.PageSizeA4.H}
	if err := pdf.ImageByHolder(holder, 0, 0, &page); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileName is <vendor or فاتورة>_<invoice number or id>.pdf with path
// separators removed.
func FileName(inv models.Invoice) string {
	stem := strings.TrimSpace(inv.Vendor)
	if stem == "" {
		stem = DefaultStem
	}
	suffix := strings.TrimSpace(inv.InvoiceNumber)
	if suffix == "" {
		suffix = strconv.FormatInt(inv.ID, 10)
	}
	return sanitize(stem) + "_" + sanitize(suffix) + ".pdf"
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '-'
		}
		return r
	}, s)
}
