package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"mufawter/pkg/models"
)

// MaxUploadSizeBytes is the largest file the upload endpoint accepts (20MB).
const MaxUploadSizeBytes = 20 * 1024 * 1024

// Upload sends an invoice image or PDF as multipart field "file" and returns
// the URL of the stored image. PDFs are converted to an image server-side.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*models.UploadResult, error) {
	const op = "Upload"
	const path = "/upload/"

	content, err := io.ReadAll(io.LimitReader(r, MaxUploadSizeBytes+1))
	if err != nil {
		return nil, NewAPIError(op, "POST "+path, 0, err, "failed to read file")
	}
	if len(content) > MaxUploadSizeBytes {
		return nil, NewAPIError(op, "POST "+path, 0, ErrRequestFailed, fmt.Sprintf("file exceeds %d bytes", MaxUploadSizeBytes))
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	header.Set("Content-Type", ContentType(filename, content))

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, NewAPIError(op, "POST "+path, 0, err, "failed to build multipart body")
	}
	if _, err := part.Write(content); err != nil {
		return nil, NewAPIError(op, "POST "+path, 0, err, "failed to build multipart body")
	}
	if err := mw.Close(); err != nil {
		return nil, NewAPIError(op, "POST "+path, 0, err, "failed to build multipart body")
	}

	data, err := c.do(ctx, op, http.MethodPost, path, &body, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var result models.UploadResult
	if err := decode(op, "POST "+path, data, &result); err != nil {
		return nil, err
	}
	if result.URL == "" {
		return nil, NewAPIError(op, "POST "+path, 0, ErrDecodeResponse, "response has no url")
	}

	c.log.Info().
		Str("file", filepath.Base(filename)).
		Int("size", len(content)).
		Bool("converted_from_pdf", result.ConvertedFromPDF).
		Msg("Invoice file uploaded")

	return &result, nil
}

// ContentType guesses the MIME type of an upload from its extension, then
// from its content.
func ContentType(filename string, content []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	return http.DetectContentType(content)
}

type analyzeRequest struct {
	ImageURL string `json:"image_url"`
}

// Analyze runs the VLM over an uploaded image. The backend saves the
// resulting invoice.
func (c *Client) Analyze(ctx context.Context, imageURL string) (*models.Analysis, error) {
	return c.analyze(ctx, "Analyze", "/vlm/analyze", imageURL)
}

// AnalyzeOnly runs the VLM without saving, so the caller can review the
// fields and persist them with SaveAnalyzed.
func (c *Client) AnalyzeOnly(ctx context.Context, imageURL string) (*models.Analysis, error) {
	return c.analyze(ctx, "AnalyzeOnly", "/vlm/analyze-only", imageURL)
}

func (c *Client) analyze(ctx context.Context, op, path, imageURL string) (*models.Analysis, error) {
	if strings.TrimSpace(imageURL) == "" {
		return nil, NewAPIError(op, "POST "+path, 0, ErrAnalysisFailed, "image url is empty")
	}

	var analysis models.Analysis
	if err := c.doJSON(ctx, op, http.MethodPost, path, analyzeRequest{ImageURL: imageURL}, &analysis); err != nil {
		return nil, err
	}
	if strings.EqualFold(analysis.Status, "error") {
		return nil, NewAPIError(op, "POST "+path, 0, ErrAnalysisFailed, snippet([]byte(analysis.RawOutput)))
	}

	c.log.Info().
		Int64("invoice_id", analysis.InvoiceID).
		Str("category", analysis.Category.EN).
		Float64("seconds", analysis.TimeTaken).
		Msg("Invoice analyzed")

	return &analysis, nil
}

// SaveAnalyzed persists reviewed analysis fields and returns the stored invoice.
func (c *Client) SaveAnalyzed(ctx context.Context, req models.SaveRequest) (*models.Invoice, error) {
	const op = "SaveAnalyzed"
	const path = "/invoices/save-analyzed"

	var raw json.RawMessage
	if err := c.doJSON(ctx, op, http.MethodPost, path, req, &raw); err != nil {
		return nil, err
	}

	// The record may come bare or wrapped as {"status": ..., "data": {...}}.
	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Data) > 0 && !bytes.Equal(wrapped.Data, []byte("null")) {
		raw = wrapped.Data
	}

	var inv models.Invoice
	if err := decode(op, "POST "+path, raw, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListInvoices fetches every invoice. A body that is not a JSON array is
// treated as an empty list.
func (c *Client) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	const op = "ListInvoices"
	const path = "/invoices/all"

	data, err := c.do(ctx, op, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		c.log.Warn().
			Str("body", snippet(trimmed)).
			Msg("Invoice list response is not an array, using empty list")
		return []models.Invoice{}, nil
	}

	var invoices []models.Invoice
	if err := decode(op, "GET "+path, trimmed, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// DashboardStats fetches the server-side aggregates.
func (c *Client) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	const op = "DashboardStats"
	const path = "/dashboard/stats"

	var stats models.DashboardStats
	if err := c.doJSON(ctx, op, http.MethodGet, path, nil, &stats); err != nil {
		return nil, err
	}
	if stats.Error != "" {
		return nil, NewAPIError(op, "GET "+path, 0, ErrStatsUnavailable, stats.Error)
	}
	return &stats, nil
}

type askRequest struct {
	Question string `json:"question"`
}

// Ask sends a question about the user's invoices to the chat endpoint.
func (c *Client) Ask(ctx context.Context, question string) (*models.ChatReply, error) {
	const op = "Ask"
	const path = "/chat/ask"

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, NewAPIError(op, "POST "+path, 0, ErrEmptyQuestion, "")
	}

	var reply models.ChatReply
	if err := c.doJSON(ctx, op, http.MethodPost, path, askRequest{Question: question}, &reply); err != nil {
		return nil, err
	}
	return &reply, nil
}
