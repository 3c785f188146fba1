// Package api is the fetch layer of the invoice client: one thin method per
// REST endpoint of the invoice backend.
//
// The backend is an opaque collaborator reached through API_BASE. Every call
// is one-shot (no retries) and bounded by the caller's context and the
// client's timeout.
//
// Endpoints:
//   - POST /upload/                 multipart file → {url, converted_from_pdf}
//   - POST /vlm/analyze             {image_url} → extraction, saved server-side
//   - POST /vlm/analyze-only        {image_url} → extraction, not saved
//   - POST /invoices/save-analyzed  reviewed fields → invoice record
//   - GET  /invoices/all            → []invoice
//   - GET  /dashboard/stats         → aggregate stats
//   - POST /chat/ask                {question} → {answer|reply, invoices}
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"mufawter/internal/logger"
)

const (
	// DefaultTimeout bounds a single API call when no timeout is configured.
	DefaultTimeout = 60 * time.Second

	// maxDetailBytes limits how much of an error body is kept for messages.
	maxDetailBytes = 300
)

// Client talks to the invoice backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	const op = "NewClient"

	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, NewAPIError(op, baseURL, 0, ErrInvalidBaseURL, "expected an absolute http(s) URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, NewAPIError(op, baseURL, 0, ErrInvalidBaseURL, fmt.Sprintf("unsupported scheme %q", u.Scheme))
	}

	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        logger.WithComponent("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends a request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string) ([]byte, error) {
	endpoint := method + " " + path

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, NewAPIError(op, endpoint, 0, ErrRequestFailed, err.Error())
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error().
			Err(err).
			Str("endpoint", endpoint).
			Msg("Request to invoice API failed")
		return nil, NewAPIError(op, endpoint, 0, fmt.Errorf("%w: %w", ErrRequestFailed, err), "")
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.Warn().Err(closeErr).Msg("Failed to close response body")
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewAPIError(op, endpoint, resp.StatusCode, ErrRequestFailed, "failed to read response body")
	}

	c.log.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Dur("duration", time.Since(start)).
		Msg("Invoice API call completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewAPIError(op, endpoint, resp.StatusCode, ErrUnexpectedStatus, snippet(data))
	}
	return data, nil
}

// doJSON sends in as a JSON body (nil for none) and decodes the response into out.
func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return NewAPIError(op, method+" "+path, 0, err, "failed to encode request body")
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	data, err := c.do(ctx, op, method, path, body, contentType)
	if err != nil {
		return err
	}
	return decode(op, method+" "+path, data, out)
}

func decode(op, endpoint string, data []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return NewAPIError(op, endpoint, 0, fmt.Errorf("%w: %w", ErrDecodeResponse, err), snippet(data))
	}
	return nil
}

// snippet shortens a body for error messages, cutting on a rune boundary.
func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) <= maxDetailBytes {
		return s
	}
	cut := maxDetailBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
