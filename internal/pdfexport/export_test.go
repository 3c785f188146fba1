package pdfexport

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mufawter/pkg/models"
)

type failingTransport struct {
	t *testing.T
}

func (f failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.t.Fatal("no request expected")
	return nil, errors.New("unreachable")
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 6))
	for x := 0; x < 4; x++ {
		for y := 0; y < 6; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage()))
	return buf.Bytes()
}

func imageServer(t *testing.T, body []byte, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExportNoImageMakesNoRequest(t *testing.T) {
	e := NewExporter(&http.Client{Transport: failingTransport{t: t}})

	_, err := e.Export(context.Background(), models.Invoice{ID: 3}, t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestExportWritesPDF(t *testing.T) {
	srv := imageServer(t, pngBytes(t), http.StatusOK)
	dir := t.TempDir()

	inv := models.Invoice{ID: 9, Vendor: "Panda", InvoiceNumber: "INV-77", ImageURL: srv.URL + "/img.png"}
	path, err := NewExporter(srv.Client()).Export(context.Background(), inv, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Panda_INV-77.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRenderGIF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, testImage(), nil))
	srv := imageServer(t, buf.Bytes(), http.StatusOK)

	doc, err := NewExporter(srv.Client()).Render(context.Background(), models.Invoice{ID: 1, ImageURL: srv.URL})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
}

func TestRenderFetchFailed(t *testing.T) {
	srv := imageServer(t, []byte("missing"), http.StatusNotFound)

	_, err := NewExporter(srv.Client()).Render(context.Background(), models.Invoice{ID: 1, ImageURL: srv.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)

	var exportErr *ExportError
	require.True(t, errors.As(err, &exportErr))
	assert.Equal(t, int64(1), exportErr.InvoiceID)
}

func TestRenderImageTooLarge(t *testing.T) {
	srv := imageServer(t, bytes.Repeat([]byte{0xff}, 65), http.StatusOK)

	e := NewExporter(srv.Client())
	e.maxBytes = 64
	_, err := e.Render(context.Background(), models.Invoice{ID: 3, ImageURL: srv.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.NotErrorIs(t, err, ErrDecodeFailed)
}

func TestRenderDecodeFailed(t *testing.T) {
	srv := imageServer(t, []byte("<html>not an image</html>"), http.StatusOK)

	_, err := NewExporter(srv.Client()).Render(context.Background(), models.Invoice{ID: 2, ImageURL: srv.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecodeFailed)
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		inv  models.Invoice
		want string
	}{
		{name: "vendor and number", inv: models.Invoice{ID: 1, Vendor: "Jarir", InvoiceNumber: "A-1"}, want: "Jarir_A-1.pdf"},
		{name: "falls back to id", inv: models.Invoice{ID: 12, Vendor: "Jarir"}, want: "Jarir_12.pdf"},
		{name: "falls back to default stem", inv: models.Invoice{ID: 5}, want: "فاتورة_5.pdf"},
		{name: "strips separators", inv: models.Invoice{ID: 5, Vendor: "A/B", InvoiceNumber: "1\\2"}, want: "A-B_1-2.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.inv))
		})
	}
}
