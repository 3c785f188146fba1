package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
	"mufawter/internal/analytics"
	"mufawter/pkg/models"
)

func TestExtractSpreadsheetID(t *testing.T) {
	id, err := extractSpreadsheetID("https://docs.google.com/spreadsheets/d/1AbC-d_9/edit#gid=0")
	require.NoError(t, err)
	assert.Equal(t, "1AbC-d_9", id)

	_, err = extractSpreadsheetID("https://example.com/not-a-sheet")
	assert.Error(t, err)
}

func TestInvoiceRows(t *testing.T) {
	labels := analytics.LabelsFor("en", "SAR")
	exportedAt := time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC)

	rows := invoiceRows([]models.Invoice{
		{
			ID:            12,
			InvoiceNumber: "INV-12",
			InvoiceDate:   "2025-03-14T10:00:00",
			Vendor:        "Panda",
			Category:      models.NewCategory("بقالة", "Groceries"),
			PaymentMethod: "Visa",
			Subtotal:      "100",
			Tax:           "15",
			TotalAmount:   "115.50",
			ImageURL:      "https://cdn.example.com/12.png",
		},
		{ID: 13, InvoiceDate: "garbage"},
	}, labels, exportedAt)

	require.Len(t, rows, 2)
	require.Len(t, rows[0], len(Columns))
	assert.Equal(t, []interface{}{
		"12", "INV-12", "2025-03-14", "Panda", "بقالة", "Visa",
		100.0, 15.0, 115.5, "https://cdn.example.com/12.png", "2025-04-01 09:30:00",
	}, rows[0])

	assert.Equal(t, "garbage", rows[1][2])
	assert.Equal(t, "Other", rows[1][4])
	assert.Equal(t, 0.0, rows[1][8])
}

func TestWriteInvoicesSkipsExistingIDs(t *testing.T) {
	var appended gsheets.ValueRange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case r.Method == http.MethodGet && path == "/v4/spreadsheets/sheet123":
			_, _ = w.Write([]byte(`{"sheets":[{"properties":{"title":"Invoices","sheetId":7}}]}`))
		case r.Method == http.MethodGet && strings.HasSuffix(path, "A1:K1"):
			_, _ = w.Write([]byte(`{"values":[["ID","Invoice Number"]]}`))
		case r.Method == http.MethodGet && strings.HasSuffix(path, "A2:A"):
			_, _ = w.Write([]byte(`{"values":[["1"]]}`))
		case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
			assert.Equal(t, "USER_ENTERED", r.URL.Query().Get("valueInputOption"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&appended))
			_, _ = w.Write([]byte(`{}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, path)
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	svc, err := NewServiceWithClient(context.Background(),
		"https://docs.google.com/spreadsheets/d/sheet123/edit",
		srv.Client(),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)

	written, err := svc.WriteInvoices(context.Background(), []models.Invoice{
		{ID: 1, Vendor: "Already there"},
		{ID: 2, Vendor: "Jarir", TotalAmount: "20"},
	}, "Invoices", analytics.LabelsFor("ar", ""))
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	require.Len(t, appended.Values, 1)
	assert.Equal(t, "2", appended.Values[0][0])
	assert.Equal(t, "Jarir", appended.Values[0][3])
}
