package report

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"mufawter/internal/analytics"
	"mufawter/pkg/models"
)

func sampleInvoices() []models.Invoice {
	return []models.Invoice{
		{ID: 1, Vendor: "Panda", InvoiceDate: "2025-02-10", TotalAmount: "100", Tax: "15", PaymentMethod: "Visa", Category: models.NewCategory("بقالة", "Groceries")},
		{ID: 2, Vendor: "Jarir", InvoiceDate: "2025-03-01", TotalAmount: "50", PaymentMethod: "cash", InvoiceType: "Books"},
		{ID: 3, Vendor: "Panda", InvoiceDate: "2025-03-05", TotalAmount: "25.5", PaymentMethod: "Visa", Category: models.NewCategory("بقالة", "Groceries")},
	}
}

func TestWriteRoundTrip(t *testing.T) {
	labels := analytics.LabelsFor("en", "SAR")
	now := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, NewBuilder(labels).Write(&buf, sampleInvoices(), now))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		SheetInvoices, SheetSummary, SheetCategories, SheetMonths, SheetPayments, SheetWeekdays, SheetInsights,
	}, f.GetSheetList())

	invoices, err := f.GetRows(SheetInvoices)
	require.NoError(t, err)
	require.Len(t, invoices, 4)
	assert.Equal(t, "ID", invoices[0][0])
	assert.Equal(t, "Jarir", invoices[2][3])
	assert.Equal(t, "Books", invoices[2][4])

	categories, err := f.GetRows(SheetCategories)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "بقالة", categories[1][0])
	assert.Equal(t, "2", categories[1][1])

	months, err := f.GetRows(SheetMonths)
	require.NoError(t, err)
	require.Len(t, months, 3)

	insights, err := f.GetRows(SheetInsights)
	require.NoError(t, err)
	assert.Greater(t, len(insights), 1)
}

func TestSaveEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, NewBuilder(analytics.LabelsFor("ar", "")).Save(path, nil, time.Now()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	insights, err := f.GetRows(SheetInsights)
	require.NoError(t, err)
	require.Len(t, insights, 2, "header plus the no-data placeholder")
}
