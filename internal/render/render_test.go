package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"mufawter/internal/analytics"
	"mufawter/pkg/models"
)

func TestBar(t *testing.T) {
	tests := []struct {
		name       string
		value, max float64
		want       int
	}{
		{name: "full", value: 10, max: 10, want: 10},
		{name: "half", value: 5, max: 10, want: 5},
		{name: "tiny value still shows", value: 0.01, max: 10, want: 1},
		{name: "zero", value: 0, max: 10, want: 0},
		{name: "zero max", value: 5, max: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, strings.Count(Bar(tt.value, tt.max, 10), "█"))
		})
	}
}

func TestInvoices(t *testing.T) {
	labels := analytics.LabelsFor("en", "SAR")
	out := Invoices([]models.Invoice{
		{ID: 4, Vendor: "Panda", InvoiceDate: "2025-03-01T08:00:00", TotalAmount: "12.5"},
		{ID: 5},
	}, labels)

	assert.Contains(t, out, "Panda")
	assert.Contains(t, out, "2025-03-01")
	assert.Contains(t, out, "12.50")
	assert.Contains(t, out, "Other")

	assert.Contains(t, Invoices(nil, labels), "No invoices")
}

func TestGroupsAndInsights(t *testing.T) {
	labels := analytics.LabelsFor("en", "SAR")
	invoices := []models.Invoice{
		{ID: 1, TotalAmount: "100", PaymentMethod: "Visa", InvoiceDate: "2025-01-05"},
		{ID: 2, TotalAmount: "50", PaymentMethod: "cash", InvoiceDate: "2025-01-20"},
	}
	agg := analytics.Aggregate(invoices, labels)

	out := Groups("Payment", agg.Payments)
	assert.Contains(t, out, "Visa")
	assert.Contains(t, out, "100.00")
	assert.Contains(t, out, "cash")

	empty := Insights(analytics.Insights(nil, time.Now(), labels))
	assert.Contains(t, empty, "Not enough data")
}

func TestReply(t *testing.T) {
	labels := analytics.LabelsFor("en", "SAR")

	out := Reply("You spent 150 SAR", []models.Invoice{{ID: 9, Vendor: "Jarir"}}, labels)
	assert.Contains(t, out, "You spent 150 SAR")
	assert.Contains(t, out, "Jarir")

	assert.NotContains(t, Reply("Hello", nil, labels), "ID")
}

func TestAnalysis(t *testing.T) {
	out := Analysis(models.Analysis{
		Category:  models.NewCategory("مقهى", "Cafe"),
		AIInsight: "Daily coffee habit.",
		Output:    models.ExtractedFields{"Vendor": "Barn's", "Tax": "Not Mentioned"},
	}, []string{"Vendor", "Tax"})

	assert.Contains(t, out, "Barn's")
	assert.NotContains(t, out, "Not Mentioned")
	assert.Contains(t, out, "مقهى / Cafe")
	assert.Contains(t, out, "Daily coffee habit.")
}
