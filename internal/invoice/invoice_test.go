package invoice

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mufawter/pkg/models"
)

func fullOutput() models.ExtractedFields {
	return models.ExtractedFields{
		"Invoice Number": "INV-100",
		"Date":           "2025-03-14",
		"Vendor":         "Panda",
		"Tax Number":     "300000000000003",
		"Cashier":        "Not Mentioned",
		"Branch":         "Olaya",
		"Phone":          "n/a",
		"Subtotal":       "100.00",
		"Tax":            15.0,
		"Total Amount":   "115.00",
		"Payment Method": "Visa",
		"Category":       "Supermarket 🛒",
		"Items": []any{
			map[string]any{"description": "Milk", "quantity": 2, "unit_price": "5.50", "total": "11.00"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		output    models.ExtractedFields
		populated int
		wantErr   bool
	}{
		{name: "real invoice", output: fullOutput(), populated: 8},
		{
			name: "exactly five",
			output: models.ExtractedFields{
				"Invoice Number": "1", "Date": "2025-01-01", "Vendor": "X", "Tax": "1", "Total Amount": "2",
			},
			populated: 5,
		},
		{
			name: "four is not enough",
			output: models.ExtractedFields{
				"Invoice Number": "1", "Date": "2025-01-01", "Vendor": "X", "Total Amount": "2", "Cashier": "None",
			},
			populated: 4,
			wantErr:   true,
		},
		{
			name: "aliases count",
			output: models.ExtractedFields{
				"invoice_number": "1", "placed_at": "2025-01-01", "vendor": "X", "total_taxes": "1", "bill_total_value": "2",
			},
			populated: 5,
		},
		{name: "empty output", output: models.ExtractedFields{}, populated: 0, wantErr: true},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := v.Validate(tt.output)
			require.NotNil(t, report)
			assert.Len(t, report.Populated, tt.populated)
			assert.Len(t, report.Missing, len(ExpectedFields)-tt.populated)

			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNotAnInvoice)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.populated, vErr.Populated)
			assert.Equal(t, 10, vErr.Expected)
			assert.Equal(t, MinPopulatedFields, vErr.Minimum)
		})
	}
}

func TestParseOverrides(t *testing.T) {
	overrides, err := ParseOverrides([]string{"vendor=Danube", "Total Amount = 99.5", "Vendor=Tamimi"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Vendor": "Tamimi", "Total Amount": "99.5"}, overrides)

	_, err = ParseOverrides([]string{"no-equals"})
	assert.ErrorIs(t, err, ErrInvalidOverride)

	_, err = ParseOverrides([]string{"Colour=red"})
	assert.ErrorIs(t, err, ErrInvalidOverride)
}

func TestApplyOverrides(t *testing.T) {
	output := models.ExtractedFields{"vendor": "Old", "Date": "2025-01-01"}
	merged := ApplyOverrides(output, map[string]string{"Vendor": "New"})

	assert.Equal(t, "New", merged.String("Vendor"))
	assert.NotContains(t, merged, "vendor")
	assert.Equal(t, "2025-01-01", merged.String("Date"))
	assert.Equal(t, "Old", output.String("vendor"), "input must not be modified")
}

func TestToSaveRequest(t *testing.T) {
	analysis := models.Analysis{
		Status:    "success",
		Category:  models.NewCategory("بقالة / تموينات", "Supermarket"),
		AIInsight: "Weekly grocery run.",
		Output:    fullOutput(),
	}

	req, err := ToSaveRequest(analysis, "https://cdn.example.com/a.png")
	require.NoError(t, err)

	assert.Equal(t, "INV-100", req.InvoiceNumber)
	assert.Equal(t, "2025-03-14", req.InvoiceDate)
	assert.Equal(t, "Panda", req.Vendor)
	assert.Equal(t, "", req.Cashier, "placeholder values are dropped")
	assert.Equal(t, "", req.Phone)
	assert.Equal(t, "15", req.Tax)
	assert.Equal(t, "115.00", req.TotalAmount)
	assert.Equal(t, "Visa", req.PaymentMethod)
	assert.Equal(t, "Supermarket", req.Category.EN)
	assert.Equal(t, "Supermarket", req.InvoiceType)
	assert.Equal(t, "Weekly grocery run.", req.AIInsight)
	assert.Equal(t, "https://cdn.example.com/a.png", req.ImageURL)
	require.Len(t, req.Items, 1)
	assert.Equal(t, "Milk", req.Items[0].Description)
	assert.Equal(t, 11.0, req.Items[0].Total.Float())
}

func TestToSaveRequestNormalizesCategory(t *testing.T) {
	analysis := models.Analysis{Output: models.ExtractedFields{"Category": "Pharmacy 💊"}}

	req, err := ToSaveRequest(analysis, "https://cdn.example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "صيدلية", req.Category.AR)
	assert.NotNil(t, req.Items)
}

func TestToSaveRequestMissingImage(t *testing.T) {
	_, err := ToSaveRequest(models.Analysis{}, " ")
	assert.ErrorIs(t, err, ErrMissingImage)
}
