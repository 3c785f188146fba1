package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategoryDecoding(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		json string
		want Category
	}{
		{"json encoded string", `"{\"ar\": \"مقهى\", \"en\": \"Cafe\"}"`, NewCategory("مقهى", "Cafe")},
		{"object", `{"ar": "مطعم", "en": "Restaurant"}`, NewCategory("مطعم", "Restaurant")},
		{"plain string", `"Groceries"`, RawCategory("Groceries")},
		{"broken json string", `"{\"ar\": "`, RawCategory(`{"ar": `)},
		{"null", `null`, Category{}},
		{"number", `42`, RawCategory("42")},
		{"object without ar", `{"en": "Cafe"}`, NewCategory("", "Cafe")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var c Category
			require.NoError(t, json.Unmarshal([]byte(tc.json), &c))
			require.Equal(t, tc.want, c)
		})
	}
}

func TestInvoiceSurvivesMalformedCategory(t *testing.T) {
	t.Parallel()

	var inv Invoice
	err := json.Unmarshal([]byte(`{"id": 7, "vendor": "Kudu", "category": {"ar": [1,2]}, "total_amount": "12.5"}`), &inv)
	require.NoError(t, err)
	require.Equal(t, int64(7), inv.ID)
	require.Equal(t, CategoryResolved, inv.Category.Kind)
	require.Empty(t, inv.Category.AR)
	require.InDelta(t, 12.5, inv.Total(), 1e-9)
}

func TestInvoiceLegacyKeys(t *testing.T) {
	t.Parallel()

	var inv Invoice
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "total": 99.5, "date": "2025-03-04"}`), &inv))
	require.Equal(t, Amount("99.5"), inv.TotalAmount)
	require.Equal(t, "2025-03-04", inv.InvoiceDate)

	var canonical Invoice
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "total_amount": "10", "total": "20", "invoice_date": "2025-01-01", "date": "2024-01-01"}`), &canonical))
	require.Equal(t, Amount("10"), canonical.TotalAmount)
	require.Equal(t, "2025-01-01", canonical.InvoiceDate)
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	cases := map[string]float64{
		"100":       100,
		"12.50":     12.5,
		" 7.25 SAR": 7.25,
		"-3":        -3,
		".5":        0.5,
		"5.":        5,
		"1e2":       100,
		"abc":       0,
		"":          0,
		"1,200":     1,
	}
	for in, want := range cases {
		require.InDelta(t, want, ParseAmount(in), 1e-9, in)
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"2025-01-05", "2025-01-05T10:00:00", "2025-01-05T10:00:00Z", "2025-01-05 10:00:00", "2025-01-05T10:00:00.123456"} {
		d, ok := ParseDate(in)
		require.True(t, ok, in)
		require.Equal(t, 2025, d.Year())
		require.Equal(t, 5, d.Day())
	}

	_, ok := ParseDate("yesterday")
	require.False(t, ok)
	_, ok = ParseDate("")
	require.False(t, ok)
}

func TestNormalizeCategory(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Cafe", NormalizeCategory("Cafe ☕").EN)
	require.Equal(t, "Pharmacy", NormalizeCategory("صيدلية النهدي").EN)
	require.Equal(t, "Other", NormalizeCategory("Not Mentioned").EN)
	require.Equal(t, "Other", NormalizeCategory("spaceship dealer").EN)
}

func TestExtractedFields(t *testing.T) {
	t.Parallel()

	var a Analysis
	payload := `{"status": "success", "category": {"ar": "مقهى", "en": "Cafe"},
		"output": {"Vendor": " Barn's ", "total amount": 23.5, "Items": [
			{"description": "Latte", "quantity": "2x", "unit_price": 11.75, "total": "23.50"},
			"garbage"
		]}}`
	require.NoError(t, json.Unmarshal([]byte(payload), &a))
	require.True(t, a.Category.Resolved())
	require.Equal(t, "Barn's", a.Output.String("Vendor"))
	require.Equal(t, "23.5", a.Output.String("Total Amount"))
	require.Empty(t, a.Output.String("Cashier"))

	items := a.Output.Items()
	require.Len(t, items, 1)
	require.Equal(t, "Latte", items[0].Description)
	require.InDelta(t, 2, items[0].Quantity.Float(), 1e-9)
	require.InDelta(t, 11.75, items[0].UnitPrice.Float(), 1e-9)
}

func TestChatReplyText(t *testing.T) {
	t.Parallel()

	require.Equal(t, "a", ChatReply{Answer: "a", Reply: "r"}.Text())
	require.Equal(t, "r", ChatReply{Reply: "r"}.Text())
	require.Empty(t, ChatReply{}.Text())
}
