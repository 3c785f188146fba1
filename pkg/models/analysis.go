package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// UploadResult is returned by POST /upload/.
type UploadResult struct {
	URL              string `json:"url"`
	ConvertedFromPDF bool   `json:"converted_from_pdf,omitempty"`
}

// Analysis is the payload returned by the VLM analysis endpoints.
type Analysis struct {
	Status      string          `json:"status"`
	InvoiceID   int64           `json:"invoice_id,omitempty"`
	Category    Category        `json:"category"`
	InvoiceType string          `json:"invoice_type,omitempty"`
	AIInsight   string          `json:"ai_insight,omitempty"`
	Output      ExtractedFields `json:"output,omitempty"`
	RawOutput   string          `json:"raw_output,omitempty"`
	TimeTaken   float64         `json:"time_taken_seconds,omitempty"`
}

// ExtractedFields holds the model output keyed by human-readable field names
// such as "Invoice Number", "Total Amount" and "Items".
type ExtractedFields map[string]any

// Lookup returns the first present key, matching keys case-insensitively.
func (f ExtractedFields) Lookup(keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := f[key]; ok {
			return v, true
		}
	}
	for _, key := range keys {
		for k, v := range f {
			if strings.EqualFold(k, key) {
				return v, true
			}
		}
	}
	return nil, false
}

// String renders the value under the first present key as text. Missing and
// null values render as "".
func (f ExtractedFields) String(keys ...string) string {
	v, ok := f.Lookup(keys...)
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// Items decodes the "Items" list. Malformed entries are skipped.
func (f ExtractedFields) Items() []Item {
	v, ok := f.Lookup("Items", "items")
	if !ok {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil
	}

	items := make([]Item, 0, len(list))
	for _, entry := range list {
		raw, err := json.Marshal(entry)
		if err != nil {
			continue
		}
		var item Item
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items
}

// SaveRequest is the body of POST /invoices/save-analyzed: the reviewed
// fields of an analysis, its items and the stored image.
type SaveRequest struct {
	InvoiceNumber string   `json:"invoice_number"`
	InvoiceDate   string   `json:"invoice_date"`
	Vendor        string   `json:"vendor"`
	TaxNumber     string   `json:"tax_number"`
	Cashier       string   `json:"cashier"`
	Branch        string   `json:"branch"`
	Phone         string   `json:"phone"`
	Subtotal      string   `json:"subtotal"`
	Tax           string   `json:"tax"`
	TotalAmount   string   `json:"total_amount"`
	GrandTotal    string   `json:"grand_total"`
	Discounts     string   `json:"discounts"`
	PaymentMethod string   `json:"payment_method"`
	AmountPaid    string   `json:"amount_paid"`
	TicketNumber  string   `json:"ticket_number"`
	InvoiceType   string   `json:"invoice_type"`
	Category      Category `json:"category"`
	AIInsight     string   `json:"ai_insight"`
	Items         []Item   `json:"items"`
	ImageURL      string   `json:"image_url"`
}
