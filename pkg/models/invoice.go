package models

import (
	"encoding/json"
	"strings"
	"time"
)

type Invoice struct {
	// Core identifiers
	ID            int64  `json:"id"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	InvoiceType   string `json:"invoice_type,omitempty"` // Free-text business type, doubles as category fallback

	// Parties
	Vendor    string `json:"vendor,omitempty"`
	TaxNumber string `json:"tax_number,omitempty"`
	Cashier   string `json:"cashier,omitempty"`
	Branch    string `json:"branch,omitempty"`
	Phone     string `json:"phone,omitempty"`

	// Dates (ISO-ish strings as delivered by the API)
	InvoiceDate string `json:"invoice_date,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`

	// Amounts (decimal strings, parsed only for arithmetic)
	Subtotal    Amount `json:"subtotal,omitempty"`
	Tax         Amount `json:"tax,omitempty"`
	TotalAmount Amount `json:"total_amount,omitempty"`
	GrandTotal  Amount `json:"grand_total,omitempty"`
	Discounts   Amount `json:"discounts,omitempty"`
	AmountPaid  Amount `json:"amount_paid,omitempty"`

	// Payment
	PaymentMethod string `json:"payment_method,omitempty"`
	TicketNumber  string `json:"ticket_number,omitempty"`

	// Classification and enrichment
	Category  Category `json:"category"`
	ImageURL  string   `json:"image_url,omitempty"`
	AIInsight string   `json:"ai_insight,omitempty"`
}

// UnmarshalJSON accepts the legacy "total" and "date" keys used by older
// screens when the canonical "total_amount" and "invoice_date" are absent.
func (inv *Invoice) UnmarshalJSON(data []byte) error {
	type plain Invoice
	aux := struct {
		*plain
		Total Amount `json:"total"`
		Date  string `json:"date"`
	}{plain: (*plain)(inv)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if inv.TotalAmount == "" {
		inv.TotalAmount = aux.Total
	}
	if inv.InvoiceDate == "" {
		inv.InvoiceDate = aux.Date
	}
	return nil
}

// Total returns the parsed invoice total, 0 when absent or malformed.
func (inv Invoice) Total() float64 {
	return inv.TotalAmount.Float()
}

// TaxValue returns the parsed tax amount, 0 when absent or malformed.
func (inv Invoice) TaxValue() float64 {
	return inv.Tax.Float()
}

// Date parses InvoiceDate. The boolean is false for missing or unparseable dates.
func (inv Invoice) Date() (time.Time, bool) {
	return ParseDate(inv.InvoiceDate)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// ParseDate parses the ISO-like date strings the API produces.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Item is a single line item extracted from an invoice image.
type Item struct {
	Description string `json:"description"`
	Quantity    Amount `json:"quantity"`
	UnitPrice   Amount `json:"unit_price"`
	Total       Amount `json:"total"`
}

// VendorCount is one row of the server-side top vendors ranking.
type VendorCount struct {
	Vendor string `json:"vendor"`
	Count  int    `json:"count"`
}

// DashboardStats is the aggregate returned by GET /dashboard/stats.
type DashboardStats struct {
	TotalInvoices int           `json:"total_invoices"`
	TotalSpent    float64       `json:"total_spent"`
	TopVendors    []VendorCount `json:"top_vendors"`
	Error         string        `json:"error,omitempty"`
}

// ChatReply is the answer returned by POST /chat/ask.
type ChatReply struct {
	Answer   string    `json:"answer,omitempty"`
	Reply    string    `json:"reply,omitempty"`
	Invoices []Invoice `json:"invoices,omitempty"`
}

// Text returns the answer, falling back to the legacy "reply" field.
func (r ChatReply) Text() string {
	if strings.TrimSpace(r.Answer) != "" {
		return r.Answer
	}
	return r.Reply
}
