// Package analytics derives the dashboard and gallery views from an
// in-memory list of invoices: category normalization, filtering, grouped
// totals and smart insights.
//
// Everything here is pure. Inputs are never mutated and every function can
// be re-run in full whenever the source list or a filter changes.
package analytics

import (
	"fmt"
	"strconv"
	"strings"

	"mufawter/pkg/models"
)

// All disables a filter criterion. The empty string does the same.
const All = "all"

// Criteria narrows a list of invoices. Criteria compose with logical AND.
type Criteria struct {
	// Category matches invoice_type or the resolved Arabic category label,
	// both trimmed, exactly.
	Category string

	// Month is the calendar month of invoice_date, "0" (January) to "11".
	Month string

	// Payment is a case-insensitive substring of payment_method.
	Payment string

	// Search is a case-insensitive substring of vendor, invoice number or
	// category label.
	Search string
}

// ParseCriteria validates raw filter input.
func ParseCriteria(category, month, payment, search string) (Criteria, error) {
	c := Criteria{
		Category: strings.TrimSpace(category),
		Month:    strings.TrimSpace(month),
		Payment:  strings.TrimSpace(payment),
		Search:   strings.TrimSpace(search),
	}
	if active(c.Month) {
		m, err := strconv.Atoi(c.Month)
		if err != nil || m < 0 || m > 11 {
			return Criteria{}, fmt.Errorf("invalid month %q: expected %q or 0-11", month, All)
		}
	}
	return c, nil
}

func active(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != All
}

// IsZero reports whether no criterion is active.
func (c Criteria) IsZero() bool {
	return !active(c.Category) && !active(c.Month) && !active(c.Payment) && !active(c.Search)
}

// Filter returns the invoices matching c, in source order. The input slice
// is left untouched.
func Filter(invoices []models.Invoice, c Criteria) []models.Invoice {
	out := make([]models.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if c.Match(inv) {
			out = append(out, inv)
		}
	}
	return out
}

// Match reports whether inv satisfies every active criterion.
func (c Criteria) Match(inv models.Invoice) bool {
	if active(c.Category) && !matchCategory(inv, c.Category) {
		return false
	}
	if active(c.Month) && !matchMonth(inv, c.Month) {
		return false
	}
	if active(c.Payment) && !matchPayment(inv, c.Payment) {
		return false
	}
	if active(c.Search) && !matchSearch(inv, c.Search) {
		return false
	}
	return true
}

func matchCategory(inv models.Invoice, want string) bool {
	want = strings.TrimSpace(want)
	if strings.TrimSpace(inv.InvoiceType) == want {
		return true
	}
	return inv.Category.Resolved() && strings.TrimSpace(inv.Category.AR) == want
}

func matchMonth(inv models.Invoice, want string) bool {
	m, err := strconv.Atoi(strings.TrimSpace(want))
	if err != nil {
		return false
	}
	date, ok := inv.Date()
	if !ok {
		return false
	}
	return int(date.Month())-1 == m
}

func matchPayment(inv models.Invoice, want string) bool {
	if inv.PaymentMethod == "" {
		return false
	}
	return strings.Contains(strings.ToLower(inv.PaymentMethod), strings.ToLower(want))
}

func matchSearch(inv models.Invoice, query string) bool {
	query = strings.ToLower(query)
	for _, field := range []string{inv.Vendor, inv.InvoiceNumber, inv.InvoiceType, inv.Category.AR, inv.Category.EN} {
		if field != "" && strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// CategoryLabel is the canonical display label of an invoice's category:
// the resolved Arabic label, else invoice_type, else the default label.
func CategoryLabel(inv models.Invoice, labels Labels) string {
	if inv.Category.Resolved() {
		if ar := strings.TrimSpace(inv.Category.AR); ar != "" {
			return ar
		}
	}
	if t := strings.TrimSpace(inv.InvoiceType); t != "" {
		return t
	}
	return labels.DefaultCategory
}
