// Package invoice reviews VLM extraction results before they are saved:
// it decides whether an image was a real invoice, applies user corrections
// and builds the save request for the backend.
package invoice

import (
	"strings"

	"mufawter/pkg/models"
)

// Field is one key of the extraction output and where it lands in a
// SaveRequest.
type Field struct {
	// Name is the key the model is prompted with, e.g. "Invoice Number".
	Name string

	// Aliases are alternate keys some model outputs use.
	Aliases []string

	set func(*models.SaveRequest, string)
}

// Keys returns Name followed by Aliases.
func (f Field) Keys() []string {
	return append([]string{f.Name}, f.Aliases...)
}

// Fields lists every scalar field of an extraction in prompt order.
var Fields = []Field{
	{Name: "Invoice Number", Aliases: []string{"invoice_number"}, set: func(r *models.SaveRequest, v string) { r.InvoiceNumber = v }},
	{Name: "Date", Aliases: []string{"date", "invoice_date", "placed_at"}, set: func(r *models.SaveRequest, v string) { r.InvoiceDate = v }},
	{Name: "Vendor", Aliases: []string{"vendor"}, set: func(r *models.SaveRequest, v string) { r.Vendor = v }},
	{Name: "Tax Number", Aliases: []string{"tax_number"}, set: func(r *models.SaveRequest, v string) { r.TaxNumber = v }},
	{Name: "Cashier", Aliases: []string{"cashier"}, set: func(r *models.SaveRequest, v string) { r.Cashier = v }},
	{Name: "Branch", Aliases: []string{"branch"}, set: func(r *models.SaveRequest, v string) { r.Branch = v }},
	{Name: "Phone", Aliases: []string{"phone"}, set: func(r *models.SaveRequest, v string) { r.Phone = v }},
	{Name: "Subtotal", Aliases: []string{"sub_total", "subtotal"}, set: func(r *models.SaveRequest, v string) { r.Subtotal = v }},
	{Name: "Tax", Aliases: []string{"total_taxes", "tax"}, set: func(r *models.SaveRequest, v string) { r.Tax = v }},
	{Name: "Total Amount", Aliases: []string{"bill_total_value", "total_amount"}, set: func(r *models.SaveRequest, v string) { r.TotalAmount = v }},
	{Name: "Grand Total (before tax)", Aliases: []string{"grand_total"}, set: func(r *models.SaveRequest, v string) { r.GrandTotal = v }},
	{Name: "Discounts", Aliases: []string{"discount", "discounts"}, set: func(r *models.SaveRequest, v string) { r.Discounts = v }},
	{Name: "Payment Method", Aliases: []string{"payment_method", "paid_by"}, set: func(r *models.SaveRequest, v string) { r.PaymentMethod = v }},
	{Name: "Amount Paid", Aliases: []string{"amount_paid"}, set: func(r *models.SaveRequest, v string) { r.AmountPaid = v }},
	{Name: "Ticket Number", Aliases: []string{"ticket_number"}, set: func(r *models.SaveRequest, v string) { r.TicketNumber = v }},
	{Name: "AI_Insight", Aliases: []string{"ai_insight"}, set: func(r *models.SaveRequest, v string) { r.AIInsight = v }},
}

// ExpectedFields are the ten fields counted by Validate.
var ExpectedFields = []string{
	"Invoice Number",
	"Date",
	"Vendor",
	"Tax Number",
	"Cashier",
	"Branch",
	"Phone",
	"Subtotal",
	"Tax",
	"Total Amount",
}

// LookupField finds a field by name or alias, case-insensitively.
func LookupField(name string) (Field, bool) {
	name = strings.TrimSpace(name)
	for _, f := range Fields {
		for _, key := range f.Keys() {
			if strings.EqualFold(key, name) {
				return f, true
			}
		}
	}
	return Field{}, false
}

// value reads a field from the output, treating placeholders as empty.
func value(output models.ExtractedFields, f Field) string {
	v := output.String(f.Keys()...)
	if models.IsPlaceholder(v) {
		return ""
	}
	return v
}
