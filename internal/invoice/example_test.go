package invoice_test

import (
	"errors"
	"fmt"

	"mufawter/internal/invoice"
	"mufawter/pkg/models"
)

// Example shows the review flow for an analyze-only result: validate, apply
// the user's corrections and build the save request.
func Example() {
	analysis := models.Analysis{
		Status:   "success",
		Category: models.NewCategory("مقهى", "Cafe"),
		Output: models.ExtractedFields{
			"Invoice Number": "A-17",
			"Date":           "2025-05-02",
			"Vendor":         "Half Million",
			"Subtotal":       "20.00",
			"Tax":            "3.00",
			"Total Amount":   "23.00",
		},
	}

	if _, err := invoice.NewValidator().Validate(analysis.Output); err != nil {
		fmt.Println(err)
		return
	}

	overrides, err := invoice.ParseOverrides([]string{"Vendor=Half Million Olaya"})
	if err != nil {
		fmt.Println(err)
		return
	}
	analysis.Output = invoice.ApplyOverrides(analysis.Output, overrides)

	req, err := invoice.ToSaveRequest(analysis, "https://cdn.example.com/a17.jpg")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(req.Vendor, req.TotalAmount, req.Category.EN)
	// Output: Half Million Olaya 23.00 Cafe
}

// Example_notAnInvoice shows the rejection of a photo that is not a receipt.
func Example_notAnInvoice() {
	output := models.ExtractedFields{"Vendor": "Not Mentioned", "Date": "2025-05-02"}

	_, err := invoice.NewValidator().Validate(output)
	fmt.Println(errors.Is(err, invoice.ErrNotAnInvoice))
	// Output: true
}
