// Package report writes the invoice list and its dashboard aggregates to an
// Excel workbook.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"mufawter/internal/analytics"
	"mufawter/internal/logger"
	"mufawter/pkg/models"
)

// Sheet names, in workbook order.
const (
	SheetInvoices   = "Invoices"
	SheetSummary    = "Summary"
	SheetCategories = "Categories"
	SheetMonths     = "Months"
	SheetPayments   = "Payments"
	SheetWeekdays   = "Weekdays"
	SheetInsights   = "Insights"
)

const headerColor = "#1F6F5C"

// Builder assembles workbooks.
type Builder struct {
	labels analytics.Labels
	log    zerolog.Logger
}

// NewBuilder creates a builder that renders labels in the given locale.
func NewBuilder(labels analytics.Labels) *Builder {
	return &Builder{
		labels: labels,
		log:    logger.WithComponent("report"),
	}
}

// Build creates the workbook. The caller must Close the returned file.
func (b *Builder) Build(invoices []models.Invoice, now time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("report: header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("report: number style: %w", err)
	}

	w := &sheetWriter{f: f, header: header, money: money}
	if err := f.SetSheetName("Sheet1", SheetInvoices); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("report: rename sheet: %w", err)
	}

	agg := analytics.Aggregate(invoices, b.labels)
	summary := analytics.Summarize(invoices)

	w.invoices(invoices, b.labels)
	w.summary(summary, b.labels)
	w.groups(SheetCategories, "Category", agg.Categories)
	w.groups(SheetMonths, "Month", agg.Months)
	w.groups(SheetPayments, "Payment Method", agg.Payments)
	w.groups(SheetWeekdays, "Weekday", agg.Weekdays)
	w.insights(analytics.Insights(invoices, now, b.labels))

	if w.err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("report: %w", w.err)
	}

	b.log.Debug().
		Int("invoices", len(invoices)).
		Int("categories", len(agg.Categories)).
		Int("months", len(agg.Months)).
		Msg("Workbook built")

	return f, nil
}

// Write builds the workbook and writes it to out.
func (b *Builder) Write(out io.Writer, invoices []models.Invoice, now time.Time) error {
	f, err := b.Build(invoices, now)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			b.log.Warn().Err(closeErr).Msg("Failed to close workbook")
		}
	}()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("report: write workbook: %w", err)
	}
	return nil
}

// Save builds the workbook and stores it at path.
func (b *Builder) Save(path string, invoices []models.Invoice, now time.Time) error {
	f, err := b.Build(invoices, now)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			b.log.Warn().Err(closeErr).Msg("Failed to close workbook")
		}
	}()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report: save %s: %w", path, err)
	}
	b.log.Info().Str("path", path).Int("invoices", len(invoices)).Msg("Workbook saved")
	return nil
}
