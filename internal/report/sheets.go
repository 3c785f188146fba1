package report

import (
	"github.com/xuri/excelize/v2"
	"mufawter/internal/analytics"
	"mufawter/pkg/models"
)

// sheetWriter keeps the first error so the sheet builders stay linear.
type sheetWriter struct {
	f      *excelize.File
	header int
	money  int
	err    error
}

func (w *sheetWriter) sheet(name string) {
	if w.err != nil {
		return
	}
	if idx, _ := w.f.GetSheetIndex(name); idx >= 0 {
		return
	}
	_, w.err = w.f.NewSheet(name)
}

func (w *sheetWriter) row(sheet string, row int, values []interface{}) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

func (w *sheetWriter) headerRow(sheet string, columns ...string) {
	values := make([]interface{}, len(columns))
	for i, c := range columns {
		values[i] = c
	}
	w.row(sheet, 1, values)
	w.style(sheet, 1, 1, len(columns), 1, w.header)
	if w.err == nil {
		w.err = w.f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	}
}

func (w *sheetWriter) style(sheet string, col1, row1, col2, row2, style int) {
	if w.err != nil || row2 < row1 {
		return
	}
	from, err := excelize.CoordinatesToCellName(col1, row1)
	if err != nil {
		w.err = err
		return
	}
	to, err := excelize.CoordinatesToCellName(col2, row2)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(sheet, from, to, style)
}

func (w *sheetWriter) invoices(invoices []models.Invoice, labels analytics.Labels) {
	w.headerRow(SheetInvoices,
		"ID", "Invoice Number", "Date", "Vendor", "Category", "Payment Method",
		"Subtotal", "Tax", "Total", "AI Insight",
	)
	for i, inv := range invoices {
		date := inv.InvoiceDate
		if t, ok := inv.Date(); ok {
			date = t.Format("2006-01-02")
		}
		w.row(SheetInvoices, i+2, []interface{}{
			inv.ID,
			inv.InvoiceNumber,
			date,
			inv.Vendor,
			analytics.CategoryLabel(inv, labels),
			inv.PaymentMethod,
			inv.Subtotal.Float(),
			inv.TaxValue(),
			inv.Total(),
			inv.AIInsight,
		})
	}
	w.style(SheetInvoices, 7, 2, 9, len(invoices)+1, w.money)
}

func (w *sheetWriter) summary(s analytics.Summary, labels analytics.Labels) {
	w.sheet(SheetSummary)
	w.headerRow(SheetSummary, "Metric", "Value")
	rows := [][]interface{}{
		{"Invoices", s.Count},
		{"Total spent (" + labels.Currency + ")", s.Total},
		{"Total tax", s.TotalTax},
		{"Average invoice", s.Average},
		{"Largest invoice", s.Max},
		{"Smallest invoice", s.Min},
	}
	for i, r := range rows {
		w.row(SheetSummary, i+2, r)
	}
	w.style(SheetSummary, 2, 3, 2, len(rows)+1, w.money)
}

func (w *sheetWriter) groups(sheet, keyColumn string, groups []analytics.Group) {
	w.sheet(sheet)
	w.headerRow(sheet, keyColumn, "Invoices", "Total", "Tax")
	for i, g := range groups {
		w.row(sheet, i+2, []interface{}{g.Key, g.Count, g.Total, g.Tax})
	}
	w.style(sheet, 3, 2, 4, len(groups)+1, w.money)
}

func (w *sheetWriter) insights(insights []analytics.Insight) {
	w.sheet(SheetInsights)
	w.headerRow(SheetInsights, "Insight", "Value", "Trend")
	for i, in := range insights {
		w.row(SheetInsights, i+2, []interface{}{in.Icon + " " + in.Label, in.Value, string(in.Trend)})
	}
}
