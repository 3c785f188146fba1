// Package render draws invoices, aggregates and insights for the terminal.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"mufawter/internal/analytics"
	"mufawter/pkg/models"
)

const barWidth = 24

// Title renders a section heading.
func Title(text string) string {
	return titleStyle.Render(text)
}

// Invoices renders the invoice gallery as a table.
func Invoices(invoices []models.Invoice, labels analytics.Labels) string {
	if len(invoices) == 0 {
		return mutedStyle.Render("No invoices match the current filters.")
	}

	rows := make([][]string, 0, len(invoices))
	for _, inv := range invoices {
		date := inv.InvoiceDate
		if t, ok := inv.Date(); ok {
			date = t.Format("2006-01-02")
		}
		rows = append(rows, []string{
			strconv.FormatInt(inv.ID, 10),
			orDash(inv.InvoiceNumber),
			orDash(date),
			orDash(inv.Vendor),
			analytics.CategoryLabel(inv, labels),
			orDash(inv.PaymentMethod),
			fmt.Sprintf("%.2f", inv.Total()),
		})
	}

	return newTable([]string{"ID", "Number", "Date", "Vendor", "Category", "Payment", "Total"}, rows, 0, 6).Render()
}

// Summary renders the headline numbers.
func Summary(s analytics.Summary, labels analytics.Labels) string {
	rows := [][]string{
		{"Invoices", strconv.Itoa(s.Count)},
		{"Total spent", labels.Money(s.Total)},
		{"Total tax", labels.Money(s.TotalTax)},
		{"Average invoice", labels.Money(s.Average)},
		{"Largest", labels.Money(s.Max)},
		{"Smallest", labels.Money(s.Min)},
	}
	return newTable([]string{"Metric", "Value"}, rows, 1).Render()
}

// Stats renders the server-side dashboard statistics.
func Stats(stats models.DashboardStats, labels analytics.Labels) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d   %s %s\n",
		labelStyle.Render("Invoices:"), stats.TotalInvoices,
		labelStyle.Render("Spent:"), labels.Money(stats.TotalSpent))

	if len(stats.TopVendors) == 0 {
		return b.String()
	}
	rows := make([][]string, 0, len(stats.TopVendors))
	for _, v := range stats.TopVendors {
		rows = append(rows, []string{orDash(v.Vendor), strconv.Itoa(v.Count)})
	}
	b.WriteString(newTable([]string{"Top vendor", "Invoices"}, rows, 1).Render())
	return b.String()
}

// Groups renders one aggregation as a table with a proportional bar.
func Groups(keyColumn string, groups []analytics.Group) string {
	if len(groups) == 0 {
		return mutedStyle.Render("No data.")
	}

	var peak float64
	for _, g := range groups {
		if g.Total > peak {
			peak = g.Total
		}
	}

	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{
			g.Key,
			strconv.Itoa(g.Count),
			fmt.Sprintf("%.2f", g.Total),
			barStyle.Render(Bar(g.Total, peak, barWidth)),
		})
	}
	return newTable([]string{keyColumn, "Count", "Total", ""}, rows, 1, 2).Render()
}

// Bar draws value/peak as a run of blocks at most width wide. Any positive
// value gets at least one block.
func Bar(value, peak float64, width int) string {
	if peak <= 0 || value <= 0 || width <= 0 {
		return ""
	}
	n := int(value / peak * float64(width))
	if n < 1 {
		n = 1
	}
	if n > width {
		n = width
	}
	return strings.Repeat("█", n)
}

// Insights renders the smart insights as a list.
func Insights(insights []analytics.Insight) string {
	var b strings.Builder
	for _, in := range insights {
		fmt.Fprintf(&b, "%s %s\n   %s\n",
			in.Icon,
			labelStyle.Render(in.Label),
			trendStyle(string(in.Trend)).Render(in.Value))
	}
	return b.String()
}

// Reply renders a chat answer with the invoices it refers to.
func Reply(answer string, invoices []models.Invoice, labels analytics.Labels) string {
	var b strings.Builder
	b.WriteString(bubbleStyle.Render(answer))
	if len(invoices) > 0 {
		b.WriteString("\n")
		b.WriteString(Invoices(invoices, labels))
	}
	return b.String()
}

// Analysis renders extracted fields in prompt order.
func Analysis(a models.Analysis, fields []string) string {
	rows := make([][]string, 0, len(fields)+2)
	for _, name := range fields {
		v := a.Output.String(name)
		if models.IsPlaceholder(v) {
			v = mutedStyle.Render("-")
		}
		rows = append(rows, []string{name, v})
	}
	if a.Category.Resolved() {
		rows = append(rows, []string{"Category", a.Category.AR + " / " + a.Category.EN})
	}
	if items := a.Output.Items(); len(items) > 0 {
		rows = append(rows, []string{"Items", strconv.Itoa(len(items))})
	}

	out := newTable([]string{"Field", "Value"}, rows).Render()
	if insight := strings.TrimSpace(a.AIInsight); insight != "" && !models.IsPlaceholder(insight) {
		out += "\n" + bubbleStyle.Render("💡 "+insight)
	}
	return out
}

// Warning renders a highlighted notice.
func Warning(text string) string {
	return warningStyle.Render("⚠ " + text)
}

func newTable(headers []string, rows [][]string, numericCols ...int) *table.Table {
	numeric := make(map[int]bool, len(numericCols))
	for _, c := range numericCols {
		numeric[c] = true
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case numeric[col]:
				return numberStyle
			default:
				return cellStyle
			}
		})
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
