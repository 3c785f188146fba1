package analytics

import (
	"fmt"
	"math"
	"time"

	"mufawter/pkg/models"
)

// Trend is the direction shown next to an insight.
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

// InsightKind identifies which computation produced an insight.
type InsightKind string

const (
	KindNoData         InsightKind = "no_data"
	KindMonthOverMonth InsightKind = "month_over_month"
	KindMonthlySpend   InsightKind = "monthly_spend"
	KindTopVendor      InsightKind = "top_vendor"
	KindAverage        InsightKind = "average_invoice"
	KindTopCategory    InsightKind = "top_category"
	KindTopPayment     InsightKind = "top_payment_method"
	KindBusiestDay     InsightKind = "busiest_day"
)

// Insight is one human-readable statement about spending.
type Insight struct {
	Kind  InsightKind `json:"kind"`
	Icon  string      `json:"icon"`
	Label string      `json:"label"`
	Value string      `json:"value"`
	Trend Trend       `json:"trend"`
}

// Insights derives the smart insights of invoices relative to now. An empty
// list yields a single placeholder. Each insight guards its own
// denominators, so one empty dimension never hides the others.
func Insights(invoices []models.Invoice, now time.Time, labels Labels) []Insight {
	if len(invoices) == 0 {
		return []Insight{{
			Kind:  KindNoData,
			Icon:  "📊",
			Label: labels.noDataLabel,
			Value: labels.noDataValue,
			Trend: TrendNeutral,
		}}
	}

	var insights []Insight
	for _, derive := range []func([]models.Invoice, time.Time, Labels) (Insight, bool){
		monthOverMonth,
		topVendor,
		averageInvoice,
		topCategory,
		topPayment,
		busiestDay,
	} {
		if in, ok := derive(invoices, now, labels); ok {
			insights = append(insights, in)
		}
	}
	return insights
}

func monthOverMonth(invoices []models.Invoice, now time.Time, labels Labels) (Insight, bool) {
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	previous := current.AddDate(0, -1, 0)

	var currentTotal, previousTotal float64
	var currentCount int
	for _, inv := range invoices {
		date, ok := inv.Date()
		if !ok {
			continue
		}
		switch {
		case sameMonth(date, current):
			currentTotal += inv.Total()
			currentCount++
		case sameMonth(date, previous):
			previousTotal += inv.Total()
		}
	}

	currentLabel := labels.MonthLabel(current)
	if previousTotal > 0 {
		growth := (currentTotal - previousTotal) / previousTotal * 100
		trend, direction, icon := TrendNeutral, labels.unchanged, "📊"
		switch {
		case growth > 0:
			trend, direction, icon = TrendUp, labels.increase, "📈"
		case growth < 0:
			trend, direction, icon = TrendDown, labels.decrease, "📉"
		}
		return Insight{
			Kind:  KindMonthOverMonth,
			Icon:  icon,
			Label: fmt.Sprintf(labels.momLabel, currentLabel, labels.MonthLabel(previous)),
			Value: fmt.Sprintf(labels.momValue, direction, math.Abs(growth), currentTotal, labels.Currency),
			Trend: trend,
		}, true
	}

	if currentTotal > 0 {
		return Insight{
			Kind:  KindMonthlySpend,
			Icon:  "📊",
			Label: fmt.Sprintf(labels.monthlyLabel, currentLabel),
			Value: fmt.Sprintf("%s - %s", labels.Money(currentTotal), labels.Invoices(currentCount)),
			Trend: TrendNeutral,
		}, true
	}
	return Insight{}, false
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func topVendor(invoices []models.Invoice, _ time.Time, labels Labels) (Insight, bool) {
	vendors := newAccumulator()
	for _, inv := range invoices {
		vendors.add(vendorLabel(inv, labels), 0, 0)
	}
	best, ok := top(vendors.groups, byCount)
	if !ok {
		return Insight{}, false
	}
	return Insight{
		Kind:  KindTopVendor,
		Icon:  "🏪",
		Label: labels.topVendor,
		Value: fmt.Sprintf("%s - %s", best.Key, labels.Invoices(best.Count)),
		Trend: TrendNeutral,
	}, true
}

func averageInvoice(invoices []models.Invoice, _ time.Time, labels Labels) (Insight, bool) {
	if len(invoices) == 0 {
		return Insight{}, false
	}
	return Insight{
		Kind:  KindAverage,
		Icon:  "💵",
		Label: labels.average,
		Value: labels.Money(Summarize(invoices).Average),
		Trend: TrendNeutral,
	}, true
}

func topCategory(invoices []models.Invoice, _ time.Time, labels Labels) (Insight, bool) {
	categories := newAccumulator()
	var overall float64
	for _, inv := range invoices {
		total := inv.Total()
		categories.add(CategoryLabel(inv, labels), total, 0)
		overall += total
	}
	best, ok := top(categories.groups, byTotal)
	if !ok {
		return Insight{}, false
	}
	return Insight{
		Kind:  KindTopCategory,
		Icon:  "🎯",
		Label: labels.topCategory,
		Value: fmt.Sprintf("%s - %s (%.0f%s)", best.Key, labels.Money(best.Total), share(best.Total, overall), percentSign(labels)),
		Trend: TrendNeutral,
	}, true
}

func topPayment(invoices []models.Invoice, _ time.Time, labels Labels) (Insight, bool) {
	payments := newAccumulator()
	for _, inv := range invoices {
		payments.add(paymentLabel(inv, labels), 0, 0)
	}
	best, ok := top(payments.groups, byCount)
	if !ok {
		return Insight{}, false
	}
	return Insight{
		Kind:  KindTopPayment,
		Icon:  "💳",
		Label: labels.topPayment,
		Value: fmt.Sprintf(labels.paymentValue, best.Key, share(float64(best.Count), float64(len(invoices)))),
		Trend: TrendNeutral,
	}, true
}

func busiestDay(invoices []models.Invoice, _ time.Time, labels Labels) (Insight, bool) {
	days := newAccumulator()
	for _, inv := range invoices {
		if date, ok := inv.Date(); ok {
			days.add(labels.Weekday(date), 0, 0)
		}
	}
	best, ok := top(days.groups, byCount)
	if !ok {
		return Insight{}, false
	}
	return Insight{
		Kind:  KindBusiestDay,
		Icon:  "📅",
		Label: labels.busiestDay,
		Value: fmt.Sprintf("%s - %s", best.Key, labels.Invoices(best.Count)),
		Trend: TrendNeutral,
	}, true
}

// share is part/whole as a percentage, 0 when whole is 0.
func share(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

func percentSign(labels Labels) string {
	if labels.Locale == "en" {
		return "%"
	}
	return "٪"
}
