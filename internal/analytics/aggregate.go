package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"mufawter/pkg/models"
)

// MonthlyLimit caps the monthly series to the most recent groups.
const MonthlyLimit = 6

// Group is one bucket of a grouped total.
type Group struct {
	Key   string  `json:"key"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
	Tax   float64 `json:"tax,omitempty"`
}

// Aggregation holds the four grouped views of the dashboard.
type Aggregation struct {
	Categories []Group `json:"categories"`
	Months     []Group `json:"months"`
	Payments   []Group `json:"payments"`
	Weekdays   []Group `json:"weekdays"`
}

// Summary holds the headline numbers of a list of invoices.
type Summary struct {
	Count    int     `json:"count"`
	Total    float64 `json:"total"`
	TotalTax float64 `json:"total_tax"`
	Average  float64 `json:"average"`
	Max      float64 `json:"max"`
	Min      float64 `json:"min"`
}

// accumulator groups values by key, keeping keys in first-seen order.
type accumulator struct {
	index  map[string]int
	groups []Group
}

func newAccumulator() *accumulator {
	return &accumulator{index: make(map[string]int)}
}

func (a *accumulator) add(key string, total, tax float64) {
	i, ok := a.index[key]
	if !ok {
		i = len(a.groups)
		a.index[key] = i
		a.groups = append(a.groups, Group{Key: key})
	}
	a.groups[i].Total += total
	a.groups[i].Tax += tax
	a.groups[i].Count++
}

// Aggregate reduces invoices into category, month, payment method and
// weekday groups. Category and payment groups keep first-seen order, months
// are chronological (most recent MonthlyLimit kept) and weekdays follow the
// week from Sunday.
func Aggregate(invoices []models.Invoice, labels Labels) Aggregation {
	categories := newAccumulator()
	payments := newAccumulator()

	type monthBucket struct {
		start time.Time
		group Group
	}
	months := make(map[time.Time]*monthBucket)
	var weekdays [7]Group

	for _, inv := range invoices {
		total := inv.Total()
		tax := inv.TaxValue()

		categories.add(CategoryLabel(inv, labels), total, 0)
		payments.add(paymentLabel(inv, labels), total, 0)

		date, ok := inv.Date()
		if !ok {
			continue
		}

		start := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
		b, ok := months[start]
		if !ok {
			b = &monthBucket{start: start, group: Group{Key: labels.MonthLabel(start)}}
			months[start] = b
		}
		b.group.Total += total
		b.group.Tax += tax
		b.group.Count++

		wd := &weekdays[date.Weekday()]
		wd.Key = labels.Weekday(date)
		wd.Total += total
		wd.Count++
	}

	ordered := make([]*monthBucket, 0, len(months))
	for _, b := range months {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].start.Before(ordered[j].start) })
	if len(ordered) > MonthlyLimit {
		ordered = ordered[len(ordered)-MonthlyLimit:]
	}

	agg := Aggregation{
		Categories: categories.groups,
		Payments:   payments.groups,
		Months:     make([]Group, 0, len(ordered)),
		Weekdays:   make([]Group, 0, len(weekdays)),
	}
	for _, b := range ordered {
		agg.Months = append(agg.Months, b.group)
	}
	for _, wd := range weekdays {
		if wd.Count > 0 {
			agg.Weekdays = append(agg.Weekdays, wd)
		}
	}
	if agg.Categories == nil {
		agg.Categories = []Group{}
	}
	if agg.Payments == nil {
		agg.Payments = []Group{}
	}
	return agg
}

// Summarize computes count, totals and the average, largest and smallest
// invoice. An empty list yields the zero Summary.
func Summarize(invoices []models.Invoice) Summary {
	if len(invoices) == 0 {
		return Summary{}
	}

	s := Summary{Count: len(invoices), Max: math.Inf(-1), Min: math.Inf(1)}
	for _, inv := range invoices {
		total := inv.Total()
		s.Total += total
		s.TotalTax += inv.TaxValue()
		s.Max = math.Max(s.Max, total)
		s.Min = math.Min(s.Min, total)
	}
	s.Average = s.Total / float64(s.Count)
	return s
}

// Categories lists the distinct category labels of invoices in first-seen
// order, for building filter choices.
func Categories(invoices []models.Invoice, labels Labels) []string {
	seen := make(map[string]bool)
	var out []string
	for _, inv := range invoices {
		label := CategoryLabel(inv, labels)
		if !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	return out
}

func paymentLabel(inv models.Invoice, labels Labels) string {
	if strings.TrimSpace(inv.PaymentMethod) == "" {
		return labels.UnspecifiedPayment
	}
	return inv.PaymentMethod
}

func vendorLabel(inv models.Invoice, labels Labels) string {
	if strings.TrimSpace(inv.Vendor) == "" {
		return labels.UnknownVendor
	}
	return inv.Vendor
}

// top returns the group with the largest value. Ties go to the earliest
// group.
func top(groups []Group, value func(Group) float64) (Group, bool) {
	if len(groups) == 0 {
		return Group{}, false
	}
	best := groups[0]
	for _, g := range groups[1:] {
		if value(g) > value(best) {
			best = g
		}
	}
	return best, true
}

func byCount(g Group) float64 { return float64(g.Count) }
func byTotal(g Group) float64 { return g.Total }
