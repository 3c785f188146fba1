package analytics

import (
	"fmt"
	"time"
)

// Labels holds the display strings of one locale.
type Labels struct {
	Locale             string
	Currency           string
	DefaultCategory    string
	UnknownVendor      string
	UnspecifiedPayment string

	Months   [12]string
	Weekdays [7]string // indexed by time.Weekday

	invoiceOne   string
	invoiceMany  string
	increase     string
	decrease     string
	unchanged    string
	noDataLabel  string
	noDataValue  string
	momLabel     string // current month, previous month
	momValue     string // direction, percent, total, currency
	monthlyLabel string // current month
	topVendor    string
	average      string
	topCategory  string
	topPayment   string
	paymentValue string // method, percent
	busiestDay   string
}

var arabic = Labels{
	Locale:             "ar",
	Currency:           "ر.س",
	DefaultCategory:    "أخرى",
	UnknownVendor:      "غير معروف",
	UnspecifiedPayment: "غير محدد",
	Months: [12]string{
		"يناير", "فبراير", "مارس", "أبريل", "مايو", "يونيو",
		"يوليو", "أغسطس", "سبتمبر", "أكتوبر", "نوفمبر", "ديسمبر",
	},
	Weekdays:     [7]string{"الأحد", "الاثنين", "الثلاثاء", "الأربعاء", "الخميس", "الجمعة", "السبت"},
	invoiceOne:   "فاتورة",
	invoiceMany:  "فواتير",
	increase:     "زيادة",
	decrease:     "انخفاض",
	unchanged:    "بدون تغيير",
	noDataLabel:  "البيانات",
	noDataValue:  "لا توجد بيانات كافية لتوليد رؤى",
	momLabel:     "المقارنة الشهرية (%s مقابل %s)",
	momValue:     "%s بنسبة %.1f٪ - إجمالي %.2f %s",
	monthlyLabel: "الإنفاق الشهري (%s)",
	topVendor:    "المتجر الأكثر تعاملاً",
	average:      "متوسط قيمة الفاتورة",
	topCategory:  "الفئة الأكثر إنفاقاً",
	topPayment:   "طريقة الدفع المفضلة",
	paymentValue: "%s - %.0f٪ من المعاملات",
	busiestDay:   "اليوم الأكثر نشاطاً",
}

var english = Labels{
	Locale:             "en",
	Currency:           "SAR",
	DefaultCategory:    "Other",
	UnknownVendor:      "Unknown",
	UnspecifiedPayment: "Unspecified",
	Months: [12]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
	Weekdays:     [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
	invoiceOne:   "invoice",
	invoiceMany:  "invoices",
	increase:     "Up",
	decrease:     "Down",
	unchanged:    "Unchanged",
	noDataLabel:  "Data",
	noDataValue:  "Not enough data to generate insights",
	momLabel:     "Monthly comparison (%s vs %s)",
	momValue:     "%s %.1f%% - total %.2f %s",
	monthlyLabel: "Monthly spending (%s)",
	topVendor:    "Most visited store",
	average:      "Average invoice",
	topCategory:  "Top spending category",
	topPayment:   "Preferred payment method",
	paymentValue: "%s - %.0f%% of transactions",
	busiestDay:   "Busiest day",
}

// LabelsFor returns the labels of locale ("ar" or "en"); anything else gets
// Arabic. A non-empty currency overrides the locale's default.
func LabelsFor(locale, currency string) Labels {
	l := arabic
	if locale == "en" {
		l = english
	}
	if currency != "" {
		l.Currency = currency
	}
	return l
}

// MonthLabel renders "<month name> <year>".
func (l Labels) MonthLabel(t time.Time) string {
	return fmt.Sprintf("%s %d", l.Months[t.Month()-1], t.Year())
}

// Weekday returns the localized weekday name of t.
func (l Labels) Weekday(t time.Time) string {
	return l.Weekdays[t.Weekday()]
}

// Invoices renders a count with the singular or plural noun.
func (l Labels) Invoices(n int) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, l.invoiceOne)
	}
	return fmt.Sprintf("%d %s", n, l.invoiceMany)
}

// Money renders an amount with the currency label.
func (l Labels) Money(v float64) string {
	return fmt.Sprintf("%.2f %s", v, l.Currency)
}
