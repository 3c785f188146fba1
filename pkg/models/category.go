package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// CategoryKind tells how a category value was delivered.
type CategoryKind int

const (
	// CategoryAbsent means no category was sent, or it was null or malformed.
	CategoryAbsent CategoryKind = iota
	// CategoryResolved means an {ar, en} pair was decoded.
	CategoryResolved
	// CategoryRaw means a plain string that is not a JSON object.
	CategoryRaw
)

// Category is either a resolved {ar, en} label pair or an unresolved raw
// string. The API stores it as a JSON-encoded string and sometimes returns
// it as an object; both decode to CategoryResolved.
type Category struct {
	Kind CategoryKind
	AR   string
	EN   string
	Raw  string
}

// NewCategory returns a resolved category.
func NewCategory(ar, en string) Category {
	return Category{Kind: CategoryResolved, AR: ar, EN: en}
}

// RawCategory returns an unresolved category holding s.
func RawCategory(s string) Category {
	if s == "" {
		return Category{}
	}
	return Category{Kind: CategoryRaw, Raw: s}
}

// Resolved reports whether an {ar, en} pair was decoded.
func (c Category) Resolved() bool {
	return c.Kind == CategoryResolved
}

// UnmarshalJSON never fails: anything it cannot read becomes CategoryAbsent.
func (c *Category) UnmarshalJSON(data []byte) error {
	*c = decodeCategory(bytes.TrimSpace(data))
	return nil
}

// MarshalJSON writes resolved categories as objects, raw ones as strings and
// absent ones as null.
func (c Category) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CategoryResolved:
		return json.Marshal(categoryObject{AR: c.AR, EN: c.EN})
	case CategoryRaw:
		return json.Marshal(c.Raw)
	default:
		return []byte("null"), nil
	}
}

type categoryObject struct {
	AR string `json:"ar"`
	EN string `json:"en"`
}

func decodeCategory(data []byte) Category {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Category{}
	}

	switch data[0] {
	case '{':
		if obj, ok := decodeCategoryObject(data); ok {
			return obj
		}
		return Category{}
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return Category{}
		}
		trimmed := strings.TrimSpace(s)
		if strings.HasPrefix(trimmed, "{") {
			if obj, ok := decodeCategoryObject([]byte(trimmed)); ok {
				return obj
			}
		}
		return RawCategory(s)
	default:
		return RawCategory(string(data))
	}
}

func decodeCategoryObject(data []byte) (Category, bool) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return Category{}, false
	}
	ar, _ := fields["ar"].(string)
	en, _ := fields["en"].(string)
	return NewCategory(ar, en), true
}

// KnownCategories are the business types the extraction backend classifies
// invoices into, in display order. The last entry is the catch-all.
var KnownCategories = []Category{
	NewCategory("مقهى", "Cafe"),
	NewCategory("مطعم", "Restaurant"),
	NewCategory("بقالة / تموينات", "Supermarket"),
	NewCategory("صيدلية", "Pharmacy"),
	NewCategory("ملابس", "Clothing"),
	NewCategory("إلكترونيات", "Electronics"),
	NewCategory("فاتورة خدمات", "Utility"),
	NewCategory("تعليم", "Education"),
	NewCategory("صحة", "Health"),
	NewCategory("مواصلات", "Transport"),
	NewCategory("توصيل", "Delivery"),
	NewCategory("أخرى", "Other"),
}

var placeholderValues = map[string]bool{
	"":              true,
	"not mentioned": true,
	"none":          true,
	"null":          true,
	"n/a":           true,
}

// IsPlaceholder reports whether an extracted value means "nothing found".
func IsPlaceholder(value string) bool {
	return placeholderValues[strings.ToLower(strings.TrimSpace(value))]
}

// NormalizeCategory maps free text in English or Arabic onto one of
// KnownCategories, defaulting to Other.
func NormalizeCategory(raw string) Category {
	other := KnownCategories[len(KnownCategories)-1]
	if IsPlaceholder(raw) {
		return other
	}
	lower := strings.ToLower(raw)
	for _, c := range KnownCategories {
		if strings.Contains(lower, strings.ToLower(c.EN)) || strings.Contains(raw, c.AR) {
			return c
		}
	}
	return other
}
