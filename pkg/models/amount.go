package models

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value as delivered on the wire: a decimal string.
// The API is inconsistent and sometimes sends bare JSON numbers, which are
// kept in their textual form.
type Amount string

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// UnmarshalJSON accepts strings, numbers and null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*a = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
	default:
		*a = Amount(data)
	}
	return nil
}

// Float parses the amount, returning 0 when it is absent or not numeric.
func (a Amount) Float() float64 {
	return ParseAmount(string(a))
}

// ParseAmount reads the leading decimal number of s, the way a browser's
// parseFloat does ("12.50 SAR" is 12.5). Anything without a numeric prefix
// is 0.
func ParseAmount(s string) float64 {
	match := numericPrefix.FindString(strings.TrimSpace(s))
	if match == "" {
		return 0
	}
	match = strings.Replace(match, ".e", "e", 1)
	match = strings.Replace(match, ".E", "E", 1)
	match = strings.TrimSuffix(match, ".")

	d, err := decimal.NewFromString(match)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}
