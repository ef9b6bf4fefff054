// Package format renders numbers for display in the continental
// European convention: dot as thousands separator, comma as decimal
// separator. It is a presenter-side utility and is deliberately kept
// out of the aggregation pipeline.
package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount renders a decimal with two fraction digits, e.g. 1234567.5
// becomes "1.234.567,50".
func Amount(d decimal.Decimal) string {
	return localize(d.StringFixed(2))
}

// Float renders a float with two fraction digits in the same
// convention. NaN and ±Inf render as "-" so sentinel values stay
// visible without leaking IEEE spellings into the UI.
func Float(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "-"
	}
	return localize(strconv.FormatFloat(f, 'f', 2, 64))
}

// Percent renders a percentage with two fraction digits and a percent
// sign, sentinel-safe like Float.
func Percent(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "-"
	}
	return localize(strconv.FormatFloat(f, 'f', 2, 64)) + " %"
}

// localize converts a plain "1234567.50" into "1.234.567,50".
func localize(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}
	if hasFrac {
		b.WriteByte(',')
		b.WriteString(fracPart)
	}
	return b.String()
}
