// Package format renders amounts, rates and dates for display.
package format

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DisplayDateLayout is the long date format used in reports.
const DisplayDateLayout = "January 2, 2006"

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted, negative := formatCurrency(amount)
	if negative {
		return "-$" + formatted
	}
	return "$" + formatted
}

// Percentage renders a percentage value with two decimals (e.g., "4.50%").
func Percentage(value float64) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return strconv.FormatFloat(value, 'f', -1, 64) + "%"
	}
	return decimal.NewFromFloat(value).StringFixed(2) + "%"
}

// Date renders a date in the long display format (e.g., "January 2, 2006").
func Date(t time.Time) string {
	return t.Format(DisplayDateLayout)
}

// formatCurrency rounds half away from zero to cents. A value that rounds to
// zero is never reported as negative. NaN and infinities are rendered
// verbatim.
func formatCurrency(amount float64) (string, bool) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return strings.TrimPrefix(strconv.FormatFloat(math.Abs(amount), 'f', -1, 64), "+"), math.IsInf(amount, -1)
	}
	rounded := decimal.NewFromFloat(amount).Round(2)
	negative := rounded.IsNegative()
	formatted := rounded.Abs().StringFixed(2)

	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart, negative
}
