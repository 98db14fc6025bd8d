// Package money formats amounts stored as integer cents.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// zeroDecimal lists currencies displayed without minor units.
var zeroDecimal = map[string]bool{
	"COP": true,
	"CLP": true,
}

// FromCents converts a cent amount into a decimal major-unit value.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ToCents converts a major-unit amount into cents, rounding half away from zero.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// Format renders cents for humans, e.g. "$ 1.250.000 COP" or "$ 12.50 USD".
func Format(cents int64, currency string) string {
	amount := FromCents(cents)

	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}

	var number string
	if zeroDecimal[currency] {
		number = group(amount.Abs().Round(0).String(), ".")
	} else {
		whole, frac, _ := strings.Cut(amount.Abs().StringFixed(2), ".")
		number = group(whole, ",") + "." + frac
	}

	if currency == "" {
		return sign + "$ " + number
	}
	return sign + "$ " + number + " " + currency
}

// group inserts sep every three digits from the right.
func group(digits, sep string) string {
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	var b strings.Builder
	b.WriteString(digits[:min(head, len(digits))])
	for i := head; i < len(digits); i += 3 {
		b.WriteString(sep)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
