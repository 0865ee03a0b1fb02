// Package utils provides display formatting for investlab amounts and rates.
package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FormatAmount rounds an amount half away from zero and groups the integer
// digits in thousands, e.g. 1234567.891 → "1,234,567.89".
func FormatAmount(amount float64, decimals int32) string {
	s := decimal.NewFromFloat(amount).StringFixed(decimals)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	return sign + groupThousands(intPart) + frac
}

// FormatSignedAmount is FormatAmount with an explicit sign, e.g.
// -7.4922 → "-7.49", 1.29 → "+1.29".
func FormatSignedAmount(amount float64, decimals int32) string {
	s := FormatAmount(amount, decimals)
	if !strings.HasPrefix(s, "-") {
		return "+" + s
	}
	return s
}

// FormatCompact formats an amount with a K/M/B/T suffix, trimming trailing
// zeros. e.g., 200000000 → "200M", 1500000000 → "1.5B"
func FormatCompact(amount float64, decimals int32) string {
	d := decimal.NewFromFloat(amount)
	abs := d.Abs()

	for _, u := range []struct {
		scale  float64
		suffix string
	}{
		{1e12, "T"},
		{1e9, "B"},
		{1e6, "M"},
		{1e3, "K"},
	} {
		scale := decimal.NewFromFloat(u.scale)
		if abs.GreaterThanOrEqual(scale) {
			return d.Div(scale).Round(decimals).String() + u.suffix
		}
	}
	return FormatAmount(amount, decimals)
}

// FormatPct renders a fraction as a percentage, e.g. 0.0521 → "5.21%".
func FormatPct(fraction float64, decimals int32) string {
	return decimal.NewFromFloat(fraction).Mul(hundred).StringFixed(decimals) + "%"
}

// FormatChange renders a signed fractional change, e.g. 0.0123 → "+1.23%",
// -0.0754 → "-7.54%".
func FormatChange(fraction float64, decimals int32) string {
	s := FormatPct(fraction, decimals)
	if !strings.HasPrefix(s, "-") {
		return "+" + s
	}
	return s
}

// FormatBasisPoints renders a yield shift in basis points, e.g. 0.01 → "+100bp".
func FormatBasisPoints(shift float64) string {
	bp := decimal.NewFromFloat(shift).Mul(decimal.NewFromInt(10000)).Round(1)
	if bp.IsNegative() {
		return bp.String() + "bp"
	}
	return "+" + bp.String() + "bp"
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
