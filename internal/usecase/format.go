package usecase

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable is shown for values that cannot be derived from state.
const NotAvailable = "N/A"

// FormatINR renders v as rupees with Indian digit grouping, e.g. ₹21,150.00.
func FormatINR(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole, frac, _ := strings.Cut(d.StringFixed(2), ".")
	return sign + "₹" + groupIndian(whole) + "." + frac
}

// FormatSignedINR is FormatINR with a leading "+" for non-negative values.
func FormatSignedINR(v float64) string {
	if decimal.NewFromFloat(v).Round(2).IsNegative() {
		return FormatINR(v)
	}
	return "+" + FormatINR(v)
}

// FormatSignedPercent renders v with two decimals, a sign and a % suffix.
func FormatSignedPercent(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsNegative() {
		return d.StringFixed(2) + "%"
	}
	return "+" + d.StringFixed(2) + "%"
}

// FormatAccuracy renders an R² score as a one-decimal percentage.
func FormatAccuracy(r2 float64) string {
	return decimal.NewFromFloat(r2).Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}

// FormatMetric renders a model metric with four decimals.
func FormatMetric(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(4)
}

// groupIndian inserts separators after the last three digits and then every
// two digits: 2115000 -> 21,15,000.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)
	return strings.Join(groups, ",") + "," + tail
}

// changeFrom returns the delta of price against base and the delta as a
// percentage of base, both rounded to two decimals. Both are zero when base
// is unknown or zero.
func changeFrom(base *float64, price float64) (float64, float64) {
	if base == nil || *base == 0 {
		return 0, 0
	}
	b := decimal.NewFromFloat(*base)
	delta := decimal.NewFromFloat(price).Sub(b)
	pct := delta.Div(b).Mul(decimal.NewFromInt(100))
	return delta.Round(2).InexactFloat64(), pct.Round(2).InexactFloat64()
}
