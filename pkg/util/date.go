package util

import "time"

const (
	// TradingDateLayout is the wire format of historical and forecast dates.
	TradingDateLayout = "2006-01-02"
	// DisplayDateLayout renders dates the en-IN way (d/m/yyyy).
	DisplayDateLayout = "2/1/2006"
)

// ParseTradingDate parses a YYYY-MM-DD date. Returns (t, true) if it worked.
func ParseTradingDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(TradingDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DisplayDate formats a trading date for display, or returns s unchanged
// when it is not a trading date.
func DisplayDate(s string) string {
	if t, ok := ParseTradingDate(s); ok {
		return t.Format(DisplayDateLayout)
	}
	return s
}
