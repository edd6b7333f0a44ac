package usecase

import "testing"

func TestFormatINR(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{21150, "₹21,150.00"},
		{0, "₹0.00"},
		{999.995, "₹1,000.00"},
		{123456789.5, "₹12,34,56,789.50"},
		{-150, "-₹150.00"},
		{-0.001, "₹0.00"},
	}
	for _, tt := range tests {
		if got := FormatINR(tt.in); got != tt.want {
			t.Errorf("FormatINR(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSignedFormats(t *testing.T) {
	if got := FormatSignedINR(150); got != "+₹150.00" {
		t.Errorf("FormatSignedINR(150) = %q", got)
	}
	if got := FormatSignedINR(-12.5); got != "-₹12.50" {
		t.Errorf("FormatSignedINR(-12.5) = %q", got)
	}
	if got := FormatSignedPercent(0.709); got != "+0.71%" {
		t.Errorf("FormatSignedPercent(0.709) = %q", got)
	}
	if got := FormatSignedPercent(-1.5); got != "-1.50%" {
		t.Errorf("FormatSignedPercent(-1.5) = %q", got)
	}
}

func TestFormatAccuracyAndMetric(t *testing.T) {
	if got := FormatAccuracy(0.9234); got != "92.3%" {
		t.Errorf("FormatAccuracy = %q", got)
	}
	if got := FormatAccuracy(0); got != "0.0%" {
		t.Errorf("FormatAccuracy(0) = %q", got)
	}
	if got := FormatMetric(1.23456); got != "1.2346" {
		t.Errorf("FormatMetric = %q", got)
	}
}

func TestChangeFrom(t *testing.T) {
	base := 21150.0
	delta, pct := changeFrom(&base, 21300)
	if delta != 150 || pct != 0.71 {
		t.Fatalf("changeFrom = %v, %v", delta, pct)
	}

	zero := 0.0
	for _, b := range []*float64{nil, &zero} {
		if d, p := changeFrom(b, 21300); d != 0 || p != 0 {
			t.Fatalf("changeFrom(%v) = %v, %v, want neutral", b, d, p)
		}
	}
}
