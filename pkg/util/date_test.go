package util

import (
	"testing"
	"time"
)

func TestParseTradingDate(t *testing.T) {
	got, ok := ParseTradingDate("2024-01-05")
	if !ok {
		t.Fatalf("expected ok")
	}
	if !got.Equal(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected time %v", got)
	}

	for _, s := range []string{"", "05/01/2024", "2024-13-01"} {
		if _, ok := ParseTradingDate(s); ok {
			t.Fatalf("ParseTradingDate(%q) should fail", s)
		}
	}
}

func TestDisplayDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-01-05", "5/1/2024"},
		{"2024-12-31", "31/12/2024"},
		{"not a date", "not a date"},
	}
	for _, tt := range tests {
		if got := DisplayDate(tt.in); got != tt.want {
			t.Fatalf("DisplayDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
