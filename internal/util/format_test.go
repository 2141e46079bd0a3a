package util

import (
	"testing"
	"time"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1500, "1.5K"},
		{2500000, "2.5M"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0%"},
		{0.5, "50%"},
		{0.12345, "12.35%"},
		{-0.05, "-5%"},
		{1, "100%"},
		{-0.00001, "0%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.in); got != tt.want {
			t.Errorf("FormatPercent(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatRate(t *testing.T) {
	if got := FormatRate(0.123456); got != "0.1235" {
		t.Errorf("FormatRate = %q", got)
	}
}

func TestParseTimeRFC3339(t *testing.T) {
	want := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	if got := ParseTimeRFC3339("2024-06-15T10:00:00Z"); !got.Equal(want) {
		t.Errorf("ParseTimeRFC3339 = %v, want %v", got, want)
	}
	if got := ParseTimeRFC3339("nope"); !got.IsZero() {
		t.Errorf("expected zero time, got %v", got)
	}
	if got := FormatDateTime(want); got != "2024-06-15 10:00" {
		t.Errorf("FormatDateTime = %q", got)
	}
}
