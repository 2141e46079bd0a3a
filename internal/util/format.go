package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatNumber formats an int64 with K/M suffix for readability.
// Examples: 500 -> "500", 1500 -> "1.5K", 1500000 -> "1.5M"
func FormatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// FormatPercent formats a fraction as a percentage with up to two decimals,
// trimming trailing zeros. Examples: 0.5 -> "50%", 0.12345 -> "12.35%"
func FormatPercent(p float64) string {
	s := strconv.FormatFloat(p*100, 'f', 2, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		s = "0"
	}
	return s + "%"
}

// FormatRate formats a probability-scale value with four decimals.
func FormatRate(x float64) string {
	return fmt.Sprintf("%.4f", x)
}

// FormatDateTime formats a timestamp to date-time format (2006-01-02 15:04).
func FormatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// ParseTimeRFC3339 parses an RFC3339 timestamp string to time.Time.
// Returns zero time if parsing fails.
func ParseTimeRFC3339(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
