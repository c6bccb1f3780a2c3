package printer

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FormatPercent returns a progress ratio as a rounded percentage.
// Examples: "0%", "35%", "100%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(clamp(p)*100)))
}

// ProgressBar returns a fixed width text progress bar.
// Example: ProgressBar(0.5, 10) returns "[#####-----]".
func ProgressBar(p float64, width int) string {
	if width <= 0 {
		return "[]"
	}
	filled := int(math.Round(clamp(p) * float64(width)))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// QuoteString returns the string between single quotes.
func QuoteString(s string) string { return "'" + s + "'" }

// QuoteDate returns the date as a single quoted compact date: '20060102'.
func QuoteDate(t time.Time) string { return QuoteString(t.Format("20060102")) }

// QuoteDateTime returns the date and time as a single quoted ISO 8601 value
// without zone: '2006-01-02T15:04:05'.
func QuoteDateTime(t time.Time) string { return QuoteString(t.Format("2006-01-02T15:04:05")) }

// QuoteTime returns the time of the day single quoted: '15:04:05'.
func QuoteTime(t time.Time) string { return QuoteString(t.Format("15:04:05")) }

func clamp(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
