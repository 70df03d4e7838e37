// Package printer renders a month summary as plain text, JSON or CSV, and
// holds the small formatting helpers shared with the TUI.
package printer

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FormatHours renders a lead time like "2d 3h", "5h 12m" or "40m".
func FormatHours(hours float64) string {
	sign := ""
	if hours < 0 {
		sign = "-"
		hours = -hours
	}
	total := int(math.Round(hours * 60))
	days, rem := total/(24*60), total%(24*60)
	h, m := rem/60, rem%60
	switch {
	case days > 0:
		return fmt.Sprintf("%s%dd %dh", sign, days, h)
	case h > 0:
		return fmt.Sprintf("%s%dh %dm", sign, h, m)
	default:
		return fmt.Sprintf("%s%dm", sign, m)
	}
}

// FormatFrequency renders PRs per week.
func FormatFrequency(perWeek float64) string {
	return fmt.Sprintf("%.1f/week", perWeek)
}

// FormatBalance renders the review balance ratio.
func FormatBalance(ratio float64) string {
	return fmt.Sprintf("%.1f:1", ratio)
}

// FormatDate renders a short day label, e.g. "Jan 06".
func FormatDate(t time.Time) string {
	return t.Format("Jan 02")
}

// FormatWeekRange renders the Monday and Sunday of a week.
func FormatWeekRange(start, end time.Time) string {
	return FormatDate(start) + " - " + FormatDate(end)
}

// FirstLine returns the first non-empty line of s, cut to max runes.
func FirstLine(s string, max int) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return Truncate(line, max)
		}
	}
	return ""
}

// Truncate cuts s to at most max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
