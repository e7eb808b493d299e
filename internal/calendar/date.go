package calendar

import (
	"strings"
	"time"
)

// Layouts seen on calendar cards, most specific first
var datedLayouts = []string{
	"Monday, January 2, 2006",
	"Monday, Jan 2, 2006",
	"Mon, Jan 2, 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/02/2006",
	"1/2/2006",
	DateLayout,
}

// Layouts without a year; the target year is assumed
var yearlessLayouts = []string{
	"Monday, January 2",
	"Monday, Jan 2",
	"Mon, Jan 2",
	"January 2",
	"Jan 2",
}

// ParseDate attempts to parse card date text into a calendar day.
// Text without a year is placed in year. For a range such as
// "March 3 - March 5, 2025" the first day is returned; a first day
// without its own year is placed in year.
// The second return value is false if no layout matched.
func ParseDate(text string, year int) (time.Time, bool) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return time.Time{}, false
	}

	if t, ok := parseDay(text, year); ok {
		return t, true
	}

	// Try the start of a range
	for _, sep := range []string{" - ", " – ", " — ", " to "} {
		first, _, found := strings.Cut(text, sep)
		if !found {
			continue
		}
		if t, ok := parseDay(first, year); ok {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseDay(text string, year int) (time.Time, bool) {
	text = strings.TrimSpace(text)

	for _, layout := range datedLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}

	for _, layout := range yearlessLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			day := time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			// February 29 outside a leap year would roll into March
			if day.Month() != t.Month() || day.Day() != t.Day() {
				return time.Time{}, false
			}
			return day, true
		}
	}

	return time.Time{}, false
}
