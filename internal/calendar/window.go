package calendar

import (
	"fmt"
	"net/url"
	"time"
)

// DateLayout is the query parameter date format
const DateLayout = "2006-01-02"

// Window is a half-open date range [Start, End)
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// MonthWindows returns one window per calendar month of year.
// December ends on January 1 of the following year.
func MonthWindows(year int) []Window {
	windows := make([]Window, 0, 12)
	for month := time.January; month <= time.December; month++ {
		start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)
		windows = append(windows, Window{
			Start: start.Format(DateLayout),
			End:   end.Format(DateLayout),
		})
	}
	return windows
}

// ListingURL adds the window's date filter to the listing base URL.
// Existing query parameters on base are kept.
func ListingURL(base string, w Window) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing listing URL: %w", err)
	}

	query := u.Query()
	query.Set("search", "")
	query.Set("start_date", w.Start)
	query.Set("end_date", w.End)
	u.RawQuery = query.Encode()
	u.Fragment = ""

	return u.String(), nil
}
