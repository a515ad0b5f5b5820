package repository

import (
	"fmt"
	"time"

	"github.com/ndewijer/Dividend-Portfolio-Backtester/internal/timeseries"
)

// storedLayouts are the shapes a date or timestamp column comes back in: the text we wrote,
// the driver's rendering of a DATE/DATETIME column, and SQLite's CURRENT_TIMESTAMP.
var storedLayouts = []string{
	timeseries.DateLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// parseStored parses a stored date or timestamp into UTC.
func parseStored(str string) (time.Time, error) {
	for _, layout := range storedLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse stored time %q", str)
}

// parseStoredDate parses a stored date and truncates it to the calendar day.
func parseStoredDate(str string) (time.Time, error) {
	t, err := parseStored(str)
	if err != nil {
		return time.Time{}, err
	}
	return timeseries.Day(t), nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(timeseries.DateLayout)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
