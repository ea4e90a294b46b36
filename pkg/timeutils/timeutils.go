package timeutils

import (
	"fmt"
	"time"
)

// timestampLayouts are the accepted shapes for user-supplied schedule
// times, tried in order. Bare layouts (no offset) are interpreted in the
// schedule's location since slot times are authored in local time.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseLocalTimestamp parses a schedule timestamp, interpreting formats
// without an explicit offset in loc.
func ParseLocalTimestamp(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// FormatLocalTimestamp renders a schedule timestamp the way the queue UI
// displays it, seconds included.
func FormatLocalTimestamp(t time.Time) string {
	return t.Format("2006-01-02T15:04:05")
}

// DayBounds returns the half-open [start, end) of t's calendar day in t's
// location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
