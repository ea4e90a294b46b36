package timeutils

import (
	"testing"
	"time"
)

func TestParseLocalTimestampAcceptedShapes(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	cases := []struct {
		value string
		want  time.Time
	}{
		{"2026-03-01T09:30:00Z", time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)},
		{"2026-03-01T09:30:00-05:00", time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("", -5*3600))},
		{"2026-03-01T09:30:00", time.Date(2026, 3, 1, 9, 30, 0, 0, loc)},
		{"2026-03-01T09:30", time.Date(2026, 3, 1, 9, 30, 0, 0, loc)},
		{"2026-03-01 09:30:00", time.Date(2026, 3, 1, 9, 30, 0, 0, loc)},
		{"2026-03-01 09:30", time.Date(2026, 3, 1, 9, 30, 0, 0, loc)},
	}

	for _, tc := range cases {
		got, err := ParseLocalTimestamp(tc.value, loc)
		if err != nil {
			t.Errorf("ParseLocalTimestamp(%q) error: %v", tc.value, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("ParseLocalTimestamp(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestParseLocalTimestampRejectsGarbage(t *testing.T) {
	if _, err := ParseLocalTimestamp("next tuesday", time.UTC); err == nil {
		t.Fatal("expected an error for a non-timestamp value")
	}
	if _, err := ParseLocalTimestamp("", time.UTC); err == nil {
		t.Fatal("expected an error for an empty value")
	}
}

func TestFormatLocalTimestamp(t *testing.T) {
	ts := time.Date(2026, 3, 1, 9, 5, 7, 0, time.UTC)
	if got := FormatLocalTimestamp(ts); got != "2026-03-01T09:05:07" {
		t.Errorf("FormatLocalTimestamp = %q", got)
	}
}

func TestDayBounds(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	ts := time.Date(2026, 3, 1, 17, 45, 0, 0, loc)
	start, end := DayBounds(ts)

	if !start.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, loc)) {
		t.Errorf("unexpected day start: %v", start)
	}
	if !end.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, loc)) {
		t.Errorf("unexpected day end: %v", end)
	}
	if !start.Before(ts) || !ts.Before(end) {
		t.Error("timestamp should fall inside its own day bounds")
	}
}
