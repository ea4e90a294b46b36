package slots

import (
	"fmt"
	"time"
)

// AllDays marks a slot that recurs every day of the week. Concrete days
// use time.Weekday numbering (Sunday = 0).
const AllDays = -1

type TimeSlot struct {
	ID        string    `json:"id"`
	DayOfWeek int       `json:"day_of_week"` // AllDays or 0..6
	TimeOfDay string    `json:"time_of_day"` // zero-padded 24h HH:MM
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

// AppliesTo reports whether the slot recurs on the given weekday.
func (s TimeSlot) AppliesTo(day time.Weekday) bool {
	return s.DayOfWeek == AllDays || s.DayOfWeek == int(day)
}

// Clock returns the slot's hour and minute.
func (s TimeSlot) Clock() (hour, minute int, err error) {
	t, err := time.Parse("15:04", s.TimeOfDay)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q: %w", s.TimeOfDay, err)
	}
	return t.Hour(), t.Minute(), nil
}

// ValidDay reports whether d is AllDays or a concrete weekday.
func ValidDay(d int) bool {
	return d >= AllDays && d <= 6
}

// SlotUpdate carries the fields of a partial slot edit; nil leaves the
// stored value untouched.
type SlotUpdate struct {
	DayOfWeek *int    `json:"day_of_week,omitempty"`
	TimeOfDay *string `json:"time_of_day,omitempty"`
	Enabled   *bool   `json:"enabled,omitempty"`
}

// PlatformLimit caps how many posts may occupy a single calendar day on a
// platform. Zero means unlimited.
type PlatformLimit struct {
	Platform       string `json:"platform"`
	MaxPostsPerDay int    `json:"max_posts_per_day"`
}

// Unlimited reports whether the limit imposes no cap.
func (l PlatformLimit) Unlimited() bool {
	return l.MaxPostsPerDay <= 0
}
