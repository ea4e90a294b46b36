package common

import "time"

// Clock abstracts wall-clock reads so allocation and due-ness can be
// tested against a fixed time. Slot times are local-time semantics, so
// Now must return a time in the schedule's location.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// NewSystemClock returns a Clock in the given IANA timezone, falling back
// to the host's local zone when name is empty or unknown.
func NewSystemClock(name string) Clock {
	if name == "" {
		return systemClock{loc: time.Local}
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return systemClock{loc: time.Local}
	}
	return systemClock{loc: loc}
}

// FixedClock always reports the same instant. Test helper.
type FixedClock struct {
	Time time.Time
}

func (c FixedClock) Now() time.Time { return c.Time }
