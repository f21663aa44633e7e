package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze "today" via SetClock.
// Production code uses the real clock; tests inject a fake for deterministic output.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current instant in loc. A nil loc means time.Local.
func Now(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return clock.Now().In(loc)
}

// Today returns today's calendar date in loc as "YYYY-MM-DD", the format used
// by the date filter.
func Today(loc *time.Location) string {
	return Now(loc).Format(FilterDateLayout)
}
