// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/loan-tracker/pkg/constants"
)

const (
	// DateLayout is the calendar date format expected in config files.
	DateLayout = constants.DateLayout

	// MonthLayout is the year-month format.
	MonthLayout = constants.MonthLayout
)

// Clock supplies the current time. Schedule projection and strategy
// simulation read "now" only through a Clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock struct {
	Time time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.Time
}

// ClockOrSystem returns clock, or a SystemClock when clock is nil.
func ClockOrSystem(clock Clock) Clock {
	if clock == nil {
		return SystemClock{}
	}
	return clock
}

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDate accepts a calendar date (2006-01-02), a year-month (2006-01) or
// an RFC 3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339, DateLayout, MonthLayout} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// AddMonths advances t by the given number of calendar months. Overflowing
// days normalize the way time.AddDate does (Jan 31 + 1 month = Mar 3).
func AddMonths(t time.Time, months int) time.Time {
	return t.AddDate(0, months, 0)
}

// Later returns the later of a and b.
func Later(a, b time.Time) time.Time {
	if a.Before(b) {
		return b
	}
	return a
}

// Earliest returns the earliest of the given times, or the zero time when
// none are given.
func Earliest(times ...time.Time) time.Time {
	var earliest time.Time
	for i, t := range times {
		if i == 0 || t.Before(earliest) {
			earliest = t
		}
	}
	return earliest
}

// SameMonth reports whether a and b fall into the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Format(MonthLayout) == b.Format(MonthLayout)
}

// NextDueDate returns the first date on or after from that falls on dueDay of
// a month. Days past the end of a short month clamp to its last day.
func NextDueDate(from time.Time, dueDay int) time.Time {
	candidate := dueDateInMonth(from.Year(), from.Month(), dueDay, from.Location())
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	if candidate.Before(start) {
		next := time.Date(from.Year(), from.Month()+1, 1, 0, 0, 0, 0, from.Location())
		candidate = dueDateInMonth(next.Year(), next.Month(), dueDay, from.Location())
	}
	return candidate
}

func dueDateInMonth(year int, month time.Month, day int, loc *time.Location) time.Time {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if day > lastDay {
		day = lastDay
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}
