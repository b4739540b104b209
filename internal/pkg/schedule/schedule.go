package schedule

import (
	"errors"
	"fmt"
	"time"
)

// Unit is a recurring-schedule duration unit.
type Unit string

const (
	UnitMinutes Unit = "MINUTES"
	UnitHours   Unit = "HOURS"
	UnitDays    Unit = "DAYS"
	UnitWeeks   Unit = "WEEKS"
	UnitMonths  Unit = "MONTHS"
)

var ErrUnsupportedUnit = errors.New("unsupported duration unit")

// Advance adds duration units of unit to t. DAYS, WEEKS and MONTHS use
// calendar arithmetic in t's location; MONTHS normalize past month-end the
// same way the Go standard library does (Jan 31 + 1 month lands in early
// March). MINUTES and HOURS are fixed-length durations.
func Advance(t time.Time, duration int, unit Unit) (time.Time, error) {
	switch unit {
	case UnitMinutes:
		return t.Add(time.Duration(duration) * time.Minute), nil
	case UnitHours:
		return t.Add(time.Duration(duration) * time.Hour), nil
	case UnitDays:
		return t.AddDate(0, 0, duration), nil
	case UnitWeeks:
		return t.AddDate(0, 0, duration*7), nil
	case UnitMonths:
		return t.AddDate(0, duration, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnsupportedUnit, unit)
	}
}

// OffsetFromDue shifts a due date by offset units. A negative offset lands
// before the due date, a positive one after.
func OffsetFromDue(dueDate time.Time, offset int, unit Unit) (time.Time, error) {
	return Advance(dueDate, offset, unit)
}

// IsValidUnit reports whether unit is one of the supported duration units.
func IsValidUnit(unit Unit) bool {
	switch unit {
	case UnitMinutes, UnitHours, UnitDays, UnitWeeks, UnitMonths:
		return true
	}
	return false
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
