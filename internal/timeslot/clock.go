// Package timeslot provides the minute-of-day arithmetic underlying the
// reservation grid: wall-clock parsing, half-open interval overlap, the fixed
// half-hour slot grid, and KST calendar-day helpers.
//
// All interval math is carried out on minute-of-day integers. Strings such as
// "HH:MM" exist for input and display only; in particular the final grid
// boundary (minute 1440) formats as "00:00", so interval ends must go through
// ParseClockEnd, which maps that spelling back to 1440 instead of 0.
package timeslot

import (
	"errors"
	"fmt"
)

// MinutesPerDay is the number of minutes in a civil day.
const MinutesPerDay = 24 * 60

// ErrInvalidClock indicates a wall-clock string that is not a valid "HH:MM"
// value with hours 00-23 and minutes 00-59.
var ErrInvalidClock = errors.New("timeslot: invalid clock value")

// ErrInvalidInterval indicates an empty or inverted minute range.
var ErrInvalidInterval = errors.New("timeslot: interval start must precede end")

// ParseClock converts an "HH:MM" wall-clock string into minutes after
// midnight. It accepts exactly five characters with a colon separator.
func ParseClock(value string) (int, error) {
	if len(value) != 5 || value[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}

	hour, ok := twoDigits(value[0], value[1])
	if !ok || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	minute, ok := twoDigits(value[3], value[4])
	if !ok || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}

	return hour*60 + minute, nil
}

// ParseClockEnd converts the end boundary of an interval into minutes after
// midnight. End-of-day carries two spellings: requests may write "24:00" and
// stored records write "00:00"; both normalize to minute 1440 so windows
// running to midnight keep their half-open shape. Every other value parses
// like ParseClock.
func ParseClockEnd(value string) (int, error) {
	if value == "24:00" || value == "00:00" {
		return MinutesPerDay, nil
	}
	return ParseClock(value)
}

// FormatClock renders a minute-of-day as "HH:MM" for display. Minute 1440
// wraps to "00:00"; callers must keep the integer value as the source of
// truth for any further arithmetic.
func FormatClock(minutes int) string {
	minutes %= MinutesPerDay
	if minutes < 0 {
		minutes += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Aligned reports whether a minute-of-day value sits on a slot boundary.
func Aligned(minutes int) bool {
	return minutes%SlotMinutes == 0
}

// Overlaps reports whether the half-open ranges [aStart, aEnd) and
// [bStart, bEnd) share any minute. Ranges that merely touch do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// Interval is a half-open minute-of-day range [Start, End).
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether the receiver shares any minute with other.
func (i Interval) Overlaps(other Interval) bool {
	return Overlaps(i.Start, i.End, other.Start, other.End)
}

// Valid reports whether the interval is non-empty and inside a single day.
func (i Interval) Valid() bool {
	return i.Start < i.End && i.Start >= 0 && i.End <= MinutesPerDay
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}
