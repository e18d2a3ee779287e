package recurrence

import (
	"time"

	"github.com/example/clubroom-reservation/internal/timeslot"
)

// Kind represents supported recurrence frequencies for blackout rules.
type Kind int

const (
	// KindUnspecified indicates the rule frequency is not set.
	KindUnspecified Kind = iota
	// KindOnce matches every date inside the rule's date range.
	KindOnce
	// KindWeekly matches a single weekday inside the date range.
	KindWeekly
	// KindMonthlyByWeekDay matches a weekday in a specific occurrence
	// bucket of the month, anchored to the month's first Sunday.
	KindMonthlyByWeekDay
)

const (
	kindOnceLabel             = "once"
	kindWeeklyLabel           = "weekly"
	kindMonthlyByWeekDayLabel = "monthly_by_week_day"
)

// ParseKind maps a stored frequency label to its Kind. Unknown labels map to
// KindUnspecified, which never matches any date.
func ParseKind(label string) Kind {
	switch label {
	case kindOnceLabel:
		return KindOnce
	case kindWeeklyLabel:
		return KindWeekly
	case kindMonthlyByWeekDayLabel:
		return KindMonthlyByWeekDay
	default:
		return KindUnspecified
	}
}

// String returns the storage label for the kind, or an empty string when the
// kind is unspecified.
func (k Kind) String() string {
	switch k {
	case KindOnce:
		return kindOnceLabel
	case KindWeekly:
		return kindWeeklyLabel
	case KindMonthlyByWeekDay:
		return kindMonthlyByWeekDayLabel
	default:
		return ""
	}
}

// Pattern describes how a blackout rule repeats within its date range.
// Weekday and WeekOfMonth are only consulted for the kinds that need them.
type Pattern struct {
	Kind        Kind
	Weekday     time.Weekday
	WeekOfMonth int
}

// Matches reports whether the pattern applies to the given date. The date
// range gate is inclusive on both ends and compares KST calendar days.
// Unspecified or unknown kinds never match.
func Matches(p Pattern, startDate, endDate, date time.Time) bool {
	if !timeslot.WithinDateRange(date, startDate, endDate) {
		return false
	}

	switch p.Kind {
	case KindOnce:
		return true
	case KindWeekly:
		return timeslot.Date(date).Weekday() == p.Weekday
	case KindMonthlyByWeekDay:
		day := timeslot.Date(date)
		if day.Weekday() != p.Weekday {
			return false
		}
		return OccurrenceBucket(day) == p.WeekOfMonth
	default:
		return false
	}
}

// OccurrenceBucket returns the week-of-month bucket for the date, counting
// weeks from the month's first Sunday. Days before the first Sunday land in
// bucket 0. A rule configured with WeekOfMonth 5 matches bucket 5 only; it is
// not a "last occurrence" selector.
func OccurrenceBucket(date time.Time) int {
	day := timeslot.Date(date)
	firstWeekday := int(timeslot.NewDate(day.Year(), day.Month(), 1).Weekday())

	firstSunday := 1
	if firstWeekday != 0 {
		firstSunday = 1 + (7 - firstWeekday)
	}

	return floorDiv(day.Day()-firstSunday, 7) + 1
}

// NthWeekdayOfMonth counts literal occurrences of the weekday within the
// date's month and reports whether the date is the nth one. An n of 5 is
// treated as the month's last occurrence of that weekday.
func NthWeekdayOfMonth(date time.Time, weekday time.Weekday, n int) bool {
	day := timeslot.Date(date)
	if day.Weekday() != weekday {
		return false
	}

	ordinal := (day.Day()-1)/7 + 1
	if n < 5 {
		return ordinal == n
	}

	// Last occurrence: no same-weekday date remains in the month.
	next := day.AddDate(0, 0, 7)
	return next.Month() != day.Month()
}

// floorDiv divides rounding toward negative infinity, matching the bucket
// arithmetic for days that fall before the month's first Sunday.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
