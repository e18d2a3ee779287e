package timeslot

import "time"

var kst = time.FixedZone("KST", 9*60*60)

// DateLayout is the civil-date wire format used throughout the service.
const DateLayout = "2006-01-02"

// KST returns the fixed Korea Standard Time zone that anchors every civil
// date in the system.
func KST() *time.Location {
	return kst
}

// Date normalizes t to midnight KST, discarding the time-of-day component.
func Date(t time.Time) time.Time {
	local := t.In(kst)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, kst)
}

// NewDate builds a civil date at midnight KST.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, kst)
}

// SameDate reports whether a and b fall on the same KST calendar day.
func SameDate(a, b time.Time) bool {
	return Date(a).Equal(Date(b))
}

// WithinDateRange reports whether t falls inside the inclusive calendar-day
// range [start, end]. Time-of-day is ignored on all three arguments.
func WithinDateRange(t, start, end time.Time) bool {
	day := Date(t)
	return !day.Before(Date(start)) && !day.After(Date(end))
}

// FormatDate renders a civil date as "YYYY-MM-DD" in KST.
func FormatDate(t time.Time) string {
	return t.In(kst).Format(DateLayout)
}

// ParseDate parses a "YYYY-MM-DD" string into a civil date at midnight KST.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, kst)
}
