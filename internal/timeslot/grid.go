package timeslot

// The reservable day runs 08:00-24:00 and is divided into fixed half-hour
// slots. Slot boundaries stay in the inclusive minute range [480, 1440].
const (
	// DayStartMinute is the first reservable minute (08:00).
	DayStartMinute = 8 * 60
	// DayEndMinute is the exclusive end of the reservable day (24:00).
	DayEndMinute = MinutesPerDay
	// SlotMinutes is the width of a single slot.
	SlotMinutes = 30
	// SlotCount is the number of slots in a reservable day.
	SlotCount = (DayEndMinute - DayStartMinute) / SlotMinutes
)

// SlotBounds returns the half-open minute range covered by slot i. The index
// must be in [0, SlotCount).
func SlotBounds(i int) Interval {
	start := DayStartMinute + SlotMinutes*i
	return Interval{Start: start, End: start + SlotMinutes}
}

// SlotClock returns the wall-clock label of the boundary at index i, for
// i in [0, SlotCount]. SlotClock(SlotCount) is the end of the last slot and
// formats as "00:00" even though the underlying boundary is minute 1440.
func SlotClock(i int) string {
	return FormatClock(DayStartMinute + SlotMinutes*i)
}

// SlotIndex maps a minute-of-day to the slot containing it. It reports false
// for minutes outside the reservable day.
func SlotIndex(minute int) (int, bool) {
	if minute < DayStartMinute || minute >= DayEndMinute {
		return 0, false
	}
	return (minute - DayStartMinute) / SlotMinutes, true
}

// ValidSlot reports whether i addresses one of the day's slots.
func ValidSlot(i int) bool {
	return i >= 0 && i < SlotCount
}
