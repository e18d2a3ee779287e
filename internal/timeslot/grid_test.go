package timeslot

import (
	"testing"
	"time"
)

func TestSlotBounds_CoverTheDayContiguously(t *testing.T) {
	t.Parallel()

	if SlotCount != 32 {
		t.Fatalf("expected 32 slots, got %d", SlotCount)
	}

	prevEnd := DayStartMinute
	for i := 0; i < SlotCount; i++ {
		bounds := SlotBounds(i)
		if bounds.Start != prevEnd {
			t.Fatalf("slot %d starts at %d, want %d", i, bounds.Start, prevEnd)
		}
		if bounds.End-bounds.Start != SlotMinutes {
			t.Fatalf("slot %d spans %d minutes", i, bounds.End-bounds.Start)
		}
		prevEnd = bounds.End
	}
	if prevEnd != DayEndMinute {
		t.Fatalf("last slot ends at %d, want %d", prevEnd, DayEndMinute)
	}
}

func TestSlotClock_FinalBoundary(t *testing.T) {
	t.Parallel()

	if got := SlotClock(0); got != "08:00" {
		t.Fatalf("SlotClock(0) = %q", got)
	}
	if got := SlotClock(2); got != "09:00" {
		t.Fatalf("SlotClock(2) = %q", got)
	}
	if got := SlotClock(SlotCount); got != "00:00" {
		t.Fatalf("SlotClock(%d) = %q, want %q", SlotCount, got, "00:00")
	}

	// The integer boundary behind the label stays at 1440, keeping the final
	// slot's end strictly greater than its start.
	last := SlotBounds(SlotCount - 1)
	if last.End != DayEndMinute {
		t.Fatalf("final slot end = %d, want %d", last.End, DayEndMinute)
	}
	if !last.Valid() {
		t.Fatalf("final slot bounds invalid: %+v", last)
	}
}

func TestSlotIndex(t *testing.T) {
	t.Parallel()

	cases := []struct {
		minute int
		index  int
		ok     bool
	}{
		{480, 0, true},
		{509, 0, true},
		{510, 1, true},
		{1439, 31, true},
		{479, 0, false},
		{1440, 0, false},
		{0, 0, false},
	}

	for _, tc := range cases {
		idx, ok := SlotIndex(tc.minute)
		if ok != tc.ok || (ok && idx != tc.index) {
			t.Fatalf("SlotIndex(%d) = (%d, %v), want (%d, %v)", tc.minute, idx, ok, tc.index, tc.ok)
		}
	}
}

func TestDateHelpers(t *testing.T) {
	t.Parallel()

	date, err := ParseDate("2024-06-10")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if date.Weekday() != time.Monday {
		t.Fatalf("2024-06-10 should be Monday, got %v", date.Weekday())
	}
	if FormatDate(date) != "2024-06-10" {
		t.Fatalf("FormatDate round trip = %q", FormatDate(date))
	}

	evening := time.Date(2024, time.June, 10, 23, 30, 0, 0, KST())
	if !SameDate(date, evening) {
		t.Fatalf("expected same KST calendar day")
	}

	// 23:30 KST on June 10 is June 10 14:30 UTC; normalization must stay on
	// the KST day regardless of the incoming zone.
	if !SameDate(date, evening.UTC()) {
		t.Fatalf("expected SameDate to normalize to KST before comparing")
	}

	start := NewDate(2024, time.June, 1)
	end := NewDate(2024, time.June, 30)
	if !WithinDateRange(date, start, end) {
		t.Fatalf("expected date inside range")
	}
	if !WithinDateRange(start, start, end) || !WithinDateRange(end, start, end) {
		t.Fatalf("range boundaries must be inclusive")
	}
	if WithinDateRange(NewDate(2024, time.July, 1), start, end) {
		t.Fatalf("expected date outside range")
	}
}
