package timeslot

import (
	"errors"
	"testing"
)

func TestParseClock(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value   string
		minutes int
		valid   bool
	}{
		{"00:00", 0, true},
		{"08:00", 480, true},
		{"09:30", 570, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"9:30", 0, false},
		{"0930", 0, false},
		{"ab:cd", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		got, err := ParseClock(tc.value)
		if tc.valid {
			if err != nil {
				t.Fatalf("ParseClock(%q) returned error: %v", tc.value, err)
			}
			if got != tc.minutes {
				t.Fatalf("ParseClock(%q) = %d, want %d", tc.value, got, tc.minutes)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidClock) {
			t.Fatalf("ParseClock(%q) expected ErrInvalidClock, got %v", tc.value, err)
		}
	}
}

func TestParseClockEnd_MidnightSpellings(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value   string
		minutes int
		valid   bool
	}{
		{"24:00", MinutesPerDay, true},
		{"00:00", MinutesPerDay, true},
		{"23:30", 1410, true},
		{"08:00", 480, true},
		{"24:30", 0, false},
		{"25:00", 0, false},
		{"0:00", 0, false},
	}

	for _, tc := range cases {
		got, err := ParseClockEnd(tc.value)
		if tc.valid {
			if err != nil {
				t.Fatalf("ParseClockEnd(%q) returned error: %v", tc.value, err)
			}
			if got != tc.minutes {
				t.Fatalf("ParseClockEnd(%q) = %d, want %d", tc.value, got, tc.minutes)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidClock) {
			t.Fatalf("ParseClockEnd(%q) expected ErrInvalidClock, got %v", tc.value, err)
		}
	}
}

func TestFormatClock_WrapsFinalBoundary(t *testing.T) {
	t.Parallel()

	if got := FormatClock(MinutesPerDay); got != "00:00" {
		t.Fatalf("FormatClock(1440) = %q, want %q", got, "00:00")
	}
	if got := FormatClock(570); got != "09:30" {
		t.Fatalf("FormatClock(570) = %q, want %q", got, "09:30")
	}

	// The wrapped label must not round-trip back to the boundary it renders.
	reparsed, err := ParseClock(FormatClock(MinutesPerDay))
	if err != nil {
		t.Fatalf("reparsing wrapped label failed: %v", err)
	}
	if reparsed == MinutesPerDay {
		t.Fatalf("expected wrapped label to lose the boundary value, got %d", reparsed)
	}
}

func TestOverlaps_Symmetry(t *testing.T) {
	t.Parallel()

	// Sample boundary-aligned ranges across the full day.
	for a := 0; a <= MinutesPerDay; a += 90 {
		for b := a + 30; b <= MinutesPerDay; b += 90 {
			for c := 0; c <= MinutesPerDay; c += 90 {
				for d := c + 30; d <= MinutesPerDay; d += 90 {
					if Overlaps(a, b, c, d) != Overlaps(c, d, a, b) {
						t.Fatalf("Overlaps not symmetric for [%d,%d) vs [%d,%d)", a, b, c, d)
					}
				}
			}
		}
	}
}

func TestOverlaps_TouchingIsNotOverlap(t *testing.T) {
	t.Parallel()

	for a := 0; a < MinutesPerDay; a += 60 {
		for b := a + 30; b < MinutesPerDay; b += 60 {
			if Overlaps(a, b, b, b+30) {
				t.Fatalf("touching ranges [%d,%d) and [%d,%d) reported as overlapping", a, b, b, b+30)
			}
		}
	}

	if !Overlaps(540, 630, 600, 660) {
		t.Fatalf("expected [540,630) and [600,660) to overlap")
	}
	if Overlaps(540, 600, 600, 660) {
		t.Fatalf("expected [540,600) and [600,660) not to overlap")
	}
}

func TestInterval_Valid(t *testing.T) {
	t.Parallel()

	if !(Interval{Start: 480, End: 510}).Valid() {
		t.Fatalf("expected [480,510) to be valid")
	}
	if (Interval{Start: 510, End: 480}).Valid() {
		t.Fatalf("expected inverted interval to be invalid")
	}
	if (Interval{Start: 510, End: 510}).Valid() {
		t.Fatalf("expected empty interval to be invalid")
	}
	if (Interval{Start: 1410, End: 1470}).Valid() {
		t.Fatalf("expected interval past midnight to be invalid")
	}
}
