package availability

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/clubroom-reservation/internal/recurrence"
	"github.com/example/clubroom-reservation/internal/timeslot"
)

func testResolver() *Resolver {
	return NewResolver(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestResolve_ApprovedReservationOccupiesSlots(t *testing.T) {
	t.Parallel()

	date := timeslot.NewDate(2024, time.June, 10)
	reservations := []Reservation{
		{ID: "r1", ResourceGroup: "인캠", Date: date, StartTime: "09:00", EndTime: "10:30", Status: StatusApproved},
	}

	grid := testResolver().Resolve(date, "인캠", reservations, nil)

	// 09:00-10:30 covers slots 2, 3 and 4.
	for i, status := range grid {
		want := SlotAvailable
		if i >= 2 && i <= 4 {
			want = SlotOccupied
		}
		if status != want {
			t.Fatalf("slot %d = %q, want %q", i, status, want)
		}
	}
}

func TestResolve_WeeklyBlackoutMatchesOnlyItsWeekday(t *testing.T) {
	t.Parallel()

	rules := []BlackoutRule{{
		ID:            "b1",
		ResourceGroup: "인캠",
		StartDate:     timeslot.NewDate(2024, time.June, 1),
		EndDate:       timeslot.NewDate(2024, time.June, 30),
		Pattern:       recurrence.Pattern{Kind: recurrence.KindWeekly, Weekday: time.Tuesday},
		StartTime:     "13:00",
		EndTime:       "15:00",
	}}

	monday := testResolver().Resolve(timeslot.NewDate(2024, time.June, 10), "인캠", nil, rules)
	for i, status := range monday {
		if status != SlotAvailable {
			t.Fatalf("Monday slot %d = %q, want available", i, status)
		}
	}

	tuesday := testResolver().Resolve(timeslot.NewDate(2024, time.June, 11), "인캠", nil, rules)
	// 13:00-15:00 covers slots 10 through 13.
	for i, status := range tuesday {
		want := SlotAvailable
		if i >= 10 && i <= 13 {
			want = SlotBlocked
		}
		if status != want {
			t.Fatalf("Tuesday slot %d = %q, want %q", i, status, want)
		}
	}
}

func TestResolve_StatusPriority(t *testing.T) {
	t.Parallel()

	date := timeslot.NewDate(2024, time.June, 11)
	rules := []BlackoutRule{{
		ID:            "b1",
		ResourceGroup: "인캠",
		StartDate:     date,
		EndDate:       date,
		Pattern:       recurrence.Pattern{Kind: recurrence.KindOnce},
		StartTime:     "09:00",
		EndTime:       "11:00",
	}}

	approved := []Reservation{
		{ID: "r1", ResourceGroup: "인캠", Date: date, StartTime: "09:00", EndTime: "10:00", Status: StatusApproved},
	}
	grid := testResolver().Resolve(date, "인캠", approved, rules)
	if grid[2] != SlotOccupied || grid[3] != SlotOccupied {
		t.Fatalf("approved reservation must outrank the blackout, got %q/%q", grid[2], grid[3])
	}
	if grid[4] != SlotBlocked || grid[5] != SlotBlocked {
		t.Fatalf("uncovered blackout slots must stay blocked, got %q/%q", grid[4], grid[5])
	}

	pending := []Reservation{
		{ID: "r2", ResourceGroup: "인캠", Date: date, StartTime: "09:00", EndTime: "10:00", Status: StatusPending},
	}
	grid = testResolver().Resolve(date, "인캠", pending, rules)
	if grid[2] != SlotBlocked {
		t.Fatalf("blackout must outrank a pending reservation, got %q", grid[2])
	}

	grid = testResolver().Resolve(date, "인캠", pending, nil)
	if grid[2] != SlotPending {
		t.Fatalf("pending reservation alone = %q, want pending", grid[2])
	}
}

func TestResolve_InertAndForeignRecordsIgnored(t *testing.T) {
	t.Parallel()

	date := timeslot.NewDate(2024, time.June, 10)
	reservations := []Reservation{
		{ID: "r1", ResourceGroup: "인캠", Date: date, StartTime: "09:00", EndTime: "10:00", Status: StatusCancelled},
		{ID: "r2", ResourceGroup: "인캠", Date: date, StartTime: "10:00", EndTime: "11:00", Status: StatusRejected},
		{ID: "r3", ResourceGroup: "경캠", Date: date, StartTime: "11:00", EndTime: "12:00", Status: StatusApproved},
		{ID: "r4", ResourceGroup: "인캠", Date: timeslot.NewDate(2024, time.June, 11), StartTime: "12:00", EndTime: "13:00", Status: StatusApproved},
	}

	grid := testResolver().Resolve(date, "인캠", reservations, nil)
	for i, status := range grid {
		if status != SlotAvailable {
			t.Fatalf("slot %d = %q, want available", i, status)
		}
	}
}

func TestResolve_MalformedRecordsAreSkipped(t *testing.T) {
	t.Parallel()

	date := timeslot.NewDate(2024, time.June, 10)
	reservations := []Reservation{
		{ID: "bad-clock", ResourceGroup: "인캠", Date: date, StartTime: "9:00", EndTime: "10:00", Status: StatusApproved},
		{ID: "inverted", ResourceGroup: "인캠", Date: date, StartTime: "15:00", EndTime: "14:00", Status: StatusApproved},
		{ID: "good", ResourceGroup: "인캠", Date: date, StartTime: "10:00", EndTime: "10:30", Status: StatusApproved},
	}
	rules := []BlackoutRule{{
		ID:            "bad-rule",
		ResourceGroup: "인캠",
		StartDate:     date,
		EndDate:       date,
		Pattern:       recurrence.Pattern{Kind: recurrence.KindOnce},
		StartTime:     "25:00",
		EndTime:       "26:00",
	}}

	grid := testResolver().Resolve(date, "인캠", reservations, rules)
	for i, status := range grid {
		want := SlotAvailable
		if i == 4 {
			want = SlotOccupied
		}
		if status != want {
			t.Fatalf("slot %d = %q, want %q", i, status, want)
		}
	}
}

func TestResolve_TouchingWindowsDoNotBleed(t *testing.T) {
	t.Parallel()

	date := timeslot.NewDate(2024, time.June, 10)
	reservations := []Reservation{
		{ID: "r1", ResourceGroup: "인캠", Date: date, StartTime: "09:00", EndTime: "09:30", Status: StatusApproved},
	}

	grid := testResolver().Resolve(date, "인캠", reservations, nil)
	if grid[2] != SlotOccupied {
		t.Fatalf("slot 2 = %q, want occupied", grid[2])
	}
	if grid[3] != SlotAvailable {
		t.Fatalf("slot 3 = %q, a window ending at 09:30 must not spill over", grid[3])
	}
}

func TestResolve_MidnightEndCoversLastSlot(t *testing.T) {
	t.Parallel()

	date := timeslot.NewDate(2024, time.June, 10)
	// The stored form and the request form of an end-of-day boundary must
	// both occupy slot 31 (23:30-24:00).
	for _, end := range []string{"00:00", "24:00"} {
		reservations := []Reservation{
			{ID: "r1", ResourceGroup: "인캠", Date: date, StartTime: "23:30", EndTime: end, Status: StatusApproved},
		}

		grid := testResolver().Resolve(date, "인캠", reservations, nil)
		if grid[31] != SlotOccupied {
			t.Fatalf("end %q: slot 31 = %q, want occupied", end, grid[31])
		}
		if grid[30] != SlotAvailable {
			t.Fatalf("end %q: slot 30 = %q, want available", end, grid[30])
		}

		if !testResolver().HasConflict(date, "인캠", 23*60+30, 24*60, reservations) {
			t.Fatalf("end %q: a submission for the last slot must conflict", end)
		}
		if got, ok := testResolver().FindOccupyingReservation(date, "인캠", reservations, 31); !ok || got.ID != "r1" {
			t.Fatalf("end %q: got (%q, %v), want the midnight-ending reservation", end, got.ID, ok)
		}
	}

	rules := []BlackoutRule{{
		ID:            "b1",
		ResourceGroup: "인캠",
		StartDate:     date,
		EndDate:       date,
		Pattern:       recurrence.Pattern{Kind: recurrence.KindOnce},
		StartTime:     "22:00",
		EndTime:       "00:00",
	}}
	grid := testResolver().Resolve(date, "인캠", nil, rules)
	for i := 28; i <= 31; i++ {
		if grid[i] != SlotBlocked {
			t.Fatalf("slot %d = %q, want blocked up to midnight", i, grid[i])
		}
	}
}

func TestFindOccupyingReservation_Priority(t *testing.T) {
	t.Parallel()

	date := timeslot.NewDate(2024, time.June, 10)
	reservations := []Reservation{
		{ID: "cancelled", ResourceGroup: "인캠", Date: date, StartTime: "09:00", EndTime: "10:00", Status: StatusCancelled},
		{ID: "pending-1", ResourceGroup: "인캠", Date: date, StartTime: "09:00", EndTime: "10:00", Status: StatusPending},
		{ID: "pending-2", ResourceGroup: "인캠", Date: date, StartTime: "09:00", EndTime: "10:00", Status: StatusPending},
		{ID: "approved", ResourceGroup: "인캠", Date: date, StartTime: "09:00", EndTime: "10:00", Status: StatusApproved},
	}

	// Slot 2 spans 09:00-09:30.
	got, ok := testResolver().FindOccupyingReservation(date, "인캠", reservations, 2)
	if !ok || got.ID != "approved" {
		t.Fatalf("got (%q, %v), want the approved reservation", got.ID, ok)
	}

	withoutApproved := reservations[:3]
	got, ok = testResolver().FindOccupyingReservation(date, "인캠", withoutApproved, 2)
	if !ok || got.ID != "pending-1" {
		t.Fatalf("got (%q, %v), want the first pending reservation", got.ID, ok)
	}

	onlyCancelled := reservations[:1]
	got, ok = testResolver().FindOccupyingReservation(date, "인캠", onlyCancelled, 2)
	if !ok || got.ID != "cancelled" {
		t.Fatalf("got (%q, %v), want the cancelled reservation for detail display", got.ID, ok)
	}

	if _, ok := testResolver().FindOccupyingReservation(date, "인캠", reservations, 10); ok {
		t.Fatalf("slot 10 has no overlapping reservation")
	}
	if _, ok := testResolver().FindOccupyingReservation(date, "인캠", reservations, -1); ok {
		t.Fatalf("invalid slot index must resolve to none")
	}
}

func TestFindOccupyingRule_FirstMatchWins(t *testing.T) {
	t.Parallel()

	date := timeslot.NewDate(2024, time.June, 10)
	rules := []BlackoutRule{
		{
			ID:            "first",
			ResourceGroup: "인캠",
			StartDate:     date,
			EndDate:       date,
			Pattern:       recurrence.Pattern{Kind: recurrence.KindOnce},
			StartTime:     "09:00",
			EndTime:       "10:00",
		},
		{
			ID:            "second",
			ResourceGroup: "인캠",
			StartDate:     date,
			EndDate:       date,
			Pattern:       recurrence.Pattern{Kind: recurrence.KindOnce},
			StartTime:     "09:00",
			EndTime:       "11:00",
		},
	}

	got, ok := testResolver().FindOccupyingRule(date, "인캠", rules, 2)
	if !ok || got.ID != "first" {
		t.Fatalf("got (%q, %v), want the first matching rule", got.ID, ok)
	}

	got, ok = testResolver().FindOccupyingRule(date, "인캠", rules, 4)
	if !ok || got.ID != "second" {
		t.Fatalf("got (%q, %v), want the later rule for slot 4", got.ID, ok)
	}

	if _, ok := testResolver().FindOccupyingRule(date, "인캠", rules, 8); ok {
		t.Fatalf("slot 8 has no covering rule")
	}
}

func TestFindConflict(t *testing.T) {
	t.Parallel()

	date := timeslot.NewDate(2024, time.June, 10)
	existing := []Reservation{
		{ID: "r1", ResourceGroup: "인캠", Date: date, StartTime: "14:30", EndTime: "15:30", Status: StatusPending},
	}
	resolver := testResolver()

	// 14:00-15:00 overlaps the pending 14:30-15:30 window.
	got, found := resolver.FindConflict(date, "인캠", 14*60, 15*60, existing)
	if !found || got.ID != "r1" {
		t.Fatalf("got (%q, %v), want conflict with r1", got.ID, found)
	}

	if resolver.HasConflict(date, "인캠", 13*60, 14*60, existing) {
		t.Fatalf("disjoint windows must not conflict")
	}
	if resolver.HasConflict(date, "인캠", 13*60+30, 14*60+30, existing) {
		t.Fatalf("a window ending exactly at 14:30 must not conflict")
	}

	cancelled := []Reservation{
		{ID: "r2", ResourceGroup: "인캠", Date: date, StartTime: "14:30", EndTime: "15:30", Status: StatusCancelled},
	}
	if resolver.HasConflict(date, "인캠", 14*60, 15*60, cancelled) {
		t.Fatalf("cancelled reservations must never block a submission")
	}

	if resolver.HasConflict(timeslot.NewDate(2024, time.June, 11), "인캠", 14*60, 15*60, existing) {
		t.Fatalf("other days must not conflict")
	}
	if resolver.HasConflict(date, "경캠", 14*60, 15*60, existing) {
		t.Fatalf("other resource groups must not conflict")
	}
}
