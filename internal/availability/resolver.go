package availability

import (
	"log/slog"
	"time"

	"github.com/example/clubroom-reservation/internal/recurrence"
	"github.com/example/clubroom-reservation/internal/timeslot"
)

// Resolver merges reservation and blackout snapshots into per-slot statuses.
// Malformed records are skipped with a warning so one bad row cannot take
// down an entire day's grid.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver constructs a Resolver. A nil logger falls back to slog.Default.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger}
}

type parsedReservation struct {
	source Reservation
	start  int
	end    int
}

type parsedRule struct {
	source BlackoutRule
	start  int
	end    int
}

// Resolve computes the status of every half-hour slot for the given day and
// resource group. Statuses rank occupied over blocked over pending: an
// approved reservation stays visible even when a later blackout rule covers
// the same window, while a blackout outranks an unconfirmed request.
func (r *Resolver) Resolve(date time.Time, resourceGroup string, reservations []Reservation, rules []BlackoutRule) [timeslot.SlotCount]SlotStatus {
	dayReservations := r.prepareReservations(date, resourceGroup, reservations)
	dayRules := r.prepareRules(date, resourceGroup, rules)

	var grid [timeslot.SlotCount]SlotStatus
	for i := range grid {
		bounds := timeslot.SlotBounds(i)

		blocked := false
		for _, rule := range dayRules {
			if timeslot.Overlaps(rule.start, rule.end, bounds.Start, bounds.End) {
				blocked = true
				break
			}
		}

		occupied := false
		pendingFound := false
		for _, res := range dayReservations {
			if !timeslot.Overlaps(res.start, res.end, bounds.Start, bounds.End) {
				continue
			}
			if res.source.Status == StatusApproved {
				occupied = true
				break
			}
			if res.source.Status == StatusPending {
				pendingFound = true
			}
		}

		switch {
		case occupied:
			grid[i] = SlotOccupied
		case blocked:
			grid[i] = SlotBlocked
		case pendingFound:
			grid[i] = SlotPending
		default:
			grid[i] = SlotAvailable
		}
	}
	return grid
}

// FindOccupyingReservation returns the highest-priority reservation
// overlapping the slot, so callers can show which request owns a
// non-available cell. Approved outranks pending outranks rejected and
// cancelled; ties go to the earliest match in input order.
func (r *Resolver) FindOccupyingReservation(date time.Time, resourceGroup string, reservations []Reservation, slotIndex int) (Reservation, bool) {
	if !timeslot.ValidSlot(slotIndex) {
		return Reservation{}, false
	}
	bounds := timeslot.SlotBounds(slotIndex)

	var best Reservation
	bestRank := 0
	for _, res := range r.prepareReservations(date, resourceGroup, reservations) {
		if !timeslot.Overlaps(res.start, res.end, bounds.Start, bounds.End) {
			continue
		}
		rank := statusRank(res.source.Status)
		if rank > bestRank {
			best = res.source
			bestRank = rank
		}
		if rank == rankApproved {
			break
		}
	}
	return best, bestRank > 0
}

// FindOccupyingRule returns the first blackout rule covering the slot.
func (r *Resolver) FindOccupyingRule(date time.Time, resourceGroup string, rules []BlackoutRule, slotIndex int) (BlackoutRule, bool) {
	if !timeslot.ValidSlot(slotIndex) {
		return BlackoutRule{}, false
	}
	bounds := timeslot.SlotBounds(slotIndex)

	for _, rule := range r.prepareRules(date, resourceGroup, rules) {
		if timeslot.Overlaps(rule.start, rule.end, bounds.Start, bounds.End) {
			return rule.source, true
		}
	}
	return BlackoutRule{}, false
}

const (
	rankApproved = 3
	rankPending  = 2
	rankInert    = 1
)

func statusRank(status ReservationStatus) int {
	switch status {
	case StatusApproved:
		return rankApproved
	case StatusPending:
		return rankPending
	case StatusRejected, StatusCancelled:
		return rankInert
	default:
		return 0
	}
}

func (r *Resolver) prepareReservations(date time.Time, resourceGroup string, reservations []Reservation) []parsedReservation {
	out := make([]parsedReservation, 0, len(reservations))
	for _, res := range reservations {
		if res.ResourceGroup != resourceGroup || !timeslot.SameDate(res.Date, date) {
			continue
		}
		start, end, err := parseWindow(res.StartTime, res.EndTime)
		if err != nil {
			r.logger.Warn("skipping malformed reservation", "reservation_id", res.ID, "start", res.StartTime, "end", res.EndTime, "error", err)
			continue
		}
		out = append(out, parsedReservation{source: res, start: start, end: end})
	}
	return out
}

func (r *Resolver) prepareRules(date time.Time, resourceGroup string, rules []BlackoutRule) []parsedRule {
	out := make([]parsedRule, 0, len(rules))
	for _, rule := range rules {
		if rule.ResourceGroup == "" || rule.ResourceGroup != resourceGroup {
			continue
		}
		if !recurrence.Matches(rule.Pattern, rule.StartDate, rule.EndDate, date) {
			continue
		}
		start, end, err := parseWindow(rule.StartTime, rule.EndTime)
		if err != nil {
			r.logger.Warn("skipping malformed blackout rule", "rule_id", rule.ID, "start", rule.StartTime, "end", rule.EndTime, "error", err)
			continue
		}
		out = append(out, parsedRule{source: rule, start: start, end: end})
	}
	return out
}

func parseWindow(startClock, endClock string) (int, int, error) {
	start, err := timeslot.ParseClock(startClock)
	if err != nil {
		return 0, 0, err
	}
	end, err := timeslot.ParseClockEnd(endClock)
	if err != nil {
		return 0, 0, err
	}
	if start >= end {
		return 0, 0, timeslot.ErrInvalidInterval
	}
	return start, end, nil
}
