package application

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/example/clubroom-reservation/internal/availability"
	"github.com/example/clubroom-reservation/internal/recurrence"
	"github.com/example/clubroom-reservation/internal/timeslot"
)

// AvailabilityService exposes the resolved day grid and per-slot detail. It
// reads fresh snapshots on every call; callers re-request after any change.
type AvailabilityService struct {
	reservations ReservationRepository
	rules        BlackoutRepository
	resolver     *availability.Resolver
	logger       *slog.Logger
}

// NewAvailabilityService wires dependencies for availability queries.
func NewAvailabilityService(reservations ReservationRepository, rules BlackoutRepository, resolver *availability.Resolver) *AvailabilityService {
	return NewAvailabilityServiceWithLogger(reservations, rules, resolver, nil)
}

// NewAvailabilityServiceWithLogger constructs an availability service with a specified logger.
func NewAvailabilityServiceWithLogger(reservations ReservationRepository, rules BlackoutRepository, resolver *availability.Resolver, logger *slog.Logger) *AvailabilityService {
	if resolver == nil {
		resolver = availability.NewResolver(logger)
	}
	return &AvailabilityService{
		reservations: reservations,
		rules:        rules,
		resolver:     resolver,
		logger:       defaultLogger(logger),
	}
}

func (s *AvailabilityService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AvailabilityService", operation, attrs...)
}

// DayGrid resolves the status of all half-hour slots for one day and
// resource group.
func (s *AvailabilityService) DayGrid(ctx context.Context, useDate, resourceGroup string) (slots []SlotView, err error) {
	if s == nil {
		err = fmt.Errorf("AvailabilityService is nil")
		return
	}

	logger := s.loggerWith(ctx, "DayGrid",
		"use_date", useDate,
		"resource_group", resourceGroup,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to resolve day grid", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "day grid resolved")
	}()

	date, vErr := parseGridQuery(useDate, resourceGroup)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	reservations, rules, loadErr := s.loadSnapshots(ctx, date, resourceGroup)
	if loadErr != nil {
		err = loadErr
		return
	}

	grid := s.resolver.Resolve(date, resourceGroup, toAvailabilityReservations(reservations), toAvailabilityRules(rules))

	slots = make([]SlotView, len(grid))
	for i, status := range grid {
		slots[i] = SlotView{
			Index:     i,
			StartTime: timeslot.SlotClock(i),
			EndTime:   timeslot.SlotClock(i + 1),
			Status:    string(status),
		}
	}
	return
}

// SlotDetail reports a single slot's status together with the reservation or
// rule responsible for it. It reuses the resolver's matching so the detail
// always agrees with the grid.
func (s *AvailabilityService) SlotDetail(ctx context.Context, useDate, resourceGroup string, slotIndex int) (detail SlotDetail, err error) {
	if s == nil {
		err = fmt.Errorf("AvailabilityService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SlotDetail",
		"use_date", useDate,
		"resource_group", resourceGroup,
		"slot", slotIndex,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to resolve slot detail", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "slot detail resolved")
	}()

	date, vErr := parseGridQuery(useDate, resourceGroup)
	if !timeslot.ValidSlot(slotIndex) {
		vErr.add("slot", "must be a slot index between 0 and 31")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	reservations, rules, loadErr := s.loadSnapshots(ctx, date, resourceGroup)
	if loadErr != nil {
		err = loadErr
		return
	}

	resSnapshot := toAvailabilityReservations(reservations)
	ruleSnapshot := toAvailabilityRules(rules)

	grid := s.resolver.Resolve(date, resourceGroup, resSnapshot, ruleSnapshot)
	detail.Slot = SlotView{
		Index:     slotIndex,
		StartTime: timeslot.SlotClock(slotIndex),
		EndTime:   timeslot.SlotClock(slotIndex + 1),
		Status:    string(grid[slotIndex]),
	}

	if hit, found := s.resolver.FindOccupyingReservation(date, resourceGroup, resSnapshot, slotIndex); found {
		for i := range reservations {
			if reservations[i].ID == hit.ID {
				res := reservations[i]
				detail.Reservation = &res
				break
			}
		}
	}
	if hit, found := s.resolver.FindOccupyingRule(date, resourceGroup, ruleSnapshot, slotIndex); found {
		for i := range rules {
			if rules[i].ID == hit.ID {
				rule := rules[i]
				detail.Rule = &rule
				break
			}
		}
	}
	return
}

func (s *AvailabilityService) loadSnapshots(ctx context.Context, date time.Time, resourceGroup string) ([]Reservation, []BlackoutRule, error) {
	var reservations []Reservation
	if s.reservations != nil {
		raw, err := s.reservations.ListReservationsByDay(ctx, date, resourceGroup)
		if err != nil && !isNotFoundError(err) {
			return nil, nil, err
		}
		reservations = raw
	}

	var rules []BlackoutRule
	if s.rules != nil {
		raw, err := s.rules.ListRules(ctx, resourceGroup)
		if err != nil && !isNotFoundError(err) {
			return nil, nil, err
		}
		rules = raw
	}

	return reservations, rules, nil
}

func parseGridQuery(useDate, resourceGroup string) (time.Time, *ValidationError) {
	vErr := &ValidationError{}

	date, err := timeslot.ParseDate(useDate)
	if err != nil {
		vErr.add("use_date", "must be formatted as YYYY-MM-DD")
	}
	if !slices.Contains(ResourceGroups, resourceGroup) {
		vErr.add("resource_group", "unknown resource group")
	}

	return date, vErr
}

func toAvailabilityReservations(reservations []Reservation) []availability.Reservation {
	out := make([]availability.Reservation, 0, len(reservations))
	for _, res := range reservations {
		out = append(out, toAvailabilityReservation(res))
	}
	return out
}

func toAvailabilityRules(rules []BlackoutRule) []availability.BlackoutRule {
	out := make([]availability.BlackoutRule, 0, len(rules))
	for _, rule := range rules {
		out = append(out, availability.BlackoutRule{
			ID:            rule.ID,
			ResourceGroup: rule.ResourceGroup,
			StartDate:     rule.StartDate,
			EndDate:       rule.EndDate,
			Pattern: recurrence.Pattern{
				Kind:        recurrence.ParseKind(rule.Frequency),
				Weekday:     time.Weekday(rule.DayOfWeek),
				WeekOfMonth: rule.WeekOfMonth,
			},
			StartTime: rule.StartTime,
			EndTime:   rule.EndTime,
		})
	}
	return out
}
