package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/example/clubroom-reservation/internal/availability"
	"github.com/example/clubroom-reservation/internal/persistence"
	"github.com/example/clubroom-reservation/internal/timeslot"
)

// ReservationRepository captures the persistence interactions needed by the service.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) (Reservation, error)
	GetReservation(ctx context.Context, id string) (Reservation, error)
	UpdateReservation(ctx context.Context, reservation Reservation) (Reservation, error)
	ListReservationsByDay(ctx context.Context, date time.Time, resourceGroup string) ([]Reservation, error)
	ListReservationsByUser(ctx context.Context, userID string) ([]Reservation, error)
}

var phonePattern = regexp.MustCompile(`^(010-\d{4}-\d{4}|010\d{8})$`)

// ReservationService orchestrates validation, conflict checking, and
// persistence for reservation requests.
type ReservationService struct {
	reservations ReservationRepository
	resolver     *availability.Resolver
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewReservationService wires dependencies for reservation operations.
func NewReservationService(reservations ReservationRepository, resolver *availability.Resolver, idGenerator func() string, now func() time.Time) *ReservationService {
	return NewReservationServiceWithLogger(reservations, resolver, idGenerator, now, nil)
}

// NewReservationServiceWithLogger constructs a reservation service with a specified logger.
func NewReservationServiceWithLogger(reservations ReservationRepository, resolver *availability.Resolver, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ReservationService {
	if resolver == nil {
		resolver = availability.NewResolver(logger)
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationService{
		reservations: reservations,
		resolver:     resolver,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

// Submit validates a reservation request, checks it against occupying
// reservations on the same day, and persists it as pending.
//
// The conflict check and the insert are separate repository calls, so two
// concurrent submissions for the same window can both pass and both persist
// as pending. Administrators resolve such double-pending pairs at approval
// time; serializing the check-and-insert would need a storage-level
// constraint.
func (s *ReservationService) Submit(ctx context.Context, params SubmitReservationParams) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Submit",
		"principal_id", params.Principal.UserID,
		"resource_group", params.Input.ResourceGroup,
		"use_date", params.Input.UseDate,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to submit reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("reservation_id", reservation.ID).InfoContext(ctx, "reservation submitted")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	window, vErr := validateReservationInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	existing, listErr := s.reservations.ListReservationsByDay(ctx, window.date, params.Input.ResourceGroup)
	if listErr != nil && !isNotFoundError(listErr) {
		err = listErr
		return
	}

	if conflicting, found := s.findConflict(window, params.Input.ResourceGroup, existing); found {
		err = &ConflictError{Conflicting: conflicting}
		return
	}

	now := s.now()
	reservation = Reservation{
		ID:            s.idGenerator(),
		TeamName:      strings.TrimSpace(params.Input.TeamName),
		UseDate:       window.date,
		StartTime:     params.Input.StartTime,
		EndTime:       timeslot.FormatClock(window.end),
		Reason:        strings.TrimSpace(params.Input.Reason),
		Applicant:     strings.TrimSpace(params.Input.Applicant),
		PhoneNumber:   strings.TrimSpace(params.Input.PhoneNumber),
		ResourceGroup: params.Input.ResourceGroup,
		Status:        ReservationPending,
		UserID:        params.Principal.UserID,
		SubmittedAt:   now,
		UpdatedAt:     now,
	}

	persisted, createErr := s.reservations.CreateReservation(ctx, reservation)
	if createErr != nil {
		err = mapReservationRepoError(createErr)
		return
	}

	reservation = persisted
	return
}

// Approve marks a pending reservation as approved. Administrators only.
func (s *ReservationService) Approve(ctx context.Context, principal Principal, reservationID string) (Reservation, error) {
	return s.transition(ctx, "Approve", principal, reservationID, ReservationApproved)
}

// Reject marks a pending reservation as rejected. Administrators only.
func (s *ReservationService) Reject(ctx context.Context, principal Principal, reservationID string) (Reservation, error) {
	return s.transition(ctx, "Reject", principal, reservationID, ReservationRejected)
}

// Cancel withdraws a pending or approved reservation. The owner or an
// administrator may cancel.
func (s *ReservationService) Cancel(ctx context.Context, principal Principal, reservationID string) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "Cancel",
		"principal_id", principal.UserID,
		"reservation_id", reservationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation cancelled")
	}()

	var existing Reservation
	existing, err = s.reservations.GetReservation(ctx, reservationID)
	if err != nil {
		err = mapReservationRepoError(err)
		return
	}

	if existing.UserID != principal.UserID && !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	if existing.Status != ReservationPending && existing.Status != ReservationApproved {
		vErr := &ValidationError{}
		vErr.add("status", "only pending or approved reservations can be cancelled")
		err = vErr
		return
	}

	existing.Status = ReservationCancelled
	existing.UpdatedAt = s.now()

	reservation, err = s.reservations.UpdateReservation(ctx, existing)
	if err != nil {
		err = mapReservationRepoError(err)
		return
	}
	return
}

// ListForDay returns the reservations for one day and resource group,
// ordered by start time. The listing is public; it backs the day grid.
func (s *ReservationService) ListForDay(ctx context.Context, useDate, resourceGroup string) (reservations []Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListForDay",
		"use_date", useDate,
		"resource_group", resourceGroup,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list reservations", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(reservations)).InfoContext(ctx, "reservations listed")
	}()

	date, parseErr := timeslot.ParseDate(useDate)
	if parseErr != nil {
		vErr := &ValidationError{}
		vErr.add("use_date", "must be formatted as YYYY-MM-DD")
		err = vErr
		return
	}
	if !slices.Contains(ResourceGroups, resourceGroup) {
		vErr := &ValidationError{}
		vErr.add("resource_group", "unknown resource group")
		err = vErr
		return
	}

	raw, listErr := s.reservations.ListReservationsByDay(ctx, date, resourceGroup)
	if listErr != nil {
		if isNotFoundError(listErr) {
			return nil, nil
		}
		err = listErr
		return
	}

	reservations = sortReservations(raw)
	return
}

// ListForUser returns the caller's own reservations, newest day first.
func (s *ReservationService) ListForUser(ctx context.Context, principal Principal) (reservations []Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		return nil, nil
	}
	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	logger := s.loggerWith(ctx, "ListForUser", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list reservations", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(reservations)).InfoContext(ctx, "reservations listed")
	}()

	raw, listErr := s.reservations.ListReservationsByUser(ctx, principal.UserID)
	if listErr != nil {
		if isNotFoundError(listErr) {
			return nil, nil
		}
		err = listErr
		return
	}

	reservations = make([]Reservation, len(raw))
	copy(reservations, raw)
	sort.SliceStable(reservations, func(i, j int) bool {
		if reservations[i].UseDate.Equal(reservations[j].UseDate) {
			if reservations[i].StartTime == reservations[j].StartTime {
				return reservations[i].ID < reservations[j].ID
			}
			return reservations[i].StartTime < reservations[j].StartTime
		}
		return reservations[i].UseDate.After(reservations[j].UseDate)
	})
	return
}

func (s *ReservationService) transition(ctx context.Context, operation string, principal Principal, reservationID string, target ReservationStatus) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		err = fmt.Errorf("reservation repository not configured")
		return
	}

	logger := s.loggerWith(ctx, operation,
		"principal_id", principal.UserID,
		"reservation_id", reservationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update reservation status", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", string(reservation.Status)).InfoContext(ctx, "reservation status updated")
	}()

	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var existing Reservation
	existing, err = s.reservations.GetReservation(ctx, reservationID)
	if err != nil {
		err = mapReservationRepoError(err)
		return
	}

	if existing.Status != ReservationPending {
		vErr := &ValidationError{}
		vErr.add("status", "only pending reservations can be reviewed")
		err = vErr
		return
	}

	existing.Status = target
	existing.UpdatedAt = s.now()

	reservation, err = s.reservations.UpdateReservation(ctx, existing)
	if err != nil {
		err = mapReservationRepoError(err)
		return
	}
	return
}

type reservationWindow struct {
	date  time.Time
	start int
	end   int
}

func (s *ReservationService) findConflict(window reservationWindow, resourceGroup string, existing []Reservation) (Reservation, bool) {
	snapshot := make([]availability.Reservation, 0, len(existing))
	for _, res := range existing {
		snapshot = append(snapshot, toAvailabilityReservation(res))
	}

	hit, found := s.resolver.FindConflict(window.date, resourceGroup, window.start, window.end, snapshot)
	if !found {
		return Reservation{}, false
	}
	for _, res := range existing {
		if res.ID == hit.ID {
			return res, true
		}
	}
	return Reservation{}, false
}

func validateReservationInput(input ReservationInput) (reservationWindow, *ValidationError) {
	vErr := &ValidationError{}
	var window reservationWindow

	if strings.TrimSpace(input.TeamName) == "" {
		vErr.add("team_name", "team name is required")
	}
	if strings.TrimSpace(input.Reason) == "" {
		vErr.add("reason", "reason is required")
	}
	if strings.TrimSpace(input.Applicant) == "" {
		vErr.add("applicant", "applicant is required")
	}
	if !phonePattern.MatchString(strings.TrimSpace(input.PhoneNumber)) {
		vErr.add("phone_number", "must be a valid phone number")
	}
	if !slices.Contains(ResourceGroups, input.ResourceGroup) {
		vErr.add("resource_group", "unknown resource group")
	}

	date, err := timeslot.ParseDate(input.UseDate)
	if err != nil {
		vErr.add("use_date", "must be formatted as YYYY-MM-DD")
	} else {
		window.date = date
	}

	start, startErr := parseAlignedClock(input.StartTime)
	if startErr != nil {
		vErr.add("start_time", "must be formatted as HH:MM on a 30 minute boundary")
	}
	end, endErr := parseAlignedEndClock(input.EndTime)
	if endErr != nil {
		vErr.add("end_time", "must be formatted as HH:MM on a 30 minute boundary")
	}
	if startErr == nil && endErr == nil {
		if start >= end {
			vErr.add("time", "start must be before end")
		} else {
			window.start = start
			window.end = end
		}
	}

	return window, vErr
}

func parseAlignedClock(value string) (int, error) {
	minutes, err := timeslot.ParseClock(value)
	if err != nil {
		return 0, err
	}
	if !timeslot.Aligned(minutes) {
		return 0, timeslot.ErrInvalidClock
	}
	return minutes, nil
}

// parseAlignedEndClock parses an interval end, accepting both midnight
// spellings ("24:00" and "00:00") as minute 1440.
func parseAlignedEndClock(value string) (int, error) {
	minutes, err := timeslot.ParseClockEnd(value)
	if err != nil {
		return 0, err
	}
	if !timeslot.Aligned(minutes) {
		return 0, timeslot.ErrInvalidClock
	}
	return minutes, nil
}

func sortReservations(raw []Reservation) []Reservation {
	out := make([]Reservation, len(raw))
	copy(out, raw)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartTime == out[j].StartTime {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

func toAvailabilityReservation(res Reservation) availability.Reservation {
	return availability.Reservation{
		ID:            res.ID,
		ResourceGroup: res.ResourceGroup,
		Date:          res.UseDate,
		StartTime:     res.StartTime,
		EndTime:       res.EndTime,
		Status:        availability.ReservationStatus(res.Status),
	}
}

func mapReservationRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("time", "start must be before end")
		return vErr
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("user_id", "related records are missing")
		return vErr
	}
	return err
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}
