package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/example/clubroom-reservation/internal/persistence"
	"github.com/example/clubroom-reservation/internal/recurrence"
	"github.com/example/clubroom-reservation/internal/timeslot"
)

// BlackoutRepository captures the persistence operations needed by the service.
type BlackoutRepository interface {
	CreateRule(ctx context.Context, rule BlackoutRule) (BlackoutRule, error)
	GetRule(ctx context.Context, id string) (BlackoutRule, error)
	UpdateRule(ctx context.Context, rule BlackoutRule) (BlackoutRule, error)
	DeleteRule(ctx context.Context, id string) error
	ListRules(ctx context.Context, resourceGroup string) ([]BlackoutRule, error)
}

// BlackoutService orchestrates validation, authorization, and persistence for
// administrator-defined blocked windows. Writes validate strictly; reads of
// already stored rules stay fail-open in the resolver.
type BlackoutService struct {
	rules       BlackoutRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBlackoutService constructs a blackout service with the provided dependencies.
func NewBlackoutService(rules BlackoutRepository, idGenerator func() string, now func() time.Time) *BlackoutService {
	return NewBlackoutServiceWithLogger(rules, idGenerator, now, nil)
}

// NewBlackoutServiceWithLogger constructs a blackout service with a specified logger.
func NewBlackoutServiceWithLogger(rules BlackoutRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BlackoutService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BlackoutService{rules: rules, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *BlackoutService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BlackoutService", operation, attrs...)
}

// CreateRule validates input and persists a new blackout rule for administrators.
func (s *BlackoutService) CreateRule(ctx context.Context, params CreateBlackoutRuleParams) (rule BlackoutRule, err error) {
	if s == nil {
		err = fmt.Errorf("BlackoutService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateRule",
		"principal_id", params.Principal.UserID,
		"resource_group", params.Input.ResourceGroup,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create blackout rule", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("rule_id", rule.ID).InfoContext(ctx, "blackout rule created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	parsed, vErr := validateBlackoutInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	rule = BlackoutRule{
		ID:            s.idGenerator(),
		Reason:        strings.TrimSpace(params.Input.Reason),
		ResourceGroup: params.Input.ResourceGroup,
		StartDate:     parsed.startDate,
		EndDate:       parsed.endDate,
		Frequency:     params.Input.Frequency,
		DayOfWeek:     params.Input.DayOfWeek,
		WeekOfMonth:   params.Input.WeekOfMonth,
		StartTime:     params.Input.StartTime,
		EndTime:       parsed.endTime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if s.rules == nil {
		return
	}

	persisted, createErr := s.rules.CreateRule(ctx, rule)
	if createErr != nil {
		err = mapBlackoutRepoError(createErr)
		return
	}

	rule = persisted
	return
}

// UpdateRule validates input and updates an existing blackout rule for administrators.
func (s *BlackoutService) UpdateRule(ctx context.Context, params UpdateBlackoutRuleParams) (rule BlackoutRule, err error) {
	if s == nil {
		err = fmt.Errorf("BlackoutService is nil")
		return
	}
	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.rules == nil {
		err = fmt.Errorf("blackout repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRule",
		"principal_id", params.Principal.UserID,
		"rule_id", params.RuleID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update blackout rule", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("rule_id", rule.ID).InfoContext(ctx, "blackout rule updated")
	}()

	var existing BlackoutRule
	existing, err = s.rules.GetRule(ctx, params.RuleID)
	if err != nil {
		err = mapBlackoutRepoError(err)
		return
	}

	parsed, vErr := validateBlackoutInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Reason = strings.TrimSpace(params.Input.Reason)
	updated.ResourceGroup = params.Input.ResourceGroup
	updated.StartDate = parsed.startDate
	updated.EndDate = parsed.endDate
	updated.Frequency = params.Input.Frequency
	updated.DayOfWeek = params.Input.DayOfWeek
	updated.WeekOfMonth = params.Input.WeekOfMonth
	updated.StartTime = params.Input.StartTime
	updated.EndTime = parsed.endTime
	updated.UpdatedAt = s.now()

	rule, err = s.rules.UpdateRule(ctx, updated)
	if err != nil {
		err = mapBlackoutRepoError(err)
		return
	}
	return
}

// DeleteRule removes an existing blackout rule when requested by an administrator.
func (s *BlackoutService) DeleteRule(ctx context.Context, principal Principal, ruleID string) error {
	if s == nil {
		return fmt.Errorf("BlackoutService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.rules == nil {
		return fmt.Errorf("blackout repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteRule",
		"principal_id", principal.UserID,
		"rule_id", ruleID,
	)

	if err := s.rules.DeleteRule(ctx, ruleID); err != nil {
		err = mapBlackoutRepoError(err)
		logger.ErrorContext(ctx, "failed to delete blackout rule", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "blackout rule deleted")
	return nil
}

// ListRules returns blackout rules for administrators, optionally narrowed to
// one resource group, ordered by start date.
func (s *BlackoutService) ListRules(ctx context.Context, principal Principal, resourceGroup string) (rules []BlackoutRule, err error) {
	if s == nil {
		err = fmt.Errorf("BlackoutService is nil")
		return
	}
	if !principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.rules == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListRules",
		"principal_id", principal.UserID,
		"resource_group", resourceGroup,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list blackout rules", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rules)).InfoContext(ctx, "blackout rules listed")
	}()

	raw, listErr := s.rules.ListRules(ctx, resourceGroup)
	if listErr != nil {
		if isNotFoundError(listErr) {
			return nil, nil
		}
		err = listErr
		return
	}

	rules = make([]BlackoutRule, len(raw))
	copy(rules, raw)
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].StartDate.Equal(rules[j].StartDate) {
			return rules[i].ID < rules[j].ID
		}
		return rules[i].StartDate.Before(rules[j].StartDate)
	})
	return
}

type blackoutWindow struct {
	startDate time.Time
	endDate   time.Time
	endTime   string
}

func validateBlackoutInput(input BlackoutRuleInput) (blackoutWindow, *ValidationError) {
	vErr := &ValidationError{}
	var window blackoutWindow

	if strings.TrimSpace(input.Reason) == "" {
		vErr.add("reason", "reason is required")
	}
	if !slices.Contains(ResourceGroups, input.ResourceGroup) {
		vErr.add("resource_group", "unknown resource group")
	}

	startDate, startErr := timeslot.ParseDate(input.StartDate)
	if startErr != nil {
		vErr.add("start_date", "must be formatted as YYYY-MM-DD")
	}
	endDate, endErr := timeslot.ParseDate(input.EndDate)
	if endErr != nil {
		vErr.add("end_date", "must be formatted as YYYY-MM-DD")
	}
	if startErr == nil && endErr == nil {
		if endDate.Before(startDate) {
			vErr.add("date_range", "end date must not precede start date")
		} else {
			window.startDate = startDate
			window.endDate = endDate
		}
	}

	kind := recurrence.ParseKind(input.Frequency)
	switch kind {
	case recurrence.KindUnspecified:
		vErr.add("frequency", "must be once, weekly or monthly_by_week_day")
	case recurrence.KindWeekly:
		if input.DayOfWeek < 0 || input.DayOfWeek > 6 {
			vErr.add("day_of_week", "must be between 0 (Sunday) and 6 (Saturday)")
		}
	case recurrence.KindMonthlyByWeekDay:
		if input.DayOfWeek < 0 || input.DayOfWeek > 6 {
			vErr.add("day_of_week", "must be between 0 (Sunday) and 6 (Saturday)")
		}
		if input.WeekOfMonth < 1 || input.WeekOfMonth > 5 {
			vErr.add("week_of_month", "must be between 1 and 5")
		}
	}

	start, startClockErr := parseAlignedClock(input.StartTime)
	if startClockErr != nil {
		vErr.add("start_time", "must be formatted as HH:MM on a 30 minute boundary")
	}
	end, endClockErr := parseAlignedEndClock(input.EndTime)
	if endClockErr != nil {
		vErr.add("end_time", "must be formatted as HH:MM on a 30 minute boundary")
	}
	if startClockErr == nil && endClockErr == nil {
		if start >= end {
			vErr.add("time", "start must be before end")
		} else {
			window.endTime = timeslot.FormatClock(end)
		}
	}

	return window, vErr
}

func mapBlackoutRepoError(err error) error {
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
	return err
}
