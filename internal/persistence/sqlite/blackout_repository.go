package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/clubroom-reservation/internal/persistence"
	"github.com/example/clubroom-reservation/internal/timeslot"
)

const blackoutColumns = `id, reason, resource_group, start_date, end_date, frequency,
	day_of_week, week_of_month, start_time, end_time, created_at, updated_at`

// BlackoutRuleRepository implements persistence.BlackoutRuleRepository using SQLite.
type BlackoutRuleRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
}

// NewBlackoutRuleRepository creates a new SQLite blackout rule repository.
func NewBlackoutRuleRepository(pool *ConnectionPool) *BlackoutRuleRepository {
	return &BlackoutRuleRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
	}
}

// CreateRule inserts a new blackout rule into the database.
func (r *BlackoutRuleRepository) CreateRule(ctx context.Context, rule persistence.BlackoutRule) error {
	if rule.ID == "" {
		return persistence.ErrConstraintViolation
	}

	rule = withRuleTimestamps(rule)

	query := `
		INSERT INTO blackout_rules (` + blackoutColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		rule.ID,
		rule.Reason,
		rule.ResourceGroup,
		timeslot.FormatDate(rule.StartDate),
		timeslot.FormatDate(rule.EndDate),
		rule.Frequency,
		rule.DayOfWeek,
		rule.WeekOfMonth,
		rule.StartTime,
		rule.EndTime,
		rule.CreatedAt.Format(time.RFC3339),
		rule.UpdatedAt.Format(time.RFC3339),
	)

	if err != nil {
		return mapConstraintError(err)
	}

	return nil
}

// UpdateRule updates an existing blackout rule.
func (r *BlackoutRuleRepository) UpdateRule(ctx context.Context, rule persistence.BlackoutRule) error {
	if rule.ID == "" {
		return persistence.ErrConstraintViolation
	}

	updatedAt := rule.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	query := `
		UPDATE blackout_rules
		SET reason = ?, resource_group = ?, start_date = ?, end_date = ?, frequency = ?,
			day_of_week = ?, week_of_month = ?, start_time = ?, end_time = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		rule.Reason,
		rule.ResourceGroup,
		timeslot.FormatDate(rule.StartDate),
		timeslot.FormatDate(rule.EndDate),
		rule.Frequency,
		rule.DayOfWeek,
		rule.WeekOfMonth,
		rule.StartTime,
		rule.EndTime,
		updatedAt.UTC().Format(time.RFC3339),
		rule.ID,
	)

	if err != nil {
		return mapConstraintError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// GetRule retrieves a blackout rule by ID.
func (r *BlackoutRuleRepository) GetRule(ctx context.Context, id string) (persistence.BlackoutRule, error) {
	if id == "" {
		return persistence.BlackoutRule{}, persistence.ErrNotFound
	}

	query := `
		SELECT ` + blackoutColumns + `
		FROM blackout_rules
		WHERE id = ?
	`

	rule, err := scanBlackoutRule(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.BlackoutRule{}, persistence.ErrNotFound
		}
		return persistence.BlackoutRule{}, err
	}

	return rule, nil
}

// DeleteRule removes a blackout rule by ID.
func (r *BlackoutRuleRepository) DeleteRule(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM blackout_rules WHERE id = ?", id)
	if err != nil {
		return mapConstraintError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// ListRules returns the blackout rules for a resource group ordered by start
// date. An empty resource group returns every stored rule.
func (r *BlackoutRuleRepository) ListRules(ctx context.Context, resourceGroup string) ([]persistence.BlackoutRule, error) {
	query := `
		SELECT ` + blackoutColumns + `
		FROM blackout_rules
		WHERE (? = '' OR resource_group = ?)
		ORDER BY start_date ASC, start_time ASC, id ASC
	`

	rows, err := r.helper.Query(ctx, query, resourceGroup, resourceGroup)
	if err != nil {
		return nil, mapConstraintError(err)
	}
	defer rows.Close()

	var rules []persistence.BlackoutRule
	for rows.Next() {
		rule, err := scanBlackoutRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, mapConstraintError(err)
	}

	return rules, nil
}

func scanBlackoutRule(row rowScanner) (persistence.BlackoutRule, error) {
	var rule persistence.BlackoutRule
	var startDateStr, endDateStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&rule.ID,
		&rule.Reason,
		&rule.ResourceGroup,
		&startDateStr,
		&endDateStr,
		&rule.Frequency,
		&rule.DayOfWeek,
		&rule.WeekOfMonth,
		&rule.StartTime,
		&rule.EndTime,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.BlackoutRule{}, err
	}

	if rule.StartDate, err = timeslot.ParseDate(startDateStr); err != nil {
		return persistence.BlackoutRule{}, fmt.Errorf("failed to parse start_date: %w", err)
	}
	if rule.EndDate, err = timeslot.ParseDate(endDateStr); err != nil {
		return persistence.BlackoutRule{}, fmt.Errorf("failed to parse end_date: %w", err)
	}
	if rule.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.BlackoutRule{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if rule.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.BlackoutRule{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return rule, nil
}

func withRuleTimestamps(rule persistence.BlackoutRule) persistence.BlackoutRule {
	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	} else {
		rule.CreatedAt = rule.CreatedAt.UTC()
	}
	if rule.UpdatedAt.IsZero() {
		rule.UpdatedAt = rule.CreatedAt
	} else {
		rule.UpdatedAt = rule.UpdatedAt.UTC()
	}
	return rule
}
