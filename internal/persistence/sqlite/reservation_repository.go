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

const reservationColumns = `id, team_name, use_date, start_time, end_time, reason, applicant,
	phone_number, resource_group, status, user_id, created_at, updated_at`

// ReservationRepository implements persistence.ReservationRepository using SQLite.
type ReservationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
}

// NewReservationRepository creates a new SQLite reservation repository.
func NewReservationRepository(pool *ConnectionPool) *ReservationRepository {
	return &ReservationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
	}
}

// CreateReservation inserts a new reservation into the database.
func (r *ReservationRepository) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.ID == "" {
		return persistence.ErrConstraintViolation
	}

	reservation = withReservationTimestamps(reservation)

	query := `
		INSERT INTO reservations (` + reservationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		reservation.ID,
		reservation.TeamName,
		timeslot.FormatDate(reservation.UseDate),
		reservation.StartTime,
		reservation.EndTime,
		reservation.Reason,
		reservation.Applicant,
		reservation.PhoneNumber,
		reservation.ResourceGroup,
		reservation.Status,
		reservation.UserID,
		reservation.CreatedAt.Format(time.RFC3339),
		reservation.UpdatedAt.Format(time.RFC3339),
	)

	if err != nil {
		return mapConstraintError(err)
	}

	return nil
}

// UpdateReservation updates an existing reservation's mutable fields. The
// owner and submission timestamp never change after insert.
func (r *ReservationRepository) UpdateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.ID == "" {
		return persistence.ErrConstraintViolation
	}

	updatedAt := reservation.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	query := `
		UPDATE reservations
		SET team_name = ?, use_date = ?, start_time = ?, end_time = ?, reason = ?,
			applicant = ?, phone_number = ?, resource_group = ?, status = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		reservation.TeamName,
		timeslot.FormatDate(reservation.UseDate),
		reservation.StartTime,
		reservation.EndTime,
		reservation.Reason,
		reservation.Applicant,
		reservation.PhoneNumber,
		reservation.ResourceGroup,
		reservation.Status,
		updatedAt.UTC().Format(time.RFC3339),
		reservation.ID,
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

// GetReservation retrieves a reservation by ID.
func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	if id == "" {
		return persistence.Reservation{}, persistence.ErrNotFound
	}

	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE id = ?
	`

	reservation, err := scanReservation(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Reservation{}, persistence.ErrNotFound
		}
		return persistence.Reservation{}, err
	}

	return reservation, nil
}

// ListReservationsByDay returns every reservation for the given calendar day
// and resource group ordered by start time.
func (r *ReservationRepository) ListReservationsByDay(ctx context.Context, date time.Time, resourceGroup string) ([]persistence.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE use_date = ? AND resource_group = ?
		ORDER BY start_time ASC, id ASC
	`

	return r.listReservations(ctx, query, timeslot.FormatDate(date), resourceGroup)
}

// ListReservationsByUser returns every reservation submitted by the given
// user, newest day first.
func (r *ReservationRepository) ListReservationsByUser(ctx context.Context, userID string) ([]persistence.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = ?
		ORDER BY use_date DESC, start_time ASC, id ASC
	`

	return r.listReservations(ctx, query, userID)
}

func (r *ReservationRepository) listReservations(ctx context.Context, query string, args ...any) ([]persistence.Reservation, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, mapConstraintError(err)
	}
	defer rows.Close()

	var reservations []persistence.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, mapConstraintError(err)
	}

	return reservations, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (persistence.Reservation, error) {
	var reservation persistence.Reservation
	var useDateStr, createdAtStr, updatedAtStr string

	err := row.Scan(
		&reservation.ID,
		&reservation.TeamName,
		&useDateStr,
		&reservation.StartTime,
		&reservation.EndTime,
		&reservation.Reason,
		&reservation.Applicant,
		&reservation.PhoneNumber,
		&reservation.ResourceGroup,
		&reservation.Status,
		&reservation.UserID,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Reservation{}, err
	}

	if reservation.UseDate, err = timeslot.ParseDate(useDateStr); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse use_date: %w", err)
	}
	if reservation.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if reservation.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Reservation{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return reservation, nil
}

// withReservationTimestamps fills zero timestamps so callers with an
// injected clock keep their values while ad hoc inserts stay consistent.
func withReservationTimestamps(reservation persistence.Reservation) persistence.Reservation {
	now := time.Now().UTC()
	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = now
	} else {
		reservation.CreatedAt = reservation.CreatedAt.UTC()
	}
	if reservation.UpdatedAt.IsZero() {
		reservation.UpdatedAt = reservation.CreatedAt
	} else {
		reservation.UpdatedAt = reservation.UpdatedAt.UTC()
	}
	return reservation
}
