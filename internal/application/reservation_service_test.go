package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/clubroom-reservation/internal/persistence"
	"github.com/example/clubroom-reservation/internal/timeslot"
)

type reservationRepoStub struct {
	createErr error
	created   Reservation

	get    Reservation
	getErr error

	updateErr error
	updated   Reservation

	day    []Reservation
	dayErr error

	byUser    []Reservation
	byUserErr error
}

func (r *reservationRepoStub) CreateReservation(ctx context.Context, reservation Reservation) (Reservation, error) {
	if r.createErr != nil {
		return Reservation{}, r.createErr
	}
	r.created = reservation
	return reservation, nil
}

func (r *reservationRepoStub) GetReservation(ctx context.Context, id string) (Reservation, error) {
	if r.getErr != nil {
		return Reservation{}, r.getErr
	}
	if r.get.ID == "" {
		return Reservation{}, ErrNotFound
	}
	return r.get, nil
}

func (r *reservationRepoStub) UpdateReservation(ctx context.Context, reservation Reservation) (Reservation, error) {
	if r.updateErr != nil {
		return Reservation{}, r.updateErr
	}
	r.updated = reservation
	return reservation, nil
}

func (r *reservationRepoStub) ListReservationsByDay(ctx context.Context, date time.Time, resourceGroup string) ([]Reservation, error) {
	if r.dayErr != nil {
		return nil, r.dayErr
	}
	out := make([]Reservation, len(r.day))
	copy(out, r.day)
	return out, nil
}

func (r *reservationRepoStub) ListReservationsByUser(ctx context.Context, userID string) ([]Reservation, error) {
	if r.byUserErr != nil {
		return nil, r.byUserErr
	}
	out := make([]Reservation, len(r.byUser))
	copy(out, r.byUser)
	return out, nil
}

func validReservationInput() ReservationInput {
	return ReservationInput{
		TeamName:      "밴드부",
		UseDate:       "2024-06-10",
		StartTime:     "14:00",
		EndTime:       "15:00",
		Reason:        "합주 연습",
		Applicant:     "김철수",
		PhoneNumber:   "010-1234-5678",
		ResourceGroup: "인캠",
	}
}

func TestReservationService_Submit(t *testing.T) {
	t.Run("requires an authenticated principal", func(t *testing.T) {
		svc := NewReservationService(&reservationRepoStub{}, nil, nil, nil)

		_, err := svc.Submit(context.Background(), SubmitReservationParams{
			Input: validReservationInput(),
		})

		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates required attributes", func(t *testing.T) {
		svc := NewReservationService(&reservationRepoStub{}, nil, nil, nil)

		_, err := svc.Submit(context.Background(), SubmitReservationParams{
			Principal: Principal{UserID: "user-1"},
			Input: ReservationInput{
				TeamName:      "  ",
				UseDate:       "2024/06/10",
				StartTime:     "9:00",
				EndTime:       "25:00",
				PhoneNumber:   "1234",
				ResourceGroup: "본캠",
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"team_name", "use_date", "start_time", "end_time", "reason", "applicant", "phone_number", "resource_group"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("rejects times off the half-hour grid", func(t *testing.T) {
		svc := NewReservationService(&reservationRepoStub{}, nil, nil, nil)

		input := validReservationInput()
		input.StartTime = "14:15"

		_, err := svc.Submit(context.Background(), SubmitReservationParams{
			Principal: Principal{UserID: "user-1"},
			Input:     input,
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["start_time"]; !ok {
			t.Fatalf("expected start_time validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("rejects inverted windows", func(t *testing.T) {
		svc := NewReservationService(&reservationRepoStub{}, nil, nil, nil)

		input := validReservationInput()
		input.StartTime = "15:00"
		input.EndTime = "14:00"

		_, err := svc.Submit(context.Background(), SubmitReservationParams{
			Principal: Principal{UserID: "user-1"},
			Input:     input,
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["time"]; !ok {
			t.Fatalf("expected time validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("declines submissions overlapping an occupying reservation", func(t *testing.T) {
		date := timeslot.NewDate(2024, time.June, 10)
		repo := &reservationRepoStub{day: []Reservation{{
			ID:            "existing",
			UseDate:       date,
			StartTime:     "14:30",
			EndTime:       "15:30",
			ResourceGroup: "인캠",
			Status:        ReservationPending,
		}}}
		svc := NewReservationService(repo, nil, nil, nil)

		_, err := svc.Submit(context.Background(), SubmitReservationParams{
			Principal: Principal{UserID: "user-1"},
			Input:     validReservationInput(),
		})

		if !errors.Is(err, ErrSlotConflict) {
			t.Fatalf("expected ErrSlotConflict, got %v", err)
		}
		var cErr *ConflictError
		if !errors.As(err, &cErr) || cErr.Conflicting.ID != "existing" {
			t.Fatalf("expected conflict to carry the occupying reservation, got %v", err)
		}
		if repo.created.ID != "" {
			t.Fatalf("expected no reservation to be persisted on conflict")
		}
	})

	t.Run("accepts the last slot with either midnight spelling", func(t *testing.T) {
		for _, end := range []string{"24:00", "00:00"} {
			repo := &reservationRepoStub{}
			svc := NewReservationService(repo, nil, nil, nil)

			input := validReservationInput()
			input.StartTime = "23:30"
			input.EndTime = end

			created, err := svc.Submit(context.Background(), SubmitReservationParams{
				Principal: Principal{UserID: "user-1"},
				Input:     input,
			})
			if err != nil {
				t.Fatalf("end %q: expected success, got %v", end, err)
			}
			if created.EndTime != "00:00" {
				t.Fatalf("end %q: stored end = %q, want the canonical %q", end, created.EndTime, "00:00")
			}
		}
	})

	t.Run("declines submissions overlapping a midnight-ending reservation", func(t *testing.T) {
		date := timeslot.NewDate(2024, time.June, 10)
		repo := &reservationRepoStub{day: []Reservation{{
			ID:            "existing",
			UseDate:       date,
			StartTime:     "23:30",
			EndTime:       "00:00",
			ResourceGroup: "인캠",
			Status:        ReservationApproved,
		}}}
		svc := NewReservationService(repo, nil, nil, nil)

		input := validReservationInput()
		input.StartTime = "23:30"
		input.EndTime = "24:00"

		_, err := svc.Submit(context.Background(), SubmitReservationParams{
			Principal: Principal{UserID: "user-1"},
			Input:     input,
		})
		if !errors.Is(err, ErrSlotConflict) {
			t.Fatalf("expected ErrSlotConflict, got %v", err)
		}
		if repo.created.ID != "" {
			t.Fatalf("expected no reservation to be persisted on conflict")
		}
	})

	t.Run("ignores cancelled reservations and touching windows", func(t *testing.T) {
		date := timeslot.NewDate(2024, time.June, 10)
		repo := &reservationRepoStub{day: []Reservation{
			{ID: "r1", UseDate: date, StartTime: "14:00", EndTime: "15:00", ResourceGroup: "인캠", Status: ReservationCancelled},
			{ID: "r2", UseDate: date, StartTime: "15:00", EndTime: "16:00", ResourceGroup: "인캠", Status: ReservationApproved},
		}}
		svc := NewReservationService(repo, nil, nil, nil)

		_, err := svc.Submit(context.Background(), SubmitReservationParams{
			Principal: Principal{UserID: "user-1"},
			Input:     validReservationInput(),
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
	})

	t.Run("persists a pending reservation with injected identity and clock", func(t *testing.T) {
		repo := &reservationRepoStub{}
		now := time.Date(2024, time.June, 1, 10, 0, 0, 0, timeslot.KST())
		svc := NewReservationService(repo, nil, func() string { return "res-1" }, func() time.Time { return now })

		created, err := svc.Submit(context.Background(), SubmitReservationParams{
			Principal: Principal{UserID: "user-1"},
			Input:     validReservationInput(),
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if repo.created.ID != "res-1" {
			t.Fatalf("expected repository to receive generated ID, got %q", repo.created.ID)
		}
		if repo.created.Status != ReservationPending {
			t.Fatalf("expected pending status, got %q", repo.created.Status)
		}
		if repo.created.UserID != "user-1" {
			t.Fatalf("expected applicant user id, got %q", repo.created.UserID)
		}
		if !repo.created.SubmittedAt.Equal(now) || !repo.created.UpdatedAt.Equal(now) {
			t.Fatalf("expected timestamps from injected clock")
		}
		if !timeslot.SameDate(repo.created.UseDate, timeslot.NewDate(2024, time.June, 10)) {
			t.Fatalf("expected parsed use date, got %v", repo.created.UseDate)
		}
		if created.ID != "res-1" {
			t.Fatalf("expected returned reservation to include generated ID")
		}
	})

	t.Run("maps repository errors to sentinel failures", func(t *testing.T) {
		repo := &reservationRepoStub{createErr: persistence.ErrDuplicate}
		svc := NewReservationService(repo, nil, nil, nil)

		_, err := svc.Submit(context.Background(), SubmitReservationParams{
			Principal: Principal{UserID: "user-1"},
			Input:     validReservationInput(),
		})

		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestReservationService_ApproveReject(t *testing.T) {
	pending := Reservation{ID: "res-1", Status: ReservationPending, UserID: "user-1"}

	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewReservationService(&reservationRepoStub{get: pending}, nil, nil, nil)

		_, err := svc.Approve(context.Background(), Principal{UserID: "user-1"}, "res-1")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("approves pending reservations", func(t *testing.T) {
		repo := &reservationRepoStub{get: pending}
		now := time.Date(2024, time.June, 2, 9, 0, 0, 0, timeslot.KST())
		svc := NewReservationService(repo, nil, nil, func() time.Time { return now })

		updated, err := svc.Approve(context.Background(), Principal{UserID: "admin", IsAdmin: true}, "res-1")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if updated.Status != ReservationApproved {
			t.Fatalf("expected approved status, got %q", updated.Status)
		}
		if !repo.updated.UpdatedAt.Equal(now) {
			t.Fatalf("expected updated timestamp from injected clock")
		}
	})

	t.Run("rejects pending reservations", func(t *testing.T) {
		repo := &reservationRepoStub{get: pending}
		svc := NewReservationService(repo, nil, nil, nil)

		updated, err := svc.Reject(context.Background(), Principal{IsAdmin: true}, "res-1")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if updated.Status != ReservationRejected {
			t.Fatalf("expected rejected status, got %q", updated.Status)
		}
	})

	t.Run("refuses to review non-pending reservations", func(t *testing.T) {
		repo := &reservationRepoStub{get: Reservation{ID: "res-1", Status: ReservationCancelled}}
		svc := NewReservationService(repo, nil, nil, nil)

		_, err := svc.Approve(context.Background(), Principal{IsAdmin: true}, "res-1")

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("propagates ErrNotFound for missing reservations", func(t *testing.T) {
		repo := &reservationRepoStub{getErr: persistence.ErrNotFound}
		svc := NewReservationService(repo, nil, nil, nil)

		_, err := svc.Approve(context.Background(), Principal{IsAdmin: true}, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestReservationService_Cancel(t *testing.T) {
	approved := Reservation{ID: "res-1", Status: ReservationApproved, UserID: "user-1"}

	t.Run("allows the owner to cancel", func(t *testing.T) {
		repo := &reservationRepoStub{get: approved}
		svc := NewReservationService(repo, nil, nil, nil)

		updated, err := svc.Cancel(context.Background(), Principal{UserID: "user-1"}, "res-1")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if updated.Status != ReservationCancelled {
			t.Fatalf("expected cancelled status, got %q", updated.Status)
		}
	})

	t.Run("allows administrators to cancel on behalf of users", func(t *testing.T) {
		repo := &reservationRepoStub{get: approved}
		svc := NewReservationService(repo, nil, nil, nil)

		if _, err := svc.Cancel(context.Background(), Principal{UserID: "admin", IsAdmin: true}, "res-1"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
	})

	t.Run("denies other users", func(t *testing.T) {
		repo := &reservationRepoStub{get: approved}
		svc := NewReservationService(repo, nil, nil, nil)

		_, err := svc.Cancel(context.Background(), Principal{UserID: "user-2"}, "res-1")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("refuses to cancel already-settled reservations", func(t *testing.T) {
		repo := &reservationRepoStub{get: Reservation{ID: "res-1", Status: ReservationRejected, UserID: "user-1"}}
		svc := NewReservationService(repo, nil, nil, nil)

		_, err := svc.Cancel(context.Background(), Principal{UserID: "user-1"}, "res-1")

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestReservationService_ListForDay(t *testing.T) {
	t.Run("validates the query", func(t *testing.T) {
		svc := NewReservationService(&reservationRepoStub{}, nil, nil, nil)

		_, err := svc.ListForDay(context.Background(), "10-06-2024", "인캠")

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("orders reservations by start time", func(t *testing.T) {
		date := timeslot.NewDate(2024, time.June, 10)
		repo := &reservationRepoStub{day: []Reservation{
			{ID: "b", UseDate: date, StartTime: "15:00", EndTime: "16:00"},
			{ID: "a", UseDate: date, StartTime: "09:00", EndTime: "10:00"},
		}}
		svc := NewReservationService(repo, nil, nil, nil)

		got, err := svc.ListForDay(context.Background(), "2024-06-10", "인캠")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
			t.Fatalf("expected chronological ordering, got %+v", got)
		}
	})
}

func TestReservationService_ListForUser(t *testing.T) {
	t.Run("requires an authenticated principal", func(t *testing.T) {
		svc := NewReservationService(&reservationRepoStub{}, nil, nil, nil)

		_, err := svc.ListForUser(context.Background(), Principal{})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("orders newest day first", func(t *testing.T) {
		repo := &reservationRepoStub{byUser: []Reservation{
			{ID: "old", UseDate: timeslot.NewDate(2024, time.June, 3), StartTime: "09:00"},
			{ID: "new", UseDate: timeslot.NewDate(2024, time.June, 10), StartTime: "09:00"},
		}}
		svc := NewReservationService(repo, nil, nil, nil)

		got, err := svc.ListForUser(context.Background(), Principal{UserID: "user-1"})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(got) != 2 || got[0].ID != "new" || got[1].ID != "old" {
			t.Fatalf("expected newest day first, got %+v", got)
		}
	})
}
