package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/clubroom-reservation/internal/persistence"
	"github.com/example/clubroom-reservation/internal/timeslot"
)

type blackoutRepoStub struct {
	createErr error
	created   BlackoutRule

	get    BlackoutRule
	getErr error

	updateErr error
	updated   BlackoutRule

	deleteErr error
	deletedID string

	list    []BlackoutRule
	listErr error
}

func (r *blackoutRepoStub) CreateRule(ctx context.Context, rule BlackoutRule) (BlackoutRule, error) {
	if r.createErr != nil {
		return BlackoutRule{}, r.createErr
	}
	r.created = rule
	return rule, nil
}

func (r *blackoutRepoStub) GetRule(ctx context.Context, id string) (BlackoutRule, error) {
	if r.getErr != nil {
		return BlackoutRule{}, r.getErr
	}
	if r.get.ID == "" {
		return BlackoutRule{}, ErrNotFound
	}
	return r.get, nil
}

func (r *blackoutRepoStub) UpdateRule(ctx context.Context, rule BlackoutRule) (BlackoutRule, error) {
	if r.updateErr != nil {
		return BlackoutRule{}, r.updateErr
	}
	r.updated = rule
	return rule, nil
}

func (r *blackoutRepoStub) DeleteRule(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deletedID = id
	return nil
}

func (r *blackoutRepoStub) ListRules(ctx context.Context, resourceGroup string) ([]BlackoutRule, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]BlackoutRule, len(r.list))
	copy(out, r.list)
	return out, nil
}

func validBlackoutInput() BlackoutRuleInput {
	return BlackoutRuleInput{
		Reason:        "정기 점검",
		ResourceGroup: "인캠",
		StartDate:     "2024-06-01",
		EndDate:       "2024-06-30",
		Frequency:     "weekly",
		DayOfWeek:     2,
		StartTime:     "13:00",
		EndTime:       "15:00",
	}
}

func TestBlackoutService_CreateRule(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewBlackoutService(nil, nil, nil)

		_, err := svc.CreateRule(context.Background(), CreateBlackoutRuleParams{
			Principal: Principal{UserID: "user-1"},
			Input:     validBlackoutInput(),
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates required attributes", func(t *testing.T) {
		svc := NewBlackoutService(nil, nil, nil)

		_, err := svc.CreateRule(context.Background(), CreateBlackoutRuleParams{
			Principal: Principal{UserID: "admin", IsAdmin: true},
			Input: BlackoutRuleInput{
				Reason:        " ",
				ResourceGroup: "기타",
				StartDate:     "June 1",
				EndDate:       "2024-06-30",
				Frequency:     "daily",
				StartTime:     "13:10",
				EndTime:       "15:00",
			},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"reason", "resource_group", "start_date", "frequency", "start_time"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Fatalf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("validates recurrence payload fields", func(t *testing.T) {
		svc := NewBlackoutService(nil, nil, nil)

		input := validBlackoutInput()
		input.Frequency = "monthly_by_week_day"
		input.DayOfWeek = 7
		input.WeekOfMonth = 0

		_, err := svc.CreateRule(context.Background(), CreateBlackoutRuleParams{
			Principal: Principal{UserID: "admin", IsAdmin: true},
			Input:     input,
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["day_of_week"]; !ok {
			t.Fatalf("expected day_of_week validation error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["week_of_month"]; !ok {
			t.Fatalf("expected week_of_month validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("rejects inverted date ranges", func(t *testing.T) {
		svc := NewBlackoutService(nil, nil, nil)

		input := validBlackoutInput()
		input.StartDate = "2024-07-01"
		input.EndDate = "2024-06-01"

		_, err := svc.CreateRule(context.Background(), CreateBlackoutRuleParams{
			Principal: Principal{UserID: "admin", IsAdmin: true},
			Input:     input,
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["date_range"]; !ok {
			t.Fatalf("expected date_range validation error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("persists rules for administrators", func(t *testing.T) {
		repo := &blackoutRepoStub{}
		now := time.Date(2024, time.May, 20, 9, 0, 0, 0, timeslot.KST())
		svc := NewBlackoutService(repo, func() string { return "rule-1" }, func() time.Time { return now })

		created, err := svc.CreateRule(context.Background(), CreateBlackoutRuleParams{
			Principal: Principal{UserID: "admin", IsAdmin: true},
			Input:     validBlackoutInput(),
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if repo.created.ID != "rule-1" {
			t.Fatalf("expected repository to receive generated ID, got %q", repo.created.ID)
		}
		if !timeslot.SameDate(repo.created.StartDate, timeslot.NewDate(2024, time.June, 1)) {
			t.Fatalf("expected parsed start date, got %v", repo.created.StartDate)
		}
		if !repo.created.CreatedAt.Equal(now) || !repo.created.UpdatedAt.Equal(now) {
			t.Fatalf("expected timestamps from injected clock")
		}
		if created.Frequency != "weekly" || created.DayOfWeek != 2 {
			t.Fatalf("expected recurrence payload to be preserved, got %+v", created)
		}
	})

	t.Run("accepts rules running to midnight", func(t *testing.T) {
		for _, end := range []string{"24:00", "00:00"} {
			repo := &blackoutRepoStub{}
			svc := NewBlackoutService(repo, nil, nil)

			input := validBlackoutInput()
			input.StartTime = "22:00"
			input.EndTime = end

			created, err := svc.CreateRule(context.Background(), CreateBlackoutRuleParams{
				Principal: Principal{UserID: "admin", IsAdmin: true},
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

	t.Run("maps repository errors to sentinel failures", func(t *testing.T) {
		repo := &blackoutRepoStub{createErr: persistence.ErrDuplicate}
		svc := NewBlackoutService(repo, nil, nil)

		_, err := svc.CreateRule(context.Background(), CreateBlackoutRuleParams{
			Principal: Principal{UserID: "admin", IsAdmin: true},
			Input:     validBlackoutInput(),
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestBlackoutService_UpdateRule(t *testing.T) {
	existing := BlackoutRule{
		ID:            "rule-1",
		Reason:        "정기 점검",
		ResourceGroup: "인캠",
		StartDate:     timeslot.NewDate(2024, time.June, 1),
		EndDate:       timeslot.NewDate(2024, time.June, 30),
		Frequency:     "weekly",
		DayOfWeek:     2,
		StartTime:     "13:00",
		EndTime:       "15:00",
		CreatedAt:     time.Date(2024, time.May, 1, 0, 0, 0, 0, timeslot.KST()),
	}

	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewBlackoutService(&blackoutRepoStub{get: existing}, nil, nil)

		_, err := svc.UpdateRule(context.Background(), UpdateBlackoutRuleParams{
			Principal: Principal{UserID: "user-1"},
			RuleID:    "rule-1",
			Input:     validBlackoutInput(),
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("propagates ErrNotFound for missing rules", func(t *testing.T) {
		svc := NewBlackoutService(&blackoutRepoStub{getErr: persistence.ErrNotFound}, nil, nil)

		_, err := svc.UpdateRule(context.Background(), UpdateBlackoutRuleParams{
			Principal: Principal{UserID: "admin", IsAdmin: true},
			RuleID:    "missing",
			Input:     validBlackoutInput(),
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("persists updated attributes", func(t *testing.T) {
		repo := &blackoutRepoStub{get: existing}
		now := time.Date(2024, time.June, 5, 9, 0, 0, 0, timeslot.KST())
		svc := NewBlackoutService(repo, nil, func() time.Time { return now })

		input := validBlackoutInput()
		input.Frequency = "once"
		input.Reason = "  행사 준비  "

		updated, err := svc.UpdateRule(context.Background(), UpdateBlackoutRuleParams{
			Principal: Principal{UserID: "admin", IsAdmin: true},
			RuleID:    "rule-1",
			Input:     input,
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if repo.updated.Reason != "행사 준비" {
			t.Fatalf("expected reason to be trimmed, got %q", repo.updated.Reason)
		}
		if repo.updated.Frequency != "once" {
			t.Fatalf("expected frequency to change, got %q", repo.updated.Frequency)
		}
		if !repo.updated.UpdatedAt.Equal(now) {
			t.Fatalf("expected updated timestamp from injected clock")
		}
		if !repo.updated.CreatedAt.Equal(existing.CreatedAt) {
			t.Fatalf("expected created timestamp to remain unchanged")
		}
		if updated.ID != "rule-1" {
			t.Fatalf("expected returned rule to keep its ID, got %q", updated.ID)
		}
	})
}

func TestBlackoutService_DeleteRule(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewBlackoutService(&blackoutRepoStub{}, nil, nil)

		err := svc.DeleteRule(context.Background(), Principal{UserID: "user-1"}, "rule-1")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("propagates ErrNotFound for missing rules", func(t *testing.T) {
		svc := NewBlackoutService(&blackoutRepoStub{deleteErr: persistence.ErrNotFound}, nil, nil)

		err := svc.DeleteRule(context.Background(), Principal{UserID: "admin", IsAdmin: true}, "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("deletes rules for administrators", func(t *testing.T) {
		repo := &blackoutRepoStub{}
		svc := NewBlackoutService(repo, nil, nil)

		if err := svc.DeleteRule(context.Background(), Principal{UserID: "admin", IsAdmin: true}, "rule-1"); err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if repo.deletedID != "rule-1" {
			t.Fatalf("expected repository to receive rule ID, got %q", repo.deletedID)
		}
	})
}

func TestBlackoutService_ListRules(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewBlackoutService(&blackoutRepoStub{}, nil, nil)

		_, err := svc.ListRules(context.Background(), Principal{UserID: "user-1"}, "")
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("orders rules by start date", func(t *testing.T) {
		repo := &blackoutRepoStub{list: []BlackoutRule{
			{ID: "late", StartDate: timeslot.NewDate(2024, time.July, 1)},
			{ID: "early", StartDate: timeslot.NewDate(2024, time.June, 1)},
		}}
		svc := NewBlackoutService(repo, nil, nil)

		got, err := svc.ListRules(context.Background(), Principal{UserID: "admin", IsAdmin: true}, "")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(got) != 2 || got[0].ID != "early" || got[1].ID != "late" {
			t.Fatalf("expected rules ordered by start date, got %+v", got)
		}
	})
}
