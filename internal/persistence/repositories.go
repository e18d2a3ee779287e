package persistence

import (
	"context"
	"time"
)

// UserRepository persists accounts and credential lookups.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// ReservationRepository persists reservation requests. Day listings are the
// hot path for availability resolution and are scoped to a single calendar
// day and resource group.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) error
	UpdateReservation(ctx context.Context, reservation Reservation) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	ListReservationsByDay(ctx context.Context, date time.Time, resourceGroup string) ([]Reservation, error)
	ListReservationsByUser(ctx context.Context, userID string) ([]Reservation, error)
}

// BlackoutRuleRepository persists administrator-defined blocked windows.
type BlackoutRuleRepository interface {
	CreateRule(ctx context.Context, rule BlackoutRule) error
	UpdateRule(ctx context.Context, rule BlackoutRule) error
	GetRule(ctx context.Context, id string) (BlackoutRule, error)
	DeleteRule(ctx context.Context, id string) error
	ListRules(ctx context.Context, resourceGroup string) ([]BlackoutRule, error)
}

// SessionRepository persists authentication sessions keyed by token.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
