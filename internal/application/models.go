package application

import "time"

// ResourceGroups enumerates the bookable campuses. The engine treats the
// group as an opaque string; only submission validation consults this list.
var ResourceGroups = []string{"인캠", "경캠"}

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// ReservationStatus is the lifecycle state of a reservation request.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationApproved  ReservationStatus = "approved"
	ReservationRejected  ReservationStatus = "rejected"
	ReservationCancelled ReservationStatus = "cancelled"
)

// ReservationInput captures caller provided reservation fields. Date and
// clock values arrive as strings and are validated strictly on submission.
type ReservationInput struct {
	TeamName      string
	UseDate       string
	StartTime     string
	EndTime       string
	Reason        string
	Applicant     string
	PhoneNumber   string
	ResourceGroup string
}

// Reservation represents a persisted room reservation request.
type Reservation struct {
	ID            string
	TeamName      string
	UseDate       time.Time
	StartTime     string
	EndTime       string
	Reason        string
	Applicant     string
	PhoneNumber   string
	ResourceGroup string
	Status        ReservationStatus
	UserID        string
	SubmittedAt   time.Time
	UpdatedAt     time.Time
}

// SubmitReservationParams wraps the data required to submit a reservation.
type SubmitReservationParams struct {
	Principal Principal
	Input     ReservationInput
}

// BlackoutRuleInput captures caller provided blackout rule fields.
type BlackoutRuleInput struct {
	Reason        string
	ResourceGroup string
	StartDate     string
	EndDate       string
	Frequency     string
	DayOfWeek     int
	WeekOfMonth   int
	StartTime     string
	EndTime       string
}

// BlackoutRule represents a persisted administrator-defined blocked window.
type BlackoutRule struct {
	ID            string
	Reason        string
	ResourceGroup string
	StartDate     time.Time
	EndDate       time.Time
	Frequency     string
	DayOfWeek     int
	WeekOfMonth   int
	StartTime     string
	EndTime       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateBlackoutRuleParams wraps the data required to create a blackout rule.
type CreateBlackoutRuleParams struct {
	Principal Principal
	Input     BlackoutRuleInput
}

// UpdateBlackoutRuleParams wraps the data required to update a blackout rule.
type UpdateBlackoutRuleParams struct {
	Principal Principal
	RuleID    string
	Input     BlackoutRuleInput
}

// SlotView pairs a slot's wall-clock bounds with its resolved status.
type SlotView struct {
	Index     int
	StartTime string
	EndTime   string
	Status    string
}

// SlotDetail describes the record responsible for a slot's status, when any.
type SlotDetail struct {
	Slot        SlotView
	Reservation *Reservation
	Rule        *BlackoutRule
}

// RegisterUserInput captures the public signup fields.
type RegisterUserInput struct {
	Email       string
	DisplayName string
	Password    string
	PhoneNumber string
}

// UserInput captures the attributes administrators may change on an account.
type UserInput struct {
	DisplayName string
	IsAdmin     bool
	Disabled    bool
}

// User represents a student or administrator account.
type User struct {
	ID          string
	Email       string
	DisplayName string
	PhoneNumber string
	IsAdmin     bool
	Disabled    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UpdateUserParams wraps the data required to update a user.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Input     UserInput
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// Session represents an authenticated session issued to a user.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures the data required to authenticate a user.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication attempt.
type AuthenticateResult struct {
	User    User
	Session Session
}
