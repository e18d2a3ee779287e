package persistence

import "time"

// User represents a stored account, including the credential material the
// application layer never exposes beyond login.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PhoneNumber  string
	PasswordHash string
	IsAdmin      bool
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Reservation represents a stored reservation request. UseDate carries only
// the calendar day; StartTime and EndTime are wall-clock values in HH:MM
// form as submitted.
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
	Status        string
	UserID        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BlackoutRule represents a stored recurring blocked window. DayOfWeek and
// WeekOfMonth are only meaningful for the frequencies that use them and are
// stored as submitted.
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

// Session represents a stored authentication session. RevokedAt is nil
// while the session remains valid.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
