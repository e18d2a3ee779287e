package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/clubroom-reservation/internal/application"
	"github.com/example/clubroom-reservation/internal/persistence"
	"github.com/example/clubroom-reservation/internal/timeslot"
)

var (
	userCounter        uint64
	reservationCounter uint64
	ruleCounter        uint64
	sessionCounter     uint64
)

var referenceTime = time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record that can be materialised
// for application or persistence tests.
type UserFixture struct {
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

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		DisplayName:  fmt.Sprintf("부원 %03d", idx),
		PhoneNumber:  fmt.Sprintf("010-0000-%04d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserDisplayName overrides the generated display name.
func WithUserDisplayName(name string) UserOption {
	return func(f *UserFixture) {
		f.DisplayName = name
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserAdmin sets the admin flag on the generated fixture.
func WithUserAdmin(isAdmin bool) UserOption {
	return func(f *UserFixture) {
		f.IsAdmin = isAdmin
	}
}

// WithUserDisabled sets the disabled flag on the generated fixture.
func WithUserDisabled(disabled bool) UserOption {
	return func(f *UserFixture) {
		f.Disabled = disabled
	}
}

// WithUserTimestamps sets both created and updated timestamps on the fixture.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		PhoneNumber: f.PhoneNumber,
		IsAdmin:     f.IsAdmin,
		Disabled:    f.Disabled,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Credentials returns the fixture as application.UserCredentials.
func (f UserFixture) Credentials() application.UserCredentials {
	return application.UserCredentials{
		User:         f.Application(),
		PasswordHash: f.PasswordHash,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID, IsAdmin: f.IsAdmin}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		PhoneNumber:  f.PhoneNumber,
		PasswordHash: f.PasswordHash,
		IsAdmin:      f.IsAdmin,
		Disabled:     f.Disabled,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// -------------------------- Reservation fixtures --------------------------

// ReservationFixture represents a deterministic reservation record.
type ReservationFixture struct {
	ID            string
	TeamName      string
	UseDate       time.Time
	StartTime     string
	EndTime       string
	Reason        string
	Applicant     string
	PhoneNumber   string
	ResourceGroup string
	Status        application.ReservationStatus
	UserID        string
	SubmittedAt   time.Time
	UpdatedAt     time.Time
}

// ReservationOption configures the generated reservation fixture.
type ReservationOption func(*ReservationFixture)

// NewReservationFixture returns a deterministic reservation fixture with
// optional overrides. The default slot is 14:00 to 15:00 on the reference day.
func NewReservationFixture(opts ...ReservationOption) ReservationFixture {
	idx := atomic.AddUint64(&reservationCounter, 1)
	id := fmt.Sprintf("reservation-%03d", idx)
	fixture := ReservationFixture{
		ID:            id,
		TeamName:      fmt.Sprintf("동아리 %03d", idx),
		UseDate:       timeslot.NewDate(2024, time.June, 10),
		StartTime:     "14:00",
		EndTime:       "15:00",
		Reason:        "정기 모임",
		Applicant:     fmt.Sprintf("신청자 %03d", idx),
		PhoneNumber:   fmt.Sprintf("010-1234-%04d", idx),
		ResourceGroup: "인캠",
		Status:        application.ReservationPending,
		UserID:        fmt.Sprintf("user-%03d", idx),
		SubmittedAt:   referenceTime,
		UpdatedAt:     referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReservationID overrides the reservation ID.
func WithReservationID(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.ID = id
	}
}

// WithReservationTeam sets the team name.
func WithReservationTeam(name string) ReservationOption {
	return func(f *ReservationFixture) {
		f.TeamName = name
	}
}

// WithReservationDate sets the use date.
func WithReservationDate(date time.Time) ReservationOption {
	return func(f *ReservationFixture) {
		f.UseDate = date
	}
}

// WithReservationWindow sets the start and end clocks.
func WithReservationWindow(start, end string) ReservationOption {
	return func(f *ReservationFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithReservationGroup sets the resource group.
func WithReservationGroup(group string) ReservationOption {
	return func(f *ReservationFixture) {
		f.ResourceGroup = group
	}
}

// WithReservationStatus sets the lifecycle status.
func WithReservationStatus(status application.ReservationStatus) ReservationOption {
	return func(f *ReservationFixture) {
		f.Status = status
	}
}

// WithReservationUser sets the owning user ID.
func WithReservationUser(userID string) ReservationOption {
	return func(f *ReservationFixture) {
		f.UserID = userID
	}
}

// WithReservationTimestamps sets both submitted and updated timestamps.
func WithReservationTimestamps(submitted, updated time.Time) ReservationOption {
	return func(f *ReservationFixture) {
		f.SubmittedAt = submitted
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Reservation value.
func (f ReservationFixture) Application() application.Reservation {
	return application.Reservation{
		ID:            f.ID,
		TeamName:      f.TeamName,
		UseDate:       f.UseDate,
		StartTime:     f.StartTime,
		EndTime:       f.EndTime,
		Reason:        f.Reason,
		Applicant:     f.Applicant,
		PhoneNumber:   f.PhoneNumber,
		ResourceGroup: f.ResourceGroup,
		Status:        f.Status,
		UserID:        f.UserID,
		SubmittedAt:   f.SubmittedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Reservation value.
func (f ReservationFixture) Persistence() persistence.Reservation {
	return persistence.Reservation{
		ID:            f.ID,
		TeamName:      f.TeamName,
		UseDate:       f.UseDate,
		StartTime:     f.StartTime,
		EndTime:       f.EndTime,
		Reason:        f.Reason,
		Applicant:     f.Applicant,
		PhoneNumber:   f.PhoneNumber,
		ResourceGroup: f.ResourceGroup,
		Status:        string(f.Status),
		UserID:        f.UserID,
		CreatedAt:     f.SubmittedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// Input returns the fixture as an application.ReservationInput.
func (f ReservationFixture) Input() application.ReservationInput {
	return application.ReservationInput{
		TeamName:      f.TeamName,
		UseDate:       timeslot.FormatDate(f.UseDate),
		StartTime:     f.StartTime,
		EndTime:       f.EndTime,
		Reason:        f.Reason,
		Applicant:     f.Applicant,
		PhoneNumber:   f.PhoneNumber,
		ResourceGroup: f.ResourceGroup,
	}
}

// ------------------------- Blackout rule fixtures -------------------------

// BlackoutRuleFixture represents a deterministic blackout rule record.
type BlackoutRuleFixture struct {
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

// BlackoutRuleOption configures the generated blackout rule fixture.
type BlackoutRuleOption func(*BlackoutRuleFixture)

// NewBlackoutRuleFixture returns a deterministic weekly rule with optional
// overrides.
func NewBlackoutRuleFixture(opts ...BlackoutRuleOption) BlackoutRuleFixture {
	idx := atomic.AddUint64(&ruleCounter, 1)
	id := fmt.Sprintf("rule-%03d", idx)
	fixture := BlackoutRuleFixture{
		ID:            id,
		Reason:        "정기 점검",
		ResourceGroup: "인캠",
		StartDate:     timeslot.NewDate(2024, time.June, 1),
		EndDate:       timeslot.NewDate(2024, time.August, 31),
		Frequency:     "weekly",
		DayOfWeek:     int(time.Tuesday),
		StartTime:     "13:00",
		EndTime:       "15:00",
		CreatedAt:     referenceTime,
		UpdatedAt:     referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRuleID overrides the rule ID.
func WithRuleID(id string) BlackoutRuleOption {
	return func(f *BlackoutRuleFixture) {
		f.ID = id
	}
}

// WithRuleReason sets the rule reason.
func WithRuleReason(reason string) BlackoutRuleOption {
	return func(f *BlackoutRuleFixture) {
		f.Reason = reason
	}
}

// WithRuleGroup sets the resource group.
func WithRuleGroup(group string) BlackoutRuleOption {
	return func(f *BlackoutRuleFixture) {
		f.ResourceGroup = group
	}
}

// WithRuleDates sets the active date range.
func WithRuleDates(start, end time.Time) BlackoutRuleOption {
	return func(f *BlackoutRuleFixture) {
		f.StartDate = start
		f.EndDate = end
	}
}

// WithRuleOnce turns the fixture into a single-day rule on the given date.
func WithRuleOnce(date time.Time) BlackoutRuleOption {
	return func(f *BlackoutRuleFixture) {
		f.Frequency = "once"
		f.StartDate = date
		f.EndDate = date
		f.DayOfWeek = 0
		f.WeekOfMonth = 0
	}
}

// WithRuleWeekly turns the fixture into a weekly rule on the given weekday.
func WithRuleWeekly(day time.Weekday) BlackoutRuleOption {
	return func(f *BlackoutRuleFixture) {
		f.Frequency = "weekly"
		f.DayOfWeek = int(day)
		f.WeekOfMonth = 0
	}
}

// WithRuleMonthly turns the fixture into a monthly_by_week_day rule.
func WithRuleMonthly(week int, day time.Weekday) BlackoutRuleOption {
	return func(f *BlackoutRuleFixture) {
		f.Frequency = "monthly_by_week_day"
		f.WeekOfMonth = week
		f.DayOfWeek = int(day)
	}
}

// WithRuleWindow sets the blocked clock window.
func WithRuleWindow(start, end string) BlackoutRuleOption {
	return func(f *BlackoutRuleFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithRuleTimestamps sets both created and updated timestamps.
func WithRuleTimestamps(created, updated time.Time) BlackoutRuleOption {
	return func(f *BlackoutRuleFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.BlackoutRule value.
func (f BlackoutRuleFixture) Application() application.BlackoutRule {
	return application.BlackoutRule{
		ID:            f.ID,
		Reason:        f.Reason,
		ResourceGroup: f.ResourceGroup,
		StartDate:     f.StartDate,
		EndDate:       f.EndDate,
		Frequency:     f.Frequency,
		DayOfWeek:     f.DayOfWeek,
		WeekOfMonth:   f.WeekOfMonth,
		StartTime:     f.StartTime,
		EndTime:       f.EndTime,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.BlackoutRule value.
func (f BlackoutRuleFixture) Persistence() persistence.BlackoutRule {
	return persistence.BlackoutRule{
		ID:            f.ID,
		Reason:        f.Reason,
		ResourceGroup: f.ResourceGroup,
		StartDate:     f.StartDate,
		EndDate:       f.EndDate,
		Frequency:     f.Frequency,
		DayOfWeek:     f.DayOfWeek,
		WeekOfMonth:   f.WeekOfMonth,
		StartTime:     f.StartTime,
		EndTime:       f.EndTime,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

// Input returns the fixture as an application.BlackoutRuleInput.
func (f BlackoutRuleFixture) Input() application.BlackoutRuleInput {
	return application.BlackoutRuleInput{
		Reason:        f.Reason,
		ResourceGroup: f.ResourceGroup,
		StartDate:     timeslot.FormatDate(f.StartDate),
		EndDate:       timeslot.FormatDate(f.EndDate),
		Frequency:     f.Frequency,
		DayOfWeek:     f.DayOfWeek,
		WeekOfMonth:   f.WeekOfMonth,
		StartTime:     f.StartTime,
		EndTime:       f.EndTime,
	}
}

// ----------------------------- Session fixtures -------------------------

// SessionFixture represents a deterministic session record.
type SessionFixture struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session fixture with optional overrides.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	id := fmt.Sprintf("session-%03d", idx)
	fixture := SessionFixture{
		ID:        id,
		UserID:    fmt.Sprintf("user-%03d", idx),
		Token:     fmt.Sprintf("token-%03d", idx),
		ExpiresAt: referenceTime.Add(24 * time.Hour),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionID overrides the session ID.
func WithSessionID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.ID = id
	}
}

// WithSessionUserID sets the user ID.
func WithSessionUserID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.UserID = id
	}
}

// WithSessionToken overrides the token value.
func WithSessionToken(token string) SessionOption {
	return func(f *SessionFixture) {
		f.Token = token
	}
}

// WithSessionExpiresAt sets the expiration timestamp.
func WithSessionExpiresAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = t
	}
}

// WithSessionRevokedAt sets the optional revoked timestamp.
func WithSessionRevokedAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		revoked := t
		f.RevokedAt = &revoked
	}
}

// Application returns the fixture as an application.Session value.
func (f SessionFixture) Application() application.Session {
	var revoked *time.Time
	if f.RevokedAt != nil {
		t := *f.RevokedAt
		revoked = &t
	}
	return application.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: revoked,
	}
}

// Persistence returns the fixture as a persistence.Session value.
func (f SessionFixture) Persistence() persistence.Session {
	var revoked *time.Time
	if f.RevokedAt != nil {
		t := *f.RevokedAt
		revoked = &t
	}
	return persistence.Session{
		ID:        f.ID,
		UserID:    f.UserID,
		Token:     f.Token,
		ExpiresAt: f.ExpiresAt,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
		RevokedAt: revoked,
	}
}
