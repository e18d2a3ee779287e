package main

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/clubroom-reservation/internal/application"
	"github.com/example/clubroom-reservation/internal/config"
	httptransport "github.com/example/clubroom-reservation/internal/http"
	"github.com/example/clubroom-reservation/internal/persistence"
	"github.com/example/clubroom-reservation/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := db.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := newTokenGenerator(cfg.SessionSecret)
	now := time.Now

	pool := db.Pool()
	userStore := sqlite.NewUserRepository(pool)
	reservationStore := sqlite.NewReservationRepository(pool)
	ruleStore := sqlite.NewBlackoutRuleRepository(pool)
	sessionStore := sqlite.NewSessionRepository(pool)

	userRepo := newUserRepositoryAdapter(userStore)
	reservationRepo := newReservationRepositoryAdapter(reservationStore)
	blackoutRepo := newBlackoutRepositoryAdapter(ruleStore)
	sessionRepo := newSessionRepositoryAdapter(sessionStore)
	credentialStore := newCredentialStoreAdapter(userStore)

	reservationService := application.NewReservationServiceWithLogger(reservationRepo, nil, idGenerator, now, logger)
	blackoutService := application.NewBlackoutServiceWithLogger(blackoutRepo, idGenerator, now, logger)
	availabilityService := application.NewAvailabilityServiceWithLogger(reservationRepo, blackoutRepo, nil, logger)
	userService := application.NewUserServiceWithLogger(userRepo, nil, idGenerator, now, logger)
	authService := application.NewAuthServiceWithLogger(credentialStore, sessionRepo, nil, idGenerator, tokenGenerator, now, cfg.SessionTTL, logger)

	if cfg.AdminEmail != "" {
		if err := promoteAdmin(ctx, userStore, cfg.AdminEmail, now); err != nil {
			logger.Warn("failed to bootstrap admin account", "email", cfg.AdminEmail, "error", err)
		}
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(authService, logger),
		Users:        httptransport.NewUserHandler(userService, logger),
		Reservations: httptransport.NewReservationHandler(reservationService, logger),
		Blackouts:    httptransport.NewBlackoutHandler(blackoutService, logger),
		Availability: httptransport.NewAvailabilityHandler(availabilityService, logger),
	})

	protected := httptransport.RequireSession(authService, logger)(router)
	handler := httptransport.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if httptransport.PublicRoute(r) {
			router.ServeHTTP(w, r)
			return
		}
		protected.ServeHTTP(w, r)
	}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("reservation API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// newTokenGenerator builds the session token source: each token is an HMAC of
// fresh random entropy keyed with the configured session secret.
func newTokenGenerator(secret string) func() string {
	return func() string {
		buf := make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, buf); err != nil {
			buf = []byte(fmt.Sprintf("fallback-%d", time.Now().UnixNano()))
		}
		return deriveToken(secret, buf)
	}
}

func deriveToken(secret string, entropy []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(entropy)
	return hex.EncodeToString(mac.Sum(nil))
}

// promoteAdmin grants admin rights to the configured bootstrap account. A
// missing account is not an error; the flag is applied once the user signs up
// and the process restarts.
func promoteAdmin(ctx context.Context, repo persistence.UserRepository, email string, now func() time.Time) error {
	stored, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil
		}
		return err
	}
	if stored.IsAdmin {
		return nil
	}
	stored.IsAdmin = true
	stored.UpdatedAt = now().UTC()
	return repo.UpdateUser(ctx, stored)
}

type reservationRepositoryAdapter struct {
	repo persistence.ReservationRepository
}

func newReservationRepositoryAdapter(repo persistence.ReservationRepository) *reservationRepositoryAdapter {
	return &reservationRepositoryAdapter{repo: repo}
}

func (a *reservationRepositoryAdapter) CreateReservation(ctx context.Context, reservation application.Reservation) (application.Reservation, error) {
	if err := a.repo.CreateReservation(ctx, toPersistenceReservation(reservation)); err != nil {
		return application.Reservation{}, err
	}
	stored, err := a.repo.GetReservation(ctx, reservation.ID)
	if err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

func (a *reservationRepositoryAdapter) GetReservation(ctx context.Context, id string) (application.Reservation, error) {
	stored, err := a.repo.GetReservation(ctx, id)
	if err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

func (a *reservationRepositoryAdapter) UpdateReservation(ctx context.Context, reservation application.Reservation) (application.Reservation, error) {
	if err := a.repo.UpdateReservation(ctx, toPersistenceReservation(reservation)); err != nil {
		return application.Reservation{}, err
	}
	stored, err := a.repo.GetReservation(ctx, reservation.ID)
	if err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

func (a *reservationRepositoryAdapter) ListReservationsByDay(ctx context.Context, date time.Time, resourceGroup string) ([]application.Reservation, error) {
	models, err := a.repo.ListReservationsByDay(ctx, date, resourceGroup)
	if err != nil {
		return nil, err
	}
	return toApplicationReservations(models), nil
}

func (a *reservationRepositoryAdapter) ListReservationsByUser(ctx context.Context, userID string) ([]application.Reservation, error) {
	models, err := a.repo.ListReservationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toApplicationReservations(models), nil
}

type blackoutRepositoryAdapter struct {
	repo persistence.BlackoutRuleRepository
}

func newBlackoutRepositoryAdapter(repo persistence.BlackoutRuleRepository) *blackoutRepositoryAdapter {
	return &blackoutRepositoryAdapter{repo: repo}
}

func (a *blackoutRepositoryAdapter) CreateRule(ctx context.Context, rule application.BlackoutRule) (application.BlackoutRule, error) {
	if err := a.repo.CreateRule(ctx, toPersistenceRule(rule)); err != nil {
		return application.BlackoutRule{}, err
	}
	stored, err := a.repo.GetRule(ctx, rule.ID)
	if err != nil {
		return application.BlackoutRule{}, err
	}
	return toApplicationRule(stored), nil
}

func (a *blackoutRepositoryAdapter) GetRule(ctx context.Context, id string) (application.BlackoutRule, error) {
	stored, err := a.repo.GetRule(ctx, id)
	if err != nil {
		return application.BlackoutRule{}, err
	}
	return toApplicationRule(stored), nil
}

func (a *blackoutRepositoryAdapter) UpdateRule(ctx context.Context, rule application.BlackoutRule) (application.BlackoutRule, error) {
	if err := a.repo.UpdateRule(ctx, toPersistenceRule(rule)); err != nil {
		return application.BlackoutRule{}, err
	}
	stored, err := a.repo.GetRule(ctx, rule.ID)
	if err != nil {
		return application.BlackoutRule{}, err
	}
	return toApplicationRule(stored), nil
}

func (a *blackoutRepositoryAdapter) DeleteRule(ctx context.Context, id string) error {
	return a.repo.DeleteRule(ctx, id)
}

func (a *blackoutRepositoryAdapter) ListRules(ctx context.Context, resourceGroup string) ([]application.BlackoutRule, error) {
	models, err := a.repo.ListRules(ctx, resourceGroup)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	rules := make([]application.BlackoutRule, 0, len(models))
	for _, model := range models {
		rules = append(rules, toApplicationRule(model))
	}
	return rules, nil
}

type userRepositoryAdapter struct {
	repo persistence.UserRepository
}

func newUserRepositoryAdapter(repo persistence.UserRepository) *userRepositoryAdapter {
	return &userRepositoryAdapter{repo: repo}
}

func (a *userRepositoryAdapter) CreateUser(ctx context.Context, user application.User, passwordHash string) (application.User, error) {
	if err := a.repo.CreateUser(ctx, toPersistenceUser(user, passwordHash)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) UpdateUser(ctx context.Context, user application.User) (application.User, error) {
	current, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	if err := a.repo.UpdateUser(ctx, toPersistenceUser(user, current.PasswordHash)); err != nil {
		return application.User{}, err
	}
	stored, err := a.repo.GetUser(ctx, user.ID)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func (a *userRepositoryAdapter) ListUsers(ctx context.Context) ([]application.User, error) {
	models, err := a.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	users := make([]application.User, 0, len(models))
	for _, model := range models {
		users = append(users, toApplicationUser(model))
	}
	return users, nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	stored, err := a.repo.CreateSession(ctx, toPersistenceSession(session))
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (application.Session, error) {
	stored, err := a.repo.RevokeSession(ctx, token, revokedAt)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	return a.repo.DeleteExpiredSessions(ctx, reference)
}

type credentialStoreAdapter struct {
	repo persistence.UserRepository
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) GetUserCredentialsByEmail(ctx context.Context, email string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.UserCredentials{}, err
	}
	return application.UserCredentials{
		User:         toApplicationUser(stored),
		PasswordHash: stored.PasswordHash,
	}, nil
}

func (a *credentialStoreAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	stored, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return toApplicationUser(stored), nil
}

func toApplicationReservation(model persistence.Reservation) application.Reservation {
	return application.Reservation{
		ID:            model.ID,
		TeamName:      model.TeamName,
		UseDate:       model.UseDate,
		StartTime:     model.StartTime,
		EndTime:       model.EndTime,
		Reason:        model.Reason,
		Applicant:     model.Applicant,
		PhoneNumber:   model.PhoneNumber,
		ResourceGroup: model.ResourceGroup,
		Status:        application.ReservationStatus(model.Status),
		UserID:        model.UserID,
		SubmittedAt:   model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func toPersistenceReservation(reservation application.Reservation) persistence.Reservation {
	return persistence.Reservation{
		ID:            reservation.ID,
		TeamName:      reservation.TeamName,
		UseDate:       reservation.UseDate,
		StartTime:     reservation.StartTime,
		EndTime:       reservation.EndTime,
		Reason:        reservation.Reason,
		Applicant:     reservation.Applicant,
		PhoneNumber:   reservation.PhoneNumber,
		ResourceGroup: reservation.ResourceGroup,
		Status:        string(reservation.Status),
		UserID:        reservation.UserID,
		CreatedAt:     reservation.SubmittedAt,
		UpdatedAt:     reservation.UpdatedAt,
	}
}

func toApplicationReservations(models []persistence.Reservation) []application.Reservation {
	if len(models) == 0 {
		return nil
	}
	reservations := make([]application.Reservation, 0, len(models))
	for _, model := range models {
		reservations = append(reservations, toApplicationReservation(model))
	}
	return reservations
}

func toApplicationRule(model persistence.BlackoutRule) application.BlackoutRule {
	return application.BlackoutRule{
		ID:            model.ID,
		Reason:        model.Reason,
		ResourceGroup: model.ResourceGroup,
		StartDate:     model.StartDate,
		EndDate:       model.EndDate,
		Frequency:     model.Frequency,
		DayOfWeek:     model.DayOfWeek,
		WeekOfMonth:   model.WeekOfMonth,
		StartTime:     model.StartTime,
		EndTime:       model.EndTime,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

func toPersistenceRule(rule application.BlackoutRule) persistence.BlackoutRule {
	return persistence.BlackoutRule{
		ID:            rule.ID,
		Reason:        rule.Reason,
		ResourceGroup: rule.ResourceGroup,
		StartDate:     rule.StartDate,
		EndDate:       rule.EndDate,
		Frequency:     rule.Frequency,
		DayOfWeek:     rule.DayOfWeek,
		WeekOfMonth:   rule.WeekOfMonth,
		StartTime:     rule.StartTime,
		EndTime:       rule.EndTime,
		CreatedAt:     rule.CreatedAt,
		UpdatedAt:     rule.UpdatedAt,
	}
}

func toApplicationUser(model persistence.User) application.User {
	return application.User{
		ID:          model.ID,
		Email:       model.Email,
		DisplayName: model.DisplayName,
		PhoneNumber: model.PhoneNumber,
		IsAdmin:     model.IsAdmin,
		Disabled:    model.Disabled,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceUser(user application.User, passwordHash string) persistence.User {
	return persistence.User{
		ID:           user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		PhoneNumber:  user.PhoneNumber,
		PasswordHash: passwordHash,
		IsAdmin:      user.IsAdmin,
		Disabled:     user.Disabled,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:        model.ID,
		UserID:    model.UserID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
		RevokedAt: cloneTime(model.RevokedAt),
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		UserID:    session.UserID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
		RevokedAt: cloneTime(session.RevokedAt),
	}
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
