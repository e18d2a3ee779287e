package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/clubroom-reservation/internal/application"
	"github.com/example/clubroom-reservation/internal/timeslot"
)

type reservationService interface {
	Submit(ctx context.Context, params application.SubmitReservationParams) (application.Reservation, error)
	Approve(ctx context.Context, principal application.Principal, reservationID string) (application.Reservation, error)
	Reject(ctx context.Context, principal application.Principal, reservationID string) (application.Reservation, error)
	Cancel(ctx context.Context, principal application.Principal, reservationID string) (application.Reservation, error)
	ListForDay(ctx context.Context, useDate, resourceGroup string) ([]application.Reservation, error)
	ListForUser(ctx context.Context, principal application.Principal) ([]application.Reservation, error)
}

type ReservationHandler struct {
	service   reservationService
	responder responder
	logger    *slog.Logger
}

func NewReservationHandler(service reservationService, logger *slog.Logger) *ReservationHandler {
	base := defaultLogger(logger)
	return &ReservationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReservationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReservationHandler", operation, attrs...)
}

// List dispatches between the public day listing and the caller's own
// reservations depending on the `mine` query parameter.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	if query.Get("mine") != "" {
		h.listMine(w, r)
		return
	}

	useDate := strings.TrimSpace(query.Get("date"))
	resourceGroup := strings.TrimSpace(query.Get("group"))
	logger := h.log(r.Context(), "List", "use_date", useDate, "resource_group", resourceGroup)

	reservations, err := h.service.ListForDay(r.Context(), useDate, resourceGroup)
	if err != nil {
		logger.ErrorContext(r.Context(), "day listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(reservations)).InfoContext(r.Context(), "reservations listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listReservationsResponse{Reservations: toReservationDTOs(reservations)})
}

func (h *ReservationHandler) listMine(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ListMine", "principal_id", principal.UserID)

	reservations, err := h.service.ListForUser(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "own listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(reservations)).InfoContext(r.Context(), "own reservations listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listReservationsResponse{Reservations: toReservationDTOs(reservations)})
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode reservation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "use_date", req.UseDate)

	reservation, err := h.service.Submit(r.Context(), application.SubmitReservationParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation submission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("reservation_id", reservation.ID).InfoContext(r.Context(), "reservation submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, reservationResponse{Reservation: toReservationDTO(reservation)})
}

func (h *ReservationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Approve", func(ctx context.Context, principal application.Principal, id string) (application.Reservation, error) {
		return h.service.Approve(ctx, principal, id)
	})
}

func (h *ReservationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Reject", func(ctx context.Context, principal application.Principal, id string) (application.Reservation, error) {
		return h.service.Reject(ctx, principal, id)
	})
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Cancel", func(ctx context.Context, principal application.Principal, id string) (application.Reservation, error) {
		return h.service.Cancel(ctx, principal, id)
	})
}

func (h *ReservationHandler) transition(w http.ResponseWriter, r *http.Request, operation string, fn func(context.Context, application.Principal, string) (application.Reservation, error)) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reservationID, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(reservationID) == "" {
		h.log(r.Context(), operation, "error_kind", "bad_request").ErrorContext(r.Context(), "missing reservation id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservation)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), operation, "principal_id", principal.UserID, "reservation_id", reservationID)

	reservation, err := fn(r.Context(), principal, reservationID)
	if err != nil {
		logger.ErrorContext(r.Context(), "status transition failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", string(reservation.Status)).InfoContext(r.Context(), "reservation status changed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reservationResponse{Reservation: toReservationDTO(reservation)})
}

type reservationRequest struct {
	TeamName      string `json:"team_name"`
	UseDate       string `json:"use_date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Reason        string `json:"reason"`
	Applicant     string `json:"applicant"`
	PhoneNumber   string `json:"phone_number"`
	ResourceGroup string `json:"resource_group"`
}

func (r reservationRequest) toInput() application.ReservationInput {
	return application.ReservationInput{
		TeamName:      strings.TrimSpace(r.TeamName),
		UseDate:       strings.TrimSpace(r.UseDate),
		StartTime:     strings.TrimSpace(r.StartTime),
		EndTime:       strings.TrimSpace(r.EndTime),
		Reason:        strings.TrimSpace(r.Reason),
		Applicant:     strings.TrimSpace(r.Applicant),
		PhoneNumber:   strings.TrimSpace(r.PhoneNumber),
		ResourceGroup: strings.TrimSpace(r.ResourceGroup),
	}
}

type reservationResponse struct {
	Reservation reservationDTO `json:"reservation"`
}

type listReservationsResponse struct {
	Reservations []reservationDTO `json:"reservations"`
}

type reservationDTO struct {
	ID            string `json:"id"`
	TeamName      string `json:"team_name"`
	UseDate       string `json:"use_date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Reason        string `json:"reason"`
	Applicant     string `json:"applicant"`
	PhoneNumber   string `json:"phone_number"`
	ResourceGroup string `json:"resource_group"`
	Status        string `json:"status"`
	UserID        string `json:"user_id"`
	SubmittedAt   string `json:"submitted_at"`
	UpdatedAt     string `json:"updated_at"`
}

func toReservationDTO(reservation application.Reservation) reservationDTO {
	return reservationDTO{
		ID:            reservation.ID,
		TeamName:      reservation.TeamName,
		UseDate:       timeslot.FormatDate(reservation.UseDate),
		StartTime:     reservation.StartTime,
		EndTime:       reservation.EndTime,
		Reason:        reservation.Reason,
		Applicant:     reservation.Applicant,
		PhoneNumber:   reservation.PhoneNumber,
		ResourceGroup: reservation.ResourceGroup,
		Status:        string(reservation.Status),
		UserID:        reservation.UserID,
		SubmittedAt:   reservation.SubmittedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:     reservation.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toReservationDTOs(reservations []application.Reservation) []reservationDTO {
	if len(reservations) == 0 {
		return nil
	}
	out := make([]reservationDTO, 0, len(reservations))
	for _, reservation := range reservations {
		out = append(out, toReservationDTO(reservation))
	}
	return out
}
