package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/clubroom-reservation/internal/application"
)

type availabilityService interface {
	DayGrid(ctx context.Context, useDate, resourceGroup string) ([]application.SlotView, error)
	SlotDetail(ctx context.Context, useDate, resourceGroup string, slotIndex int) (application.SlotDetail, error)
}

type AvailabilityHandler struct {
	service   availabilityService
	responder responder
	logger    *slog.Logger
}

func NewAvailabilityHandler(service availabilityService, logger *slog.Logger) *AvailabilityHandler {
	base := defaultLogger(logger)
	return &AvailabilityHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AvailabilityHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AvailabilityHandler", operation, attrs...)
}

// Grid returns the 32 half-hour slot statuses for one day and resource group.
func (h *AvailabilityHandler) Grid(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	useDate := strings.TrimSpace(query.Get("date"))
	resourceGroup := strings.TrimSpace(query.Get("group"))
	logger := h.log(r.Context(), "Grid", "use_date", useDate, "resource_group", resourceGroup)

	slots, err := h.service.DayGrid(r.Context(), useDate, resourceGroup)
	if err != nil {
		logger.ErrorContext(r.Context(), "grid resolution failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "grid resolved")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, gridResponse{
		UseDate:       useDate,
		ResourceGroup: resourceGroup,
		Slots:         toSlotDTOs(slots),
	})
}

// Slot returns one slot's status together with the record responsible for it.
func (h *AvailabilityHandler) Slot(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	useDate := strings.TrimSpace(query.Get("date"))
	resourceGroup := strings.TrimSpace(query.Get("group"))
	slotIndex, err := strconv.Atoi(strings.TrimSpace(query.Get("slot")))
	if err != nil {
		// A non-numeric index gets the same field message as an out-of-range one.
		slotIndex = -1
	}

	logger := h.log(r.Context(), "Slot", "use_date", useDate, "resource_group", resourceGroup, "slot", slotIndex)

	detail, err := h.service.SlotDetail(r.Context(), useDate, resourceGroup, slotIndex)
	if err != nil {
		logger.ErrorContext(r.Context(), "slot detail failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "slot detail resolved")

	response := slotDetailResponse{Slot: toSlotDTO(detail.Slot)}
	if detail.Reservation != nil {
		dto := toReservationDTO(*detail.Reservation)
		response.Reservation = &dto
	}
	if detail.Rule != nil {
		dto := toBlackoutRuleDTO(*detail.Rule)
		response.Rule = &dto
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

type gridResponse struct {
	UseDate       string    `json:"use_date"`
	ResourceGroup string    `json:"resource_group"`
	Slots         []slotDTO `json:"slots"`
}

type slotDetailResponse struct {
	Slot        slotDTO          `json:"slot"`
	Reservation *reservationDTO  `json:"reservation,omitempty"`
	Rule        *blackoutRuleDTO `json:"rule,omitempty"`
}

type slotDTO struct {
	Index     int    `json:"index"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
}

func toSlotDTO(slot application.SlotView) slotDTO {
	return slotDTO{
		Index:     slot.Index,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
		Status:    slot.Status,
	}
}

func toSlotDTOs(slots []application.SlotView) []slotDTO {
	if len(slots) == 0 {
		return nil
	}
	out := make([]slotDTO, 0, len(slots))
	for _, slot := range slots {
		out = append(out, toSlotDTO(slot))
	}
	return out
}
