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

type blackoutService interface {
	CreateRule(ctx context.Context, params application.CreateBlackoutRuleParams) (application.BlackoutRule, error)
	UpdateRule(ctx context.Context, params application.UpdateBlackoutRuleParams) (application.BlackoutRule, error)
	DeleteRule(ctx context.Context, principal application.Principal, ruleID string) error
	ListRules(ctx context.Context, principal application.Principal, resourceGroup string) ([]application.BlackoutRule, error)
}

type BlackoutHandler struct {
	service   blackoutService
	responder responder
	logger    *slog.Logger
}

func NewBlackoutHandler(service blackoutService, logger *slog.Logger) *BlackoutHandler {
	base := defaultLogger(logger)
	return &BlackoutHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BlackoutHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BlackoutHandler", operation, attrs...)
}

func (h *BlackoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req blackoutRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode blackout rule request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	rule, err := h.service.CreateRule(r.Context(), application.CreateBlackoutRuleParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "blackout rule creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("rule_id", rule.ID).InfoContext(r.Context(), "blackout rule created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, blackoutRuleResponse{Rule: toBlackoutRuleDTO(rule)})
}

func (h *BlackoutHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ruleID, ok := RuleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(ruleID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing rule id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRuleID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req blackoutRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "rule_id", ruleID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode blackout rule update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "rule_id", ruleID)

	rule, err := h.service.UpdateRule(r.Context(), application.UpdateBlackoutRuleParams{
		Principal: principal,
		RuleID:    ruleID,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "blackout rule update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "blackout rule updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, blackoutRuleResponse{Rule: toBlackoutRuleDTO(rule)})
}

func (h *BlackoutHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ruleID, ok := RuleIDFromContext(r.Context())
	if !ok || strings.TrimSpace(ruleID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing rule id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRuleID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "rule_id", ruleID)

	if err := h.service.DeleteRule(r.Context(), principal, ruleID); err != nil {
		logger.ErrorContext(r.Context(), "blackout rule delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "blackout rule deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *BlackoutHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	resourceGroup := strings.TrimSpace(r.URL.Query().Get("group"))
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID, "resource_group", resourceGroup)

	rules, err := h.service.ListRules(r.Context(), principal, resourceGroup)
	if err != nil {
		logger.ErrorContext(r.Context(), "blackout rule list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(rules)).InfoContext(r.Context(), "blackout rules listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBlackoutRulesResponse{Rules: toBlackoutRuleDTOs(rules)})
}

type blackoutRuleRequest struct {
	Reason        string `json:"reason"`
	ResourceGroup string `json:"resource_group"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Frequency     string `json:"frequency"`
	DayOfWeek     int    `json:"day_of_week"`
	WeekOfMonth   int    `json:"week_of_month"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
}

func (r blackoutRuleRequest) toInput() application.BlackoutRuleInput {
	return application.BlackoutRuleInput{
		Reason:        strings.TrimSpace(r.Reason),
		ResourceGroup: strings.TrimSpace(r.ResourceGroup),
		StartDate:     strings.TrimSpace(r.StartDate),
		EndDate:       strings.TrimSpace(r.EndDate),
		Frequency:     strings.TrimSpace(r.Frequency),
		DayOfWeek:     r.DayOfWeek,
		WeekOfMonth:   r.WeekOfMonth,
		StartTime:     strings.TrimSpace(r.StartTime),
		EndTime:       strings.TrimSpace(r.EndTime),
	}
}

type blackoutRuleResponse struct {
	Rule blackoutRuleDTO `json:"rule"`
}

type listBlackoutRulesResponse struct {
	Rules []blackoutRuleDTO `json:"rules"`
}

type blackoutRuleDTO struct {
	ID            string `json:"id"`
	Reason        string `json:"reason"`
	ResourceGroup string `json:"resource_group"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Frequency     string `json:"frequency"`
	DayOfWeek     int    `json:"day_of_week"`
	WeekOfMonth   int    `json:"week_of_month"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func toBlackoutRuleDTO(rule application.BlackoutRule) blackoutRuleDTO {
	return blackoutRuleDTO{
		ID:            rule.ID,
		Reason:        rule.Reason,
		ResourceGroup: rule.ResourceGroup,
		StartDate:     timeslot.FormatDate(rule.StartDate),
		EndDate:       timeslot.FormatDate(rule.EndDate),
		Frequency:     rule.Frequency,
		DayOfWeek:     rule.DayOfWeek,
		WeekOfMonth:   rule.WeekOfMonth,
		StartTime:     rule.StartTime,
		EndTime:       rule.EndTime,
		CreatedAt:     rule.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:     rule.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toBlackoutRuleDTOs(rules []application.BlackoutRule) []blackoutRuleDTO {
	if len(rules) == 0 {
		return nil
	}
	out := make([]blackoutRuleDTO, 0, len(rules))
	for _, rule := range rules {
		out = append(out, toBlackoutRuleDTO(rule))
	}
	return out
}
