package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/clubroom-reservation/internal/application"
	"github.com/example/clubroom-reservation/internal/logging"
)

var (
	errBadRequestBody      = errors.New("요청 형식이 올바르지 않습니다.")
	errInvalidReservation  = errors.New("예약 ID가 올바르지 않습니다.")
	errInvalidRuleID       = errors.New("차단 규칙 ID가 올바르지 않습니다.")
	errInvalidUserID       = errors.New("사용자 ID가 올바르지 않습니다.")
	errMissingSessionToken = errors.New("로그인이 필요합니다.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	var conflictErr *application.ConflictError
	if errors.As(err, &conflictErr) {
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode:   "SLOT_CONFLICT",
			Message:     "이미 해당 시간에 예약이 있습니다.",
			Conflicting: toConflictDTO(conflictErr.Conflicting),
		})
		return
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: "입력 내용을 확인해주세요.",
			Errors:  localizeValidationErrors(vErr),
		})
		return
	}

	switch {
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_INVALID_CREDENTIALS",
			Message:   "이메일 또는 비밀번호가 올바르지 않습니다.",
		})
	case errors.Is(err, application.ErrAccountDisabled):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_ACCOUNT_DISABLED",
			Message:   "비활성화된 계정입니다. 관리자에게 문의하세요.",
		})
	case errors.Is(err, application.ErrSessionExpired), errors.Is(err, application.ErrSessionRevoked):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_SESSION_EXPIRED",
			Message:   "세션이 만료되었습니다. 다시 로그인해주세요.",
		})
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "이 작업을 수행할 권한이 없습니다.",
		})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "DUPLICATE",
			Message:   "이미 등록된 이메일입니다.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "요청한 리소스를 찾을 수 없습니다."})
	default:
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "서버 오류가 발생했습니다."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "요청 내용이 올바르지 않습니다."
	case http.StatusUnauthorized:
		return "로그인이 필요합니다."
	case http.StatusForbidden:
		return "이 작업을 수행할 권한이 없습니다."
	case http.StatusNotFound:
		return "요청한 리소스를 찾을 수 없습니다."
	case http.StatusConflict:
		return "요청이 현재 상태와 충돌합니다."
	case http.StatusUnprocessableEntity:
		return "입력 내용을 확인해주세요."
	default:
		return "서버 오류가 발생했습니다."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "team name is required":
		return "팀 이름을 입력해주세요."
	case "reason is required":
		return "사용 목적을 입력해주세요."
	case "applicant is required":
		return "신청자 이름을 입력해주세요."
	case "must be a valid phone number":
		return "전화번호 형식이 올바르지 않습니다. (010-XXXX-XXXX)"
	case "must be formatted as YYYY-MM-DD":
		return "날짜는 YYYY-MM-DD 형식으로 입력해주세요."
	case "must be formatted as HH:MM on a 30 minute boundary":
		return "시간은 30분 단위의 HH:MM 형식으로 입력해주세요."
	case "start must be before end":
		return "종료 시간은 시작 시간보다 늦어야 합니다."
	case "unknown resource group":
		return "캠퍼스 선택이 올바르지 않습니다."
	case "end date must not precede start date":
		return "종료 날짜는 시작 날짜보다 빠를 수 없습니다."
	case "must be once, weekly or monthly_by_week_day":
		return "반복 주기는 once, weekly, monthly_by_week_day 중 하나여야 합니다."
	case "must be between 0 (Sunday) and 6 (Saturday)":
		return "요일은 0(일요일)부터 6(토요일) 사이여야 합니다."
	case "must be between 1 and 5":
		return "주차는 1부터 5 사이여야 합니다."
	case "must be a slot index between 0 and 31":
		return "슬롯 번호는 0부터 31 사이여야 합니다."
	case "email is required":
		return "이메일을 입력해주세요."
	case "email is invalid":
		return "이메일 형식이 올바르지 않습니다."
	case "display name is required":
		return "이름을 입력해주세요."
	case "password must be at least 8 characters":
		return "비밀번호는 8자 이상이어야 합니다."
	case "only pending reservations can be reviewed":
		return "대기 중인 예약만 처리할 수 있습니다."
	case "only pending or approved reservations can be cancelled":
		return "대기 중이거나 승인된 예약만 취소할 수 있습니다."
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode   string            `json:"error_code,omitempty"`
	Message     string            `json:"message"`
	Errors      map[string]string `json:"errors,omitempty"`
	Conflicting *conflictDTO      `json:"conflicting,omitempty"`
}

// conflictDTO summarizes the reservation that blocked a submission.
type conflictDTO struct {
	ID        string `json:"id"`
	TeamName  string `json:"team_name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
}

func toConflictDTO(reservation application.Reservation) *conflictDTO {
	return &conflictDTO{
		ID:        reservation.ID,
		TeamName:  reservation.TeamName,
		StartTime: reservation.StartTime,
		EndTime:   reservation.EndTime,
		Status:    string(reservation.Status),
	}
}
