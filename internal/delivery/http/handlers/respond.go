package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sokohub/sokohub-order-service/internal/delivery/http/dto/response"
	"github.com/sokohub/sokohub-order-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeDomainError maps the error taxonomy onto HTTP statuses. State-rule
// rejections are 409s with the human-readable reason; gateway outages are
// 502s so callers know to retry initiation.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, response.Error{Error: err.Error()})
	case errors.Is(err, domain.ErrAccessDenied):
		writeJSON(w, http.StatusForbidden, response.Error{Error: err.Error()})
	case errors.Is(err, domain.ErrCancelNotPending),
		errors.Is(err, domain.ErrRefundNotCompleted),
		errors.Is(err, domain.ErrNotPushPayment),
		errors.Is(err, domain.ErrPaymentNotInitiated),
		errors.Is(err, domain.ErrInvalidStatus):
		writeJSON(w, http.StatusConflict, response.Error{Error: err.Error()})
	case errors.Is(err, domain.ErrGatewayUnavailable):
		writeJSON(w, http.StatusBadGateway, response.Error{Error: "payment not initiated, retry"})
	default:
		writeJSON(w, http.StatusInternalServerError, response.Error{Error: "internal error"})
	}
}
