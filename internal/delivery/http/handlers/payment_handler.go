package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sokohub/sokohub-order-service/internal/delivery/http/dto/response"
	"github.com/sokohub/sokohub-order-service/internal/delivery/http/middleware"
	"github.com/sokohub/sokohub-order-service/internal/domain"
	"github.com/sokohub/sokohub-order-service/internal/infrastructure/metrics"
	"github.com/sokohub/sokohub-order-service/internal/infrastructure/mpesa"
	usecase "github.com/sokohub/sokohub-order-service/internal/usecase/order"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	uc      usecase.OrderUsecase
	metrics *metrics.OrderMetrics
	log     *zap.SugaredLogger
}

func NewPaymentHandler(uc usecase.OrderUsecase, orderMetrics *metrics.OrderMetrics, log *zap.SugaredLogger) *PaymentHandler {
	return &PaymentHandler{uc: uc, metrics: orderMetrics, log: log}
}

func (h *PaymentHandler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	if !h.authorizeOrderAccess(w, r) {
		return
	}

	promptHandle, err := h.uc.InitiatePayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response.InitiatePayment{PromptHandle: promptHandle})
}

func (h *PaymentHandler) QueryPayment(w http.ResponseWriter, r *http.Request) {
	if !h.authorizeOrderAccess(w, r) {
		return
	}

	outcome, err := h.uc.QueryPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response.PaymentDisposition{
		ExternalRef:   outcome.ExternalRef,
		Succeeded:     outcome.Succeeded,
		Pending:       outcome.Pending,
		SettlementRef: outcome.SettlementRef,
		Reason:        outcome.ReasonText,
	})
}

// HandleCallback is the gateway-invoked settlement webhook. Whatever
// happens inside, the gateway gets a success acknowledgement: a non-2xx or
// error body would only make its retry policy amplify load. Failures are
// surfaced through logs and the callback counter instead.
func (h *PaymentHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	defer writeJSON(w, http.StatusOK, mpesa.CallbackAck{ResultCode: 0, ResultDesc: "Accepted"})

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.countCallback("read_error")
		h.log.Errorw("failed to read callback body", "error", err)
		return
	}

	promptHandle, outcome, err := mpesa.ParseCallback(body)
	if err != nil {
		h.countCallback("malformed")
		h.log.Warnw("malformed settlement callback acknowledged and dropped", "error", err)
		return
	}

	order, err := h.uc.SettleByExternalRef(r.Context(), domain.OriginCallback, outcome)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownCorrelation) {
			h.countCallback("unknown_token")
			h.log.Infow("callback for unknown correlation token discarded",
				"prompt_handle", promptHandle,
			)
			return
		}
		h.countCallback("error")
		h.log.Errorw("failed to apply settlement callback",
			"prompt_handle", promptHandle,
			"error", err,
		)
		return
	}

	h.countCallback("processed")
	h.log.Infow("settlement callback applied",
		"order_id", order.ID,
		"payment_status", order.PaymentStatus,
		"succeeded", outcome.Succeeded,
		"settlement_ref", outcome.SettlementRef,
	)
}

func (h *PaymentHandler) MarkComplete(w http.ResponseWriter, r *http.Request) {
	h.adminMark(w, r, h.uc.MarkPaymentComplete)
}

func (h *PaymentHandler) MarkFailed(w http.ResponseWriter, r *http.Request) {
	h.adminMark(w, r, h.uc.MarkPaymentFailed)
}

func (h *PaymentHandler) adminMark(w http.ResponseWriter, r *http.Request, mark func(ctx context.Context, orderID string) (*domain.Order, error)) {
	if !middleware.IsOperator(r.Context()) {
		writeDomainError(w, domain.ErrAccessDenied)
		return
	}

	order, err := mark(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response.FromDomainOrder(order))
}

func (h *PaymentHandler) countCallback(result string) {
	if h.metrics != nil {
		h.metrics.CallbacksReceivedTotal.WithLabelValues(result).Inc()
	}
}

// authorizeOrderAccess loads the order and checks owner-or-operator.
func (h *PaymentHandler) authorizeOrderAccess(w http.ResponseWriter, r *http.Request) bool {
	order, err := h.uc.GetOrderByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return false
	}

	if order.UserID != middleware.UserID(r.Context()) && !middleware.IsOperator(r.Context()) {
		writeDomainError(w, domain.ErrAccessDenied)
		return false
	}

	return true
}
