package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sokohub/sokohub-order-service/internal/delivery/http/dto/request"
	"github.com/sokohub/sokohub-order-service/internal/delivery/http/dto/response"
	"github.com/sokohub/sokohub-order-service/internal/delivery/http/middleware"
	"github.com/sokohub/sokohub-order-service/internal/domain"
	orderdto "github.com/sokohub/sokohub-order-service/internal/usecase/dto/order"
	usecase "github.com/sokohub/sokohub-order-service/internal/usecase/order"
	"go.uber.org/zap"
)

type OrderHandler struct {
	uc  usecase.OrderUsecase
	log *zap.SugaredLogger
}

func NewOrderHandler(uc usecase.OrderUsecase, log *zap.SugaredLogger) *OrderHandler {
	return &OrderHandler{uc: uc, log: log}
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req request.CreateOrder
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response.Error{Error: "invalid request body"})
		return
	}

	items := make([]orderdto.ItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = orderdto.ItemInput{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	order, err := h.uc.CreateOrder(r.Context(), &orderdto.CreateOrderInput{
		UserID:          middleware.UserID(r.Context()),
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		Phone:           req.Phone,
		ShippingAddress: req.ShippingAddress,
		Items:           items,
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, response.Error{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, response.FromDomainOrder(order))
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.ownedOrder(w, r)
	if err != nil {
		return
	}
	writeJSON(w, http.StatusOK, response.FromDomainOrder(order))
}

func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userID")
	if userID == "" {
		userID = middleware.UserID(r.Context())
	} else if userID != middleware.UserID(r.Context()) && !middleware.IsOperator(r.Context()) {
		writeDomainError(w, domain.ErrAccessDenied)
		return
	}

	orders, err := h.uc.GetOrdersByUserID(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]*response.Order, len(orders))
	for i, order := range orders {
		out[i] = response.FromDomainOrder(order)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	if _, err := h.ownedOrder(w, r); err != nil {
		return
	}

	order, err := h.uc.CancelOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response.FromDomainOrder(order))
}

func (h *OrderHandler) RequestRefund(w http.ResponseWriter, r *http.Request) {
	if _, err := h.ownedOrder(w, r); err != nil {
		return
	}

	var req request.RequestRefund
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response.Error{Error: "invalid request body"})
		return
	}

	order, err := h.uc.RequestRefund(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response.FromDomainOrder(order))
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if !middleware.IsOperator(r.Context()) {
		writeDomainError(w, domain.ErrAccessDenied)
		return
	}

	var req request.UpdateStatus
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response.Error{Error: "invalid request body"})
		return
	}

	input := &orderdto.UpdateStatusInput{}
	if req.CommercialStatus != nil {
		status := domain.CommercialStatus(*req.CommercialStatus)
		input.CommercialStatus = &status
	}
	if req.PaymentStatus != nil {
		status := domain.PaymentStatus(*req.PaymentStatus)
		input.PaymentStatus = &status
	}
	if req.TrackingStatus != nil {
		status := domain.TrackingStatus(*req.TrackingStatus)
		input.TrackingStatus = &status
	}

	order, err := h.uc.UpdateOrderStatus(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response.FromDomainOrder(order))
}

// ownedOrder loads the order and enforces that the caller owns it or is an
// operator. On failure the response is already written and a non-nil error
// returned so callers just bail out.
func (h *OrderHandler) ownedOrder(w http.ResponseWriter, r *http.Request) (*domain.Order, error) {
	order, err := h.uc.GetOrderByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return nil, err
	}

	if order.UserID != middleware.UserID(r.Context()) && !middleware.IsOperator(r.Context()) {
		writeDomainError(w, domain.ErrAccessDenied)
		return nil, domain.ErrAccessDenied
	}

	return order, nil
}
