package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
	"github.com/sokohub/sokohub-order-service/internal/domain"
	orderdto "github.com/sokohub/sokohub-order-service/internal/usecase/dto/order"
)

// newOrderNumber yields human-facing order numbers like "SO-4F8ZK27Q1M".
var newOrderNumber = func() func() string {
	gen, err := nanoid.CustomASCII("0123456789ABCDEFGHJKMNPQRSTVWXYZ", 10)
	if err != nil {
		panic(err)
	}
	return func() string { return "SO-" + gen() }
}()

// CreateOrder persists the order and, for push-payment orders, attempts to
// initiate the payment prompt best-effort: a gateway failure leaves the
// order created with payment still pending and is reported to the caller
// through the absence of an external ref, never as a creation failure.
func (uc *DefaultOrderUsecase) CreateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}
	if input.PaymentMethod != domain.MethodPushPayment && input.PaymentMethod != domain.MethodPayOnDelivery {
		return nil, fmt.Errorf("unknown payment method: %s", input.PaymentMethod)
	}
	if input.PaymentMethod == domain.MethodPushPayment && input.Phone == "" {
		return nil, fmt.Errorf("push payment requires a phone number")
	}

	items := make([]domain.OrderItem, len(input.Items))
	var total float64
	for i, item := range input.Items {
		items[i] = domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
		total += item.Price * float64(item.Quantity)
	}

	now := time.Now()
	order := &domain.Order{
		ID:               uuid.New().String(),
		OrderNumber:      newOrderNumber(),
		UserID:           input.UserID,
		TotalAmount:      total,
		PaymentMethod:    input.PaymentMethod,
		CommercialStatus: domain.CommercialPending,
		PaymentStatus:    domain.PaymentPending,
		TrackingStatus:   domain.TrackingPending,
		Phone:            input.Phone,
		ShippingAddress:  input.ShippingAddress,
		Items:            items,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := uc.OrderRepo.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}

	if uc.Metrics != nil {
		uc.Metrics.OrdersCreatedTotal.WithLabelValues(string(order.PaymentMethod)).Inc()
		uc.Metrics.OrdersCreatedAmountTotal.WithLabelValues(string(order.PaymentMethod)).Add(order.TotalAmount)
	}

	if order.PaymentMethod == domain.MethodPushPayment {
		if _, err := uc.InitiatePayment(ctx, order.ID); err != nil {
			if errors.Is(err, domain.ErrGatewayUnavailable) {
				uc.Log.Warnw("payment initiation failed on creation, order stays pending",
					"order_id", order.ID,
					"error", err,
				)
			} else {
				uc.Log.Errorw("unexpected payment initiation error on creation",
					"order_id", order.ID,
					"error", err,
				)
			}
			return order, nil
		}

		refreshed, err := uc.OrderRepo.GetOrderByID(ctx, order.ID)
		if err == nil {
			return refreshed, nil
		}
	}

	return order, nil
}
