package usecase

import (
	"context"
	"time"

	"github.com/sokohub/sokohub-order-service/internal/domain"
)

// InitiatePayment asks the gateway to push a payment prompt to the payer's
// device and records the returned prompt handle on the order. The gateway
// call runs outside the per-order lock; only the read-decide-write of the
// handle happens inside it.
func (uc *DefaultOrderUsecase) InitiatePayment(ctx context.Context, orderID string) (string, error) {
	order, err := uc.OrderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return "", err
	}

	if order.PaymentMethod != domain.MethodPushPayment {
		return "", domain.ErrNotPushPayment
	}
	if order.PaymentStatus == domain.PaymentCompleted || order.PaymentStatus == domain.PaymentRefunded {
		return "", domain.ErrInvalidStatus
	}

	start := time.Now()
	promptHandle, err := uc.Gateway.RequestPrompt(ctx, order.Phone, order.TotalAmount, order.OrderNumber)
	uc.observeGateway("request_prompt", start)
	if err != nil {
		return "", err
	}

	_, err = uc.OrderRepo.ApplyTransition(ctx, orderID, func(order *domain.Order) error {
		// Payment may have settled between the read and the prompt coming
		// back; a settlement receipt is never overwritten by a handle.
		if order.PaymentStatus == domain.PaymentCompleted || order.PaymentStatus == domain.PaymentRefunded {
			return domain.ErrInvalidStatus
		}
		order.ExternalPaymentRef = promptHandle
		return nil
	})
	if err != nil {
		return "", err
	}

	uc.Log.Infow("payment prompt issued",
		"order_id", orderID,
		"prompt_handle", promptHandle,
	)

	return promptHandle, nil
}

// QueryPayment asks the gateway for the current disposition of the order's
// prompt and feeds a terminal outcome through the reconciler. A
// still-pending disposition is returned as-is and changes nothing.
func (uc *DefaultOrderUsecase) QueryPayment(ctx context.Context, orderID string) (*domain.SettlementOutcome, error) {
	order, err := uc.OrderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.PaymentMethod != domain.MethodPushPayment {
		return nil, domain.ErrNotPushPayment
	}
	if order.ExternalPaymentRef == "" {
		return nil, domain.ErrPaymentNotInitiated
	}

	// Once settled, the external ref is a receipt, not a queryable prompt
	// handle; answer from local state.
	if order.PaymentStatus == domain.PaymentCompleted || order.PaymentStatus == domain.PaymentRefunded {
		return &domain.SettlementOutcome{
			ExternalRef:   order.ExternalPaymentRef,
			Succeeded:     true,
			SettlementRef: order.ExternalPaymentRef,
			ReasonText:    "payment already settled",
		}, nil
	}

	start := time.Now()
	outcome, err := uc.Gateway.QueryStatus(ctx, order.ExternalPaymentRef)
	uc.observeGateway("query_status", start)
	if err != nil {
		return nil, err
	}

	if outcome.Pending {
		return outcome, nil
	}

	if _, err := uc.applySettlement(ctx, orderID, domain.OriginQuery, outcome); err != nil {
		return nil, err
	}

	return outcome, nil
}

func (uc *DefaultOrderUsecase) observeGateway(operation string, start time.Time) {
	if uc.Metrics != nil {
		uc.Metrics.GatewayRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
