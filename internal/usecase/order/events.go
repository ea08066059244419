package usecase

import (
	"github.com/sokohub/sokohub-order-service/internal/domain"
	publisher "github.com/sokohub/sokohub-order-service/internal/infrastructure/kafka"
)

// recordTransition publishes the order event and bumps metrics after the
// per-order lock has been released. Failures here are logged, never
// propagated: the settlement itself is already durable.
func (uc *DefaultOrderUsecase) recordTransition(order *domain.Order, origin domain.Origin, outcome *domain.SettlementOutcome) {
	if uc.Metrics != nil {
		switch {
		case origin == domain.OriginCancelRequest:
			uc.Metrics.OrdersCanceledTotal.Inc()
		case origin == domain.OriginRefundRequest:
			uc.Metrics.RefundRequestsTotal.Inc()
		case order.PaymentStatus == domain.PaymentCompleted:
			uc.Metrics.PaymentsCompletedTotal.WithLabelValues(string(origin)).Inc()
		case order.PaymentStatus == domain.PaymentFailed:
			uc.Metrics.PaymentsFailedTotal.WithLabelValues(string(origin)).Inc()
		}
	}

	if uc.Publisher == nil {
		return
	}

	event := publisher.OrderEvent{
		OrderID:          order.ID,
		OrderNumber:      order.OrderNumber,
		UserID:           order.UserID,
		Origin:           string(origin),
		CommercialStatus: string(order.CommercialStatus),
		PaymentStatus:    string(order.PaymentStatus),
		TotalAmount:      order.TotalAmount,
	}
	if outcome != nil {
		event.SettlementRef = outcome.SettlementRef
	}

	uc.events.Add(1)
	go func(event publisher.OrderEvent) {
		defer uc.events.Done()
		if err := uc.Publisher.PublishOrderEvent(event); err != nil {
			uc.Log.Errorw("failed to publish order event",
				"order_id", event.OrderID,
				"origin", event.Origin,
				"error", err,
			)
		}
	}(event)
}

// Flush blocks until every event handed off so far has been delivered to
// the publisher. Called on shutdown before the publisher is closed.
func (uc *DefaultOrderUsecase) Flush() {
	uc.events.Wait()
}
