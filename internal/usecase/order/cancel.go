package usecase

import (
	"context"

	"github.com/sokohub/sokohub-order-service/internal/domain"
)

// CancelOrder cancels the commercial axis. Only pending orders can be
// canceled; everything else is rejected with no state change. The payment
// axis is untouched: a late settlement callback for a canceled order still
// completes the payment axis.
func (uc *DefaultOrderUsecase) CancelOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return uc.applySettlement(ctx, orderID, domain.OriginCancelRequest, nil)
}

// RequestRefund flags a completed payment for refund. Repeating the request
// is idempotent; requesting it on anything but a completed payment is
// rejected.
func (uc *DefaultOrderUsecase) RequestRefund(ctx context.Context, orderID, reason string) (*domain.Order, error) {
	return uc.applySettlement(ctx, orderID, domain.OriginRefundRequest, &domain.SettlementOutcome{
		ReasonText: reason,
	})
}
