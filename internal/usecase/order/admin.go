package usecase

import (
	"context"
	"fmt"

	"github.com/sokohub/sokohub-order-service/internal/domain"
	orderdto "github.com/sokohub/sokohub-order-service/internal/usecase/dto/order"
)

// MarkPaymentComplete is the operator override asserting the money arrived.
func (uc *DefaultOrderUsecase) MarkPaymentComplete(ctx context.Context, orderID string) (*domain.Order, error) {
	return uc.applySettlement(ctx, orderID, domain.OriginAdminMarkComplete, nil)
}

// MarkPaymentFailed is the operator override asserting the payment is lost.
// A completed payment is never downgraded; the override turns into a no-op.
func (uc *DefaultOrderUsecase) MarkPaymentFailed(ctx context.Context, orderID string) (*domain.Order, error) {
	return uc.applySettlement(ctx, orderID, domain.OriginAdminMarkFailed, nil)
}

// UpdateOrderStatus is the combined operator status update. Payment changes
// are routed through the reconciler's admin origins; commercial and
// tracking changes are validated and applied in the same transition.
func (uc *DefaultOrderUsecase) UpdateOrderStatus(ctx context.Context, orderID string, input *orderdto.UpdateStatusInput) (*domain.Order, error) {
	var changed bool
	var origin domain.Origin

	order, err := uc.OrderRepo.ApplyTransition(ctx, orderID, func(order *domain.Order) error {
		if input.PaymentStatus != nil {
			paymentChanged, paymentOrigin, err := applyAdminPaymentStatus(order, *input.PaymentStatus)
			if err != nil {
				return err
			}
			if paymentChanged {
				changed = true
				origin = paymentOrigin
			}
		}

		if input.CommercialStatus != nil && *input.CommercialStatus != order.CommercialStatus {
			if err := applyAdminCommercialStatus(order, *input.CommercialStatus); err != nil {
				return err
			}
			changed = true
		}

		if input.TrackingStatus != nil && *input.TrackingStatus != order.TrackingStatus {
			switch *input.TrackingStatus {
			case domain.TrackingPending, domain.TrackingConfirmed, domain.TrackingShipped, domain.TrackingDelivered:
			default:
				return domain.ErrInvalidStatus
			}
			order.TrackingStatus = *input.TrackingStatus
			changed = true
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		if origin == "" {
			origin = domain.Origin("ADMIN_STATUS_UPDATE")
		}
		uc.recordTransition(order, origin, nil)
	}

	return order, nil
}

// applyAdminCommercialStatus guards the commercial axis. Canceled and
// delivered are terminal, and no order ever moves back to pending: a
// settled payment must keep a commercial state that accounts for it.
func applyAdminCommercialStatus(order *domain.Order, target domain.CommercialStatus) error {
	switch order.CommercialStatus {
	case domain.CommercialCanceled, domain.CommercialDelivered:
		return fmt.Errorf("%w: commercial status %s is terminal", domain.ErrInvalidStatus, order.CommercialStatus)
	}

	switch target {
	case domain.CommercialCanceled:
		if order.CommercialStatus != domain.CommercialPending {
			return domain.ErrCancelNotPending
		}
	case domain.CommercialPaid, domain.CommercialDelivered:
	case domain.CommercialPending:
		return fmt.Errorf("%w: commercial status cannot move back to pending", domain.ErrInvalidStatus)
	default:
		return domain.ErrInvalidStatus
	}

	order.CommercialStatus = target
	return nil
}

// applyAdminPaymentStatus maps a requested payment status onto the
// reconciler's admin transitions. REFUNDED is the one direct admin write:
// it requires a completed payment with a refund already requested.
func applyAdminPaymentStatus(order *domain.Order, target domain.PaymentStatus) (bool, domain.Origin, error) {
	switch target {
	case domain.PaymentCompleted:
		changed, err := reconcile(order, domain.OriginAdminMarkComplete, nil)
		return changed, domain.OriginAdminMarkComplete, err
	case domain.PaymentFailed:
		changed, err := reconcile(order, domain.OriginAdminMarkFailed, nil)
		return changed, domain.OriginAdminMarkFailed, err
	case domain.PaymentRefunded:
		if order.PaymentStatus == domain.PaymentRefunded {
			return false, domain.OriginRefundRequest, nil
		}
		if order.PaymentStatus != domain.PaymentCompleted || !order.RefundRequested {
			return false, "", fmt.Errorf("%w: refund requires a completed payment with a refund request", domain.ErrInvalidStatus)
		}
		order.PaymentStatus = domain.PaymentRefunded
		return true, domain.OriginRefundRequest, nil
	case domain.PaymentPending:
		return false, "", fmt.Errorf("%w: payment cannot be reset to pending", domain.ErrInvalidStatus)
	default:
		return false, "", domain.ErrInvalidStatus
	}
}
