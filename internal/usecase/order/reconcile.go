package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/sokohub/sokohub-order-service/internal/domain"
)

const reasonMissingSettlementRef = "missing settlement reference"

// reconcile is the authoritative transition table. It is evaluated against
// the order as freshly read under the per-order lock, mutates the order in
// place and reports whether anything changed. Duplicate gateway outcomes
// are absorbed by state comparison, not by an event-dedup ledger: applying
// an outcome that changes nothing is a safe no-op.
func reconcile(order *domain.Order, origin domain.Origin, outcome *domain.SettlementOutcome) (bool, error) {
	switch origin {
	case domain.OriginCallback, domain.OriginQuery:
		return reconcileGatewayOutcome(order, outcome), nil

	case domain.OriginAdminMarkComplete:
		if order.PaymentStatus == domain.PaymentCompleted || order.PaymentStatus == domain.PaymentRefunded {
			return false, nil
		}
		order.PaymentStatus = domain.PaymentCompleted
		if order.CommercialStatus == domain.CommercialPending {
			order.CommercialStatus = domain.CommercialPaid
		}
		return true, nil

	case domain.OriginAdminMarkFailed:
		// A completed payment is never downgraded; the late admin override
		// observes the terminal state and backs off.
		if order.PaymentStatus != domain.PaymentPending {
			return false, nil
		}
		order.PaymentStatus = domain.PaymentFailed
		return true, nil

	case domain.OriginCancelRequest:
		if order.CommercialStatus != domain.CommercialPending {
			return false, domain.ErrCancelNotPending
		}
		order.CommercialStatus = domain.CommercialCanceled
		return true, nil

	case domain.OriginRefundRequest:
		if order.PaymentStatus != domain.PaymentCompleted {
			return false, domain.ErrRefundNotCompleted
		}
		changed := !order.RefundRequested || order.RefundReason != outcome.ReasonText
		order.RefundRequested = true
		order.RefundReason = outcome.ReasonText
		return changed, nil

	default:
		return false, fmt.Errorf("unknown transition origin: %s", origin)
	}
}

func reconcileGatewayOutcome(order *domain.Order, outcome *domain.SettlementOutcome) bool {
	if outcome.Pending {
		return false
	}

	// COMPLETED and REFUNDED are terminal for gateway outcomes; only a
	// refund request may change payment semantics further.
	if order.PaymentStatus == domain.PaymentCompleted || order.PaymentStatus == domain.PaymentRefunded {
		return false
	}

	if !outcome.Succeeded {
		// A late genuine success still overrides an earlier failure, but
		// never the other way around, so FAILED absorbs repeated failures.
		if order.PaymentStatus != domain.PaymentPending {
			return false
		}
		order.PaymentStatus = domain.PaymentFailed
		return true
	}

	// A success without a settlement receipt is not trusted.
	if outcome.SettlementRef == "" {
		outcome.ReasonText = reasonMissingSettlementRef
		if order.PaymentStatus == domain.PaymentFailed {
			return false
		}
		order.PaymentStatus = domain.PaymentFailed
		return true
	}

	order.PaymentStatus = domain.PaymentCompleted
	// The prompt handle is replaced by the settlement receipt; reaching
	// here implies payment was not completed yet, so no receipt is ever
	// overwritten.
	order.ExternalPaymentRef = outcome.SettlementRef
	// The payment axis settles regardless of the commercial axis; an order
	// canceled before a late settlement stays canceled commercially.
	if order.CommercialStatus == domain.CommercialPending {
		order.CommercialStatus = domain.CommercialPaid
	}
	return true
}

// applySettlement runs the transition table under the store's per-order
// lock and fires events and metrics only when something actually changed.
func (uc *DefaultOrderUsecase) applySettlement(ctx context.Context, orderID string, origin domain.Origin, outcome *domain.SettlementOutcome) (*domain.Order, error) {
	var changed bool
	order, err := uc.OrderRepo.ApplyTransition(ctx, orderID, func(order *domain.Order) error {
		var err error
		changed, err = reconcile(order, origin, outcome)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		uc.recordTransition(order, origin, outcome)
	}

	return order, nil
}

// SettleByExternalRef resolves the order a gateway outcome refers to and
// applies it. Callers decide what an unknown correlation token means; for
// the webhook it is logged and acknowledged.
func (uc *DefaultOrderUsecase) SettleByExternalRef(ctx context.Context, origin domain.Origin, outcome *domain.SettlementOutcome) (*domain.Order, error) {
	order, err := uc.OrderRepo.GetOrderByExternalRef(ctx, outcome.ExternalRef)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, domain.ErrUnknownCorrelation
		}
		return nil, err
	}

	return uc.applySettlement(ctx, order.ID, origin, outcome)
}
