package domain

import "context"

// SettlementOutcome is what the gateway ultimately says about a push-payment
// prompt, whether it arrived through the callback or through a status query.
type SettlementOutcome struct {
	ExternalRef   string
	Succeeded     bool
	Pending       bool
	SettlementRef string
	ReasonText    string
}

// Origin identifies who proposed a status transition. The reconciler's
// transition table is keyed on it.
type Origin string

const (
	OriginCallback          Origin = "CALLBACK"
	OriginQuery             Origin = "QUERY"
	OriginAdminMarkComplete Origin = "ADMIN_MARK_COMPLETE"
	OriginAdminMarkFailed   Origin = "ADMIN_MARK_FAILED"
	OriginCancelRequest     Origin = "CANCEL_REQUEST"
	OriginRefundRequest     Origin = "REFUND_REQUEST"
)

// PaymentGateway is the outbound port to the push-payment provider. Both
// calls are blocking network operations and must never run while the
// per-order lock is held.
type PaymentGateway interface {
	// RequestPrompt asks the gateway to display a payment prompt on the
	// payer's device and returns the prompt handle used as correlation
	// token. Network or auth failure surfaces as ErrGatewayUnavailable.
	RequestPrompt(ctx context.Context, phone string, amount float64, orderRef string) (string, error)
	// QueryStatus asks the gateway for the current disposition of a prompt.
	// A still-pending prompt yields an outcome with Pending=true and must
	// not be treated as failure.
	QueryStatus(ctx context.Context, promptHandle string) (*SettlementOutcome, error)
}
