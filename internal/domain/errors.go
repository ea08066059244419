package domain

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrMalformedCallback  = errors.New("malformed settlement callback")
	ErrUnknownCorrelation = errors.New("no order matches correlation token")
	ErrAccessDenied       = errors.New("access denied")

	ErrCancelNotPending    = errors.New("only pending orders can be canceled")
	ErrRefundNotCompleted  = errors.New("refund requires a completed payment")
	ErrNotPushPayment      = errors.New("order is not a push-payment order")
	ErrPaymentNotInitiated = errors.New("payment was not initiated for this order")
	ErrInvalidStatus       = errors.New("invalid status value")
)
