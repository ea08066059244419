package usecase

import (
	"testing"

	"github.com/sokohub/sokohub-order-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingOrder() *domain.Order {
	return &domain.Order{
		ID:               "order-1",
		OrderNumber:      "SO-TEST00001",
		UserID:           "user-1",
		TotalAmount:      1500,
		PaymentMethod:    domain.MethodPushPayment,
		CommercialStatus: domain.CommercialPending,
		PaymentStatus:    domain.PaymentPending,
		TrackingStatus:   domain.TrackingPending,
	}
}

func success(ref string) *domain.SettlementOutcome {
	return &domain.SettlementOutcome{ExternalRef: "H1", Succeeded: true, SettlementRef: ref}
}

func failure(reason string) *domain.SettlementOutcome {
	return &domain.SettlementOutcome{ExternalRef: "H1", Succeeded: false, ReasonText: reason}
}

func TestReconcileTransitionTable(t *testing.T) {
	testCases := []struct {
		name            string
		prepare         func(order *domain.Order)
		origin          domain.Origin
		outcome         *domain.SettlementOutcome
		wantChanged     bool
		wantErr         error
		wantPayment     domain.PaymentStatus
		wantCommercial  domain.CommercialStatus
		wantExternalRef string
	}{
		{
			name:            "pending callback success settles and marks paid",
			origin:          domain.OriginCallback,
			outcome:         success("R1"),
			wantChanged:     true,
			wantPayment:     domain.PaymentCompleted,
			wantCommercial:  domain.CommercialPaid,
			wantExternalRef: "R1",
		},
		{
			name:           "pending query success settles and marks paid",
			origin:         domain.OriginQuery,
			outcome:        success("R1"),
			wantChanged:    true,
			wantPayment:    domain.PaymentCompleted,
			wantCommercial: domain.CommercialPaid,
		},
		{
			name:           "pending callback failure fails payment only",
			origin:         domain.OriginCallback,
			outcome:        failure("Request cancelled by user"),
			wantChanged:    true,
			wantPayment:    domain.PaymentFailed,
			wantCommercial: domain.CommercialPending,
		},
		{
			name:           "admin mark complete from pending",
			origin:         domain.OriginAdminMarkComplete,
			wantChanged:    true,
			wantPayment:    domain.PaymentCompleted,
			wantCommercial: domain.CommercialPaid,
		},
		{
			name:           "admin mark failed from pending",
			origin:         domain.OriginAdminMarkFailed,
			wantChanged:    true,
			wantPayment:    domain.PaymentFailed,
			wantCommercial: domain.CommercialPending,
		},
		{
			name: "duplicate callback on completed payment is a no-op",
			prepare: func(order *domain.Order) {
				order.PaymentStatus = domain.PaymentCompleted
				order.CommercialStatus = domain.CommercialPaid
				order.ExternalPaymentRef = "R1"
			},
			origin:          domain.OriginCallback,
			outcome:         success("R1"),
			wantChanged:     false,
			wantPayment:     domain.PaymentCompleted,
			wantCommercial:  domain.CommercialPaid,
			wantExternalRef: "R1",
		},
		{
			name: "failure never downgrades a completed payment",
			prepare: func(order *domain.Order) {
				order.PaymentStatus = domain.PaymentCompleted
				order.CommercialStatus = domain.CommercialPaid
				order.ExternalPaymentRef = "R1"
			},
			origin:          domain.OriginQuery,
			outcome:         failure("DS timeout"),
			wantChanged:     false,
			wantPayment:     domain.PaymentCompleted,
			wantCommercial:  domain.CommercialPaid,
			wantExternalRef: "R1",
		},
		{
			name: "late success overrides earlier failure",
			prepare: func(order *domain.Order) {
				order.PaymentStatus = domain.PaymentFailed
			},
			origin:          domain.OriginCallback,
			outcome:         success("R2"),
			wantChanged:     true,
			wantPayment:     domain.PaymentCompleted,
			wantCommercial:  domain.CommercialPaid,
			wantExternalRef: "R2",
		},
		{
			name: "repeated failure on failed payment is a no-op",
			prepare: func(order *domain.Order) {
				order.PaymentStatus = domain.PaymentFailed
			},
			origin:         domain.OriginCallback,
			outcome:        failure("again"),
			wantChanged:    false,
			wantPayment:    domain.PaymentFailed,
			wantCommercial: domain.CommercialPending,
		},
		{
			name:           "success without settlement ref is recorded as failed",
			origin:         domain.OriginCallback,
			outcome:        success(""),
			wantChanged:    true,
			wantPayment:    domain.PaymentFailed,
			wantCommercial: domain.CommercialPending,
		},
		{
			name:           "pending disposition changes nothing",
			origin:         domain.OriginQuery,
			outcome:        &domain.SettlementOutcome{ExternalRef: "H1", Pending: true},
			wantChanged:    false,
			wantPayment:    domain.PaymentPending,
			wantCommercial: domain.CommercialPending,
		},
		{
			name:           "cancel request on pending order",
			origin:         domain.OriginCancelRequest,
			wantChanged:    true,
			wantPayment:    domain.PaymentPending,
			wantCommercial: domain.CommercialCanceled,
		},
		{
			name: "cancel request on paid order is rejected",
			prepare: func(order *domain.Order) {
				order.CommercialStatus = domain.CommercialPaid
				order.PaymentStatus = domain.PaymentCompleted
			},
			origin:         domain.OriginCancelRequest,
			wantErr:        domain.ErrCancelNotPending,
			wantPayment:    domain.PaymentCompleted,
			wantCommercial: domain.CommercialPaid,
		},
		{
			name: "cancel request on canceled order is rejected",
			prepare: func(order *domain.Order) {
				order.CommercialStatus = domain.CommercialCanceled
			},
			origin:         domain.OriginCancelRequest,
			wantErr:        domain.ErrCancelNotPending,
			wantPayment:    domain.PaymentPending,
			wantCommercial: domain.CommercialCanceled,
		},
		{
			name: "refund request on completed payment sets the flag",
			prepare: func(order *domain.Order) {
				order.PaymentStatus = domain.PaymentCompleted
				order.CommercialStatus = domain.CommercialPaid
			},
			origin:         domain.OriginRefundRequest,
			outcome:        &domain.SettlementOutcome{ReasonText: "wrong size"},
			wantChanged:    true,
			wantPayment:    domain.PaymentCompleted,
			wantCommercial: domain.CommercialPaid,
		},
		{
			name:           "refund request on pending payment is rejected",
			origin:         domain.OriginRefundRequest,
			outcome:        &domain.SettlementOutcome{ReasonText: "wrong size"},
			wantErr:        domain.ErrRefundNotCompleted,
			wantPayment:    domain.PaymentPending,
			wantCommercial: domain.CommercialPending,
		},
		{
			name: "admin mark failed on completed payment backs off",
			prepare: func(order *domain.Order) {
				order.PaymentStatus = domain.PaymentCompleted
				order.CommercialStatus = domain.CommercialPaid
			},
			origin:         domain.OriginAdminMarkFailed,
			wantChanged:    false,
			wantPayment:    domain.PaymentCompleted,
			wantCommercial: domain.CommercialPaid,
		},
		{
			name: "late callback success after commercial cancel settles payment axis only",
			prepare: func(order *domain.Order) {
				order.CommercialStatus = domain.CommercialCanceled
			},
			origin:          domain.OriginCallback,
			outcome:         success("R3"),
			wantChanged:     true,
			wantPayment:     domain.PaymentCompleted,
			wantCommercial:  domain.CommercialCanceled,
			wantExternalRef: "R3",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			order := pendingOrder()
			if tc.prepare != nil {
				tc.prepare(order)
			}

			changed, err := reconcile(order, tc.origin, tc.outcome)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.wantChanged, changed)
			}
			assert.Equal(t, tc.wantPayment, order.PaymentStatus)
			assert.Equal(t, tc.wantCommercial, order.CommercialStatus)
			if tc.wantExternalRef != "" {
				assert.Equal(t, tc.wantExternalRef, order.ExternalPaymentRef)
			}
		})
	}
}

func TestReconcileRefundIdempotent(t *testing.T) {
	order := pendingOrder()
	order.PaymentStatus = domain.PaymentCompleted
	order.CommercialStatus = domain.CommercialPaid

	changed, err := reconcile(order, domain.OriginRefundRequest, &domain.SettlementOutcome{ReasonText: "damaged"})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, order.RefundRequested)
	assert.Equal(t, "damaged", order.RefundReason)

	changed, err = reconcile(order, domain.OriginRefundRequest, &domain.SettlementOutcome{ReasonText: "damaged"})
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, order.RefundRequested)
}

func TestReconcileIdempotentSettlement(t *testing.T) {
	first := pendingOrder()
	_, err := reconcile(first, domain.OriginCallback, success("R1"))
	require.NoError(t, err)

	twice := pendingOrder()
	_, err = reconcile(twice, domain.OriginCallback, success("R1"))
	require.NoError(t, err)
	_, err = reconcile(twice, domain.OriginQuery, success("R1"))
	require.NoError(t, err)

	assert.Equal(t, first.PaymentStatus, twice.PaymentStatus)
	assert.Equal(t, first.CommercialStatus, twice.CommercialStatus)
	assert.Equal(t, first.ExternalPaymentRef, twice.ExternalPaymentRef)
}
