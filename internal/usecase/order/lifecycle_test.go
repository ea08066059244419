package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/sokohub/sokohub-order-service/internal/domain"
	"github.com/sokohub/sokohub-order-service/internal/infrastructure/inmem"
	publisher "github.com/sokohub/sokohub-order-service/internal/infrastructure/kafka"
	orderdto "github.com/sokohub/sokohub-order-service/internal/usecase/dto/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeGateway struct {
	mu           sync.Mutex
	promptHandle string
	promptErr    error
	queryOutcome *domain.SettlementOutcome
	queryErr     error
	promptCalls  int
}

func (g *fakeGateway) RequestPrompt(_ context.Context, _ string, _ float64, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.promptCalls++
	if g.promptErr != nil {
		return "", g.promptErr
	}
	return g.promptHandle, nil
}

func (g *fakeGateway) QueryStatus(_ context.Context, _ string) (*domain.SettlementOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.queryErr != nil {
		return nil, g.queryErr
	}
	return g.queryOutcome, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publisher.OrderEvent
}

func (p *fakePublisher) PublishOrderEvent(event publisher.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func newTestUsecase(gateway *fakeGateway) (*DefaultOrderUsecase, *inmem.OrderRepository, *fakePublisher) {
	repo := inmem.NewOrderRepository()
	events := &fakePublisher{}
	uc := NewDefaultOrderUsecase(repo, gateway, events, nil, zap.NewNop().Sugar())
	return uc, repo, events
}

func createPushOrder(t *testing.T, uc *DefaultOrderUsecase) *domain.Order {
	t.Helper()
	order, err := uc.CreateOrder(context.Background(), &orderdto.CreateOrderInput{
		UserID:        "user-1",
		PaymentMethod: domain.MethodPushPayment,
		Phone:         "254700000001",
		Items: []orderdto.ItemInput{
			{ProductID: "p1", Name: "Ceramic mug", Price: 500, Quantity: 3},
		},
	})
	require.NoError(t, err)
	return order
}

func callbackOutcome(handle, receipt, reason string, succeeded bool) *domain.SettlementOutcome {
	return &domain.SettlementOutcome{
		ExternalRef:   handle,
		Succeeded:     succeeded,
		SettlementRef: receipt,
		ReasonText:    reason,
	}
}

func TestScenarioSuccessfulSettlement(t *testing.T) {
	gateway := &fakeGateway{promptHandle: "H1"}
	uc, _, _ := newTestUsecase(gateway)

	order := createPushOrder(t, uc)
	require.Equal(t, 1500.0, order.TotalAmount)
	require.Equal(t, "H1", order.ExternalPaymentRef)

	settled, err := uc.SettleByExternalRef(context.Background(), domain.OriginCallback,
		callbackOutcome("H1", "R1", "Success", true))
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentCompleted, settled.PaymentStatus)
	assert.Equal(t, domain.CommercialPaid, settled.CommercialStatus)
	assert.Equal(t, "R1", settled.ExternalPaymentRef)
}

func TestScenarioUserCancelledPrompt(t *testing.T) {
	gateway := &fakeGateway{promptHandle: "H1"}
	uc, _, _ := newTestUsecase(gateway)

	order := createPushOrder(t, uc)

	settled, err := uc.SettleByExternalRef(context.Background(), domain.OriginCallback,
		callbackOutcome("H1", "", "Request cancelled by user", false))
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentFailed, settled.PaymentStatus)
	assert.Equal(t, domain.CommercialPending, settled.CommercialStatus)
	assert.Equal(t, order.ID, settled.ID)
}

func TestScenarioLateSuccessAfterFailure(t *testing.T) {
	gateway := &fakeGateway{promptHandle: "H1"}
	uc, _, _ := newTestUsecase(gateway)

	createPushOrder(t, uc)

	_, err := uc.SettleByExternalRef(context.Background(), domain.OriginCallback,
		callbackOutcome("H1", "", "Request cancelled by user", false))
	require.NoError(t, err)

	settled, err := uc.SettleByExternalRef(context.Background(), domain.OriginCallback,
		callbackOutcome("H1", "R1", "Success", true))
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentCompleted, settled.PaymentStatus)
	assert.Equal(t, domain.CommercialPaid, settled.CommercialStatus)
}

func TestScenarioStaleCallbackAfterCancel(t *testing.T) {
	gateway := &fakeGateway{promptHandle: "H1"}
	uc, _, _ := newTestUsecase(gateway)

	order := createPushOrder(t, uc)

	canceled, err := uc.CancelOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, domain.CommercialCanceled, canceled.CommercialStatus)

	// The payment and commercial axes are independent: the late settlement
	// still completes the payment axis while the order stays canceled.
	settled, err := uc.SettleByExternalRef(context.Background(), domain.OriginCallback,
		callbackOutcome("H1", "R1", "Success", true))
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentCompleted, settled.PaymentStatus)
	assert.Equal(t, domain.CommercialCanceled, settled.CommercialStatus)
}

func TestCreateOrderSurvivesGatewayOutage(t *testing.T) {
	gateway := &fakeGateway{promptErr: domain.ErrGatewayUnavailable}
	uc, _, _ := newTestUsecase(gateway)

	order := createPushOrder(t, uc)

	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
	assert.Empty(t, order.ExternalPaymentRef)
}

func TestInitiatePaymentRejectsPayOnDelivery(t *testing.T) {
	gateway := &fakeGateway{promptHandle: "H1"}
	uc, _, _ := newTestUsecase(gateway)

	order, err := uc.CreateOrder(context.Background(), &orderdto.CreateOrderInput{
		UserID:          "user-1",
		PaymentMethod:   domain.MethodPayOnDelivery,
		ShippingAddress: "12 Biashara St",
		Items: []orderdto.ItemInput{
			{ProductID: "p1", Price: 100, Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, gateway.promptCalls)

	_, err = uc.InitiatePayment(context.Background(), order.ID)
	assert.ErrorIs(t, err, domain.ErrNotPushPayment)
}

func TestQueryPaymentPendingDispositionChangesNothing(t *testing.T) {
	gateway := &fakeGateway{
		promptHandle: "H1",
		queryOutcome: &domain.SettlementOutcome{ExternalRef: "H1", Pending: true, ReasonText: "being processed"},
	}
	uc, repo, _ := newTestUsecase(gateway)

	order := createPushOrder(t, uc)

	outcome, err := uc.QueryPayment(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, outcome.Pending)

	stored, err := repo.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, stored.PaymentStatus)
}

func TestQueryPaymentAppliesTerminalOutcome(t *testing.T) {
	gateway := &fakeGateway{
		promptHandle: "H1",
		queryOutcome: callbackOutcome("H1", "R9", "Success", true),
	}
	uc, repo, _ := newTestUsecase(gateway)

	order := createPushOrder(t, uc)

	_, err := uc.QueryPayment(context.Background(), order.ID)
	require.NoError(t, err)

	stored, err := repo.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, stored.PaymentStatus)
	assert.Equal(t, domain.CommercialPaid, stored.CommercialStatus)
	assert.Equal(t, "R9", stored.ExternalPaymentRef)
}

func TestUnknownCorrelationTokenIsSurfaced(t *testing.T) {
	gateway := &fakeGateway{promptHandle: "H1"}
	uc, _, _ := newTestUsecase(gateway)

	createPushOrder(t, uc)

	_, err := uc.SettleByExternalRef(context.Background(), domain.OriginCallback,
		callbackOutcome("STALE", "R1", "Success", true))
	assert.ErrorIs(t, err, domain.ErrUnknownCorrelation)
}

func TestDoubleRefundRequestIsIdempotent(t *testing.T) {
	gateway := &fakeGateway{promptHandle: "H1"}
	uc, _, _ := newTestUsecase(gateway)

	order := createPushOrder(t, uc)
	_, err := uc.SettleByExternalRef(context.Background(), domain.OriginCallback,
		callbackOutcome("H1", "R1", "Success", true))
	require.NoError(t, err)

	first, err := uc.RequestRefund(context.Background(), order.ID, "damaged")
	require.NoError(t, err)
	assert.True(t, first.RefundRequested)

	second, err := uc.RequestRefund(context.Background(), order.ID, "damaged")
	require.NoError(t, err)
	assert.True(t, second.RefundRequested)
	assert.Equal(t, domain.PaymentCompleted, second.PaymentStatus)
}

// TestConcurrentCallbackAndAdminOverride drives the central race: a gateway
// success callback and an admin mark-failed hitting the same order
// concurrently. Whoever wins the per-order lock, the success is never
// downgraded, so the terminal state is deterministic.
func TestConcurrentCallbackAndAdminOverride(t *testing.T) {
	for i := 0; i < 50; i++ {
		gateway := &fakeGateway{promptHandle: "H1"}
		uc, repo, _ := newTestUsecase(gateway)
		order := createPushOrder(t, uc)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = uc.SettleByExternalRef(context.Background(), domain.OriginCallback,
				callbackOutcome("H1", "R1", "Success", true))
		}()
		go func() {
			defer wg.Done()
			_, _ = uc.MarkPaymentFailed(context.Background(), order.ID)
		}()
		wg.Wait()

		stored, err := repo.GetOrderByID(context.Background(), order.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentCompleted, stored.PaymentStatus)
		assert.Equal(t, domain.CommercialPaid, stored.CommercialStatus)
		assert.Equal(t, "R1", stored.ExternalPaymentRef)
	}
}

func TestDuplicateCallbacksPublishSingleEvent(t *testing.T) {
	gateway := &fakeGateway{promptHandle: "H1"}
	uc, _, events := newTestUsecase(gateway)

	order := createPushOrder(t, uc)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = uc.SettleByExternalRef(context.Background(), domain.OriginCallback,
				callbackOutcome("H1", "R1", "Success", true))
		}()
	}
	wg.Wait()

	stored, err := uc.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, stored.PaymentStatus)

	// Only the transition that actually changed state publishes. Flush
	// waits out the delivery goroutines, so the count is exact.
	uc.Flush()
	assert.Equal(t, 1, events.count())
}

func TestStatusUpdateRejectsCommercialRegression(t *testing.T) {
	gateway := &fakeGateway{promptHandle: "H1"}
	uc, _, _ := newTestUsecase(gateway)

	order := createPushOrder(t, uc)
	_, err := uc.SettleByExternalRef(context.Background(), domain.OriginCallback,
		callbackOutcome("H1", "R1", "Success", true))
	require.NoError(t, err)

	pending := domain.CommercialPending
	_, err = uc.UpdateOrderStatus(context.Background(), order.ID,
		&orderdto.UpdateStatusInput{CommercialStatus: &pending})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	stored, err := uc.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CommercialPaid, stored.CommercialStatus)
	assert.Equal(t, domain.PaymentCompleted, stored.PaymentStatus)

	delivered := domain.CommercialDelivered
	_, err = uc.UpdateOrderStatus(context.Background(), order.ID,
		&orderdto.UpdateStatusInput{CommercialStatus: &delivered})
	require.NoError(t, err)

	_, err = uc.UpdateOrderStatus(context.Background(), order.ID,
		&orderdto.UpdateStatusInput{CommercialStatus: &pending})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestStatusUpdateCannotUncancelOrder(t *testing.T) {
	gateway := &fakeGateway{promptHandle: "H1"}
	uc, _, _ := newTestUsecase(gateway)

	order := createPushOrder(t, uc)
	_, err := uc.CancelOrder(context.Background(), order.ID)
	require.NoError(t, err)

	for _, target := range []domain.CommercialStatus{
		domain.CommercialPending,
		domain.CommercialPaid,
		domain.CommercialDelivered,
	} {
		_, err = uc.UpdateOrderStatus(context.Background(), order.ID,
			&orderdto.UpdateStatusInput{CommercialStatus: &target})
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	}

	stored, err := uc.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CommercialCanceled, stored.CommercialStatus)
}

func TestStatusUpdateRefundedRequiresAcceptedRequest(t *testing.T) {
	gateway := &fakeGateway{promptHandle: "H1"}
	uc, _, _ := newTestUsecase(gateway)

	order := createPushOrder(t, uc)
	refunded := domain.PaymentRefunded

	// Not completed yet: no refund possible.
	_, err := uc.UpdateOrderStatus(context.Background(), order.ID,
		&orderdto.UpdateStatusInput{PaymentStatus: &refunded})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = uc.SettleByExternalRef(context.Background(), domain.OriginCallback,
		callbackOutcome("H1", "R1", "Success", true))
	require.NoError(t, err)

	// Completed but no refund request accepted yet.
	_, err = uc.UpdateOrderStatus(context.Background(), order.ID,
		&orderdto.UpdateStatusInput{PaymentStatus: &refunded})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = uc.RequestRefund(context.Background(), order.ID, "damaged")
	require.NoError(t, err)

	updated, err := uc.UpdateOrderStatus(context.Background(), order.ID,
		&orderdto.UpdateStatusInput{PaymentStatus: &refunded})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRefunded, updated.PaymentStatus)

	// Repeating the write is a no-op, not an error.
	again, err := uc.UpdateOrderStatus(context.Background(), order.ID,
		&orderdto.UpdateStatusInput{PaymentStatus: &refunded})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentRefunded, again.PaymentStatus)
}
