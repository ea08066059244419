package usecase

import (
	"context"
	"sync"

	"github.com/sokohub/sokohub-order-service/internal/domain"
	publisher "github.com/sokohub/sokohub-order-service/internal/infrastructure/kafka"
	"github.com/sokohub/sokohub-order-service/internal/infrastructure/metrics"
	orderdto "github.com/sokohub/sokohub-order-service/internal/usecase/dto/order"
	"go.uber.org/zap"
)

type OrderUsecase interface {
	CreateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*domain.Order, error)
	GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error)
	GetOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)

	InitiatePayment(ctx context.Context, orderID string) (string, error)
	QueryPayment(ctx context.Context, orderID string) (*domain.SettlementOutcome, error)
	SettleByExternalRef(ctx context.Context, origin domain.Origin, outcome *domain.SettlementOutcome) (*domain.Order, error)

	MarkPaymentComplete(ctx context.Context, orderID string) (*domain.Order, error)
	MarkPaymentFailed(ctx context.Context, orderID string) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, input *orderdto.UpdateStatusInput) (*domain.Order, error)

	CancelOrder(ctx context.Context, orderID string) (*domain.Order, error)
	RequestRefund(ctx context.Context, orderID, reason string) (*domain.Order, error)
}

// EventPublisher is the slice of the kafka publisher the usecase needs.
type EventPublisher interface {
	PublishOrderEvent(event publisher.OrderEvent) error
}

type DefaultOrderUsecase struct {
	OrderRepo domain.OrderRepository
	Gateway   domain.PaymentGateway
	Publisher EventPublisher
	Metrics   *metrics.OrderMetrics
	Log       *zap.SugaredLogger

	events sync.WaitGroup
}

func NewDefaultOrderUsecase(
	orderRepo domain.OrderRepository,
	gateway domain.PaymentGateway,
	eventPublisher EventPublisher,
	orderMetrics *metrics.OrderMetrics,
	log *zap.SugaredLogger,
) *DefaultOrderUsecase {
	return &DefaultOrderUsecase{
		OrderRepo: orderRepo,
		Gateway:   gateway,
		Publisher: eventPublisher,
		Metrics:   orderMetrics,
		Log:       log,
	}
}
