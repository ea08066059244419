package usecase

import (
	"context"

	"github.com/sokohub/sokohub-order-service/internal/domain"
)

func (uc *DefaultOrderUsecase) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	return uc.OrderRepo.GetOrderByID(ctx, orderID)
}

func (uc *DefaultOrderUsecase) GetOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	return uc.OrderRepo.GetOrdersByUserID(ctx, userID)
}
