package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sokohub/sokohub-order-service/internal/domain"
	"github.com/sokohub/sokohub-order-service/internal/infrastructure/postgres/mappers"
	"github.com/sokohub/sokohub-order-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

func (r *DefaultOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	orderModel := mappers.ToGORMOrder(order)
	if err := r.DB.WithContext(ctx).Create(orderModel).Error; err != nil {
		return err
	}
	return nil
}

func (r *DefaultOrderRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.WithContext(ctx).Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	return mappers.ToDomainOrder(&order), nil
}

func (r *DefaultOrderRepository) GetOrderByExternalRef(ctx context.Context, externalRef string) (*domain.Order, error) {
	var order models.OrderModel
	if err := r.DB.WithContext(ctx).Preload("Items").First(&order, "external_payment_ref = ?", externalRef).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}

	return mappers.ToDomainOrder(&order), nil
}

func (r *DefaultOrderRepository) GetOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	var orderModels []models.OrderModel
	if err := r.DB.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, len(orderModels))
	for i, orderModel := range orderModels {
		orders[i] = mappers.ToDomainOrder(&orderModel)
	}

	return orders, nil
}

// ApplyTransition runs fn against the row locked with SELECT ... FOR UPDATE,
// so the decision is always made against the state the write lands on.
// A rejection from fn rolls the transaction back untouched.
func (r *DefaultOrderRepository) ApplyTransition(ctx context.Context, orderID string, fn domain.TransitionFunc) (*domain.Order, error) {
	var result *domain.Order

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orderModel models.OrderModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&orderModel, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrderNotFound
			}
			return err
		}
		if err := tx.Model(&orderModel).Association("Items").Find(&orderModel.Items); err != nil {
			return err
		}

		order := mappers.ToDomainOrder(&orderModel)
		if err := fn(order); err != nil {
			return err
		}
		order.UpdatedAt = time.Now()

		updated := mappers.ToGORMOrder(order)
		if err := tx.Omit("Items", "CreatedAt").Save(updated).Error; err != nil {
			return err
		}

		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
