package mappers

import (
	"github.com/sokohub/sokohub-order-service/internal/domain"
	"github.com/sokohub/sokohub-order-service/internal/infrastructure/postgres/models"
)

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	items := make([]domain.OrderItem, len(model.Items))
	for i, item := range model.Items {
		items[i] = domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	return &domain.Order{
		ID:                 model.ID,
		OrderNumber:        model.OrderNumber,
		UserID:             model.UserID,
		TotalAmount:        model.TotalAmount,
		PaymentMethod:      model.PaymentMethod,
		CommercialStatus:   model.CommercialStatus,
		PaymentStatus:      model.PaymentStatus,
		TrackingStatus:     model.TrackingStatus,
		ExternalPaymentRef: model.ExternalPaymentRef,
		RefundRequested:    model.RefundRequested,
		RefundReason:       model.RefundReason,
		Phone:              model.Phone,
		ShippingAddress:    model.ShippingAddress,
		Items:              items,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

func ToGORMOrder(order *domain.Order) *models.OrderModel {
	items := make([]models.OrderItemModel, len(order.Items))
	for i, item := range order.Items {
		items[i] = models.OrderItemModel{
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	return &models.OrderModel{
		ID:                 order.ID,
		OrderNumber:        order.OrderNumber,
		UserID:             order.UserID,
		TotalAmount:        order.TotalAmount,
		PaymentMethod:      order.PaymentMethod,
		CommercialStatus:   order.CommercialStatus,
		PaymentStatus:      order.PaymentStatus,
		TrackingStatus:     order.TrackingStatus,
		ExternalPaymentRef: order.ExternalPaymentRef,
		RefundRequested:    order.RefundRequested,
		RefundReason:       order.RefundReason,
		Phone:              order.Phone,
		ShippingAddress:    order.ShippingAddress,
		Items:              items,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
	}
}
