package models

import (
	"time"

	"github.com/sokohub/sokohub-order-service/internal/domain"
)

type OrderModel struct {
	ID                 string                  `gorm:"primaryKey;type:uuid"`
	OrderNumber        string                  `gorm:"uniqueIndex;not null"`
	UserID             string                  `gorm:"index;not null"`
	TotalAmount        float64                 `gorm:"not null"`
	PaymentMethod      domain.PaymentMethod    `gorm:"not null"`
	CommercialStatus   domain.CommercialStatus `gorm:"index:idx_commercial_status;not null"`
	PaymentStatus      domain.PaymentStatus    `gorm:"index:idx_payment_status;not null"`
	TrackingStatus     domain.TrackingStatus   `gorm:"not null"`
	ExternalPaymentRef string                  `gorm:"index:idx_external_ref"`
	RefundRequested    bool
	RefundReason       string
	Phone              string
	ShippingAddress    string
	Items              []OrderItemModel `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	CreatedAt          time.Time        `gorm:"index:idx_created_at"`
	UpdatedAt          time.Time
}

func (OrderModel) TableName() string {
	return "order_models"
}

type OrderItemModel struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   string `gorm:"type:uuid;index;not null"`
	ProductID string `gorm:"not null"`
	Name      string
	Price     float64 `gorm:"not null"`
	Quantity  int32   `gorm:"not null"`
}

func (OrderItemModel) TableName() string {
	return "order_item_models"
}
