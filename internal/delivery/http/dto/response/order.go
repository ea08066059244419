package response

import (
	"time"

	"github.com/sokohub/sokohub-order-service/internal/domain"
)

type Order struct {
	ID                 string      `json:"id"`
	OrderNumber        string      `json:"order_number"`
	UserID             string      `json:"user_id"`
	TotalAmount        float64     `json:"total_amount"`
	PaymentMethod      string      `json:"payment_method"`
	CommercialStatus   string      `json:"commercial_status"`
	PaymentStatus      string      `json:"payment_status"`
	TrackingStatus     string      `json:"tracking_status"`
	ExternalPaymentRef string      `json:"external_payment_ref,omitempty"`
	RefundRequested    bool        `json:"refund_requested"`
	RefundReason       string      `json:"refund_reason,omitempty"`
	ShippingAddress    string      `json:"shipping_address,omitempty"`
	Items              []OrderItem `json:"items"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int32   `json:"quantity"`
}

type InitiatePayment struct {
	PromptHandle string `json:"prompt_handle"`
}

type PaymentDisposition struct {
	ExternalRef   string `json:"external_ref"`
	Succeeded     bool   `json:"succeeded"`
	Pending       bool   `json:"pending"`
	SettlementRef string `json:"settlement_ref,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

type Error struct {
	Error string `json:"error"`
}

func FromDomainOrder(order *domain.Order) *Order {
	items := make([]OrderItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	return &Order{
		ID:                 order.ID,
		OrderNumber:        order.OrderNumber,
		UserID:             order.UserID,
		TotalAmount:        order.TotalAmount,
		PaymentMethod:      string(order.PaymentMethod),
		CommercialStatus:   string(order.CommercialStatus),
		PaymentStatus:      string(order.PaymentStatus),
		TrackingStatus:     string(order.TrackingStatus),
		ExternalPaymentRef: order.ExternalPaymentRef,
		RefundRequested:    order.RefundRequested,
		RefundReason:       order.RefundReason,
		ShippingAddress:    order.ShippingAddress,
		Items:              items,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
	}
}
