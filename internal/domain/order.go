package domain

import "time"

type CommercialStatus string

const (
	CommercialPending   CommercialStatus = "PENDING"
	CommercialPaid      CommercialStatus = "PAID"
	CommercialCanceled  CommercialStatus = "CANCELED"
	CommercialDelivered CommercialStatus = "DELIVERED"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

type TrackingStatus string

const (
	TrackingPending   TrackingStatus = "PENDING"
	TrackingConfirmed TrackingStatus = "CONFIRMED"
	TrackingShipped   TrackingStatus = "SHIPPED"
	TrackingDelivered TrackingStatus = "DELIVERED"
)

type PaymentMethod string

const (
	MethodPushPayment   PaymentMethod = "PUSH_PAYMENT"
	MethodPayOnDelivery PaymentMethod = "PAY_ON_DELIVERY"
)

// Order is the aggregate root. The three status axes evolve independently;
// every status write goes through OrderRepository.ApplyTransition.
type Order struct {
	ID               string
	OrderNumber      string
	UserID           string
	TotalAmount      float64
	PaymentMethod    PaymentMethod
	CommercialStatus CommercialStatus
	PaymentStatus    PaymentStatus
	TrackingStatus   TrackingStatus

	// ExternalPaymentRef holds the gateway's handle for an in-flight push
	// payment. It starts as the prompt handle issued by RequestPrompt and is
	// replaced by the settlement receipt once the transaction completes.
	// A receipt is never overwritten.
	ExternalPaymentRef string

	RefundRequested bool
	RefundReason    string

	Phone           string
	ShippingAddress string
	Items           []OrderItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	ProductID string
	Name      string
	Price     float64
	Quantity  int32
}
