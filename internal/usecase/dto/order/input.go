package orderdto

import "github.com/sokohub/sokohub-order-service/internal/domain"

type CreateOrderInput struct {
	UserID          string
	PaymentMethod   domain.PaymentMethod
	Phone           string
	ShippingAddress string
	Items           []ItemInput
}

type ItemInput struct {
	ProductID string
	Name      string
	Price     float64
	Quantity  int32
}

// UpdateStatusInput is the admin combined status update. Nil fields are
// left untouched.
type UpdateStatusInput struct {
	CommercialStatus *domain.CommercialStatus
	PaymentStatus    *domain.PaymentStatus
	TrackingStatus   *domain.TrackingStatus
}
