package request

type CreateOrder struct {
	PaymentMethod   string            `json:"payment_method"`
	Phone           string            `json:"phone,omitempty"`
	ShippingAddress string            `json:"shipping_address"`
	Items           []CreateOrderItem `json:"items"`
}

type CreateOrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int32   `json:"quantity"`
}

type RequestRefund struct {
	Reason string `json:"reason"`
}

// UpdateStatus is the operator combined status update; omitted fields are
// left untouched.
type UpdateStatus struct {
	CommercialStatus *string `json:"commercial_status,omitempty"`
	PaymentStatus    *string `json:"payment_status,omitempty"`
	TrackingStatus   *string `json:"tracking_status,omitempty"`
}
