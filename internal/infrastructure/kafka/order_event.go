package publisher

// OrderEvent is published to the order-events topic on every applied
// settlement transition.
type OrderEvent struct {
	OrderID          string  `json:"order_id"`
	OrderNumber      string  `json:"order_number"`
	UserID           string  `json:"user_id"`
	Origin           string  `json:"origin"`
	CommercialStatus string  `json:"commercial_status"`
	PaymentStatus    string  `json:"payment_status"`
	TotalAmount      float64 `json:"total_amount"`
	SettlementRef    string  `json:"settlement_ref,omitempty"`
}
