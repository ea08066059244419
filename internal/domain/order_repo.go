package domain

import "context"

// TransitionFunc mutates the freshly-read order in place, or returns an
// error to reject the transition. It runs while the store holds the
// exclusive per-order lock, so the state it sees is the state the write
// lands on.
type TransitionFunc func(order *Order) error

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrderByID(ctx context.Context, orderID string) (*Order, error)
	// GetOrderByExternalRef resolves the order whose external payment ref
	// equals the given correlation token. Returns ErrOrderNotFound when no
	// order carries the token.
	GetOrderByExternalRef(ctx context.Context, externalRef string) (*Order, error)
	GetOrdersByUserID(ctx context.Context, userID string) ([]*Order, error)

	// ApplyTransition executes fn under a per-order serialization guarantee:
	// read the current order, let fn decide against that state, persist the
	// result, with no other transition on the same order interleaving.
	// This is the only write path into the status fields.
	ApplyTransition(ctx context.Context, orderID string, fn TransitionFunc) (*Order, error)
}
