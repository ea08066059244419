package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sokohub/sokohub-order-service/internal/domain"
)

// OrderRepository is the single-node deployment of the order store: orders
// live in memory and the per-order serialization guarantee is an in-process
// mutex keyed by order id. Also used by the test suites.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	locks  sync.Map // order id -> *sync.Mutex
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]*domain.Order)}
}

func (r *OrderRepository) orderLock(orderID string) *sync.Mutex {
	lock, _ := r.locks.LoadOrStore(orderID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func clone(order *domain.Order) *domain.Order {
	copied := *order
	copied.Items = append([]domain.OrderItem(nil), order.Items...)
	return &copied
}

func (r *OrderRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = clone(order)
	return nil
}

func (r *OrderRepository) GetOrderByID(_ context.Context, orderID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return clone(order), nil
}

func (r *OrderRepository) GetOrderByExternalRef(_ context.Context, externalRef string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, order := range r.orders {
		if order.ExternalPaymentRef == externalRef && externalRef != "" {
			return clone(order), nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *OrderRepository) GetOrdersByUserID(_ context.Context, userID string) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var orders []*domain.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			orders = append(orders, clone(order))
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// ApplyTransition holds the order's mutex across read-decide-write, so two
// concurrent transitions on the same order always observe each other.
func (r *OrderRepository) ApplyTransition(_ context.Context, orderID string, fn domain.TransitionFunc) (*domain.Order, error) {
	lock := r.orderLock(orderID)
	lock.Lock()
	defer lock.Unlock()

	r.mu.RLock()
	stored, ok := r.orders[orderID]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrOrderNotFound
	}

	order := clone(stored)
	if err := fn(order); err != nil {
		return nil, err
	}
	order.UpdatedAt = time.Now()

	r.mu.Lock()
	r.orders[orderID] = clone(order)
	r.mu.Unlock()

	return order, nil
}
