package repositories

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"logistics/internal/apperrors"
	"logistics/internal/models"
)

// MockOrderRepository is an in-memory implementation of OrderRepository for
// tests and local development.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// GetWithItems returns an order by its ID.
func (r *MockOrderRepository) GetWithItems(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, &apperrors.NotFoundError{Entity: "order", IDs: []string{id}}
	}
	return &order, nil
}

// ListWithItems returns a page of orders, newest first.
func (r *MockOrderRepository) ListWithItems(skip, limit int) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		all = append(all, o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if skip >= len(all) {
		return []models.Order{}, nil
	}
	end := skip + limit
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end], nil
}

// Create adds a new order header. The tx handle is ignored.
func (r *MockOrderRepository) Create(_ *gorm.DB, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	r.orders[order.ID] = *order
	return nil
}

// AddItem appends an item to its order.
func (r *MockOrderRepository) AddItem(_ *gorm.DB, item *models.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[item.OrderID]
	if !ok {
		return &apperrors.NotFoundError{Entity: "order", IDs: []string{item.OrderID}}
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	order.Items = append(order.Items, *item)
	r.orders[item.OrderID] = order
	return nil
}

// UpdateStatus updates the status of an order and returns it, refusing the
// write if the order no longer holds from.
func (r *MockOrderRepository) UpdateStatus(id string, from, to models.OrderStatus) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, &apperrors.NotFoundError{Entity: "order", IDs: []string{id}}
	}
	if order.Status != from {
		return nil, &apperrors.IllegalTransitionError{From: string(order.Status), To: string(to)}
	}
	order.Status = to
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return &order, nil
}
