package repositories

import (
	"gorm.io/gorm"

	"logistics/internal/models"
)

// OrderRepository defines the interface for order data access. All reads
// exclude soft-deleted rows.
type OrderRepository interface {
	// GetWithItems returns the order with its item collection populated,
	// or a NotFoundError.
	GetWithItems(id string) (*models.Order, error)
	// ListWithItems returns a page of orders (items populated), newest
	// first.
	ListWithItems(skip, limit int) ([]models.Order, error)
	// Create stages the order header into the caller's transaction.
	Create(tx *gorm.DB, order *models.Order) error
	// AddItem stages one order item into the caller's transaction.
	AddItem(tx *gorm.DB, item *models.OrderItem) error
	// UpdateStatus persists a status change and returns the updated order
	// with items. The write only applies while the order still holds from;
	// a stale from fails with an IllegalTransitionError naming the current
	// status. Transition legality is the service layer's concern.
	UpdateStatus(id string, from, to models.OrderStatus) (*models.Order, error)
}
