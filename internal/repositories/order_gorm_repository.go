package repositories

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"logistics/internal/apperrors"
	"logistics/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetWithItems retrieves an active order with its items preloaded.
func (r *GORMOrderRepository) GetWithItems(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "order", IDs: []string{id}}
		}
		return nil, &apperrors.StorageError{Op: "get order", Err: err}
	}
	return &order, nil
}

// ListWithItems retrieves a page of active orders with items preloaded,
// newest first.
func (r *GORMOrderRepository) ListWithItems(skip, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, &apperrors.StorageError{Op: "list orders", Err: err}
	}
	return orders, nil
}

// Create stages the order header into tx, generating its ID when absent.
// Nothing commits until tx does.
func (r *GORMOrderRepository) Create(tx *gorm.DB, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	if err := tx.Omit("Items").Create(order).Error; err != nil {
		return &apperrors.StorageError{Op: "create order", Err: err}
	}
	return nil
}

// AddItem stages one order item into tx.
func (r *GORMOrderRepository) AddItem(tx *gorm.DB, item *models.OrderItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := tx.Create(item).Error; err != nil {
		return &apperrors.StorageError{Op: "create order item", Err: err}
	}
	return nil
}

// UpdateStatus persists a status change and returns the updated order. The
// status predicate makes the read-check-write race-safe: a transition that
// lost the race touches zero rows instead of overwriting the winner.
func (r *GORMOrderRepository) UpdateStatus(id string, from, to models.OrderStatus) (*models.Order, error) {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, &apperrors.StorageError{Op: "update order status", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		// Either the order is gone or its status moved under us.
		current, err := r.GetWithItems(id)
		if err != nil {
			return nil, err
		}
		return nil, &apperrors.IllegalTransitionError{From: string(current.Status), To: string(to)}
	}
	return r.GetWithItems(id)
}
