package repositories

import (
	"gorm.io/gorm"

	"logistics/internal/models"
)

// ProductRepository defines the interface for product data access. All
// reads exclude soft-deleted rows.
type ProductRepository interface {
	// GetByID returns the active product or a NotFoundError.
	GetByID(id string) (*models.Product, error)
	// List returns a page of active products in a stable (id) order.
	List(skip, limit int) ([]models.Product, error)
	// Create stages a new product row. The commit boundary belongs to the
	// caller's db handle; with the plain handle the insert is immediate.
	Create(product *models.Product) error
	// Update persists all fields of an existing product.
	Update(product *models.Product) error
	// Delete soft-deletes a product; historical order items keep referring
	// to it by id.
	Delete(id string) error

	// GetManyForUpdate reads the active products for the given ids inside
	// tx while acquiring exclusive row locks, held until tx commits or
	// rolls back. Callers must pass ids pre-sorted so every transaction
	// locks overlapping rows in the same order.
	GetManyForUpdate(tx *gorm.DB, ids []string) ([]models.Product, error)
	// DecrementStock subtracts qty from a product's stock inside tx. The
	// row must already be locked via GetManyForUpdate.
	DecrementStock(tx *gorm.DB, id string, qty int) error
}
