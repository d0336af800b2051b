package repositories

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"logistics/internal/apperrors"
	"logistics/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
// GORM's soft-delete support filters deleted_at on every query, so the
// active-rows-only contract holds without explicit predicates.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetByID retrieves a single active product by its ID.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperrors.NotFoundError{Entity: "product", IDs: []string{id}}
		}
		return nil, &apperrors.StorageError{Op: "get product", Err: err}
	}
	return &product, nil
}

// List retrieves a page of active products ordered by id.
func (r *GORMProductRepository) List(skip, limit int) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Order("id").Offset(skip).Limit(limit).Find(&products).Error; err != nil {
		return nil, &apperrors.StorageError{Op: "list products", Err: err}
	}
	return products, nil
}

// Create inserts a new product, generating its ID when absent.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return &apperrors.StorageError{Op: "create product", Err: err}
	}
	return nil
}

// Update persists all fields of an existing product.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Save(product)
	if res.Error != nil {
		return &apperrors.StorageError{Op: "update product", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		// Save does not return ErrRecordNotFound for a missing row.
		return &apperrors.NotFoundError{Entity: "product", IDs: []string{product.ID}}
	}
	return nil
}

// Delete soft-deletes a product by its ID.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return &apperrors.StorageError{Op: "delete product", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &apperrors.NotFoundError{Entity: "product", IDs: []string{id}}
	}
	return nil
}

// GetManyForUpdate locks and reads the active product rows for ids inside
// tx. The ORDER BY matches the caller's sorted id list, so concurrent
// transactions sharing products acquire locks in one global order and
// cannot deadlock on each other.
func (r *GORMProductRepository) GetManyForUpdate(tx *gorm.DB, ids []string) ([]models.Product, error) {
	query := tx.Where("id IN ?", ids).Order("id")
	// SQLite has no FOR UPDATE; its whole-database write lock already
	// serializes the enclosing transactions.
	if tx.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, &apperrors.StorageError{Op: "lock products", Err: err}
	}
	return products, nil
}

// DecrementStock subtracts qty from the product's stock inside tx. The
// check constraint rejects a negative result should the service-level
// validation ever be bypassed.
func (r *GORMProductRepository) DecrementStock(tx *gorm.DB, id string, qty int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return &apperrors.StorageError{Op: "decrement stock", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return &apperrors.NotFoundError{Entity: "product", IDs: []string{id}}
	}
	return nil
}
