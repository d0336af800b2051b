package repositories

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"logistics/internal/apperrors"
	"logistics/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository
// for tests and local development. Its mutex stands in for row locks: each
// call is atomic, which is enough for the failure-path tests that use it.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, &apperrors.NotFoundError{Entity: "product", IDs: []string{id}}
	}
	return &product, nil
}

// List returns a page of products ordered by id.
func (r *MockProductRepository) List(skip, limit int) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if skip >= len(all) {
		return []models.Product{}, nil
	}
	end := skip + limit
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end], nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return &apperrors.NotFoundError{Entity: "product", IDs: []string{product.ID}}
	}
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return &apperrors.NotFoundError{Entity: "product", IDs: []string{id}}
	}
	delete(r.products, id)
	return nil
}

// GetManyForUpdate returns the products matching ids in id order. The tx
// handle is ignored; there is no transaction to scope locks to.
func (r *MockProductRepository) GetManyForUpdate(_ *gorm.DB, ids []string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			found = append(found, p)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return found, nil
}

// DecrementStock subtracts qty from a product's stock.
func (r *MockProductRepository) DecrementStock(_ *gorm.DB, id string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return &apperrors.NotFoundError{Entity: "product", IDs: []string{id}}
	}
	if product.Stock-qty < 0 {
		return &apperrors.StorageError{Op: "decrement stock", Err: gorm.ErrInvalidData}
	}
	product.Stock -= qty
	r.products[id] = product
	return nil
}
