package services

import (
	"fmt"

	"logistics/internal/apperrors"
	"logistics/internal/models"
	"logistics/internal/repositories"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// CreateProductInput is the create-product request payload. Price carries
// at most two decimal places.
type CreateProductInput struct {
	Name  string  `json:"name" validate:"required,min=1,max=255"`
	Price float64 `json:"price" validate:"required,gt=0"`
	Stock int     `json:"stock" validate:"gte=0"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo repositories.ProductRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo: repo,
	}
}

// ListProducts retrieves a page of active products. Pagination bounds are
// validated here so every caller gets the same policy.
func (s *ProductService) ListProducts(skip, limit int) ([]models.Product, error) {
	if skip < 0 {
		return nil, &apperrors.ValidationError{Message: "skip must not be negative"}
	}
	if limit == 0 {
		limit = defaultPageLimit
	}
	if limit < 1 || limit > maxPageLimit {
		return nil, &apperrors.ValidationError{Message: fmt.Sprintf("limit must be between 1 and %d", maxPageLimit)}
	}
	return s.repo.List(skip, limit)
}

// GetProductByID retrieves a single active product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct creates a new product from validated input. The price is
// normalized to two decimal places before it is persisted.
func (s *ProductService) CreateProduct(in CreateProductInput) (*models.Product, error) {
	if in.Name == "" || len(in.Name) > 255 {
		return nil, &apperrors.ValidationError{Message: "product name must be between 1 and 255 characters"}
	}
	if in.Price <= 0 {
		return nil, &apperrors.ValidationError{Message: "product price must be greater than zero"}
	}
	if in.Stock < 0 {
		return nil, &apperrors.ValidationError{Message: "product stock must not be negative"}
	}

	product := &models.Product{
		Name:  in.Name,
		Price: roundCurrency(in.Price),
		Stock: in.Stock,
	}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct updates an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	product.Price = roundCurrency(product.Price)
	return s.repo.Update(product)
}

// DeleteProduct soft-deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}

// roundCurrency snaps a price to the 2-decimal currency grid.
func roundCurrency(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
