package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"gorm.io/gorm"

	"logistics/internal/apperrors"
	"logistics/internal/models"
	"logistics/internal/repositories"
)

// EventPublisher emits order lifecycle events to the message broker.
// Publishing is best-effort: a broker outage never fails an order.
type EventPublisher interface {
	PublishOrderCreated(payload map[string]interface{}) error
	PublishOrderStatusUpdated(payload map[string]interface{}) error
}

// OrderItemInput is one (product, quantity) pair of a create-order request.
type OrderItemInput struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderInput is the create-order request payload.
type CreateOrderInput struct {
	Items []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// OrderService handles business logic related to orders, most importantly
// the stock reservation transaction behind order creation.
type OrderService struct {
	db          *gorm.DB
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	publisher   EventPublisher
	txTimeout   time.Duration
}

// NewOrderService creates a new OrderService. The db handle owns the
// transaction scope of CreateOrder: pass the plain handle to run each order
// as its own transaction, or an already-open transaction to nest the
// reservation inside it (GORM opens a savepoint, so an inner failure rolls
// back only the reservation). publisher may be nil to disable events.
func NewOrderService(db *gorm.DB, orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, publisher EventPublisher, txTimeout time.Duration) *OrderService {
	if txTimeout <= 0 {
		txTimeout = 5 * time.Second
	}
	return &OrderService{
		db:          db,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
		txTimeout:   txTimeout,
	}
}

// GetOrderByID retrieves a single order with its items.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetWithItems(id)
}

// ListOrders retrieves a page of orders with items, newest first.
// Pagination bounds are validated here so every caller gets the same policy.
func (s *OrderService) ListOrders(skip, limit int) ([]models.Order, error) {
	if skip < 0 {
		return nil, &apperrors.ValidationError{Message: "skip must not be negative"}
	}
	if limit == 0 {
		limit = defaultPageLimit
	}
	if limit < 1 || limit > maxPageLimit {
		return nil, &apperrors.ValidationError{Message: fmt.Sprintf("limit must be between 1 and %d", maxPageLimit)}
	}
	return s.orderRepo.ListWithItems(skip, limit)
}

// CreateOrder places an order, reserving stock for every requested product
// inside one atomic transaction:
//
//  1. duplicate product references are merged, their quantities summed,
//     and the distinct ids sorted lexicographically
//  2. exactly those product rows are locked in sorted order, so any two
//     concurrent orders sharing products acquire locks in the same relative
//     order and cannot deadlock
//  3. missing products fail the whole order with their ids named
//  4. any product with stock below the summed demand fails the whole order
//  5. otherwise the pending order header, the stock decrements and the
//     items (price frozen at the current product price) are committed
//     together
//
// Any failure rolls the transaction back; no partial state survives. The
// transaction runs under the configured timeout, which also bounds lock
// waits.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, &apperrors.ValidationError{Message: "order must contain at least one item"}
	}
	needed := make(map[string]int, len(in.Items))
	for _, item := range in.Items {
		if item.ProductID == "" {
			return nil, &apperrors.ValidationError{Message: "order item is missing a product id"}
		}
		if item.Quantity <= 0 {
			return nil, &apperrors.ValidationError{Message: fmt.Sprintf("quantity for product %s must be greater than zero", item.ProductID)}
		}
		needed[item.ProductID] += item.Quantity
	}

	ids := make([]string, 0, len(needed))
	for id := range needed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var orderID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products, err := s.productRepo.GetManyForUpdate(tx, ids)
		if err != nil {
			return err
		}
		if len(products) != len(ids) {
			return &apperrors.NotFoundError{Entity: "product", IDs: missingIDs(ids, products)}
		}

		order := &models.Order{Status: models.OrderStatusPending}
		if err := s.orderRepo.Create(tx, order); err != nil {
			return err
		}

		for i := range products {
			product := &products[i]
			qty := needed[product.ID]
			if product.Stock < qty {
				return &apperrors.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   qty,
					Available:   product.Stock,
				}
			}
			if err := s.productRepo.DecrementStock(tx, product.ID, qty); err != nil {
				return err
			}
			item := &models.OrderItem{
				OrderID:      order.ID,
				ProductID:    product.ID,
				Quantity:     qty,
				PriceAtOrder: product.Price,
			}
			if err := s.orderRepo.AddItem(tx, item); err != nil {
				return err
			}
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.orderRepo.GetWithItems(orderID)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		err := s.publisher.PublishOrderCreated(map[string]interface{}{
			"order_id":   created.ID,
			"status":     string(created.Status),
			"item_count": len(created.Items),
		})
		if err != nil {
			log.Printf("Warning: failed to publish order.created event for order %s: %v", created.ID, err)
		}
	}

	return created, nil
}

// UpdateStatus transitions an order to a new status. Shipped and cancelled
// are terminal: any transition out of them, including cancelled -> shipped,
// fails with an IllegalTransitionError and leaves the order untouched. The
// write only lands while the order still holds the status the legality check
// saw, so two racing transitions on the same pending order cannot both win.
func (s *OrderService) UpdateStatus(id string, target models.OrderStatus) (*models.Order, error) {
	if !target.Valid() {
		return nil, &apperrors.ValidationError{Message: fmt.Sprintf("invalid order status: %s", target)}
	}

	order, err := s.orderRepo.GetWithItems(id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(target) {
		return nil, &apperrors.IllegalTransitionError{From: string(order.Status), To: string(target)}
	}

	updated, err := s.orderRepo.UpdateStatus(id, order.Status, target)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		err := s.publisher.PublishOrderStatusUpdated(map[string]interface{}{
			"order_id": updated.ID,
			"status":   string(updated.Status),
		})
		if err != nil {
			log.Printf("Warning: failed to publish order.status_updated event for order %s: %v", updated.ID, err)
		}
	}

	return updated, nil
}

// missingIDs returns the requested ids that no returned product matched.
func missingIDs(requested []string, found []models.Product) []string {
	foundSet := make(map[string]struct{}, len(found))
	for _, p := range found {
		foundSet[p.ID] = struct{}{}
	}
	var missing []string
	for _, id := range requested {
		if _, ok := foundSet[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
