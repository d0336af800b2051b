package models

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus enumerates the order lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition may leave s.
// Shipped and cancelled orders never change status again, which also
// rules out cancelled -> shipped.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusShipped || s == OrderStatusCancelled
}

// CanTransitionTo reports whether the move from s to target is legal.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if !target.Valid() || s.Terminal() {
		return false
	}
	return s == OrderStatusPending && target != OrderStatusPending
}

// Order is the order header. Items are owned by the order: the foreign key
// cascades so removing an order removes its items.
type Order struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Status    OrderStatus    `json:"status" gorm:"type:varchar(16);index;not null"`
	Items     []OrderItem    `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// OrderItem is one line of an order. PriceAtOrder is the product's price
// captured when the order was created; it is never recomputed, so later
// price changes or product soft-deletes leave the historical record intact.
type OrderItem struct {
	ID           string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID      string  `json:"order_id" gorm:"type:varchar(36);index;not null"`
	ProductID    string  `json:"product_id" gorm:"type:varchar(36);index;not null"`
	Quantity     int     `json:"quantity" gorm:"not null"`
	PriceAtOrder float64 `json:"price_at_order" gorm:"type:numeric(10,2);not null"`
}
