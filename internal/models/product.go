package models

import (
	"time"

	"gorm.io/gorm"
)

// Product represents an inventory item. Stock is mutated only through order
// creation; the check constraint is the storage-layer backstop for the
// application-level pre-decrement check.
type Product struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name      string         `json:"name" gorm:"type:varchar(255);index" validate:"required,min=1,max=255"`
	Price     float64        `json:"price" gorm:"type:numeric(10,2)" validate:"required,gt=0"`
	Stock     int            `json:"stock" gorm:"not null;default:0;check:stock >= 0" validate:"gte=0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
