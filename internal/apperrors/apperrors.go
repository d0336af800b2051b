// Package apperrors defines the error taxonomy shared by the service and
// handler layers. Domain failures carry the offending identifiers so the
// transport layer can name them; storage failures stay opaque to callers.
package apperrors

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed or out-of-range input. It is raised
// before any storage interaction.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError reports that one or more referenced entities are absent or
// soft-deleted.
type NotFoundError struct {
	Entity string
	IDs    []string
}

func (e *NotFoundError) Error() string {
	if len(e.IDs) == 1 {
		return fmt.Sprintf("%s %s not found", e.Entity, e.IDs[0])
	}
	return fmt.Sprintf("%ss not found: %s", e.Entity, strings.Join(e.IDs, ", "))
}

// InsufficientStockError reports that requested quantity exceeds the
// available stock of a named product.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (requested: %d, available: %d)",
		e.ProductName, e.Requested, e.Available)
}

// IllegalTransitionError reports a forbidden order status change.
type IllegalTransitionError struct {
	From string
	To   string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal order status transition from %s to %s", e.From, e.To)
}

// ConflictError is reserved for optimistic-concurrency conflicts. Current
// flows lock pessimistically and never raise it.
type ConflictError struct {
	Entity string
	ID     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting update on %s %s", e.Entity, e.ID)
}

// StorageError wraps any backing-store failure, including lock timeouts and
// deadlock aborts. Handlers log the wrapped error and answer with a generic
// message; the internal text never reaches the caller.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
