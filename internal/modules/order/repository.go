package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines data access for orders.
type Repository interface {
	// Create persists a new order and one association row per product
	// reference atomically, assigning the identifier and creation timestamp.
	Create(ctx context.Context, o *Order) error

	// GetByID retrieves an order with its product references.
	// Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// List returns all orders in insertion order.
	List(ctx context.Context) ([]*Order, error)

	// UpdateStatus sets the status of an existing order.
	UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) error
}
