package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for product data storage.
type Repository interface {
	// Create persists a new product and assigns its identifier.
	Create(ctx context.Context, p *Product) error

	// GetByID retrieves a product by identifier. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// List returns all products in insertion order.
	List(ctx context.Context) ([]*Product, error)

	// Delete removes a product by identifier. Returns ErrNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error
}
