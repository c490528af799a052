package order

import (
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

var (
	// ErrNotFound is returned when a requested order does not exist.
	ErrNotFound = errors.New("order not found")

	// ErrNoProducts is returned when an order references no products.
	ErrNoProducts = errors.New("order must contain at least one product")

	// ErrInvalidTotal is returned when the declared total is not positive.
	ErrInvalidTotal = errors.New("order total amount must be positive")

	// ErrInternal masks unexpected failures during order creation.
	ErrInternal = errors.New("internal server error")
)

// AmountMismatchError reports a declared total that does not reconcile with
// the sum of the referenced products' prices.
type AmountMismatchError struct {
	Declared   decimal.Decimal
	Calculated decimal.Decimal
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("order total %s does not match calculated total %s", e.Declared, e.Calculated)
}

// InvalidTransitionError reports a status change attempted on a non-pending order.
type InvalidTransitionError struct {
	Status OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot update order in %s status", e.Status)
}

// Order represents a customer's order over catalog products.
type Order struct {
	ID          uuid.UUID   `json:"id"`
	Products    []uuid.UUID `json:"products"`
	TotalAmount float64     `json:"total_amount"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

// CreateOrderRequest is the payload for placing a new order. Product
// identifiers may repeat; repeats are preserved in order.
type CreateOrderRequest struct {
	Products    []string `json:"products"`
	TotalAmount float64  `json:"total_amount"`
}
