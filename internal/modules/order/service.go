package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jmtembo/ordersys-backend/internal/modules/catalog"
)

// tolerance is the maximum absolute difference allowed between the declared
// order total and the sum of the referenced products' prices. A difference of
// exactly 0.01 still reconciles.
var tolerance = decimal.New(1, -2)

// ProductCatalog resolves product references during order validation.
// Satisfied by catalog.Service.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}

// Service defines the order workflow business logic.
type Service interface {
	// CreateOrder validates the product references, reconciles the declared
	// total against current catalog prices, and persists the order atomically.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)

	// GetOrder retrieves an order by identifier.
	GetOrder(ctx context.Context, id string) (*Order, error)

	// ListOrders returns all orders.
	ListOrders(ctx context.Context) ([]*Order, error)

	// CancelOrder transitions a pending order to cancelled. This is the only
	// status transition the workflow exposes.
	CancelOrder(ctx context.Context, id string) (*Order, error)
}

type service struct {
	repo    Repository
	catalog ProductCatalog
	log     *zap.Logger
}

// NewService creates a new order workflow service.
func NewService(repo Repository, products ProductCatalog, log *zap.Logger) Service {
	return &service{repo: repo, catalog: products, log: log}
}

func (s *service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	s.log.Info("creating new order", zap.Int("product_count", len(req.Products)))

	o, err := s.create(ctx, req)
	if err != nil {
		if isRejection(err) {
			s.log.Warn("order rejected", zap.Error(err))
			return nil, err
		}
		// Unexpected failure: log the detail, surface a generic error.
		s.log.Error("unexpected error creating order", zap.Error(err))
		return nil, ErrInternal
	}

	s.log.Info("successfully created order", zap.String("order_id", o.ID.String()))
	return o, nil
}

func (s *service) create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if len(req.Products) == 0 {
		return nil, ErrNoProducts
	}
	if req.TotalAmount <= 0 {
		return nil, ErrInvalidTotal
	}

	products, err := s.resolveProducts(ctx, req.Products)
	if err != nil {
		return nil, err
	}

	calculated := calculateTotal(products)
	declared := decimal.NewFromFloat(req.TotalAmount)
	if declared.Sub(calculated).Abs().GreaterThan(tolerance) {
		return nil, &AmountMismatchError{Declared: declared, Calculated: calculated}
	}

	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	o := &Order{
		Products:    ids,
		TotalAmount: req.TotalAmount,
		Status:      StatusPending,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "persist order")
	}
	return o, nil
}

// resolveProducts looks up every referenced product in input order, repeats
// included, failing fast on the first missing identifier.
func (s *service) resolveProducts(ctx context.Context, ids []string) ([]*catalog.Product, error) {
	products := make([]*catalog.Product, 0, len(ids))
	for _, id := range ids {
		p, err := s.catalog.GetProduct(ctx, id)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, errors.Wrapf(catalog.ErrNotFound, "product with ID %s", id)
			}
			return nil, errors.Wrapf(err, "resolve product %s", id)
		}
		products = append(products, p)
	}
	return products, nil
}

// calculateTotal sums product prices in exact decimal arithmetic so repeated
// additions accumulate no binary rounding error.
func calculateTotal(products []*catalog.Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(decimal.NewFromFloat(p.Price))
	}
	return total
}

func (s *service) GetOrder(ctx context.Context, id string) (*Order, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, uid)
}

func (s *service) ListOrders(ctx context.Context) ([]*Order, error) {
	return s.repo.List(ctx)
}

func (s *service) CancelOrder(ctx context.Context, id string) (*Order, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status != StatusPending {
		return nil, &InvalidTransitionError{Status: o.Status}
	}
	if err := s.repo.UpdateStatus(ctx, o.ID, StatusCancelled); err != nil {
		return nil, errors.Wrap(err, "update order status")
	}
	o.Status = StatusCancelled
	return o, nil
}

// isRejection reports whether err is a caller-actionable validation outcome
// rather than an unexpected failure.
func isRejection(err error) bool {
	var mismatch *AmountMismatchError
	return errors.Is(err, ErrNoProducts) ||
		errors.Is(err, ErrInvalidTotal) ||
		errors.Is(err, catalog.ErrNotFound) ||
		errors.As(err, &mismatch)
}
