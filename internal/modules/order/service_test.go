package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jmtembo/ordersys-backend/internal/modules/catalog"
)

// memCatalog is an in-memory ProductCatalog used by the tests.
type memCatalog struct {
	products map[string]*catalog.Product
}

func newMemCatalog() *memCatalog {
	return &memCatalog{products: map[string]*catalog.Product{}}
}

func (m *memCatalog) add(name string, price float64) string {
	id := uuid.New()
	m.products[id.String()] = &catalog.Product{ID: id, Name: name, Price: price}
	return id.String()
}

func (m *memCatalog) GetProduct(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return p, nil
}

// memRepo is an in-memory Repository used by the tests.
type memRepo struct {
	mu     sync.Mutex
	orders []*Order
}

func (m *memRepo) Create(_ context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = uuid.New()
	o.CreatedAt = time.Now().UTC()
	stored := *o
	m.orders = append(m.orders, &stored)
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			found := *o
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) List(_ context.Context) ([]*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Order, len(m.orders))
	copy(out, m.orders)
	return out, nil
}

func (m *memRepo) UpdateStatus(_ context.Context, id uuid.UUID, status OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			o.Status = status
			return nil
		}
	}
	return ErrNotFound
}

// failRepo rejects every write to simulate a broken store.
type failRepo struct{ memRepo }

func (f *failRepo) Create(context.Context, *Order) error {
	return errors.New("connection refused")
}

func newTestService(repo Repository, products ProductCatalog) Service {
	return NewService(repo, products, zap.NewNop())
}

func TestCreateOrder(t *testing.T) {
	cat := newMemCatalog()
	penID := cat.add("Pen", 1.50)
	padID := cat.add("Pad", 8.49)
	repo := &memRepo{}
	svc := newTestService(repo, cat)

	o, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Products:    []string{penID, padID},
		TotalAmount: 9.99,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, o.ID)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, 9.99, o.TotalAmount)
	assert.False(t, o.CreatedAt.IsZero())
	require.Len(t, o.Products, 2)
	assert.Equal(t, penID, o.Products[0].String())
	assert.Equal(t, padID, o.Products[1].String())
}

func TestCreateOrder_ToleranceBoundary(t *testing.T) {
	cat := newMemCatalog()
	penID := cat.add("Pen", 1.50)
	padID := cat.add("Pad", 8.49) // calculated total 9.99

	cases := []struct {
		total float64
		ok    bool
	}{
		{9.99, true},
		{10.00, true}, // difference of exactly 0.01 still reconciles
		{9.98, true},
		{10.01, false},
		{9.97, false},
	}
	for _, tc := range cases {
		svc := newTestService(&memRepo{}, cat)
		_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
			Products:    []string{penID, padID},
			TotalAmount: tc.total,
		})
		if tc.ok {
			assert.NoError(t, err, "total %v", tc.total)
		} else {
			var mismatch *AmountMismatchError
			require.ErrorAs(t, err, &mismatch, "total %v", tc.total)
			assert.Equal(t, "9.99", mismatch.Calculated.String())
		}
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	cat := newMemCatalog()
	penID := cat.add("Pen", 1.50)
	missing := uuid.NewString()
	repo := &memRepo{}
	svc := newTestService(repo, cat)

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Products:    []string{penID, missing},
		TotalAmount: 1.50,
	})
	require.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Contains(t, err.Error(), missing)

	// The failed attempt must leave nothing behind.
	orders, listErr := repo.List(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, orders)
}

func TestCreateOrder_NoProducts(t *testing.T) {
	svc := newTestService(&memRepo{}, newMemCatalog())

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{TotalAmount: 1})
	assert.ErrorIs(t, err, ErrNoProducts)
}

func TestCreateOrder_NonPositiveTotal(t *testing.T) {
	cat := newMemCatalog()
	penID := cat.add("Pen", 1.50)
	svc := newTestService(&memRepo{}, cat)

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Products:    []string{penID},
		TotalAmount: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidTotal)
}

func TestCreateOrder_DuplicateReferencesPreserved(t *testing.T) {
	cat := newMemCatalog()
	penID := cat.add("Pen", 1.50)
	svc := newTestService(&memRepo{}, cat)

	o, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Products:    []string{penID, penID},
		TotalAmount: 3.00,
	})
	require.NoError(t, err)
	require.Len(t, o.Products, 2)
	assert.Equal(t, o.Products[0], o.Products[1])
}

func TestCreateOrder_DecimalAccumulation(t *testing.T) {
	cat := newMemCatalog()
	ids := make([]string, 10)
	for i := range ids {
		ids[i] = cat.add("Sticker", 0.10)
	}
	svc := newTestService(&memRepo{}, cat)

	// Ten additions of 0.10 must reconcile exactly with 1.00.
	o, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Products:    ids,
		TotalAmount: 1.00,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
}

func TestCreateOrder_StoreFailureMasked(t *testing.T) {
	cat := newMemCatalog()
	penID := cat.add("Pen", 1.50)
	svc := newTestService(&failRepo{}, cat)

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Products:    []string{penID},
		TotalAmount: 1.50,
	})
	require.ErrorIs(t, err, ErrInternal)
	assert.NotContains(t, err.Error(), "connection refused")
}

func TestCancelOrder(t *testing.T) {
	cat := newMemCatalog()
	penID := cat.add("Pen", 1.50)
	repo := &memRepo{}
	svc := newTestService(repo, cat)

	o, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		Products:    []string{penID},
		TotalAmount: 1.50,
	})
	require.NoError(t, err)

	cancelled, err := svc.CancelOrder(context.Background(), o.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	stored, err := svc.GetOrder(context.Background(), o.ID.String())
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)

	// A second cancel is rejected: the order is no longer pending.
	_, err = svc.CancelOrder(context.Background(), o.ID.String())
	var transition *InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, "cannot update order in cancelled status", err.Error())
}

func TestCancelOrder_NotFound(t *testing.T) {
	svc := newTestService(&memRepo{}, newMemCatalog())

	_, err := svc.CancelOrder(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetOrder_MalformedID(t *testing.T) {
	svc := newTestService(&memRepo{}, newMemCatalog())

	_, err := svc.GetOrder(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
}
