package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Service defines catalog business logic.
type Service interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context) ([]*Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	// The price check mirrors the schema constraint; kept as defense in depth.
	if req.Price <= 0 {
		return nil, errors.Wrap(ErrInvalidProduct, "product price must be positive")
	}
	if len(req.Name) < 1 || len(req.Name) > 100 {
		return nil, errors.Wrap(ErrInvalidProduct, "product name must be 1-100 characters")
	}
	if len(req.Description) < 1 || len(req.Description) > 500 {
		return nil, errors.Wrap(ErrInvalidProduct, "product description must be 1-500 characters")
	}

	p := &Product{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		// A malformed identifier cannot reference any product.
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, uid)
}

func (s *service) ListProducts(ctx context.Context) ([]*Product, error) {
	return s.repo.List(ctx)
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, uid)
}
