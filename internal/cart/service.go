package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"gorm.io/gorm"
)

type cartStore interface {
	GetLines(ctx context.Context, userID int64) ([]Line, error)
	AddQuantity(ctx context.Context, userID, productID, delta int64) error
	CapQuantity(ctx context.Context, userID, productID, max int64) error
	SetQuantity(ctx context.Context, userID, productID, qty int64) error
	Remove(ctx context.Context, userID, productID int64) error
}

type productLoader interface {
	FindProduct(ctx context.Context, id int64) (*models.Product, error)
}

// Service exposes the shopper cart operations.
type Service interface {
	Get(ctx context.Context, userID int64) (*CartDTO, error)
	Lines(ctx context.Context, userID int64) ([]Line, error)
	Add(ctx context.Context, userID, productID, qty int64) error
	SetQuantity(ctx context.Context, userID, productID, qty int64) error
	Remove(ctx context.Context, userID, productID int64) error
}

type service struct {
	repo     cartStore
	products productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo cartStore, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) Get(ctx context.Context, userID int64) (*CartDTO, error) {
	lines, err := s.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto, err := NewCartDTO(lines)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "price cart")
	}
	return &dto, nil
}

func (s *service) Lines(ctx context.Context, userID int64) ([]Line, error) {
	lines, err := s.repo.GetLines(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return lines, nil
}

// Add floors qty at 1 and only accepts active products.
func (s *service) Add(ctx context.Context, userID, productID, qty int64) error {
	if qty < 1 {
		qty = 1
	}
	if qty > MaxQuantity {
		return quantityTooLarge()
	}
	if err := s.requireActiveProduct(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.AddQuantity(ctx, userID, productID, qty); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add cart item")
	}
	if err := s.repo.CapQuantity(ctx, userID, productID, MaxQuantity); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cap cart item")
	}
	return nil
}

func (s *service) SetQuantity(ctx context.Context, userID, productID, qty int64) error {
	if productID <= 0 {
		return productRequired()
	}
	if qty > MaxQuantity {
		return quantityTooLarge()
	}
	if err := s.repo.SetQuantity(ctx, userID, productID, qty); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "That item isn't in your cart.")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
	}
	return nil
}

func (s *service) Remove(ctx context.Context, userID, productID int64) error {
	if productID <= 0 {
		return productRequired()
	}
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart item")
	}
	return nil
}

func (s *service) requireActiveProduct(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return productRequired()
	}
	product, err := s.products.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "Product not found.")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.Active {
		return pkgerrors.New(pkgerrors.CodeConflict, "This product is no longer available.")
	}
	return nil
}

func productRequired() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "Product is required.").
		WithDetails(map[string]any{"field": "product_id"})
}

func quantityTooLarge() error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Quantity cannot exceed %d.", MaxQuantity)).
		WithDetails(map[string]any{"field": "qty"})
}
