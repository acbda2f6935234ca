package promos

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"gorm.io/gorm"
)

type promoStore interface {
	List(ctx context.Context) ([]models.PromoCode, error)
	FindByID(ctx context.Context, id int64) (*models.PromoCode, error)
	Create(ctx context.Context, promo *models.PromoCode) error
	Update(ctx context.Context, promo *models.PromoCode) error
	Delete(ctx context.Context, id int64) error
}

type productChecker interface {
	ProductExists(ctx context.Context, id int64) (bool, error)
}

// Service exposes the admin operations on promo codes.
type Service interface {
	List(ctx context.Context) ([]PromoDTO, error)
	Create(ctx context.Context, input Input) (*PromoDTO, error)
	Update(ctx context.Context, id int64, input Input) (*PromoDTO, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo     promoStore
	products productChecker
}

// NewService builds the admin promo service.
func NewService(repo promoStore, products productChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("promo repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product checker required")
	}
	return &service{repo: repo, products: products}, nil
}

func (s *service) List(ctx context.Context) ([]PromoDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list promo codes")
	}
	out := make([]PromoDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, input Input) (*PromoDTO, error) {
	normalized, err := s.normalize(ctx, input)
	if err != nil {
		return nil, err
	}
	promo := normalized.toModel()
	if err := s.repo.Create(ctx, promo); err != nil {
		return nil, mapWriteError(err, "create promo code")
	}
	dto := FromModel(promo)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id int64, input Input) (*PromoDTO, error) {
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Promo id is required.")
	}
	normalized, err := s.normalize(ctx, input)
	if err != nil {
		return nil, err
	}
	promo := normalized.toModel()
	promo.ID = id
	if err := s.repo.Update(ctx, promo); err != nil {
		return nil, mapWriteError(err, "update promo code")
	}
	stored, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload promo code")
	}
	dto := FromModel(stored)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Promo id is required.")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapWriteError(err, "delete promo code")
	}
	return nil
}

func (s *service) normalize(ctx context.Context, input Input) (Normalized, error) {
	normalized, err := input.Normalize()
	if err != nil {
		return Normalized{}, err
	}
	if normalized.ProductID != nil {
		ok, err := s.products.ProductExists(ctx, *normalized.ProductID)
		if err != nil {
			return Normalized{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check promo product")
		}
		if !ok {
			return Normalized{}, validationError("product_id", "Product not found.")
		}
	}
	return normalized, nil
}

func (n Normalized) toModel() *models.PromoCode {
	return &models.PromoCode{
		Code:           n.Code,
		PercentOff:     n.PercentOff,
		AmountOffCents: n.AmountOffCents,
		ProductID:      n.ProductID,
		StartsAt:       n.StartsAt,
		EndsAt:         n.EndsAt,
	}
}

func mapWriteError(err error, action string) error {
	switch {
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "A promo with that code already exists.")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "Promo code not found.")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
	}
}
