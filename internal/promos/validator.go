package promos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

type promoFinder interface {
	FindByCode(ctx context.Context, code string) (*models.PromoCode, error)
}

// Validator decides whether a promo code applies to a cart at a point in time.
type Validator interface {
	Validate(ctx context.Context, code string, now time.Time, cartProductIDs map[int64]struct{}) (Result, error)
}

type validator struct {
	repo promoFinder
}

// NewValidator builds a read-only validator over the promo store.
func NewValidator(repo promoFinder) (Validator, error) {
	if repo == nil {
		return nil, fmt.Errorf("promo repository required")
	}
	return &validator{repo: repo}, nil
}

// NormalizeCode trims and upper-cases a shopper-entered code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks, in order, that the code exists, has started, has not ended
// and, when product-scoped, that the product is in the cart. The first failing
// check wins. Store errors are returned as errors, never as a rejection.
func (v *validator) Validate(ctx context.Context, code string, now time.Time, cartProductIDs map[int64]struct{}) (Result, error) {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return Rejected(ReasonNotFound), nil
	}

	promo, err := v.repo.FindByCode(ctx, normalized)
	if err != nil {
		return Result{}, fmt.Errorf("find promo %q: %w", normalized, err)
	}
	if promo == nil {
		return Rejected(ReasonNotFound), nil
	}
	if promo.StartsAt != nil && now.Before(*promo.StartsAt) {
		return Rejected(ReasonNotStarted), nil
	}
	if promo.EndsAt != nil && now.After(*promo.EndsAt) {
		return Rejected(ReasonExpired), nil
	}
	if promo.ProductID != nil {
		if _, ok := cartProductIDs[*promo.ProductID]; !ok {
			return Rejected(ReasonWrongProduct), nil
		}
	}

	return Valid(ValidatedPromo{
		Code: promo.Code,
		Terms: pricing.Terms{
			PercentOff:     promo.PercentOff,
			AmountOffCents: promo.AmountOffCents,
			ProductID:      promo.ProductID,
		},
		StartsAt: promo.StartsAt,
		EndsAt:   promo.EndsAt,
	}), nil
}
