package promos

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// PromoDTO is the admin view of a promo code.
type PromoDTO struct {
	ID             int64      `json:"id"`
	Code           string     `json:"code"`
	PercentOff     *int64     `json:"percent_off"`
	AmountOffCents *int64     `json:"amount_off_cents"`
	ProductID      *int64     `json:"product_id"`
	StartsAt       *time.Time `json:"starts_at"`
	EndsAt         *time.Time `json:"ends_at"`
}

// FromModel maps a stored promo to its DTO.
func FromModel(m *models.PromoCode) PromoDTO {
	return PromoDTO{
		ID:             m.ID,
		Code:           m.Code,
		PercentOff:     m.PercentOff,
		AmountOffCents: m.AmountOffCents,
		ProductID:      m.ProductID,
		StartsAt:       m.StartsAt,
		EndsAt:         m.EndsAt,
	}
}
