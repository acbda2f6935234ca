package checkout

import (
	"time"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/internal/promos"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// Input is everything a shopper may send at checkout. Amounts and quantities
// are never accepted from the client.
type Input struct {
	PromoCode      *string
	IdempotencyKey string
}

// Result is returned once an intent for the authoritative charge exists.
type Result struct {
	ClientSecret    string  `json:"client_secret"`
	PaymentIntentID string  `json:"payment_intent_id"`
	Currency        string  `json:"currency"`
	SubtotalCents   int64   `json:"subtotal_cents"`
	DiscountCents   int64   `json:"discount_cents"`
	ChargeCents     int64   `json:"charge_cents"`
	DisplayTotal    string  `json:"display_total"`
	PromoCode       *string `json:"promo_code,omitempty"`
}

// QuoteDTO is a provisional total for display. It is recomputed at checkout.
type QuoteDTO struct {
	SubtotalCents int64   `json:"subtotal_cents"`
	DiscountCents int64   `json:"discount_cents"`
	TotalCents    int64   `json:"total_cents"`
	Currency      string  `json:"currency"`
	DisplayTotal  string  `json:"display_total"`
	PromoCode     *string `json:"promo_code,omitempty"`
}

// PromoDTO describes a validated promo to the shopper.
type PromoDTO struct {
	Code           string     `json:"code"`
	PercentOff     *int64     `json:"percent_off"`
	AmountOffCents *int64     `json:"amount_off_cents"`
	ProductID      *int64     `json:"product_id"`
	StartsAt       *time.Time `json:"starts_at"`
	EndsAt         *time.Time `json:"ends_at"`
}

// PromoPreview is the outcome of checking a code against the stored cart.
type PromoPreview struct {
	Valid   bool          `json:"valid"`
	Promo   *PromoDTO     `json:"promo,omitempty"`
	Quote   *QuoteDTO     `json:"quote,omitempty"`
	Reason  promos.Reason `json:"reason,omitempty"`
	Message string        `json:"message,omitempty"`
}

func newQuoteDTO(quote pricing.Quote, currency enums.Currency, promo *promos.ValidatedPromo) *QuoteDTO {
	dto := &QuoteDTO{
		SubtotalCents: quote.SubtotalCents,
		DiscountCents: quote.DiscountCents,
		TotalCents:    quote.TotalCents,
		Currency:      currency.String(),
		DisplayTotal:  money.Format(quote.TotalCents, currency),
	}
	if promo != nil {
		code := promo.Code
		dto.PromoCode = &code
	}
	return dto
}

func newPromoDTO(promo promos.ValidatedPromo) *PromoDTO {
	return &PromoDTO{
		Code:           promo.Code,
		PercentOff:     promo.PercentOff,
		AmountOffCents: promo.AmountOffCents,
		ProductID:      promo.ProductID,
		StartsAt:       promo.StartsAt,
		EndsAt:         promo.EndsAt,
	}
}

func rejectedPreview(reason promos.Reason) *PromoPreview {
	return &PromoPreview{Valid: false, Reason: reason, Message: reason.Message()}
}
