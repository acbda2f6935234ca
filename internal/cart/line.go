package cart

import "github.com/angelmondragon/storefront-backend/internal/pricing"

// MaxQuantity bounds a single line. Together with pricing.MaxUnitPriceCents it
// keeps line totals inside int64.
const MaxQuantity = pricing.MaxQuantity

// Line is a cart row priced with the current product price.
type Line struct {
	pricing.Line
	Name  string
	Photo *string
}

// PricingLines strips display fields for the pricing engine.
func PricingLines(lines []Line) []pricing.Line {
	out := make([]pricing.Line, 0, len(lines))
	for _, line := range lines {
		out = append(out, line.Line)
	}
	return out
}

// LineDTO is the shopper view of a cart line.
type LineDTO struct {
	ProductID      int64   `json:"product_id"`
	Name           string  `json:"name"`
	Photo          *string `json:"photo"`
	UnitPriceCents int64   `json:"unit_price_cents"`
	Quantity       int64   `json:"qty"`
	LineTotalCents int64   `json:"line_total_cents"`
}

// CartDTO is the shopper view of a cart.
type CartDTO struct {
	Lines         []LineDTO `json:"lines"`
	SubtotalCents int64     `json:"subtotal_cents"`
}

// NewCartDTO renders lines for display. It fails with pricing.ErrOutOfRange
// when a total cannot be represented.
func NewCartDTO(lines []Line) (CartDTO, error) {
	dto := CartDTO{Lines: make([]LineDTO, 0, len(lines))}
	for _, line := range lines {
		total, err := line.TotalCents()
		if err != nil {
			return CartDTO{}, err
		}
		dto.Lines = append(dto.Lines, LineDTO{
			ProductID:      line.ProductID,
			Name:           line.Name,
			Photo:          line.Photo,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
			LineTotalCents: total,
		})
	}
	subtotal, err := pricing.Subtotal(PricingLines(lines))
	if err != nil {
		return CartDTO{}, err
	}
	dto.SubtotalCents = subtotal
	return dto, nil
}
