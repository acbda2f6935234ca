package cart

import "github.com/angelmondragon/storefront-backend/internal/pricing"

func pricingLine(productID, qty, unit int64) pricing.Line {
	return pricing.Line{ProductID: productID, Quantity: qty, UnitPriceCents: unit}
}
