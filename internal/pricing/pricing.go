// Package pricing holds the pure arithmetic behind cart totals. All amounts are
// integer minor units of the settlement currency.
package pricing

import (
	"errors"
	"math"
)

const (
	// MaxQuantity bounds a single cart line.
	MaxQuantity int64 = 10000
	// MaxUnitPriceCents bounds a catalogue price. MaxUnitPriceCents*MaxQuantity
	// stays below 1e15, leaving room for thousands of lines before int64 wraps.
	MaxUnitPriceCents int64 = 100_000_000_000
	// MaxAmountOffCents bounds the fixed component of a promo.
	MaxAmountOffCents int64 = MaxUnitPriceCents * MaxQuantity
)

// ErrOutOfRange reports an amount that cannot be represented in int64 minor
// units. It is never clamped: a wrapped total would become a wrong charge.
var ErrOutOfRange = errors.New("pricing: amount out of range")

// Line is one cart row priced at read time.
type Line struct {
	ProductID      int64
	Quantity       int64
	UnitPriceCents int64
}

// TotalCents returns unit price times quantity.
func (l Line) TotalCents() (int64, error) {
	return mulCents(l.UnitPriceCents, l.Quantity)
}

// Terms are the discount mechanics of a validated promo. Both mechanisms may
// be set, in which case they stack. A nil ProductID applies to every line.
type Terms struct {
	PercentOff     *int64
	AmountOffCents *int64
	ProductID      *int64
}

// Subtotal sums every line.
func Subtotal(lines []Line) (int64, error) {
	return sumLines(lines, func(Line) bool { return true })
}

// EligibleSubtotal sums the lines the terms apply to.
func EligibleSubtotal(lines []Line, terms Terms) (int64, error) {
	if terms.ProductID == nil {
		return Subtotal(lines)
	}
	return sumLines(lines, func(line Line) bool { return line.ProductID == *terms.ProductID })
}

// ComputeDiscount applies terms to lines. The percent component is floored to
// a whole minor unit, the fixed component is added on top, and the result is
// clamped to both the eligible subtotal and the full cart subtotal. The result
// is never negative.
func ComputeDiscount(lines []Line, terms Terms) (int64, error) {
	subtotal, err := Subtotal(lines)
	if err != nil {
		return 0, err
	}
	if len(lines) == 0 || subtotal <= 0 {
		return 0, nil
	}
	eligible, err := EligibleSubtotal(lines, terms)
	if err != nil {
		return 0, err
	}
	if eligible <= 0 {
		return 0, nil
	}

	var discount int64
	if terms.PercentOff != nil && *terms.PercentOff > 0 {
		discount = percentOf(eligible, min(*terms.PercentOff, 100))
	}
	if terms.AmountOffCents != nil && *terms.AmountOffCents > 0 {
		// Saturates; the clamp below brings it back to the eligible subtotal.
		discount = saturatingAdd(discount, *terms.AmountOffCents)
	}

	discount = min(discount, eligible, subtotal)
	return max(discount, 0), nil
}

// percentOf returns floor(amount * percent / 100) for non-negative inputs
// without forming the full product.
func percentOf(amount, percent int64) int64 {
	return (amount/100)*percent + (amount%100)*percent/100
}

func sumLines(lines []Line, include func(Line) bool) (int64, error) {
	var total int64
	for _, line := range lines {
		if !include(line) {
			continue
		}
		lineTotal, err := line.TotalCents()
		if err != nil {
			return 0, err
		}
		if total, err = addCents(total, lineTotal); err != nil {
			return 0, err
		}
	}
	return total, nil
}

func mulCents(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, ErrOutOfRange
	}
	if a != 0 && b > math.MaxInt64/a {
		return 0, ErrOutOfRange
	}
	return a * b, nil
}

func addCents(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, ErrOutOfRange
	}
	return a + b, nil
}

func saturatingAdd(a, b int64) int64 {
	sum, err := addCents(a, b)
	if err != nil {
		return math.MaxInt64
	}
	return sum
}

// Quote is a computed subtotal, discount and charge.
type Quote struct {
	SubtotalCents int64
	DiscountCents int64
	TotalCents    int64
}

// NewQuote derives the charge as subtotal minus the discount capped at subtotal.
func NewQuote(subtotal, discount int64) Quote {
	discount = max(min(discount, subtotal), 0)
	return Quote{
		SubtotalCents: subtotal,
		DiscountCents: discount,
		TotalCents:    subtotal - discount,
	}
}
