package promos

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Input is the admin payload for creating or replacing a promo. Numeric fields
// arrive as JSON numbers and are rounded to whole units.
type Input struct {
	Code           string
	PercentOff     *float64
	AmountOffCents *float64
	ProductID      *int64
	StartsAt       *string
	EndsAt         *string
}

// Normalized is an Input that satisfied every admin rule.
type Normalized struct {
	Code           string
	PercentOff     *int64
	AmountOffCents *int64
	ProductID      *int64
	StartsAt       *time.Time
	EndsAt         *time.Time
}

var acceptedTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize applies the admin rules: the code is required and upper-cased,
// percent off is 1..100, amount off is positive and bounded, at least one discount is
// present, a product id <= 0 means the whole cart, blank dates are open bounds
// and the start must precede the end.
func (in Input) Normalize() (Normalized, error) {
	out := Normalized{Code: NormalizeCode(in.Code)}
	if out.Code == "" {
		return Normalized{}, validationError("code", "Promo code is required.")
	}

	if in.PercentOff != nil {
		pct := int64(math.Round(*in.PercentOff))
		if pct <= 0 || pct > 100 {
			return Normalized{}, validationError("percent_off", "Percent off must be between 1 and 100.")
		}
		out.PercentOff = &pct
	}
	if in.AmountOffCents != nil {
		rounded := math.Round(*in.AmountOffCents)
		if rounded <= 0 || math.IsNaN(rounded) {
			return Normalized{}, validationError("amount_off_cents", "Amount off must be greater than zero.")
		}
		if rounded > float64(pricing.MaxAmountOffCents) {
			return Normalized{}, validationError("amount_off_cents", fmt.Sprintf("Amount off cannot exceed %d.", pricing.MaxAmountOffCents))
		}
		amt := int64(rounded)
		out.AmountOffCents = &amt
	}
	if out.PercentOff == nil && out.AmountOffCents == nil {
		return Normalized{}, validationError("percent_off", "Provide a percent off or amount off value.")
	}

	if in.ProductID != nil && *in.ProductID > 0 {
		id := *in.ProductID
		out.ProductID = &id
	}

	var err error
	if out.StartsAt, err = parseBound(in.StartsAt, "starts_at", "start"); err != nil {
		return Normalized{}, err
	}
	if out.EndsAt, err = parseBound(in.EndsAt, "ends_at", "end"); err != nil {
		return Normalized{}, err
	}
	if out.StartsAt != nil && out.EndsAt != nil && !out.StartsAt.Before(*out.EndsAt) {
		return Normalized{}, validationError("ends_at", "End date must be after the start date.")
	}
	return out, nil
}

func parseBound(raw *string, field, label string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil, nil
	}
	for _, layout := range acceptedTimeLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			utc := parsed.UTC()
			return &utc, nil
		}
	}
	return nil, validationError(field, "Invalid "+label+" date provided.")
}

func validationError(field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]any{"field": field})
}
