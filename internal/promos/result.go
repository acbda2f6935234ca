package promos

import (
	"time"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
)

// ValidatedPromo is a promo that passed every check against a specific cart at
// a specific instant. It is only ever produced by the validator.
type ValidatedPromo struct {
	Code string
	pricing.Terms
	StartsAt *time.Time
	EndsAt   *time.Time
}

// Result is either a validated promo or a rejection reason, never both.
type Result struct {
	promo  *ValidatedPromo
	reason Reason
}

// Valid wraps a promo that passed validation.
func Valid(promo ValidatedPromo) Result {
	return Result{promo: &promo}
}

// Rejected wraps a rejection reason.
func Rejected(reason Reason) Result {
	return Result{reason: reason}
}

// Promo returns the validated promo and true, or false when rejected.
func (r Result) Promo() (ValidatedPromo, bool) {
	if r.promo == nil {
		return ValidatedPromo{}, false
	}
	return *r.promo, true
}

// Reason returns the rejection reason, empty when valid.
func (r Result) Reason() Reason {
	if r.promo != nil {
		return ""
	}
	return r.reason
}

// IsValid reports whether the promo passed validation.
func (r Result) IsValid() bool {
	return r.promo != nil
}
