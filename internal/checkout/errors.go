package checkout

import (
	"github.com/angelmondragon/storefront-backend/internal/promos"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const (
	detailReasonCartEmpty    = "cart_empty"
	detailReasonPromoInvalid = "promo_invalid"
)

// RejectionDetails is the error payload attached to cart and promo failures.
type RejectionDetails struct {
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

func cartEmptyError() error {
	return pkgerrors.New(pkgerrors.CodeCartEmpty, "Your cart is empty.").
		WithDetails(RejectionDetails{Reason: detailReasonCartEmpty})
}

func promoRejectedError(reason promos.Reason) error {
	return pkgerrors.New(pkgerrors.CodePromoInvalid, reason.Message()).
		WithDetails(RejectionDetails{Reason: detailReasonPromoInvalid, Detail: string(reason)})
}

func upstreamError(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodePaymentUpstream, err, "We couldn't start your payment. Please try again.")
}

// RejectionReason extracts the promo rejection reason from a checkout error.
func RejectionReason(err error) (promos.Reason, bool) {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePromoInvalid {
		return "", false
	}
	details, ok := typed.Details().(RejectionDetails)
	if !ok || details.Detail == "" {
		return "", false
	}
	return promos.Reason(details.Detail), true
}

func pricingError(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "price cart")
}
