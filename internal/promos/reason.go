package promos

// Reason explains why a promo code was not applied.
type Reason string

const (
	ReasonNotFound         Reason = "not_found"
	ReasonNotStarted       Reason = "not_started"
	ReasonExpired          Reason = "expired"
	ReasonWrongProduct     Reason = "wrong_product"
	ReasonReducesBelowZero Reason = "reduces_below_zero"
)

var reasonMessages = map[Reason]string{
	ReasonNotFound:     "That promo code could not be found.",
	ReasonNotStarted:   "That promo code isn't active yet.",
	ReasonExpired:      "That promo code has expired.",
	ReasonWrongProduct: "That promo code doesn't apply to the items in your cart.",
}

const defaultReasonMessage = "That promo code isn't valid for your cart."

// String implements fmt.Stringer.
func (r Reason) String() string {
	return string(r)
}

// Message returns the shopper-facing explanation for the rejection.
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return defaultReasonMessage
}
