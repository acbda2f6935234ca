package checkout

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/internal/promos"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	pkgstripe "github.com/angelmondragon/storefront-backend/pkg/stripe"
)

type cartReader interface {
	GetLines(ctx context.Context, userID int64) ([]cart.Line, error)
}

type intentCreator interface {
	CreateIntent(ctx context.Context, req pkgstripe.IntentRequest) (*pkgstripe.Intent, error)
}

// Service assembles the authoritative charge for a shopper's stored cart.
type Service interface {
	// Checkout re-reads the cart, re-validates the promo and requests a
	// payment intent for exactly the computed charge.
	Checkout(ctx context.Context, userID int64, input Input) (*Result, error)
	// Quote runs the same computation without contacting the payment provider.
	Quote(ctx context.Context, userID int64, promoCode *string) (*QuoteDTO, error)
	// PreviewPromo reports whether code applies to the stored cart right now.
	PreviewPromo(ctx context.Context, userID int64, code string) (*PromoPreview, error)
}

type service struct {
	cart     cartReader
	promos   promos.Validator
	payments intentCreator
	currency enums.Currency
	logg     *logger.Logger
	metrics  *metrics.CheckoutMetrics
	now      func() time.Time
}

// NewService builds the checkout assembler.
func NewService(
	cartStore cartReader,
	validator promos.Validator,
	payments intentCreator,
	currency enums.Currency,
	logg *logger.Logger,
	recorder *metrics.CheckoutMetrics,
) (Service, error) {
	if cartStore == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if validator == nil {
		return nil, fmt.Errorf("promo validator required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment intent creator required")
	}
	if !currency.IsValid() {
		return nil, fmt.Errorf("invalid settlement currency %q", currency)
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		cart:     cartStore,
		promos:   validator,
		payments: payments,
		currency: currency,
		logg:     logg,
		metrics:  recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// attempt tracks one pass through the pricing sequence.
type attempt struct {
	state State
	lines []pricing.Line
	promo *promos.ValidatedPromo
	quote pricing.Quote
}

func (a *attempt) advance(next State) error {
	if !a.state.CanTransition(next) {
		return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("invalid checkout transition %s -> %s", a.state, next))
	}
	a.state = next
	return nil
}

func (s *service) Checkout(ctx context.Context, userID int64, input Input) (result *Result, err error) {
	started := time.Now()
	ctx = s.logg.WithUserID(ctx, userID)
	a := &attempt{state: StateIdle}
	defer func() {
		s.finish(ctx, a, started, err)
	}()

	if err := s.price(ctx, a, userID, input.PromoCode); err != nil {
		return nil, err
	}
	if err := a.advance(StateIntentRequested); err != nil {
		return nil, err
	}

	req := pkgstripe.IntentRequest{
		AmountCents:    a.quote.TotalCents,
		Currency:       s.currency,
		UserID:         userID,
		IdempotencyKey: input.IdempotencyKey,
		Metadata: map[string]string{
			"subtotal_cents": strconv.FormatInt(a.quote.SubtotalCents, 10),
			"discount_cents": strconv.FormatInt(a.quote.DiscountCents, 10),
		},
	}
	if a.promo != nil {
		req.Metadata["promo_code"] = a.promo.Code
	}

	intent, err := s.payments.CreateIntent(ctx, req)
	if err == nil {
		err = checkIntent(intent, a.quote.TotalCents)
	}
	if err != nil {
		a.state = StateIntentFailed
		return nil, upstreamError(err)
	}
	if err := a.advance(StateIntentCreated); err != nil {
		return nil, err
	}

	quote := newQuoteDTO(a.quote, s.currency, a.promo)
	return &Result{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Currency:        quote.Currency,
		SubtotalCents:   a.quote.SubtotalCents,
		DiscountCents:   a.quote.DiscountCents,
		ChargeCents:     a.quote.TotalCents,
		DisplayTotal:    quote.DisplayTotal,
		PromoCode:       quote.PromoCode,
	}, nil
}

func (s *service) Quote(ctx context.Context, userID int64, promoCode *string) (*QuoteDTO, error) {
	a := &attempt{state: StateIdle}
	if err := s.price(ctx, a, userID, promoCode); err != nil {
		return nil, err
	}
	return newQuoteDTO(a.quote, s.currency, a.promo), nil
}

func (s *service) PreviewPromo(ctx context.Context, userID int64, code string) (*PromoPreview, error) {
	normalized := promos.NormalizeCode(code)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Enter a promo code to apply.").
			WithDetails(map[string]any{"field": "code"})
	}
	lines, err := s.loadLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	subtotal, err := pricing.Subtotal(lines)
	if err != nil {
		return nil, pricingError(err)
	}
	if len(lines) == 0 || subtotal <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Add an item to your cart before applying a promo code.").
			WithDetails(map[string]any{"field": "code"})
	}

	result, err := s.promos.Validate(ctx, normalized, s.now(), productIDs(lines))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "validate promo code")
	}
	promo, ok := result.Promo()
	if !ok {
		s.metrics.IncPromoRejection(string(result.Reason()))
		return rejectedPreview(result.Reason()), nil
	}
	discount, err := pricing.ComputeDiscount(lines, promo.Terms)
	if err != nil {
		return nil, pricingError(err)
	}
	quote := pricing.NewQuote(subtotal, discount)
	if quote.TotalCents <= 0 {
		s.metrics.IncPromoRejection(string(promos.ReasonReducesBelowZero))
		return rejectedPreview(promos.ReasonReducesBelowZero), nil
	}
	return &PromoPreview{
		Valid: true,
		Promo: newPromoDTO(promo),
		Quote: newQuoteDTO(quote, s.currency, &promo),
	}, nil
}

// price loads the cart, validates the optional promo and computes the charge.
// A blank code is treated as no code; a rejected code always fails.
func (s *service) price(ctx context.Context, a *attempt, userID int64, promoCode *string) error {
	lines, err := s.loadLines(ctx, userID)
	if err != nil {
		return err
	}
	if err := a.advance(StateCartLoaded); err != nil {
		return err
	}
	a.lines = lines
	subtotal, err := pricing.Subtotal(lines)
	if err != nil {
		return pricingError(err)
	}
	if len(lines) == 0 || subtotal <= 0 {
		return cartEmptyError()
	}

	code := ""
	if promoCode != nil {
		code = promos.NormalizeCode(*promoCode)
	}
	var discount int64
	if code == "" {
		if err := a.advance(StatePromoSkipped); err != nil {
			return err
		}
	} else {
		result, err := s.promos.Validate(ctx, code, s.now(), productIDs(lines))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "validate promo code")
		}
		promo, ok := result.Promo()
		if !ok {
			s.metrics.IncPromoRejection(string(result.Reason()))
			return promoRejectedError(result.Reason())
		}
		if err := a.advance(StatePromoValidated); err != nil {
			return err
		}
		a.promo = &promo
		if discount, err = pricing.ComputeDiscount(lines, promo.Terms); err != nil {
			return pricingError(err)
		}
	}

	a.quote = pricing.NewQuote(subtotal, discount)
	if a.quote.TotalCents <= 0 {
		s.metrics.IncPromoRejection(string(promos.ReasonReducesBelowZero))
		return promoRejectedError(promos.ReasonReducesBelowZero)
	}
	return a.advance(StateTotalComputed)
}

func (s *service) loadLines(ctx context.Context, userID int64) ([]pricing.Line, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	lines, err := s.cart.GetLines(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return cart.PricingLines(lines), nil
}

func (s *service) finish(ctx context.Context, a *attempt, started time.Time, err error) {
	outcome := outcomeFor(err)
	s.metrics.ObserveAttempt(outcome, time.Since(started))

	ctx = s.logg.WithFields(ctx, map[string]any{
		"state":   string(a.state),
		"outcome": outcome,
	})
	switch outcome {
	case "success":
		s.metrics.AddCharged(a.quote.TotalCents)
		ctx = s.logg.WithFields(ctx, map[string]any{
			"subtotal_cents": a.quote.SubtotalCents,
			"discount_cents": a.quote.DiscountCents,
			"charge_cents":   a.quote.TotalCents,
		})
		s.logg.Info(ctx, "checkout intent created")
	case "cart_empty", "promo_invalid":
		s.logg.Info(ctx, "checkout rejected")
	default:
		s.logg.Error(ctx, "checkout failed", err)
	}
}

func outcomeFor(err error) string {
	if err == nil {
		return "success"
	}
	switch {
	case pkgerrors.HasCode(err, pkgerrors.CodeCartEmpty):
		return "cart_empty"
	case pkgerrors.HasCode(err, pkgerrors.CodePromoInvalid):
		return "promo_invalid"
	case pkgerrors.HasCode(err, pkgerrors.CodePaymentUpstream):
		return "upstream_error"
	default:
		return "error"
	}
}

func checkIntent(intent *pkgstripe.Intent, charge int64) error {
	if intent == nil || intent.ClientSecret == "" {
		return fmt.Errorf("payment intent missing client secret")
	}
	if intent.AmountCents != 0 && intent.AmountCents != charge {
		return fmt.Errorf("payment intent amount %d does not match charge %d", intent.AmountCents, charge)
	}
	return nil
}

func productIDs(lines []pricing.Line) map[int64]struct{} {
	ids := make(map[int64]struct{}, len(lines))
	for _, line := range lines {
		ids[line.ProductID] = struct{}{}
	}
	return ids
}
