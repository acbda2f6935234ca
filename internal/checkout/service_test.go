package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/internal/promos"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	pkgstripe "github.com/angelmondragon/storefront-backend/pkg/stripe"
)

const (
	productA int64 = 1
	productB int64 = 2
	userID   int64 = 42
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type stubCart struct {
	lines []cart.Line
	err   error
}

func (s *stubCart) GetLines(context.Context, int64) ([]cart.Line, error) {
	return s.lines, s.err
}

type stubPromos map[string]*models.PromoCode

func (s stubPromos) FindByCode(_ context.Context, code string) (*models.PromoCode, error) {
	return s[code], nil
}

type stubPayments struct {
	calls    []pkgstripe.IntentRequest
	err      error
	override *pkgstripe.Intent
}

func (s *stubPayments) CreateIntent(_ context.Context, req pkgstripe.IntentRequest) (*pkgstripe.Intent, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	if s.override != nil {
		return s.override, nil
	}
	return &pkgstripe.Intent{
		ID:           "pi_test",
		ClientSecret: "pi_test_secret",
		AmountCents:  req.AmountCents,
		Currency:     req.Currency,
	}, nil
}

type harness struct {
	svc      *service
	cart     *stubCart
	payments *stubPayments
	registry *prometheus.Registry
}

func newHarness(t *testing.T, lines []cart.Line, codes stubPromos) *harness {
	t.Helper()
	validator, err := promos.NewValidator(codes)
	require.NoError(t, err)

	h := &harness{
		cart:     &stubCart{lines: lines},
		payments: &stubPayments{},
		registry: prometheus.NewRegistry(),
	}
	svc, err := NewService(h.cart, validator, h.payments, enums.CurrencyAUD, logger.Nop(), metrics.NewCheckoutMetrics(h.registry))
	require.NoError(t, err)
	h.svc = svc.(*service)
	h.svc.now = func() time.Time { return fixedNow }
	return h
}

func line(productID, qty, unit int64) cart.Line {
	return cart.Line{Line: pricing.Line{ProductID: productID, Quantity: qty, UnitPriceCents: unit}}
}

func standardCart() []cart.Line {
	return []cart.Line{line(productA, 2, 1000), line(productB, 1, 500)}
}

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func requireRejection(t *testing.T, err error, want promos.Reason) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodePromoInvalid), "got %v", err)
	reason, ok := RejectionReason(err)
	require.True(t, ok)
	assert.Equal(t, want, reason)
}

func TestCheckoutPercentOffWholeCart(t *testing.T) {
	h := newHarness(t, standardCart(), stubPromos{"SAVE10": {Code: "SAVE10", PercentOff: int64Ptr(10)}})

	res, err := h.svc.Checkout(context.Background(), userID, Input{PromoCode: strPtr(" save10 "), IdempotencyKey: "idem-1"})
	require.NoError(t, err)

	assert.EqualValues(t, 2500, res.SubtotalCents)
	assert.EqualValues(t, 250, res.DiscountCents)
	assert.EqualValues(t, 2250, res.ChargeCents)
	assert.Equal(t, "22.50", res.DisplayTotal)
	assert.Equal(t, "AUD", res.Currency)
	assert.Equal(t, "pi_test_secret", res.ClientSecret)
	require.NotNil(t, res.PromoCode)
	assert.Equal(t, "SAVE10", *res.PromoCode)

	require.Len(t, h.payments.calls, 1)
	call := h.payments.calls[0]
	assert.EqualValues(t, 2250, call.AmountCents)
	assert.Equal(t, enums.CurrencyAUD, call.Currency)
	assert.Equal(t, "idem-1", call.IdempotencyKey)
	assert.Equal(t, "SAVE10", call.Metadata["promo_code"])

	assert.Equal(t, 1.0, counterValue(t, h.registry, "checkout_attempts_total", "success"))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, labelValue string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetValue() == labelValue {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestCheckoutAmountOffBeyondSubtotalFails(t *testing.T) {
	h := newHarness(t, standardCart(), stubPromos{"BIG": {Code: "BIG", AmountOffCents: int64Ptr(3000)}})

	_, err := h.svc.Checkout(context.Background(), userID, Input{PromoCode: strPtr("BIG")})
	requireRejection(t, err, promos.ReasonReducesBelowZero)
	assert.Empty(t, h.payments.calls, "no intent for a zero charge")
}

func TestCheckoutWrongProduct(t *testing.T) {
	h := newHarness(t, []cart.Line{line(productA, 1, 100)}, stubPromos{
		"BONLY": {Code: "BONLY", PercentOff: int64Ptr(50), ProductID: int64Ptr(productB)},
	})

	_, err := h.svc.Checkout(context.Background(), userID, Input{PromoCode: strPtr("BONLY")})
	requireRejection(t, err, promos.ReasonWrongProduct)
	assert.Empty(t, h.payments.calls)
	assert.Equal(t, 1.0, counterValue(t, h.registry, "promo_rejections_total", "wrong_product"))
	assert.Equal(t, 1.0, counterValue(t, h.registry, "checkout_attempts_total", "promo_invalid"))
}

func TestCheckoutProductScopedDiscountOnlyTouchesEligibleLines(t *testing.T) {
	h := newHarness(t, standardCart(), stubPromos{
		"HALFB": {Code: "HALFB", PercentOff: int64Ptr(50), ProductID: int64Ptr(productB)},
	})

	res, err := h.svc.Checkout(context.Background(), userID, Input{PromoCode: strPtr("HALFB")})
	require.NoError(t, err)
	assert.EqualValues(t, 250, res.DiscountCents)
	assert.EqualValues(t, 2250, res.ChargeCents)
}

func TestCheckoutWindowChecks(t *testing.T) {
	codes := stubPromos{
		"LATER":  {Code: "LATER", PercentOff: int64Ptr(10), StartsAt: timePtr(fixedNow.Add(time.Hour))},
		"OLD":    {Code: "OLD", PercentOff: int64Ptr(10), EndsAt: timePtr(fixedNow.Add(-time.Second))},
		"EDGE":   {Code: "EDGE", PercentOff: int64Ptr(10), EndsAt: timePtr(fixedNow)},
		"OPENED": {Code: "OPENED", PercentOff: int64Ptr(10), StartsAt: timePtr(fixedNow)},
	}

	cases := []struct {
		code string
		want promos.Reason
	}{
		{"LATER", promos.ReasonNotStarted},
		{"OLD", promos.ReasonExpired},
		{"MISSING", promos.ReasonNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			h := newHarness(t, standardCart(), codes)
			_, err := h.svc.Checkout(context.Background(), userID, Input{PromoCode: strPtr(tc.code)})
			requireRejection(t, err, tc.want)
			assert.Empty(t, h.payments.calls)
		})
	}

	for _, code := range []string{"EDGE", "OPENED"} {
		t.Run(code+" boundary is valid", func(t *testing.T) {
			h := newHarness(t, standardCart(), codes)
			res, err := h.svc.Checkout(context.Background(), userID, Input{PromoCode: strPtr(code)})
			require.NoError(t, err)
			assert.EqualValues(t, 2250, res.ChargeCents)
		})
	}
}

func TestCheckoutWithoutPromoChargesSubtotal(t *testing.T) {
	for name, code := range map[string]*string{"nil": nil, "blank": strPtr("   ")} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, standardCart(), stubPromos{})
			res, err := h.svc.Checkout(context.Background(), userID, Input{PromoCode: code})
			require.NoError(t, err)
			assert.EqualValues(t, 0, res.DiscountCents)
			assert.EqualValues(t, 2500, res.ChargeCents)
			assert.Nil(t, res.PromoCode)
			require.Len(t, h.payments.calls, 1)
			_, hasPromo := h.payments.calls[0].Metadata["promo_code"]
			assert.False(t, hasPromo)
		})
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	for name, lines := range map[string][]cart.Line{
		"no lines":      nil,
		"free products": {line(productA, 3, 0)},
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, lines, stubPromos{"SAVE10": {Code: "SAVE10", PercentOff: int64Ptr(10)}})
			_, err := h.svc.Checkout(context.Background(), userID, Input{PromoCode: strPtr("SAVE10")})
			require.Error(t, err)
			assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeCartEmpty), "got %v", err)
			details, ok := pkgerrors.As(err).Details().(RejectionDetails)
			require.True(t, ok)
			assert.Equal(t, "cart_empty", details.Reason)
			assert.Empty(t, h.payments.calls)
		})
	}
}

func TestCheckoutUpstreamFailure(t *testing.T) {
	h := newHarness(t, standardCart(), stubPromos{})
	h.payments.err = errors.New("card network unavailable")

	_, err := h.svc.Checkout(context.Background(), userID, Input{})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodePaymentUpstream), "got %v", err)
	assert.Len(t, h.payments.calls, 1, "upstream failures are not retried")
}

func TestCheckoutRejectsMismatchedIntent(t *testing.T) {
	h := newHarness(t, standardCart(), stubPromos{})
	h.payments.override = &pkgstripe.Intent{ID: "pi_x", ClientSecret: "secret", AmountCents: 1}

	_, err := h.svc.Checkout(context.Background(), userID, Input{})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodePaymentUpstream), "got %v", err)
}

func TestCheckoutCartStoreError(t *testing.T) {
	h := newHarness(t, nil, stubPromos{})
	h.cart.err = errors.New("db down")

	_, err := h.svc.Checkout(context.Background(), userID, Input{})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInternal), "got %v", err)
	assert.Empty(t, h.payments.calls)
}

func TestCheckoutRefusesTotalsBeyondInt64(t *testing.T) {
	lines := []cart.Line{line(productA, 16, 1<<60+32)}
	h := newHarness(t, lines, stubPromos{"SAVE10": {Code: "SAVE10", PercentOff: int64Ptr(10)}})
	ctx := context.Background()

	_, err := h.svc.Checkout(ctx, userID, Input{})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInternal), "got %v", err)
	assert.ErrorIs(t, err, pricing.ErrOutOfRange)
	assert.Empty(t, h.payments.calls, "a wrapped total must never reach the payment provider")

	_, err = h.svc.Quote(ctx, userID, strPtr("SAVE10"))
	assert.ErrorIs(t, err, pricing.ErrOutOfRange)

	_, err = h.svc.PreviewPromo(ctx, userID, "SAVE10")
	assert.ErrorIs(t, err, pricing.ErrOutOfRange)
}

func TestCheckoutIsDeterministic(t *testing.T) {
	h := newHarness(t, standardCart(), stubPromos{"STACK": {Code: "STACK", PercentOff: int64Ptr(10), AmountOffCents: int64Ptr(100)}})

	first, err := h.svc.Checkout(context.Background(), userID, Input{PromoCode: strPtr("STACK")})
	require.NoError(t, err)
	second, err := h.svc.Checkout(context.Background(), userID, Input{PromoCode: strPtr("STACK")})
	require.NoError(t, err)

	assert.EqualValues(t, 350, first.DiscountCents, "percent and fixed amounts stack")
	assert.Equal(t, first.ChargeCents, second.ChargeCents)
	require.Len(t, h.payments.calls, 2)
	assert.Equal(t, h.payments.calls[0].AmountCents, h.payments.calls[1].AmountCents)
}

func TestQuoteMatchesCheckoutWithoutIntent(t *testing.T) {
	h := newHarness(t, standardCart(), stubPromos{"SAVE10": {Code: "SAVE10", PercentOff: int64Ptr(10)}})

	quote, err := h.svc.Quote(context.Background(), userID, strPtr("save10"))
	require.NoError(t, err)
	assert.EqualValues(t, 2500, quote.SubtotalCents)
	assert.EqualValues(t, 250, quote.DiscountCents)
	assert.EqualValues(t, 2250, quote.TotalCents)
	assert.Equal(t, "22.50", quote.DisplayTotal)
	assert.Empty(t, h.payments.calls)

	_, err = h.svc.Quote(context.Background(), userID, strPtr("NOPE"))
	requireRejection(t, err, promos.ReasonNotFound)
}

func TestPreviewPromo(t *testing.T) {
	codes := stubPromos{
		"SAVE10": {Code: "SAVE10", PercentOff: int64Ptr(10)},
		"BIG":    {Code: "BIG", AmountOffCents: int64Ptr(5000)},
	}

	t.Run("valid", func(t *testing.T) {
		h := newHarness(t, standardCart(), codes)
		preview, err := h.svc.PreviewPromo(context.Background(), userID, "save10")
		require.NoError(t, err)
		assert.True(t, preview.Valid)
		require.NotNil(t, preview.Promo)
		assert.Equal(t, "SAVE10", preview.Promo.Code)
		require.NotNil(t, preview.Quote)
		assert.EqualValues(t, 2250, preview.Quote.TotalCents)
	})

	t.Run("rejected", func(t *testing.T) {
		h := newHarness(t, standardCart(), codes)
		preview, err := h.svc.PreviewPromo(context.Background(), userID, "missing")
		require.NoError(t, err)
		assert.False(t, preview.Valid)
		assert.Equal(t, promos.ReasonNotFound, preview.Reason)
		assert.Equal(t, "That promo code could not be found.", preview.Message)
	})

	t.Run("reduces below zero", func(t *testing.T) {
		h := newHarness(t, standardCart(), codes)
		preview, err := h.svc.PreviewPromo(context.Background(), userID, "BIG")
		require.NoError(t, err)
		assert.False(t, preview.Valid)
		assert.Equal(t, promos.ReasonReducesBelowZero, preview.Reason)
	})

	t.Run("blank code", func(t *testing.T) {
		h := newHarness(t, standardCart(), codes)
		_, err := h.svc.PreviewPromo(context.Background(), userID, "  ")
		require.Error(t, err)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
		assert.Equal(t, "Enter a promo code to apply.", pkgerrors.As(err).Message())
	})

	t.Run("empty cart", func(t *testing.T) {
		h := newHarness(t, nil, codes)
		_, err := h.svc.PreviewPromo(context.Background(), userID, "SAVE10")
		require.Error(t, err)
		assert.Equal(t, "Add an item to your cart before applying a promo code.", pkgerrors.As(err).Message())
	})
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	validator, err := promos.NewValidator(stubPromos{})
	require.NoError(t, err)

	_, err = NewService(nil, validator, &stubPayments{}, enums.CurrencyAUD, logger.Nop(), nil)
	assert.Error(t, err)
	_, err = NewService(&stubCart{}, validator, &stubPayments{}, enums.Currency("XYZ"), logger.Nop(), nil)
	assert.Error(t, err)
	_, err = NewService(&stubCart{}, validator, &stubPayments{}, enums.CurrencyAUD, logger.Nop(), nil)
	assert.NoError(t, err, "metrics are optional")
}
