package promos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

type stubFinder struct {
	promos map[string]*models.PromoCode
	err    error
	seen   []string
}

func (s *stubFinder) FindByCode(_ context.Context, code string) (*models.PromoCode, error) {
	s.seen = append(s.seen, code)
	if s.err != nil {
		return nil, s.err
	}
	return s.promos[code], nil
}

func int64Ptr(v int64) *int64 { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func productSet(ids ...int64) map[int64]struct{} {
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func TestValidatorRejectionOrder(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	finder := &stubFinder{promos: map[string]*models.PromoCode{
		"SAVE10":   {Code: "SAVE10", PercentOff: int64Ptr(10)},
		"FUTURE":   {Code: "FUTURE", PercentOff: int64Ptr(10), StartsAt: timePtr(now.Add(time.Hour))},
		"OLD":      {Code: "OLD", AmountOffCents: int64Ptr(500), EndsAt: timePtr(now.Add(-time.Hour))},
		"SCOPED":   {Code: "SCOPED", PercentOff: int64Ptr(20), ProductID: int64Ptr(2)},
		"FUTUREOLD": {
			Code: "FUTUREOLD", PercentOff: int64Ptr(10),
			StartsAt: timePtr(now.Add(time.Hour)), EndsAt: timePtr(now.Add(-time.Hour)),
		},
		"EXPIREDSCOPED": {
			Code: "EXPIREDSCOPED", PercentOff: int64Ptr(10),
			EndsAt: timePtr(now.Add(-time.Minute)), ProductID: int64Ptr(99),
		},
		"EDGE": {Code: "EDGE", PercentOff: int64Ptr(5), StartsAt: timePtr(now), EndsAt: timePtr(now)},
	}}
	v, err := NewValidator(finder)
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	cases := []struct {
		code   string
		cart   map[int64]struct{}
		reason Reason
	}{
		{code: "  save10 ", cart: productSet(1), reason: ""},
		{code: "NOPE", cart: productSet(1), reason: ReasonNotFound},
		{code: "   ", cart: productSet(1), reason: ReasonNotFound},
		{code: "future", cart: productSet(1), reason: ReasonNotStarted},
		{code: "old", cart: productSet(1), reason: ReasonExpired},
		{code: "scoped", cart: productSet(1), reason: ReasonWrongProduct},
		{code: "scoped", cart: productSet(1, 2), reason: ""},
		{code: "futureold", cart: productSet(1), reason: ReasonNotStarted},
		{code: "expiredscoped", cart: productSet(1), reason: ReasonExpired},
		{code: "edge", cart: productSet(1), reason: ""},
	}

	for _, tc := range cases {
		res, err := v.Validate(context.Background(), tc.code, now, tc.cart)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.code, err)
		}
		if tc.reason == "" {
			if !res.IsValid() {
				t.Fatalf("%s: expected valid, got %s", tc.code, res.Reason())
			}
			continue
		}
		if res.IsValid() || res.Reason() != tc.reason {
			t.Fatalf("%s: expected %s, got valid=%v reason=%s", tc.code, tc.reason, res.IsValid(), res.Reason())
		}
	}
}

func TestValidatorReturnsTermsUnchanged(t *testing.T) {
	t.Parallel()

	finder := &stubFinder{promos: map[string]*models.PromoCode{
		"COMBO": {Code: "COMBO", PercentOff: int64Ptr(15), AmountOffCents: int64Ptr(300), ProductID: int64Ptr(4)},
	}}
	v, _ := NewValidator(finder)

	res, err := v.Validate(context.Background(), "combo", time.Now(), productSet(4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	promo, ok := res.Promo()
	if !ok {
		t.Fatalf("expected valid promo, got %s", res.Reason())
	}
	if promo.Code != "COMBO" || *promo.PercentOff != 15 || *promo.AmountOffCents != 300 || *promo.ProductID != 4 {
		t.Fatalf("unexpected promo %+v", promo)
	}
	if len(finder.seen) != 1 || finder.seen[0] != "COMBO" {
		t.Fatalf("expected lookup by normalized code, got %v", finder.seen)
	}
}

func TestValidatorPropagatesStoreErrors(t *testing.T) {
	t.Parallel()

	v, _ := NewValidator(&stubFinder{err: errors.New("db down")})
	if _, err := v.Validate(context.Background(), "SAVE10", time.Now(), nil); err == nil {
		t.Fatal("expected store error")
	}
}

func TestReasonMessages(t *testing.T) {
	t.Parallel()

	if ReasonExpired.Message() != "That promo code has expired." {
		t.Fatalf("unexpected message %q", ReasonExpired.Message())
	}
	if ReasonReducesBelowZero.Message() != "That promo code isn't valid for your cart." {
		t.Fatalf("expected default message, got %q", ReasonReducesBelowZero.Message())
	}
}

func TestResultIsTagged(t *testing.T) {
	t.Parallel()

	r := Rejected(ReasonExpired)
	if _, ok := r.Promo(); ok || r.IsValid() {
		t.Fatal("rejected result must not carry a promo")
	}
	v := Valid(ValidatedPromo{Code: "X"})
	if v.Reason() != "" || !v.IsValid() {
		t.Fatal("valid result must not carry a reason")
	}
}
