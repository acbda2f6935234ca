package stripe

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// IntentRequest describes a charge to be authorised by the shopper.
type IntentRequest struct {
	AmountCents    int64
	Currency       enums.Currency
	UserID         int64
	IdempotencyKey string
	Metadata       map[string]string
}

// Intent is the provider-side handle returned to the checkout flow.
type Intent struct {
	ID           string
	ClientSecret string
	AmountCents  int64
	Currency     enums.Currency
}

const maxIdempotencyKeyLen = 255

type createFunc func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)

// PaymentIntents creates Stripe PaymentIntents with automatic payment methods.
type PaymentIntents struct {
	create createFunc
	logg   *logger.Logger
}

// NewPaymentIntents binds intent creation to an initialized client.
func NewPaymentIntents(client *Client, logg *logger.Logger) (*PaymentIntents, error) {
	if client == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &PaymentIntents{create: paymentintent.New, logg: logg}, nil
}

// CreateIntent asks Stripe for an intent of exactly req.AmountCents.
func (p *PaymentIntents) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	if req.AmountCents <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if !req.Currency.IsValid() {
		return nil, fmt.Errorf("invalid currency %q", req.Currency)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(req.Currency.Lower()),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		params.SetIdempotencyKey(scopedIdempotencyKey(req.UserID, key))
	}
	if req.UserID > 0 {
		params.AddMetadata("user_id", strconv.FormatInt(req.UserID, 10))
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	ctx = p.logg.WithFields(ctx, map[string]any{
		"stripe_phase": "request",
		"amount_cents": req.AmountCents,
		"currency":     req.Currency.String(),
	})
	p.logg.Debug(ctx, "stripe.payment_intent.create")

	pi, err := p.create(params)
	if err != nil {
		ctx = p.logg.WithFields(ctx, stripeErrorFields(err))
		p.logg.Error(ctx, "stripe.payment_intent.create_failed", err)
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	if pi == nil || pi.ClientSecret == "" {
		return nil, fmt.Errorf("create payment intent: empty response")
	}

	ctx = p.logg.WithFields(ctx, map[string]any{
		"stripe_phase":      "response",
		"payment_intent_id": pi.ID,
		"status":            string(pi.Status),
	})
	p.logg.Info(ctx, "stripe.payment_intent.created")

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Currency:     req.Currency,
	}, nil
}

// scopedIdempotencyKey namespaces a client key per user. Stripe scopes keys to
// the whole account, so two shoppers choosing the same key must not collide.
// Keys past Stripe's length limit are hashed.
func scopedIdempotencyKey(userID int64, key string) string {
	scoped := fmt.Sprintf("checkout:%d:%s", userID, key)
	if len(scoped) <= maxIdempotencyKeyLen {
		return scoped
	}
	sum := sha256.Sum256([]byte(scoped))
	return fmt.Sprintf("checkout:%d:%s", userID, hex.EncodeToString(sum[:]))
}

func stripeErrorFields(err error) map[string]any {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return map[string]any{"stripe_phase": "transport"}
	}
	return map[string]any{
		"stripe_phase":       "response",
		"stripe_error_type":  string(stripeErr.Type),
		"stripe_error_code":  string(stripeErr.Code),
		"stripe_http_status": stripeErr.HTTPStatusCode,
		"stripe_request_id":  stripeErr.RequestID,
	}
}
