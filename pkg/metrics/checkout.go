package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records charge assembly outcomes.
type CheckoutMetrics struct {
	duration   *prometheus.HistogramVec
	attempts   *prometheus.CounterVec
	rejections *prometheus.CounterVec
	charged    prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout charge assembly in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts by terminal outcome.",
	}, []string{"outcome"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promo_rejections_total",
		Help: "Promo codes rejected during validation, by reason.",
	}, []string{"reason"})
	charged := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_charged_minor_units_total",
		Help: "Sum of amounts sent to the payment provider, in minor units.",
	})
	reg.MustRegister(duration, attempts, rejections, charged)
	return &CheckoutMetrics{
		duration:   duration,
		attempts:   attempts,
		rejections: rejections,
		charged:    charged,
	}
}

// ObserveAttempt records one finished checkout attempt.
func (m *CheckoutMetrics) ObserveAttempt(outcome string, duration time.Duration) {
	if m == nil || m.attempts == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	m.attempts.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncPromoRejection counts a rejected promo code.
func (m *CheckoutMetrics) IncPromoRejection(reason string) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(reason)).Inc()
}

// AddCharged adds a created intent amount.
func (m *CheckoutMetrics) AddCharged(amountCents int64) {
	if m == nil || m.charged == nil || amountCents <= 0 {
		return
	}
	m.charged.Add(float64(amountCents))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
