package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCheckoutMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)

	m.ObserveAttempt("intent_created", 120*time.Millisecond)
	m.ObserveAttempt("promo_invalid", 5*time.Millisecond)
	m.IncPromoRejection("expired")
	m.IncPromoRejection("")
	m.AddCharged(2250)
	m.AddCharged(-5)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "checkout_attempts_total", "outcome", "intent_created"); err != nil || got != 1 {
		t.Fatalf("expected intent_created=1, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "promo_rejections_total", "reason", "expired"); err != nil || got != 1 {
		t.Fatalf("expected expired=1, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "promo_rejections_total", "reason", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected unknown=1, got %f err=%v", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "checkout_duration_seconds", "outcome", "intent_created"); err != nil || got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f err=%v", got, err)
	}

	charged := findMetricFamily(mfs, "checkout_charged_minor_units_total")
	if charged == nil || charged.GetMetric()[0].GetCounter().GetValue() != 2250 {
		t.Fatalf("expected charged total 2250")
	}
}

func TestCheckoutMetricsNilSafe(t *testing.T) {
	var m *CheckoutMetrics
	m.ObserveAttempt("x", time.Second)
	m.IncPromoRejection("x")
	m.AddCharged(1)

	NewCheckoutMetrics(nil).ObserveAttempt("x", time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, lp := range labels {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}
