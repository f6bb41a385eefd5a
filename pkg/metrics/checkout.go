package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records submission outcomes for the order coordinator.
type CheckoutMetrics struct {
	duration  *prometheus.HistogramVec
	confirmed prometheus.Counter
	failed    prometheus.Counter
	duplicate prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_submission_duration_seconds",
		Help:    "Duration of order submission attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	confirmed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_orders_confirmed",
		Help: "Orders created from finalized checkout sessions.",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_submissions_failed",
		Help: "Order submissions that ended in the failed state.",
	})
	duplicate := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_duplicate_finalizations",
		Help: "Finalization calls rejected by the submission latch.",
	})
	reg.MustRegister(duration, confirmed, failed, duplicate)
	return &CheckoutMetrics{
		duration:  duration,
		confirmed: confirmed,
		failed:    failed,
		duplicate: duplicate,
	}
}

// ObserveDuration records the duration of a submission attempt.
func (c *CheckoutMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	c.duration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncConfirmed increments the confirmed-order counter.
func (c *CheckoutMetrics) IncConfirmed() {
	if c == nil || c.confirmed == nil {
		return
	}
	c.confirmed.Inc()
}

// IncFailed increments the failed-submission counter.
func (c *CheckoutMetrics) IncFailed() {
	if c == nil || c.failed == nil {
		return
	}
	c.failed.Inc()
}

// IncDuplicate increments the latch-rejection counter.
func (c *CheckoutMetrics) IncDuplicate() {
	if c == nil || c.duplicate == nil {
		return
	}
	c.duplicate.Inc()
}
