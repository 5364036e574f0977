package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookEvents counts provider events by type and how they ended
	// (processed, duplicate, ignored, failed, rejected).
	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "webhook_events_total",
			Help:      "Payment provider webhook events by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	CheckoutSessions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "checkout_sessions_total",
			Help:      "Checkout sessions opened with the payment provider",
		},
		[]string{"kind", "result"},
	)

	// PaymentsRecorded counts ledger entries by method. Amount is tracked separately.
	PaymentsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "payments_recorded_total",
			Help:      "Payment transactions written to the ledger",
		},
		[]string{"method"},
	)

	PaymentsAmount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "payments_amount_total",
			Help:      "Sum of recorded payment amounts in major currency units",
		},
		[]string{"method"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
