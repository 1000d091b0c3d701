// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rentpay_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rentpay_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// PaymentIntentsTotal counts intent creation attempts by result.
	PaymentIntentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rentpay_payment_intents_total",
			Help: "Payment intents requested from the processor.",
		},
		[]string{"result"},
	)

	// WebhookEventsTotal counts processor events by type and outcome.
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rentpay_webhook_events_total",
			Help: "Processor webhook events handled.",
		},
		[]string{"type", "outcome"},
	)

	ProcessorCustomersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rentpay_processor_customers_created_total",
			Help: "Processor customers created for profiles.",
		},
	)

	NotificationClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rentpay_notification_clients",
			Help: "Connected notification websocket clients.",
		},
	)
)
