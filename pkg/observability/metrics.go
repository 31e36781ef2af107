// Package observability provides Prometheus metrics, OpenTelemetry tracing,
// and HTTP middleware for monitoring the TradeMate support platform.
package observability

import "github.com/prometheus/client_golang/prometheus"

// HTTPBuckets defines histogram buckets for API latencies, from 5ms to 10s.
var HTTPBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

var (
	// RequestsTotal counts all HTTP requests by method, status class, and route.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trademate_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status", "route"},
	)

	// RequestDuration records HTTP request duration in seconds by method and route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trademate_request_duration_seconds",
			Help:    "Request duration",
			Buckets: HTTPBuckets,
		},
		[]string{"method", "route"},
	)

	// SupportRequestsTotal counts processed support requests.
	SupportRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trademate_support_requests_total",
			Help: "Support requests processed",
		},
		[]string{"intent", "language", "channel"},
	)

	// EscalationsTotal counts support requests escalated to a human, by tier.
	EscalationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trademate_escalations_total",
			Help: "Escalated support requests",
		},
		[]string{"tier"},
	)

	// PartnersOnboardedTotal counts successful onboardings by tier.
	PartnersOnboardedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trademate_partners_onboarded_total",
			Help: "Partners onboarded",
		},
		[]string{"tier"},
	)

	// WebhookMessagesTotal counts inbound WhatsApp messages by message type.
	WebhookMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trademate_webhook_messages_total",
			Help: "WhatsApp webhook messages",
		},
		[]string{"type"},
	)

	// RateLimitRejectedTotal counts requests rejected by the rate limiter.
	RateLimitRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trademate_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
		[]string{"tier"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		SupportRequestsTotal,
		EscalationsTotal,
		PartnersOnboardedTotal,
		WebhookMessagesTotal,
		RateLimitRejectedTotal,
	)
}
