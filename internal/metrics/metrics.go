package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP
var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huntboard_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "huntboard_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Pipeline
var (
	// WebhooksTotal counts ingestion attempts; outcome is one of
	// accepted, rejected, duplicate, failed.
	WebhooksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huntboard_webhooks_total",
			Help: "Webhook deliveries by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	DispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huntboard_dispatches_total",
			Help: "Workflow run dispatches by mode and result.",
		},
		[]string{"mode", "result"},
	)

	ExecutionsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huntboard_executions_completed_total",
			Help: "Finished workflow executions by status.",
		},
		[]string{"status"},
	)
)

const (
	OutcomeAccepted  = "accepted"
	OutcomeRejected  = "rejected"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)
