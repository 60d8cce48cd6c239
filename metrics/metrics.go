package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpo_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rpo_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30},
		},
		[]string{"method", "path"},
	)

	// Pipeline metrics
	FlowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpo_flows_total",
			Help: "Optimization flows by outcome",
		},
		[]string{"flow", "outcome"}, // outcome: ok, busy, error, panic
	)

	CleanerRuleErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rpo_cleaner_rule_errors_total",
			Help: "Cleaning rules skipped because they failed to compile or timed out",
		},
	)

	SentencesExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rpo_sentences_extracted_total",
			Help: "Sentences extracted for rewriting",
		},
	)

	RewritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpo_rewrites_total",
			Help: "Generative rewrite calls by outcome",
		},
		[]string{"outcome"}, // "ok", "empty", "error"
	)

	SplicesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpo_splices_total",
			Help: "Reconciliations by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	StaleEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rpo_stale_events_dropped_total",
			Help: "Rendered-message events dropped because a newer message exists",
		},
	)

	// Backend metrics
	GenerationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rpo_generation_latency_seconds",
			Help:    "Generative backend call latency",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)
)
