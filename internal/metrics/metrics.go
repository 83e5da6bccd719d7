// Package metrics defines the Prometheus collectors for generation and persistence.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeInFlight = "in_flight"
)

var (
	// GenerationTotal counts generation requests by operation and outcome.
	GenerationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_journal_generation_total",
			Help: "Generation requests by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	// GenerationDuration observes latency of external generation calls.
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "insight_journal_generation_duration_seconds",
			Help:    "Latency of generation service calls",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"op"},
	)

	// InsightsSaved counts insights appended to the collection.
	InsightsSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insight_journal_insights_saved_total",
			Help: "Insights appended to the collection",
		},
	)

	// PersistFailures counts failed writes of the collection.
	PersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insight_journal_persist_failures_total",
			Help: "Failed writes of the insight collection",
		},
	)

	// LoadRecoveries counts loads that found unreadable state and started empty.
	LoadRecoveries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "insight_journal_load_recoveries_total",
			Help: "Loads that discarded unreadable persisted state",
		},
	)
)
