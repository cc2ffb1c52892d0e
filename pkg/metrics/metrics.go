package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Supervisor metrics
	SupervisorDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_supervisor_decisions_total",
			Help: "Supervisor decisions by the rule that produced them",
		},
		[]string{"rule", "action"},
	)

	OracleFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_oracle_fallbacks_total",
			Help: "Oracle answers replaced by the deterministic fallback",
		},
		[]string{"reason"},
	)

	// Worker metrics
	WorkerExecutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_worker_executions_total",
			Help: "Worker executions by kind and outcome",
		},
		[]string{"worker", "success"},
	)

	WorkerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travel_worker_duration_seconds",
			Help:    "Worker execution duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"worker"},
	)

	// Run metrics
	RunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_runs_completed_total",
			Help: "Completed orchestration runs by outcome",
		},
		[]string{"status"},
	)

	RunRounds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "travel_run_rounds",
			Help:    "Dispatch rounds per orchestration run",
			Buckets: []float64{0, 1, 2, 3, 4},
		},
	)

	CheckpointErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "travel_checkpoint_errors_total",
			Help: "Failed checkpoint saves",
		},
	)
)
