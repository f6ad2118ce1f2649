package jobs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	// JobRunsTotal counts finished job runs by result.
	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookie_arb_job_runs_total",
			Help: "Total number of finished job runs",
		},
		[]string{"job", "result"},
	)

	// JobDurationSeconds tracks how long job runs take.
	JobDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookie_arb_job_duration_seconds",
			Help:    "Duration of job runs",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"job"},
	)

	// JobsRunning is 1 while a job runs.
	JobsRunning = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bookie_arb_jobs_running",
			Help: "Whether a job is currently running",
		},
		[]string{"job"},
	)
)
