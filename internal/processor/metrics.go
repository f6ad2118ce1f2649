package processor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	// PairsProcessedTotal counts scanned pairs by result.
	PairsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookie_arb_pairs_processed_total",
			Help: "Total number of fixture pairs processed",
		},
		[]string{"result"},
	)

	// ProcessDurationSeconds tracks the duration of whole processing runs.
	ProcessDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bookie_arb_process_duration_seconds",
		Help:    "Duration of processing all matched pairs",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})

	// LastRunOpportunities is the number of opportunities found by the last run.
	LastRunOpportunities = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bookie_arb_process_last_opportunities",
		Help: "Number of opportunities found by the last processing run",
	})
)
