package discovery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	// FixturesListed tracks the size of the last fixture list per source.
	FixturesListed = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bookie_arb_discovery_fixtures",
			Help: "Number of valid fixtures in the last list per source",
		},
		[]string{"source"},
	)

	// FetchDurationSeconds tracks fixture list fetch latency.
	FetchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookie_arb_discovery_fetch_duration_seconds",
			Help:    "Duration of fixture list fetches",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"source"},
	)

	// FetchErrorsTotal tracks fixture list fetch failures.
	FetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookie_arb_discovery_fetch_errors_total",
			Help: "Total number of fixture list fetch failures",
		},
		[]string{"source"},
	)

	// MatchedPairs tracks the number of pairs found by the last matcher run.
	MatchedPairs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bookie_arb_discovery_matched_pairs",
		Help: "Number of matched fixture pairs from the last matcher run",
	})

	// LastMatchTimestamp is the unix time of the last matcher run.
	LastMatchTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bookie_arb_discovery_last_match_timestamp_seconds",
		Help: "Unix time of the last matcher run",
	})
)
