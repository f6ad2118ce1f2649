package scraper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	// RequestsTotal counts bookmaker API requests by source and result.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookie_arb_scraper_requests_total",
		Help: "Total bookmaker API requests by source and result",
	}, []string{"source", "result"})

	// RequestDurationSeconds tracks bookmaker API latency.
	RequestDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookie_arb_scraper_request_duration_seconds",
		Help:    "Duration of bookmaker API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	// DomainRotationsTotal counts switches to the next mirror domain.
	DomainRotationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookie_arb_scraper_domain_rotations_total",
		Help: "Total switches to a fallback domain after a retryable failure",
	}, []string{"source"})

	// FixturesFetchedTotal counts fixtures returned by fixture list fetches.
	FixturesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookie_arb_scraper_fixtures_fetched_total",
		Help: "Total fixtures fetched from bookmaker fixture lists",
	}, []string{"source"})

	// SubGameFailuresTotal counts segment sub-game fetches that failed.
	SubGameFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookie_arb_scraper_subgame_failures_total",
		Help: "Total failed segment sub-game fetches",
	}, []string{"source"})
)
