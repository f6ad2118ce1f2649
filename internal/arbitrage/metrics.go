package arbitrage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	// OpportunitiesDetectedTotal tracks arbitrage opportunities detected by market.
	OpportunitiesDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookie_arb_opportunities_detected_total",
			Help: "Total number of arbitrage opportunities detected",
		},
		[]string{"market_family"},
	)

	// OpportunityProfitPercent tracks the guaranteed profit of detected opportunities.
	OpportunityProfitPercent = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bookie_arb_opportunity_profit_percent",
		Help:    "Arbitrage opportunity profit in percent of total stake",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 10, 20},
	})

	// OpportunitiesRejectedTotal tracks opportunities dropped by reason.
	OpportunitiesRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookie_arb_opportunities_rejected_total",
			Help: "Total number of arbitrage opportunities rejected",
		},
		[]string{"reason"},
	)

	// ScanDurationSeconds tracks how long scanning one fixture pair takes.
	ScanDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bookie_arb_scan_duration_seconds",
		Help:    "Duration of scanning one fixture pair",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})
)

// RecordOpportunity updates detection metrics for opp.
func RecordOpportunity(opp *Opportunity) {
	OpportunitiesDetectedTotal.WithLabelValues(MarketFamily(opp.Market)).Inc()
	OpportunityProfitPercent.Observe(opp.ProfitPercent)
}
