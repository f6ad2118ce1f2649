package circuitbreaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	// BreakerOpen is 1 while a source's breaker is open.
	BreakerOpen = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bookie_arb_circuit_breaker_open",
		Help: "Whether the source's circuit breaker is open (1=open, 0=closed)",
	}, []string{"source"})

	// BreakerStateChangesTotal counts opens and closes.
	BreakerStateChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookie_arb_circuit_breaker_state_changes_total",
		Help: "Total number of times a source's circuit breaker changed state",
	}, []string{"source"})

	// BreakerRejectedTotal counts fetches refused while open.
	BreakerRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookie_arb_circuit_breaker_rejected_total",
		Help: "Total number of fetches refused by an open circuit breaker",
	}, []string{"source"})
)
