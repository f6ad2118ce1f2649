package websocket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	// ActiveClients tracks connected websocket clients.
	ActiveClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bookie_arb_ws_active_clients",
		Help: "Number of connected websocket clients",
	})

	// ConnectionsTotal counts accepted websocket connections.
	ConnectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookie_arb_ws_connections_total",
		Help: "Total number of accepted websocket connections",
	})

	// MessagesSentTotal counts frames queued to clients.
	MessagesSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookie_arb_ws_messages_sent_total",
		Help: "Total number of messages queued to websocket clients",
	})

	// MessagesDroppedTotal counts frames dropped for slow clients.
	MessagesDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookie_arb_ws_messages_dropped_total",
		Help: "Total number of messages dropped because a client was too slow",
	})
)
