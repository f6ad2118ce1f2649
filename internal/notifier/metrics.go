package notifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	// NotificationsSentTotal counts delivered alert messages.
	NotificationsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookie_arb_notifications_sent_total",
		Help: "Total alert messages delivered",
	})

	// NotificationsFailedTotal counts alert messages the transport rejected.
	NotificationsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookie_arb_notifications_failed_total",
		Help: "Total alert messages that failed to send",
	})

	// NotificationsDroppedTotal counts alerts dropped because the queue was full.
	NotificationsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookie_arb_notifications_dropped_total",
		Help: "Total alert messages dropped on a full queue",
	})

	// OpportunitiesDeduplicatedTotal counts opportunities suppressed as already alerted.
	OpportunitiesDeduplicatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookie_arb_notifications_deduplicated_total",
		Help: "Total opportunities suppressed because they were alerted recently",
	})
)
