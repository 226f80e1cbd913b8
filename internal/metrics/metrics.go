package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters and gauges registered on the default registry and served by the
// /metrics endpoint.
var (
	ShotsSimulated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pool_shots_simulated_total",
		Help: "Number of shots run through the physics simulation.",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pool_events_published_total",
		Help: "Number of room events published, by event type.",
	}, []string{"type"})

	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pool_ws_connections",
		Help: "Number of open websocket connections.",
	})

	DroppedMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pool_ws_dropped_messages_total",
		Help: "Messages dropped because a client send buffer was full.",
	})
)
