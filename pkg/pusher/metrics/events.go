package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arnac-io/safekeeper/pkg/events"
)

var eventsQuantity = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "streaming_api_events",
	},
	[]string{
		"event",
		"result",
	},
)

func SseEventSent(event events.Name) {
	eventsQuantity.With(map[string]string{"event": event.String(), "result": "sent"}).Inc()
}

// SseEventDropped counts events lost because a client's queue was full.
func SseEventDropped(event events.Name) {
	eventsQuantity.With(map[string]string{"event": event.String(), "result": "dropped"}).Inc()
}
