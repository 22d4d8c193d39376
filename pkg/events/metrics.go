package events

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arnac-io/safekeeper/internal/g"
)

var eventsQuantity = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "safe_events",
	},
	[]string{
		"event",
	},
)

func eventPublished(name Name) {
	eventsQuantity.With(map[string]string{"event": g.CamelToSnake(name.String())}).Inc()
}
