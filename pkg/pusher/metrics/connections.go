package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var openConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "streaming_api_open_connections",
	},
)

func OpenSseConnection() {
	openConnections.Inc()
}

func CloseSseConnection() {
	openConnections.Dec()
}
