package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var executionTime = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "safe_transaction_execution_time",
	},
	[]string{"outcome"},
)

type executionTimer struct {
	timer   *prometheus.Timer
	outcome string
}

func newExecutionTimer() *executionTimer {
	t := &executionTimer{}
	t.timer = prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		executionTime.WithLabelValues(t.outcome).Observe(v)
	}))
	return t
}

func (t *executionTimer) observe(outcome string) {
	t.outcome = outcome
	t.timer.ObserveDuration()
}
