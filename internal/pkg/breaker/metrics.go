package breaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess      = "success"
	outcomeFailure      = "failure"
	outcomeShortCircuit = "short_circuit"
)

var (
	stateGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Current breaker state per capability (0=closed, 1=open, 2=half-open).",
	}, []string{"capability"})

	callCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circuit_breaker_calls_total",
		Help: "Breaker call outcomes per capability.",
	}, []string{"capability", "outcome"})
)

func observeState(name string, s State) {
	stateGauge.WithLabelValues(name).Set(float64(s))
}

func observeCall(name, outcome string) {
	callCounter.WithLabelValues(name, outcome).Inc()
}
