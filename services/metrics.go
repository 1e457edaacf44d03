package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Invocation metrics, labeled by agent display name and outcome. Outcome is
// one of success, timeout, network, status, empty.
var (
	invocationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agent_invocations_total",
		Help: "Agent webhook invocations by agent and outcome.",
	}, []string{"agent", "outcome"})

	invocationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agent_invocation_duration_seconds",
		Help:    "Wall-clock duration of agent webhook invocations.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"agent"})
)

func observeInvocation(agent, outcome string, seconds float64) {
	invocationTotal.WithLabelValues(agent, outcome).Inc()
	invocationDuration.WithLabelValues(agent).Observe(seconds)
}
