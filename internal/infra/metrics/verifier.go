package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	verifierCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "giveaway_verifier_calls_total",
			Help: "Mailing-list verifier calls, by outcome (ok/absent/error).",
		},
		[]string{"outcome"},
	)
)

func init() {
	register(verifierCalls)
}

func ObserveVerifierCall(outcome string) { verifierCalls.WithLabelValues(outcome).Inc() }
