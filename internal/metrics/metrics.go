// Package metrics exposes Prometheus instrumentation for the split service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	// ValidationsTotal counts payment validation outcomes. The result label
	// is "accepted" or one of the rejection reason codes.
	ValidationsTotal *prometheus.CounterVec

	// HeartbeatsTotal counts participant liveness pings.
	HeartbeatsTotal prometheus.Counter

	// SessionsCreatedTotal counts opened sessions.
	SessionsCreatedTotal prometheus.Counter
}

// New registers and returns the service metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ValidationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tably",
			Name:      "payment_validations_total",
			Help:      "Payment validation verdicts by result code.",
		}, []string{"result"}),
		HeartbeatsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tably",
			Name:      "heartbeats_total",
			Help:      "Participant liveness pings received.",
		}),
		SessionsCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tably",
			Name:      "sessions_created_total",
			Help:      "Table sessions opened.",
		}),
	}
}
