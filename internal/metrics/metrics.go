// Package metrics exposes prometheus instrumentation for the workflow engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's prometheus collectors
type Metrics struct {
	ProtocolsCreated *prometheus.CounterVec
	Transitions      *prometheus.CounterVec
}

// New registers the engine collectors on the given registerer
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ProtocolsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "protocol_engine_protocols_created_total",
			Help: "Protocols created, by protocol type.",
		}, []string{"type"}),
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "protocol_engine_transitions_total",
			Help: "Workflow transition attempts, by protocol type, target step and result.",
		}, []string{"type", "target", "result"}),
	}
}

// NewDefault registers the collectors on the default prometheus registry
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer)
}
