package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ContractMetrics records contract lifecycle transitions and the orphaned
// signature count surfaced by the reconciler.
type ContractMetrics struct {
	transitions *prometheus.CounterVec
	orphaned    prometheus.Gauge
}

// NewContractMetrics registers the contract metrics on the provided registerer.
func NewContractMetrics(reg prometheus.Registerer) *ContractMetrics {
	if reg == nil {
		return &ContractMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contract_transitions_total",
		Help: "Contract lifecycle transitions by operation and outcome.",
	}, []string{"operation", "outcome"})
	orphaned := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "contract_orphaned_signatures",
		Help: "Signature rows whose parent contract no longer exists.",
	})
	reg.MustRegister(transitions, orphaned)
	return &ContractMetrics{
		transitions: transitions,
		orphaned:    orphaned,
	}
}

// IncTransition counts one lifecycle transition attempt outcome.
func (c *ContractMetrics) IncTransition(operation, outcome string) {
	if c == nil || c.transitions == nil {
		return
	}
	c.transitions.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

// SetOrphanedSignatures publishes the latest reconciler sweep result.
func (c *ContractMetrics) SetOrphanedSignatures(count int) {
	if c == nil || c.orphaned == nil {
		return
	}
	c.orphaned.Set(float64(count))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
