package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestContractMetricsTransitionCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewContractMetrics(reg)

	m.IncTransition("sign", "executed")
	m.IncTransition("sign", "executed")
	m.IncTransition("withdraw", "already_resolved")
	m.SetOrphanedSignatures(3)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	byName := map[string]*dto.MetricFamily{}
	for _, fam := range families {
		byName[fam.GetName()] = fam
	}

	transitions, ok := byName["contract_transitions_total"]
	if !ok {
		t.Fatalf("transitions counter not registered")
	}
	var signExecuted float64
	for _, metric := range transitions.GetMetric() {
		labels := map[string]string{}
		for _, pair := range metric.GetLabel() {
			labels[pair.GetName()] = pair.GetValue()
		}
		if labels["operation"] == "sign" && labels["outcome"] == "executed" {
			signExecuted = metric.GetCounter().GetValue()
		}
	}
	if signExecuted != 2 {
		t.Fatalf("expected 2 sign/executed transitions, got %v", signExecuted)
	}

	orphaned, ok := byName["contract_orphaned_signatures"]
	if !ok {
		t.Fatalf("orphaned gauge not registered")
	}
	if got := orphaned.GetMetric()[0].GetGauge().GetValue(); got != 3 {
		t.Fatalf("expected orphaned gauge 3, got %v", got)
	}
}

func TestNilRegistererIsSafe(t *testing.T) {
	m := NewContractMetrics(nil)
	m.IncTransition("create", "created")
	m.SetOrphanedSignatures(1)

	p := NewPublisherMetrics(nil)
	p.IncPublished("contract_executed")
	p.IncFailure("contract_executed")
	p.IncDeadLettered()
}
