package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the application's Prometheus collectors
type Metrics struct {
	Registry        *prometheus.Registry
	LedgerMutations *prometheus.CounterVec
	AIRequests      *prometheus.CounterVec
}

// NewMetrics creates a private registry with runtime collectors and the ledger/AI counters
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,
		LedgerMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "luxetrack_ledger_mutations_total",
			Help: "Ledger create/update/delete operations by result.",
		}, []string{"operation", "result"}),
		AIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "luxetrack_ai_requests_total",
			Help: "Chat and vision requests by outcome.",
		}, []string{"feature", "outcome"}),
	}

	reg.MustRegister(m.LedgerMutations, m.AIRequests)
	return m
}

func (m *Metrics) mutation(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.LedgerMutations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) aiRequest(feature, outcome string) {
	if m == nil {
		return
	}
	m.AIRequests.WithLabelValues(feature, outcome).Inc()
}
