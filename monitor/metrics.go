package monitor

import (
	"github.com/blocknative/opkeys/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type MonitorMetrics struct {
	CycleTiming *prometheus.HistogramVec
	Operators   prometheus.Gauge
	Keys        *prometheus.GaugeVec
	Violations  prometheus.Gauge
}

func (m *Monitor) initMetrics() {
	m.m.CycleTiming = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "opkeys",
		Subsystem: "monitor",
		Name:      "cycleTiming",
		Help:      "Duration of cycle phases",
	}, []string{"phase", "result"})

	m.m.Operators = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "opkeys",
		Subsystem: "monitor",
		Name:      "operators",
		Help:      "Number of operators in the registry",
	})

	m.m.Keys = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "opkeys",
		Subsystem: "monitor",
		Name:      "keys",
		Help:      "Number of signing keys by state",
	}, []string{"state"})

	m.m.Violations = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "opkeys",
		Subsystem: "monitor",
		Name:      "violations",
		Help:      "Number of invariant violations in the last cycle",
	})
}

func (m *Monitor) AttachMetrics(mm *metrics.Metrics) {
	mm.Register(m.m.CycleTiming)
	mm.Register(m.m.Operators)
	mm.Register(m.m.Keys)
	mm.Register(m.m.Violations)
}
