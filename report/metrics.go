package report

import (
	"github.com/blocknative/opkeys/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type ExporterMetrics struct {
	Writes       prometheus.Counter
	FailedWrites prometheus.Counter
}

func (e *Exporter) initMetrics() {
	e.m.Writes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "opkeys",
		Subsystem: "report",
		Name:      "writes",
		Help:      "Number of exported reports",
	})

	e.m.FailedWrites = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "opkeys",
		Subsystem: "report",
		Name:      "failedWrites",
		Help:      "Number of reports that failed to export",
	})
}

func (e *Exporter) AttachMetrics(m *metrics.Metrics) {
	m.Register(e.m.Writes)
	m.Register(e.m.FailedWrites)
}
