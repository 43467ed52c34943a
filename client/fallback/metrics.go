package fallback

import (
	"github.com/blocknative/opkeys/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	ServedFrom *prometheus.CounterVec
}

func (f *Fallback) initMetrics() {
	f.m.ServedFrom = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opkeys",
		Subsystem: "client",
		Name:      "requestSource",
		Help:      "Number of batches served by endpoint",
	}, []string{"kind", "node", "result"})
}

func (f *Fallback) AttachMetrics(m *metrics.Metrics) {
	m.Register(f.m.ServedFrom)
}
