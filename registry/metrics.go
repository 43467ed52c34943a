package registry

import (
	"github.com/blocknative/opkeys/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type SyncMetrics struct {
	Timing     *prometheus.HistogramVec
	Keys       *prometheus.CounterVec
	Violations *prometheus.CounterVec
}

func (s *Syncer) initMetrics() {
	s.m.Timing = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "opkeys",
		Subsystem: "registry",
		Name:      "syncTiming",
		Help:      "Duration of registry sync phases",
	}, []string{"phase", "result"})

	s.m.Keys = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opkeys",
		Subsystem: "registry",
		Name:      "keys",
		Help:      "Number of keys handled by key sync",
	}, []string{"action"})

	s.m.Violations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opkeys",
		Subsystem: "registry",
		Name:      "violations",
		Help:      "Number of invariant violations in registry data",
	}, []string{"kind"})
}

func (s *Syncer) AttachMetrics(m *metrics.Metrics) {
	m.Register(s.m.Timing)
	m.Register(s.m.Keys)
	m.Register(s.m.Violations)
}
