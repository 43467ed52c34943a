package validators

import (
	"github.com/blocknative/opkeys/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type ValidatorMetrics struct {
	Timing    *prometheus.HistogramVec
	Keys      *prometheus.CounterVec
	CacheHits *prometheus.CounterVec
}

func (v *Validator) initMetrics() {
	v.m.Timing = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "opkeys",
		Subsystem: "validators",
		Name:      "validateTiming",
		Help:      "Duration of key validation",
	}, []string{"result"})

	v.m.Keys = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opkeys",
		Subsystem: "validators",
		Name:      "keys",
		Help:      "Number of validated keys",
	}, []string{"result"})

	v.m.CacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opkeys",
		Subsystem: "validators",
		Name:      "verificationCache",
		Help:      "cache hit/miss",
	}, []string{"result"})
}

func (v *Validator) AttachMetrics(m *metrics.Metrics) {
	m.Register(v.m.Timing)
	m.Register(v.m.Keys)
	m.Register(v.m.CacheHits)
}
