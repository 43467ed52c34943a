package api

import (
	"github.com/blocknative/opkeys/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type APIMetrics struct {
	ApiReqCounter *prometheus.CounterVec
	ApiReqTiming  *prometheus.HistogramVec
}

func (a *API) initMetrics() {
	a.m.ApiReqCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opkeys",
		Subsystem: "api",
		Name:      "reqcount",
		Help:      "Number of requests.",
	}, []string{"endpoint", "code"})

	a.m.ApiReqTiming = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "opkeys",
		Subsystem: "api",
		Name:      "duration",
		Help:      "Duration of requests per endpoint",
	}, []string{"endpoint"})
}

func (a *API) AttachMetrics(m *metrics.Metrics) {
	m.Register(a.m.ApiReqCounter)
	m.Register(a.m.ApiReqTiming)
}
