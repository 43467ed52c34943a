package rpc

import (
	"github.com/blocknative/opkeys/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type ClientMetrics struct {
	BatchTiming *prometheus.HistogramVec
	BatchSize   *prometheus.HistogramVec
	BatchErrors *prometheus.CounterVec
}

// NewClientMetrics creates collectors that may be shared by several clients,
// every sample is labeled with the client endpoint.
func NewClientMetrics() *ClientMetrics {
	m := &ClientMetrics{}
	m.BatchTiming = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "opkeys",
		Subsystem: "rpc",
		Name:      "batchTiming",
		Help:      "Duration of a single JSON-RPC batch",
	}, []string{"endpoint"})

	m.BatchSize = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "opkeys",
		Subsystem: "rpc",
		Name:      "batchSize",
		Help:      "Number of calls in a single JSON-RPC batch",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"endpoint"})

	m.BatchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "opkeys",
		Subsystem: "rpc",
		Name:      "batchErrors",
		Help:      "Number of failed batches",
	}, []string{"endpoint", "kind"})
	return m
}

func (cm *ClientMetrics) AttachMetrics(m *metrics.Metrics) {
	m.Register(cm.BatchTiming)
	m.Register(cm.BatchSize)
	m.Register(cm.BatchErrors)
}

func (c *Client) AttachMetrics(m *metrics.Metrics) {
	c.m.AttachMetrics(m)
}
