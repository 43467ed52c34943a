package verify

import (
	"github.com/blocknative/opkeys/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type ProcessManagerMetrics struct {
	VerifyTiming   *prometheus.HistogramVec
	RunningWorkers *prometheus.GaugeVec
}

func (rm *VerificationManager) initMetrics() {
	rm.m.RunningWorkers = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "opkeys",
		Subsystem: "verify",
		Name:      "runningWorkers",
		Help:      "Number of verification workers.",
	}, []string{"type"})

	rm.m.VerifyTiming = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "opkeys",
		Subsystem: "verify",
		Name:      "verifyTiming",
		Help:      "Duration of a single signature check per queue",
	}, []string{"queue"})
}

func (rm *VerificationManager) AttachMetrics(m *metrics.Metrics) {
	m.Register(rm.m.VerifyTiming)
	m.Register(rm.m.RunningWorkers)
}
