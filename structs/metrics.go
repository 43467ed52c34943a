package structs

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type PrometheusObserver interface {
	WithLabelValues(lvs ...string) prometheus.Observer
}

// MetricGroup collects phase durations of a single run and
// reports them all at once, with the run's outcome as the last label.
type MetricGroup struct {
	mu      sync.Mutex
	metrics []metric
}

type metric struct {
	dur    time.Duration
	labels []string
}

func NewMetricGroup(num int) *MetricGroup {
	return &MetricGroup{metrics: make([]metric, 0, num)}
}

func (mg *MetricGroup) AppendSince(t time.Time, labels ...string) {
	mg.mu.Lock()
	defer mg.mu.Unlock()

	mg.metrics = append(mg.metrics, metric{dur: time.Since(t), labels: labels})
}

func (mg *MetricGroup) Total() (d time.Duration) {
	mg.mu.Lock()
	defer mg.mu.Unlock()

	for _, m := range mg.metrics {
		d += m.dur
	}
	return d
}

func (mg *MetricGroup) Observe(t PrometheusObserver) {
	mg.observe(t, "ok")
}

// ObserveWithError labels the run "error" when err is set.
func (mg *MetricGroup) ObserveWithError(t PrometheusObserver, err error) {
	if err == nil {
		mg.observe(t, "ok")
		return
	}
	mg.observe(t, "error")
}

func (mg *MetricGroup) observe(t PrometheusObserver, result string) {
	mg.mu.Lock()
	defer mg.mu.Unlock()

	for _, metric := range mg.metrics {
		t.WithLabelValues(append(metric.labels, result)...).Observe(metric.dur.Seconds())
	}
}
