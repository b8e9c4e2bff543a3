package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type prometheusMetrics struct {
	opsCount        *prometheus.CounterVec
	opsLatency      *prometheus.HistogramVec
	opsErrorCount   *prometheus.CounterVec
	poolInUse       prometheus.Gauge
	poolExhausted   prometheus.Counter
	descriptorsOpen prometheus.Gauge
}

// NewPrometheusMetrics builds a MetricHandle backed by Prometheus
// collectors registered against reg, giving the pack's most common
// metrics dependency a MetricHandle alongside the otel-backed one.
func NewPrometheusMetrics(reg prometheus.Registerer) MetricHandle {
	m := &prometheusMetrics{
		opsCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memfs_ops_count",
			Help: "Number of memfs operations invoked, by op.",
		}, []string{"op"}),
		opsLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "memfs_ops_latency_ms",
			Help:    "Latency of memfs operations in milliseconds, by op.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		opsErrorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memfs_ops_error_count",
			Help: "Number of memfs operations that returned an error, by op.",
		}, []string{"op"}),
		poolInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "memfs_pool_in_use",
			Help: "Buffers currently checked out of the FileMemoryPool.",
		}),
		poolExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "memfs_pool_exhausted_count",
			Help: "Times Acquire failed because the pool was empty.",
		}),
		descriptorsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "memfs_descriptors_open",
			Help: "Descriptors currently present in the descriptor table.",
		}),
	}

	reg.MustRegister(m.opsCount, m.opsLatency, m.opsErrorCount, m.poolInUse, m.poolExhausted, m.descriptorsOpen)
	return m
}

func opLabel(attrs []MetricAttr) string {
	for _, a := range attrs {
		if a.Key == "op" {
			return a.Value
		}
	}
	return ""
}

func (m *prometheusMetrics) OpsCount(_ context.Context, inc int64, attrs []MetricAttr) {
	m.opsCount.WithLabelValues(opLabel(attrs)).Add(float64(inc))
}

func (m *prometheusMetrics) OpsLatency(_ context.Context, latency time.Duration, attrs []MetricAttr) {
	m.opsLatency.WithLabelValues(opLabel(attrs)).Observe(float64(latency.Milliseconds()))
}

func (m *prometheusMetrics) OpsErrorCount(_ context.Context, inc int64, attrs []MetricAttr) {
	m.opsErrorCount.WithLabelValues(opLabel(attrs)).Add(float64(inc))
}

func (m *prometheusMetrics) PoolInUse(_ context.Context, inUse int64) {
	m.poolInUse.Set(float64(inUse))
}

func (m *prometheusMetrics) PoolExhaustedCount(_ context.Context, inc int64) {
	m.poolExhausted.Add(float64(inc))
}

func (m *prometheusMetrics) DescriptorsOpen(_ context.Context, delta int64) {
	m.descriptorsOpen.Add(float64(delta))
}
