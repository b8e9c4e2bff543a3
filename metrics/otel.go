package metrics

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func attributeSet(attrs []MetricAttr) attribute.Set {
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		kvs = append(kvs, attribute.String(a.Key, a.Value))
	}
	return attribute.NewSet(kvs...)
}

// defaultLatencyDistribution is the explicit bucket boundary set attached
// to every latency histogram, in milliseconds.
var defaultLatencyDistribution = metric.WithExplicitBucketBoundaries(
	1, 2, 3, 4, 5, 6, 8, 10, 13, 16, 20, 25, 30, 40, 50, 65, 80, 100,
	130, 160, 200, 250, 300, 400, 500, 650, 800, 1000, 2000, 5000, 10000,
)

type otelMetrics struct {
	opsCount        metric.Int64Counter
	opsLatency      metric.Float64Histogram
	opsErrorCount   metric.Int64Counter
	poolInUse       metric.Int64UpDownCounter
	lastPoolInUse   atomic.Int64
	poolExhausted   metric.Int64Counter
	descriptorsOpen metric.Int64UpDownCounter
}

// NewOTelMetrics builds a MetricHandle backed by the instruments of the
// supplied otel meter, aggregating every instrument construction error
// with errors.Join.
func NewOTelMetrics(meter metric.Meter) (MetricHandle, error) {
	var err error
	m := &otelMetrics{}

	m.opsCount, err = meter.Int64Counter("memfs/ops_count")
	var e error
	m.opsLatency, e = meter.Float64Histogram("memfs/ops_latency", metric.WithUnit("ms"), defaultLatencyDistribution)
	err = errors.Join(err, e)
	m.opsErrorCount, e = meter.Int64Counter("memfs/ops_error_count")
	err = errors.Join(err, e)
	m.poolInUse, e = meter.Int64UpDownCounter("memfs/pool_in_use")
	err = errors.Join(err, e)
	m.poolExhausted, e = meter.Int64Counter("memfs/pool_exhausted_count")
	err = errors.Join(err, e)
	m.descriptorsOpen, e = meter.Int64UpDownCounter("memfs/descriptors_open")
	err = errors.Join(err, e)

	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *otelMetrics) OpsCount(ctx context.Context, inc int64, attrs []MetricAttr) {
	m.opsCount.Add(ctx, inc, metric.WithAttributeSet(attributeSet(attrs)))
}

func (m *otelMetrics) OpsLatency(ctx context.Context, latency time.Duration, attrs []MetricAttr) {
	m.opsLatency.Record(ctx, float64(latency.Milliseconds()), metric.WithAttributeSet(attributeSet(attrs)))
}

func (m *otelMetrics) OpsErrorCount(ctx context.Context, inc int64, attrs []MetricAttr) {
	m.opsErrorCount.Add(ctx, inc, metric.WithAttributeSet(attributeSet(attrs)))
}

// PoolInUse receives the absolute occupancy and adds only the change since
// the previous sample, so the up-down counter tracks current occupancy.
func (m *otelMetrics) PoolInUse(ctx context.Context, inUse int64) {
	prev := m.lastPoolInUse.Swap(inUse)
	m.poolInUse.Add(ctx, inUse-prev)
}

func (m *otelMetrics) PoolExhaustedCount(ctx context.Context, inc int64) {
	m.poolExhausted.Add(ctx, inc)
}

func (m *otelMetrics) DescriptorsOpen(ctx context.Context, delta int64) {
	m.descriptorsOpen.Add(ctx, delta)
}
