// Package metrics defines the MetricHandle interface memfs reports
// operation and pool telemetry through, composing narrower per-concern
// handles (ops, pool, descriptors) into one MetricHandle rather than
// one flat interface.
package metrics

import (
	"context"
	"time"
)

// MetricAttr is a single label attached to a metric observation.
type MetricAttr struct {
	Key, Value string
}

// OpsMetricHandle records per-operation counts, latencies, and errors.
type OpsMetricHandle interface {
	OpsCount(ctx context.Context, inc int64, attrs []MetricAttr)
	OpsLatency(ctx context.Context, latency time.Duration, attrs []MetricAttr)
	OpsErrorCount(ctx context.Context, inc int64, attrs []MetricAttr)
}

// PoolMetricHandle records FileMemoryPool occupancy.
type PoolMetricHandle interface {
	PoolInUse(ctx context.Context, inUse int64)
	PoolExhaustedCount(ctx context.Context, inc int64)
}

// DescriptorMetricHandle tracks how many descriptors are currently open.
type DescriptorMetricHandle interface {
	DescriptorsOpen(ctx context.Context, delta int64)
}

// MetricHandle is the composed interface memfs.Filesystem reports through.
type MetricHandle interface {
	OpsMetricHandle
	PoolMetricHandle
	DescriptorMetricHandle
}

// ShutdownFn releases resources held by a MetricHandle's backing exporter.
type ShutdownFn func(ctx context.Context) error

// Observe wraps fn with an OpsCount/OpsLatency/OpsErrorCount observation
// for the named operation.
func Observe(ctx context.Context, h MetricHandle, op string, fn func() error) error {
	start := time.Now()
	err := fn()

	attrs := []MetricAttr{{Key: "op", Value: op}}
	h.OpsCount(ctx, 1, attrs)
	h.OpsLatency(ctx, time.Since(start), attrs)
	if err != nil {
		h.OpsErrorCount(ctx, 1, attrs)
	}
	return err
}
