package metrics

import (
	"context"
	"time"
)

type noopMetrics struct{}

// NewNoopMetrics returns a MetricHandle whose methods do nothing, for
// callers that do not want telemetry wired up. This is the default handle
// used when a Filesystem is constructed without an explicit MetricHandle.
func NewNoopMetrics() MetricHandle {
	return noopMetrics{}
}

func (noopMetrics) OpsCount(context.Context, int64, []MetricAttr)              {}
func (noopMetrics) OpsLatency(context.Context, time.Duration, []MetricAttr)    {}
func (noopMetrics) OpsErrorCount(context.Context, int64, []MetricAttr)          {}
func (noopMetrics) PoolInUse(context.Context, int64)                           {}
func (noopMetrics) PoolExhaustedCount(context.Context, int64)                  {}
func (noopMetrics) DescriptorsOpen(context.Context, int64)                     {}
