package mcp

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"pkt.systems/pslog"
	"pkt.systems/zscale/internal/format"
)

const instrumentationName = "pkt.systems/zscale/mcp"

type toolMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

func newToolMetrics(provider metric.MeterProvider, logger pslog.Base) *toolMetrics {
	meter := provider.Meter(instrumentationName)
	m := &toolMetrics{}
	var err error

	m.calls, err = meter.Int64Counter(
		"zscale.mcp.tool.calls",
		metric.WithDescription("Tool calls by tool and terminal state"),
	)
	logMetricInitError(logger, "zscale.mcp.tool.calls", err)

	m.duration, err = meter.Float64Histogram(
		"zscale.mcp.tool.duration",
		metric.WithDescription("Tool call latency including validation and formatting"),
		metric.WithUnit("s"),
	)
	logMetricInitError(logger, "zscale.mcp.tool.duration", err)
	return m
}

func (m *toolMetrics) record(ctx context.Context, o format.Outcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("zscale.tool", o.Op),
		attribute.String("zscale.state", o.State.String()),
		attribute.String("zscale.error_code", o.Class.Code),
	)
	if m.calls != nil {
		m.calls.Add(ctx, 1, attrs)
	}
	if m.duration != nil {
		m.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
}

func logMetricInitError(logger pslog.Base, name string, err error) {
	if err == nil || logger == nil {
		return
	}
	logger.Warn("telemetry.metric.init_failed", "name", name, "error", err)
}
