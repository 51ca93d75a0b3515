package client

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"pkt.systems/pslog"
)

const instrumentationName = "pkt.systems/zscale/client"

// Outcome labels shared by spans, metrics and logs.
const (
	outcomeSuccess        = "success"
	outcomeClientError    = "client_error"
	outcomeSchemaMismatch = "schema_mismatch"
	outcomeTransportError = "transport_error"
	outcomeTimeout        = "timeout"
	outcomeInvalid        = "invalid"
)

type clientMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newClientMetrics(provider metric.MeterProvider, logger pslog.Base) *clientMetrics {
	meter := provider.Meter(instrumentationName)
	m := &clientMetrics{}
	var err error

	m.requests, err = meter.Int64Counter(
		"zscale.client.requests",
		metric.WithDescription("Gateway calls by operation and outcome"),
	)
	logMetricInitError(logger, "zscale.client.requests", err)

	m.duration, err = meter.Float64Histogram(
		"zscale.client.request.duration",
		metric.WithDescription("Gateway call latency"),
		metric.WithUnit("s"),
	)
	logMetricInitError(logger, "zscale.client.request.duration", err)
	return m
}

func (m *clientMetrics) record(ctx context.Context, op Op, method string, status int, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("zscale.op", string(op)),
		attribute.String("http.request.method", method),
		attribute.Int("http.response.status_code", status),
		attribute.String("zscale.outcome", outcome),
	)
	if m.requests != nil {
		m.requests.Add(ctx, 1, attrs)
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
