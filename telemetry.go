package zscale

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"pkt.systems/pslog"
	"pkt.systems/zscale/internal/svcfields"
	"pkt.systems/zscale/internal/version"
)

const exportTimeout = 10 * time.Second

// TelemetryConfig selects the optional telemetry outputs. The zero value
// disables telemetry.
type TelemetryConfig struct {
	// OTLPEndpoint receives traces: host[:port] (gRPC), grpc://, grpcs://,
	// http:// or https://.
	OTLPEndpoint string
	// MetricsListen serves Prometheus /metrics when set.
	MetricsListen string
	// PprofListen serves /debug/pprof when set.
	PprofListen string
	// ProfilingMetrics adds Go runtime metrics; requires MetricsListen.
	ProfilingMetrics bool
}

func (c TelemetryConfig) enabled() bool {
	return strings.TrimSpace(c.OTLPEndpoint) != "" ||
		strings.TrimSpace(c.MetricsListen) != "" ||
		strings.TrimSpace(c.PprofListen) != "" ||
		c.ProfilingMetrics
}

// Telemetry owns the providers and listeners started by SetupTelemetry.
type Telemetry struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	addrs          map[string]string
	closers        []telemetryCloser
	logger         pslog.Logger
}

type telemetryCloser struct {
	name string
	fn   func(context.Context) error
}

// SetupTelemetry starts the outputs selected by cfg and installs the
// providers as otel globals. It returns nil when cfg enables nothing; the
// methods of a nil Telemetry fall back to the global providers.
func SetupTelemetry(ctx context.Context, cfg TelemetryConfig, logger pslog.Logger) (*Telemetry, error) {
	if !cfg.enabled() {
		return nil, nil
	}
	metricsListen := strings.TrimSpace(cfg.MetricsListen)
	if cfg.ProfilingMetrics && metricsListen == "" {
		return nil, errors.New("zscale: telemetry: profiling metrics require a metrics listen address")
	}
	res, err := resource.New(ctx,
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(
			semconv.ServiceName("zscale"),
			semconv.ServiceVersion(version.Current()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("zscale: telemetry: build resource: %w", err)
	}

	t := &Telemetry{
		addrs:  map[string]string{},
		logger: svcfields.WithSubsystem(logger, "telemetry"),
	}
	if endpoint := strings.TrimSpace(cfg.OTLPEndpoint); endpoint != "" {
		if err := t.startTracing(ctx, endpoint, res); err != nil {
			return nil, t.abort(err)
		}
	}
	if metricsListen != "" {
		if err := t.startMetrics(res, metricsListen, cfg.ProfilingMetrics); err != nil {
			return nil, t.abort(err)
		}
	}
	if pprofListen := strings.TrimSpace(cfg.PprofListen); pprofListen != "" {
		if err := t.startPprof(pprofListen); err != nil {
			return nil, t.abort(err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	otel.SetErrorHandler(exporterErrorHandler{logger: t.logger})
	return t, nil
}

// TracerProvider returns the configured provider, or the global one when
// tracing is off.
func (t *Telemetry) TracerProvider() trace.TracerProvider {
	if t == nil || t.tracerProvider == nil {
		return otel.GetTracerProvider()
	}
	return t.tracerProvider
}

// MeterProvider returns the configured provider, or the global one when
// metrics are off.
func (t *Telemetry) MeterProvider() metric.MeterProvider {
	if t == nil || t.meterProvider == nil {
		return otel.GetMeterProvider()
	}
	return t.meterProvider
}

// MetricsAddr returns the bound Prometheus listener address, or "".
func (t *Telemetry) MetricsAddr() string {
	if t == nil {
		return ""
	}
	return t.addrs["metrics"]
}

// Shutdown flushes exporters and stops the listeners in reverse start order.
// A nil Telemetry is a no-op.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error
	for i := len(t.closers) - 1; i >= 0; i-- {
		c := t.closers[i]
		if err := c.fn(ctx); err != nil {
			t.logger.Warn("telemetry.shutdown.failure", "component", c.name, "error", err)
			errs = append(errs, fmt.Errorf("%s shutdown: %w", c.name, err))
		}
	}
	t.closers = nil
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	t.logger.Info("telemetry.shutdown.complete")
	return nil
}

func (t *Telemetry) onShutdown(name string, fn func(context.Context) error) {
	t.closers = append(t.closers, telemetryCloser{name: name, fn: fn})
}

// abort releases whatever was started before err and returns err.
func (t *Telemetry) abort(err error) error {
	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()
	_ = t.Shutdown(ctx)
	return err
}

func (t *Telemetry) startTracing(ctx context.Context, raw string, res *resource.Resource) error {
	endpoint, err := parseOTLPEndpoint(raw)
	if err != nil {
		return err
	}
	exporter, err := newTraceExporter(ctx, endpoint)
	if err != nil {
		return err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(tp)
	t.tracerProvider = tp
	t.onShutdown("trace", tp.Shutdown)
	t.logger.Info("telemetry.tracing.enabled",
		"protocol", string(endpoint.protocol),
		"endpoint", endpoint.hostport,
		"path", endpoint.path,
		"insecure", endpoint.insecure,
	)
	return nil
}

func newTraceExporter(ctx context.Context, ep otlpEndpoint) (sdktrace.SpanExporter, error) {
	switch ep.protocol {
	case otlpGRPC:
		creds := credentials.NewClientTLSFromCert(nil, "")
		if ep.insecure {
			creds = insecure.NewCredentials()
		}
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(ep.hostport),
			otlptracegrpc.WithTimeout(exportTimeout),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(creds)),
		)
		if err != nil {
			return nil, fmt.Errorf("zscale: telemetry: grpc trace exporter: %w", err)
		}
		return exp, nil
	case otlpHTTP:
		opts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(ep.hostport),
			otlptracehttp.WithTimeout(exportTimeout),
		}
		if ep.insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		if ep.path != "" {
			opts = append(opts, otlptracehttp.WithURLPath(ep.path))
		}
		exp, err := otlptracehttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("zscale: telemetry: http trace exporter: %w", err)
		}
		return exp, nil
	default:
		return nil, fmt.Errorf("zscale: telemetry: unsupported OTLP protocol %q", ep.protocol)
	}
}

func (t *Telemetry) startMetrics(res *resource.Resource, addr string, runtimeMetrics bool) error {
	registry := prometheus.NewRegistry()
	opts := []otelprometheus.Option{otelprometheus.WithRegisterer(registry)}
	if runtimeMetrics {
		opts = append(opts, otelprometheus.WithProducer(otelruntime.NewProducer()))
	}
	exporter, err := otelprometheus.New(opts...)
	if err != nil {
		return fmt.Errorf("zscale: telemetry: prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(mp)
	t.meterProvider = mp
	t.onShutdown("metrics", mp.Shutdown)
	if runtimeMetrics {
		if err := startRuntimeMetrics(mp); err != nil {
			return err
		}
		t.logger.Info("profiling.metrics.enabled")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if err := t.serve("metrics", addr, mux); err != nil {
		return err
	}
	t.logger.Info("telemetry.metrics.enabled", "listen", t.addrs["metrics"])
	return nil
}

func (t *Telemetry) startPprof(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	if err := t.serve("pprof", addr, mux); err != nil {
		return err
	}
	t.logger.Info("profiling.pprof.enabled", "listen", t.addrs["pprof"])
	return nil
}

// serve binds addr and serves handler until Shutdown.
func (t *Telemetry) serve(name, addr string, handler http.Handler) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("zscale: telemetry: %s listen %s: %w", name, addr, err)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	t.addrs[name] = ln.Addr().String()
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Warn("telemetry.listener.serve_error", "listener", name, "error", err)
		}
	}()
	t.onShutdown(name+" listener", func(ctx context.Context) error {
		if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	return nil
}

var (
	runtimeMetricsOnce sync.Once
	runtimeMetricsErr  error
)

func startRuntimeMetrics(provider metric.MeterProvider) error {
	runtimeMetricsOnce.Do(func() {
		runtimeMetricsErr = otelruntime.Start(otelruntime.WithMeterProvider(provider))
	})
	if runtimeMetricsErr != nil {
		return fmt.Errorf("zscale: telemetry: runtime metrics: %w", runtimeMetricsErr)
	}
	return nil
}

type exporterErrorHandler struct {
	logger pslog.Logger
}

func (h exporterErrorHandler) Handle(err error) {
	if err == nil {
		return
	}
	// The gRPC exporter reports every reconnect attempt while the collector
	// is down.
	if strings.Contains(err.Error(), "waiting for connections to become ready") {
		h.logger.Debug("telemetry.exporter.retry", "error", err)
		return
	}
	h.logger.Warn("telemetry.exporter.error", "error", err)
}

type otlpProtocol string

const (
	otlpGRPC otlpProtocol = "grpc"
	otlpHTTP otlpProtocol = "http"
)

func (p otlpProtocol) defaultPort() string {
	if p == otlpHTTP {
		return "4318"
	}
	return "4317"
}

type otlpEndpoint struct {
	protocol otlpProtocol
	hostport string
	path     string
	insecure bool
}

// parseOTLPEndpoint accepts host[:port] (plaintext gRPC) or a
// grpc/grpcs/http/https URL. Missing ports default to 4317 for gRPC and 4318
// for HTTP.
func parseOTLPEndpoint(raw string) (otlpEndpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return otlpEndpoint{}, errors.New("zscale: telemetry: empty OTLP endpoint")
	}
	if !strings.Contains(raw, "://") {
		raw = "grpc://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return otlpEndpoint{}, fmt.Errorf("zscale: telemetry: parse OTLP endpoint: %w", err)
	}
	var ep otlpEndpoint
	switch strings.ToLower(u.Scheme) {
	case "grpc":
		ep = otlpEndpoint{protocol: otlpGRPC, insecure: true}
	case "grpcs":
		ep = otlpEndpoint{protocol: otlpGRPC}
	case "http":
		ep = otlpEndpoint{protocol: otlpHTTP, insecure: true}
	case "https":
		ep = otlpEndpoint{protocol: otlpHTTP}
	default:
		return otlpEndpoint{}, fmt.Errorf("zscale: telemetry: unknown OTLP scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return otlpEndpoint{}, fmt.Errorf("zscale: telemetry: OTLP endpoint %q has no host", raw)
	}
	ep.hostport = u.Host
	if u.Port() == "" {
		ep.hostport = net.JoinHostPort(u.Hostname(), ep.protocol.defaultPort())
	}
	ep.path = strings.TrimSuffix(u.Path, "/")
	return ep, nil
}
