package mcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"pkt.systems/pslog"
	"pkt.systems/zscale/client"
	"pkt.systems/zscale/internal/svcfields"
	"pkt.systems/zscale/internal/version"
)

// Transports accepted by Config.Transport.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

const (
	defaultListen          = "127.0.0.1:19342"
	defaultMCPPath         = "/mcp"
	defaultShutdownTimeout = 10 * time.Second
	serverName             = "zephyr-scale-mcp"
)

// Config controls MCP server runtime behavior.
type Config struct {
	// Transport is stdio (default) or http.
	Transport string
	// Listen is the HTTP listen address for the http transport.
	Listen string
	// MCPPath is the streamable HTTP endpoint path.
	MCPPath string
	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration
}

// Server is the MCP service contract.
type Server interface {
	Run(context.Context) error
}

// NewServerRequest wraps constructor inputs.
type NewServerRequest struct {
	Config Config
	// Gateway performs the Zephyr Scale calls.
	Gateway *client.Client
	// Source is the configuration the gateway reads; it feeds the server
	// instructions.
	Source         client.Source
	Logger         pslog.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

type server struct {
	cfg            Config
	gateway        *client.Client
	source         client.Source
	logger         pslog.Logger
	toolLog        pslog.Logger
	lifecycleLog   pslog.Logger
	transportLog   pslog.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	tracer         trace.Tracer
	metrics        *toolMetrics
	mcpHTTPPath    string
	httpServer     *http.Server

	mu           sync.Mutex
	mcpSrv       *mcpsdk.Server
	instructions string
}

// NewServer constructs the MCP server over a gateway client.
func NewServer(req NewServerRequest) (Server, error) {
	cfg := req.Config
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if req.Gateway == nil {
		return nil, fmt.Errorf("mcp: gateway client required")
	}
	s := newServer(cfg, req.Gateway, req.Source, req.Logger, req.TracerProvider, req.MeterProvider)
	if cfg.Transport == TransportHTTP {
		s.httpServer = &http.Server{
			Addr:              cfg.Listen,
			Handler:           s.buildMux(),
			ReadHeaderTimeout: 10 * time.Second,
		}
	}
	return s, nil
}

func newServer(cfg Config, gateway *client.Client, source client.Source, logger pslog.Logger, tp trace.TracerProvider, mp metric.MeterProvider) *server {
	if logger == nil {
		logger = pslog.NewStructured(os.Stderr).With("app", "zscale")
	}
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	if source == nil {
		source = client.StaticSource{}
	}
	s := &server{
		cfg:            cfg,
		gateway:        gateway,
		source:         source,
		logger:         logger,
		toolLog:        svcfields.WithSubsystem(logger, "mcp.tools"),
		lifecycleLog:   svcfields.WithSubsystem(logger, "server.lifecycle.mcp"),
		transportLog:   svcfields.WithSubsystem(logger, "mcp.transport.http"),
		tracerProvider: tp,
		meterProvider:  mp,
		mcpHTTPPath:    cleanHTTPPath(cfg.MCPPath),
	}
	s.tracer = tp.Tracer(instrumentationName)
	s.metrics = newToolMetrics(mp, s.toolLog)
	return s
}

func (s *server) Run(ctx context.Context) error {
	if s.cfg.Transport == TransportStdio {
		s.lifecycleLog.Info("mcp.server.start", "transport", TransportStdio, "version", version.Current())
		err := s.mcpServer().Run(ctx, &mcpsdk.StdioTransport{})
		if err == nil || errors.Is(err, context.Canceled) || ctx.Err() != nil {
			s.lifecycleLog.Info("mcp.server.stop", "transport", TransportStdio)
			return nil
		}
		return err
	}

	s.lifecycleLog.Info("mcp.server.start", "transport", TransportHTTP, "listen", s.cfg.Listen, "mcp_path", s.mcpHTTPPath, "version", version.Current())
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Listen, err)
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.lifecycleLog.Info("mcp.server.stop", "transport", TransportHTTP)
		return nil
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// mcpServer returns the MCP server new sessions attach to. It is rebuilt only
// when a config reload changed the instructions; open sessions keep the
// server they started on.
func (s *server) mcpServer() *mcpsdk.Server {
	text := defaultServerInstructions(s.source.Current())
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mcpSrv == nil || text != s.instructions {
		if s.mcpSrv != nil {
			s.lifecycleLog.Info("mcp.server.instructions.refreshed")
		}
		s.mcpSrv = s.buildMCPServer(text)
		s.instructions = text
	}
	return s.mcpSrv
}

func (s *server) buildMCPServer(instructions string) *mcpsdk.Server {
	mcpSrv := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    serverName,
		Version: version.Current(),
	}, &mcpsdk.ServerOptions{
		Instructions: instructions,
	})
	s.registerResources(mcpSrv)
	s.registerTools(mcpSrv)
	return mcpSrv
}

func (s *server) buildMux() *http.ServeMux {
	streamable := mcpsdk.NewStreamableHTTPHandler(func(_ *http.Request) *mcpsdk.Server {
		return s.mcpServer()
	}, nil)
	handler := otelhttp.NewHandler(streamable, "zscale.mcp",
		otelhttp.WithTracerProvider(s.tracerProvider),
		otelhttp.WithMeterProvider(s.meterProvider),
	)

	mux := http.NewServeMux()
	mux.Handle(s.mcpHTTPPath, handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

func applyDefaults(cfg *Config) {
	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	if strings.TrimSpace(cfg.Listen) == "" {
		cfg.Listen = defaultListen
	}
	if strings.TrimSpace(cfg.MCPPath) == "" {
		cfg.MCPPath = defaultMCPPath
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
}

func validateConfig(cfg Config) error {
	switch cfg.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("mcp: unknown transport %q (expected %s|%s)", cfg.Transport, TransportStdio, TransportHTTP)
	}
	if cfg.Transport == TransportHTTP && strings.TrimSpace(cfg.Listen) == "" {
		return fmt.Errorf("mcp: listen address required")
	}
	return nil
}

func cleanHTTPPath(raw string) string {
	p := strings.TrimSpace(raw)
	if p == "" {
		return defaultMCPPath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
