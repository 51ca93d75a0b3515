package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pkt.systems/pslog"
	"pkt.systems/zscale"
	"pkt.systems/zscale/client"
	"pkt.systems/zscale/internal/svcfields"
)

const (
	configKey            = "config"
	apiTokenKey          = "api-token"
	baseURLKey           = "base-url"
	defaultProjectKeyKey = "default-project-key"
	httpTimeoutKey       = "http-timeout"
	logLevelKey          = "log-level"
	otlpEndpointKey      = "otlp-endpoint"
	metricsListenKey     = "metrics-listen"
	pprofListenKey       = "pprof-listen"
	profilingMetricsKey  = "enable-profiling-metrics"
)

// newBaseLogger reads ZSCALE_LOG_* from the environment.
func newBaseLogger(w io.Writer) pslog.Logger {
	return pslog.LoggerFromEnv(
		pslog.WithEnvPrefix("ZSCALE_LOG_"),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeStructured, MinLevel: pslog.InfoLevel}),
		pslog.WithEnvWriter(w),
	).With("app", "zscale")
}

func submain(ctx context.Context) int {
	cmd := newRootCommand(newBaseLogger(os.Stderr))
	ctx = withSignalCancel(ctx)
	if _, err := cmd.ExecuteContextC(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "zscale: %s\n", err)
		}
		return 1
	}
	return 0
}

// app carries the per-invocation viper instance and logger shared by the
// subcommands.
type app struct {
	v      *viper.Viper
	logger pslog.Logger
}

func newRootCommand(baseLogger pslog.Logger) *cobra.Command {
	cmd, _ := buildRootCommand(baseLogger)
	return cmd
}

func buildRootCommand(baseLogger pslog.Logger) (*cobra.Command, *app) {
	if baseLogger == nil {
		baseLogger = pslog.NoopLogger()
	}
	a := &app{v: viper.New(), logger: baseLogger}

	cmd := &cobra.Command{
		Use:           "zscale",
		Short:         "zscale is a Zephyr Scale Cloud gateway and MCP tool server",
		SilenceErrors: true,
		Example: `
  # Serve the MCP tools over stdio (for agent hosts)
  ZEPHYR_SCALE_API_TOKEN=... ZEPHYR_SCALE_DEFAULT_PROJECT_KEY=PROJ zscale mcp

  # Serve the MCP tools over streamable HTTP
  zscale mcp --transport http --listen 127.0.0.1:19342

  # Print the tools/list payload without contacting Zephyr Scale
  zscale mcp tools

  # Check connectivity and the configured token
  zscale healthcheck
`,
	}

	persistentFlags := cmd.PersistentFlags()
	persistentFlags.StringP("config", "c", "", "path to YAML config file (defaults to $HOME/.zscale/"+zscale.DefaultConfigFile+")")
	persistentFlags.String("api-token", "", "Zephyr Scale API token (prefer the environment variable)")
	persistentFlags.String("base-url", zscale.DefaultBaseURL, "Zephyr Scale API base URL")
	persistentFlags.StringP("default-project-key", "p", "", "project key used when a call omits projectKey")
	persistentFlags.Duration("http-timeout", zscale.DefaultHTTPTimeout, "timeout for one Zephyr Scale call")
	persistentFlags.String("log-level", "", "log level (trace, debug, info, warn, error); overrides ZSCALE_LOG_LEVEL")
	persistentFlags.String("otlp-endpoint", "", "OTLP collector endpoint (e.g. grpc://localhost:4317)")
	persistentFlags.String("metrics-listen", "", "Prometheus metrics listen address (empty disables)")
	persistentFlags.String("pprof-listen", "", "pprof listen address (empty disables)")
	persistentFlags.Bool("enable-profiling-metrics", false, "add Go runtime metrics to the Prometheus endpoint")

	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	mustBindFlag(a.v, configKey, "ZSCALE_CONFIG", persistentFlags.Lookup("config"))
	mustBindFlag(a.v, apiTokenKey, zscale.EnvAPIToken, persistentFlags.Lookup("api-token"))
	mustBindFlag(a.v, baseURLKey, zscale.EnvBaseURL, persistentFlags.Lookup("base-url"))
	mustBindFlag(a.v, defaultProjectKeyKey, zscale.EnvDefaultProjectKey, persistentFlags.Lookup("default-project-key"))
	mustBindFlag(a.v, httpTimeoutKey, zscale.EnvHTTPTimeout, persistentFlags.Lookup("http-timeout"))
	mustBindFlag(a.v, logLevelKey, "", persistentFlags.Lookup("log-level"))
	mustBindFlag(a.v, otlpEndpointKey, "ZSCALE_OTLP_ENDPOINT", persistentFlags.Lookup("otlp-endpoint"))
	mustBindFlag(a.v, metricsListenKey, "ZSCALE_METRICS_LISTEN", persistentFlags.Lookup("metrics-listen"))
	mustBindFlag(a.v, pprofListenKey, "ZSCALE_PPROF_LISTEN", persistentFlags.Lookup("pprof-listen"))
	mustBindFlag(a.v, profilingMetricsKey, "ZSCALE_PROFILING_METRICS", persistentFlags.Lookup("enable-profiling-metrics"))

	cmd.AddCommand(newMCPCommand(a))
	cmd.AddCommand(newHealthcheckCommand(a))
	cmd.AddCommand(newConfigCommand())
	cmd.AddCommand(newVersionCommand())
	return cmd, a
}

func mustBindFlag(v *viper.Viper, key, env string, flag *pflag.Flag) {
	if flag == nil {
		panic(fmt.Sprintf("flag for key %s not found", key))
	}
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
	if env != "" {
		if err := v.BindEnv(key, env); err != nil {
			panic(err)
		}
	}
}

// prepare loads the config file and applies the log level. It returns the
// config file path, or "" when none is in use.
func (a *app) prepare() (string, error) {
	configFile, err := a.loadConfigFile()
	if err != nil {
		return "", err
	}
	if raw := strings.TrimSpace(a.v.GetString(logLevelKey)); raw != "" {
		level, ok := pslog.ParseLevel(raw)
		if !ok {
			return "", fmt.Errorf("unknown log level %q", raw)
		}
		a.logger = a.logger.LogLevel(level)
	}
	if configFile != "" {
		svcfields.WithSubsystem(a.logger, "cli.root").Info("loaded config file", "path", configFile)
	}
	return configFile, nil
}

func (a *app) loadConfigFile() (string, error) {
	cfgPath := strings.TrimSpace(a.v.GetString(configKey))
	explicit := cfgPath != ""

	if cfgPath == "" {
		if candidate, err := zscale.DefaultConfigPath(); err == nil {
			if _, err := os.Stat(candidate); err == nil {
				cfgPath = candidate
			}
		}
	}
	if cfgPath == "" {
		return "", nil
	}

	expanded, err := expandPath(cfgPath)
	if err != nil {
		return "", fmt.Errorf("expand config path %q: %w", cfgPath, err)
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return "", nil
		}
		return "", fmt.Errorf("config file %q: %w", expanded, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("config file %q is a directory", expanded)
	}

	a.v.SetConfigFile(expanded)
	if err := a.v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("read config file %q: %w", expanded, err)
	}
	return expanded, nil
}

func (a *app) config() zscale.Config {
	return zscale.Config{
		APIToken:          a.v.GetString(apiTokenKey),
		BaseURL:           a.v.GetString(baseURLKey),
		DefaultProjectKey: a.v.GetString(defaultProjectKeyKey),
		HTTPTimeout:       a.v.GetDuration(httpTimeoutKey),
	}
}

func (a *app) telemetryConfig() zscale.TelemetryConfig {
	return zscale.TelemetryConfig{
		OTLPEndpoint:     a.v.GetString(otlpEndpointKey),
		MetricsListen:    a.v.GetString(metricsListenKey),
		PprofListen:      a.v.GetString(pprofListenKey),
		ProfilingMetrics: a.v.GetBool(profilingMetricsKey),
	}
}

// gatewayRuntime is what a gateway-backed command needs; Close releases the
// telemetry exporters.
type gatewayRuntime struct {
	store     *zscale.Store
	gateway   *client.Client
	telemetry *zscale.Telemetry
}

func (a *app) openGateway(ctx context.Context) (*gatewayRuntime, error) {
	store, err := zscale.NewStore(a.config())
	if err != nil {
		return nil, err
	}
	tel, err := zscale.SetupTelemetry(ctx, a.telemetryConfig(), a.logger)
	if err != nil {
		return nil, err
	}
	gw, err := client.New(store,
		client.WithLogger(a.logger),
		client.WithTracerProvider(tel.TracerProvider()),
		client.WithMeterProvider(tel.MeterProvider()),
	)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, err
	}
	return &gatewayRuntime{store: store, gateway: gw, telemetry: tel}, nil
}

func (r *gatewayRuntime) Close(ctx context.Context) error {
	return r.telemetry.Shutdown(ctx)
}

func expandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	if strings.HasPrefix(p, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if len(p) == 1 {
			p = home
		} else if p[1] == '/' || p[1] == '\\' {
			p = filepath.Join(home, p[2:])
		}
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return abs, nil
}

func withSignalCancel(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(signals)
	}()
	return ctx
}
