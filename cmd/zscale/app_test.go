package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/zscale"
)

// isolateEnv clears every variable the CLI reads and points the default
// config directory at an empty temp dir.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		zscale.EnvAPIToken, zscale.EnvBaseURL, zscale.EnvDefaultProjectKey, zscale.EnvHTTPTimeout,
		"ZSCALE_CONFIG", "ZSCALE_MCP_TRANSPORT", "ZSCALE_MCP_LISTEN", "ZSCALE_MCP_PATH",
		"ZSCALE_OTLP_ENDPOINT", "ZSCALE_METRICS_LISTEN", "ZSCALE_PPROF_LISTEN", "ZSCALE_PROFILING_METRICS",
	} {
		t.Setenv(key, "")
	}
	t.Setenv(zscale.EnvConfigDir, t.TempDir())
}

func executeRootCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand(pslog.NoopLogger())
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfigFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	isolateEnv(t)
	root := newRootCommand(pslog.NoopLogger())
	for _, path := range [][]string{{"mcp"}, {"mcp", "tools"}, {"healthcheck"}, {"config", "gen"}, {"version"}} {
		cmd, _, err := root.Find(path)
		if err != nil {
			t.Fatalf("find %v: %v", path, err)
		}
		if cmd.Name() != path[len(path)-1] {
			t.Fatalf("expected %q, got %q", path[len(path)-1], cmd.Name())
		}
	}
}

func TestConfigReadsEnvironment(t *testing.T) {
	isolateEnv(t)
	t.Setenv(zscale.EnvAPIToken, "env-token")
	t.Setenv(zscale.EnvBaseURL, "https://zephyr.example.com/v2")
	t.Setenv(zscale.EnvDefaultProjectKey, "ENV")
	t.Setenv(zscale.EnvHTTPTimeout, "15s")

	_, a := buildRootCommand(pslog.NoopLogger())
	got := a.config()
	want := zscale.Config{
		APIToken:          "env-token",
		BaseURL:           "https://zephyr.example.com/v2",
		DefaultProjectKey: "ENV",
		HTTPTimeout:       15 * time.Second,
	}
	if got != want {
		t.Fatalf("config mismatch: got %+v want %+v", got, want)
	}
}

func TestFlagOverridesEnvironment(t *testing.T) {
	isolateEnv(t)
	t.Setenv(zscale.EnvDefaultProjectKey, "ENV")

	cmd, a := buildRootCommand(pslog.NoopLogger())
	if err := cmd.PersistentFlags().Set("default-project-key", "FLAG"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if got := a.config().DefaultProjectKey; got != "FLAG" {
		t.Fatalf("expected flag value, got %q", got)
	}
}

func TestDefaultsWithoutConfig(t *testing.T) {
	isolateEnv(t)
	_, a := buildRootCommand(pslog.NoopLogger())
	cfg := a.config()
	if cfg.BaseURL != zscale.DefaultBaseURL || cfg.HTTPTimeout != zscale.DefaultHTTPTimeout {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	mcpCfg := a.mcpConfig()
	if mcpCfg.Transport != "stdio" || mcpCfg.Listen != "127.0.0.1:19342" || mcpCfg.MCPPath != "/mcp" {
		t.Fatalf("unexpected mcp defaults: %+v", mcpCfg)
	}
}

func TestPrepareLoadsConfigFile(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "zscale.yaml")
	writeConfigFile(t, path, `
api-token: file-token
default-project-key: FILE
http-timeout: 5s
log-level: debug
mcp:
  transport: http
  listen: 127.0.0.1:0
  path: /zephyr
`)
	t.Setenv("ZSCALE_CONFIG", path)

	_, a := buildRootCommand(pslog.NoopLogger())
	used, err := a.prepare()
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if used != path {
		t.Fatalf("expected config file %q, got %q", path, used)
	}
	cfg := a.config()
	if cfg.APIToken != "file-token" || cfg.DefaultProjectKey != "FILE" || cfg.HTTPTimeout != 5*time.Second {
		t.Fatalf("unexpected config: %+v", cfg.Redacted())
	}
	mcpCfg := a.mcpConfig()
	if mcpCfg.Transport != "http" || mcpCfg.Listen != "127.0.0.1:0" || mcpCfg.MCPPath != "/zephyr" {
		t.Fatalf("unexpected mcp config: %+v", mcpCfg)
	}
}

func TestPrepareUsesDefaultConfigDir(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	t.Setenv(zscale.EnvConfigDir, dir)
	writeConfigFile(t, filepath.Join(dir, zscale.DefaultConfigFile), "default-project-key: HOME\n")

	_, a := buildRootCommand(pslog.NoopLogger())
	if _, err := a.prepare(); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if got := a.config().DefaultProjectKey; got != "HOME" {
		t.Fatalf("expected key from default config, got %q", got)
	}
}

func TestPrepareRejectsMissingExplicitConfig(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ZSCALE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, a := buildRootCommand(pslog.NoopLogger())
	if _, err := a.prepare(); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestPrepareRejectsUnknownLogLevel(t *testing.T) {
	isolateEnv(t)
	cmd, a := buildRootCommand(pslog.NoopLogger())
	if err := cmd.PersistentFlags().Set("log-level", "loud"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if _, err := a.prepare(); err == nil {
		t.Fatalf("expected unknown log level error")
	}
}

func TestExpandPathHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := expandPath("~/cfg.yaml")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if want := filepath.Join(home, "cfg.yaml"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestBaseLoggerHonoursEnvironmentLevel(t *testing.T) {
	t.Setenv("ZSCALE_LOG_LEVEL", "warn")
	var buf bytes.Buffer
	logger := newBaseLogger(&buf)
	logger.Info("cli.start")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level: %q", buf.String())
	}
	logger.Warn("cli.config.missing")
	out := buf.String()
	if !strings.Contains(out, "cli.config.missing") || !strings.Contains(out, "zscale") {
		t.Fatalf("expected warn line carrying the app field: %q", out)
	}
}
