package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pkt.systems/zscale"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage zscale configuration files",
	}
	cmd.AddCommand(newConfigGenCommand())
	return cmd
}

func newConfigGenCommand() *cobra.Command {
	var outPath string
	var force bool
	var stdout bool
	defaultOutput := "$HOME/.zscale/" + zscale.DefaultConfigFile
	if path, err := zscale.DefaultConfigPath(); err == nil {
		defaultOutput = path
	}

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a default zscale configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if stdout && outPath != "" {
				return fmt.Errorf("--stdout and --out are mutually exclusive")
			}
			if outPath == "" {
				path, err := zscale.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("resolve config dir: %w", err)
				}
				outPath = path
			}

			data, err := defaultConfigYAML()
			if err != nil {
				return err
			}

			if stdout {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}

			if err := installConfig(outPath, data, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote default config to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", fmt.Sprintf("output path for generated config (defaults to %s)", defaultOutput))
	cmd.Flags().BoolVar(&force, "force", false, "overwrite the target file if it already exists")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "print the config to stdout instead of writing a file")
	return cmd
}

// installConfig writes data to path with owner-only permissions. Without
// force an existing file is an error.
func installConfig(path string, data []byte, force bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write config file: %w", err)
	}
	return f.Close()
}

// configDefaults mirrors the viper keys. The token is left empty; it
// normally comes from ZEPHYR_SCALE_API_TOKEN.
type configDefaults struct {
	APIToken               string    `yaml:"api-token"`
	BaseURL                string    `yaml:"base-url"`
	DefaultProjectKey      string    `yaml:"default-project-key"`
	HTTPTimeout            string    `yaml:"http-timeout"`
	LogLevel               string    `yaml:"log-level"`
	OTLPEndpoint           string    `yaml:"otlp-endpoint"`
	MetricsListen          string    `yaml:"metrics-listen"`
	PprofListen            string    `yaml:"pprof-listen"`
	EnableProfilingMetrics bool      `yaml:"enable-profiling-metrics"`
	MCP                    mcpConfig `yaml:"mcp"`
}

type mcpConfig struct {
	Transport string `yaml:"transport"`
	Listen    string `yaml:"listen"`
	Path      string `yaml:"path"`
}

func defaultConfigYAML(overrides ...func(*configDefaults)) ([]byte, error) {
	defaults := configDefaults{
		BaseURL:     zscale.DefaultBaseURL,
		HTTPTimeout: zscale.DefaultHTTPTimeout.String(),
		LogLevel:    "info",
		MCP: mcpConfig{
			Transport: "stdio",
			Listen:    "127.0.0.1:19342",
			Path:      "/mcp",
		},
	}
	for _, fn := range overrides {
		if fn != nil {
			fn(&defaults)
		}
	}

	out, err := yaml.Marshal(&defaults)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return out, nil
}
