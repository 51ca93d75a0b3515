package zscale

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"pkt.systems/zscale/client"
	"pkt.systems/zscale/validate"
)

const (
	// DefaultBaseURL is the Zephyr Scale Cloud API root.
	DefaultBaseURL = client.DefaultBaseURL
	// DefaultHTTPTimeout bounds one gateway call.
	DefaultHTTPTimeout = client.DefaultHTTPTimeout
	// DefaultConfigFile is the config file name inside DefaultConfigDir.
	DefaultConfigFile = "config.yaml"
)

// Environment variables read by the CLI.
const (
	EnvAPIToken          = "ZEPHYR_SCALE_API_TOKEN"
	EnvBaseURL           = "ZEPHYR_SCALE_BASE_URL"
	EnvDefaultProjectKey = "ZEPHYR_SCALE_DEFAULT_PROJECT_KEY"
	EnvHTTPTimeout       = "ZSCALE_HTTP_TIMEOUT"
	EnvConfigDir         = "ZSCALE_CONFIG_DIR"
)

// ErrMissingToken is returned by Validate when no API token is configured.
var ErrMissingToken = errors.New("zscale: config: " + EnvAPIToken + " environment variable is required")

// Config is one immutable snapshot of the gateway configuration.
type Config struct {
	// APIToken is the Zephyr Scale bearer token.
	APIToken string
	// BaseURL is the API root; DefaultBaseURL when empty.
	BaseURL string
	// DefaultProjectKey is used when a call omits projectKey.
	DefaultProjectKey string
	// HTTPTimeout bounds one call; DefaultHTTPTimeout when zero.
	HTTPTimeout time.Duration
}

// Validate fills defaults and checks the snapshot.
func (c *Config) Validate() error {
	c.APIToken = strings.TrimSpace(c.APIToken)
	if c.APIToken == "" {
		return ErrMissingToken
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("zscale: config: base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("zscale: config: base url must be an absolute http(s) URL (got %q)", c.BaseURL)
	}
	c.DefaultProjectKey = strings.TrimSpace(c.DefaultProjectKey)
	if c.DefaultProjectKey != "" {
		if err := validate.ProjectKey(c.DefaultProjectKey).Err(); err != nil {
			return fmt.Errorf("zscale: config: default project key: %w", err)
		}
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("zscale: config: http timeout must be positive (got %s)", c.HTTPTimeout)
	}
	return nil
}

// Settings converts the snapshot into gateway settings.
func (c Config) Settings() client.Settings {
	return client.Settings{
		Token:             c.APIToken,
		BaseURL:           c.BaseURL,
		DefaultProjectKey: c.DefaultProjectKey,
		Timeout:           c.HTTPTimeout,
	}
}

// Redacted returns a copy safe for logging.
func (c Config) Redacted() Config {
	if c.APIToken != "" {
		c.APIToken = "REDACTED"
	}
	return c
}

// Store holds the current configuration snapshot. Swaps are atomic, so a
// call that has read Current keeps a consistent view while a reload lands.
type Store struct {
	current atomic.Pointer[Config]
}

// NewStore validates cfg and returns a store holding it.
func NewStore(cfg Config) (*Store, error) {
	s := &Store{}
	if err := s.Swap(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// Swap validates cfg and replaces the current snapshot. An invalid cfg leaves
// the previous snapshot in place.
func (s *Store) Swap(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.current.Store(&cfg)
	return nil
}

// Config returns the current snapshot.
func (s *Store) Config() Config {
	if cfg := s.current.Load(); cfg != nil {
		return *cfg
	}
	return Config{}
}

// Current implements client.Source.
func (s *Store) Current() client.Settings {
	return s.Config().Settings()
}

var _ client.Source = (*Store)(nil)

// DefaultConfigDir returns the default configuration directory ($HOME/.zscale).
func DefaultConfigDir() (string, error) {
	if override := strings.TrimSpace(os.Getenv(EnvConfigDir)); override != "" {
		if filepath.IsAbs(override) {
			return override, nil
		}
		abs, err := filepath.Abs(override)
		if err != nil {
			return "", err
		}
		return abs, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".zscale"), nil
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}
