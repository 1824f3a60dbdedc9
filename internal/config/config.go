package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultScrapeInterval = 60 * time.Second
	DefaultTimeout        = 30 * time.Second
	DefaultListenPort     = 9090
	DefaultScenePageSize  = 1000
	DefaultLogLevel       = "info"
)

// PageSizeDisabled is the scene_page_size sentinel that turns pagination off:
// the whole library is fetched in a single request.
const PageSizeDisabled = -1

// Config is the top-level exporter configuration.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Stash    StashConfig    `yaml:"stash"`
	Exporter ExporterConfig `yaml:"exporter"`
}

// StashConfig holds the upstream GraphQL endpoint settings.
type StashConfig struct {
	// URL is the full GraphQL endpoint, e.g. http://localhost:9999/graphql.
	URL string `yaml:"url"`

	// APIKeyEnv is the name of the environment variable holding the Stash
	// API key. Leave empty for an unauthenticated instance.
	APIKeyEnv string `yaml:"api_key_env"`

	// Timeout bounds each upstream HTTP request.
	Timeout time.Duration `yaml:"timeout"`

	// TLS holds transport-level TLS options.
	TLS TLSConfig `yaml:"tls"`
}

// APIKey returns the API key resolved from the environment.
// Returns empty string if APIKeyEnv is unset or the variable is not found.
func (s StashConfig) APIKey() string {
	if s.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(s.APIKeyEnv)
}

// TLSConfig holds upstream TLS dial options.
type TLSConfig struct {
	// InsecureSkipVerify disables TLS certificate verification.
	// Only use this for internal CAs in development environments.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// ExporterConfig holds the exporter-side settings.
type ExporterConfig struct {
	// ListenPort is the port /metrics and /healthz are served on.
	ListenPort int `yaml:"listen_port"`

	// ScrapeInterval is the wall-clock cadence between cycle starts.
	ScrapeInterval time.Duration `yaml:"scrape_interval"`

	// ScenePageSize is the number of scenes requested per page, or
	// PageSizeDisabled (-1) to fetch everything in one request.
	ScenePageSize int `yaml:"scene_page_size"`

	// MaxScenes caps how many scenes one cycle will fetch and aggregate.
	// Zero or negative means unbounded.
	MaxScenes int `yaml:"max_scenes"`

	// LogLevel is one of: debug | info | warn | error.
	LogLevel string `yaml:"log_level"`
}

// SlogLevel maps the configured log_level string to a slog.Level.
// Unknown values fall back to info; validation rejects them at load time.
func (e ExporterConfig) SlogLevel() slog.Level {
	switch e.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes into a validated Config with defaults applied.
func Parse(data []byte) (*Config, error) {
	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Stash: StashConfig{
			Timeout: DefaultTimeout,
		},
		Exporter: ExporterConfig{
			ListenPort:     DefaultListenPort,
			ScrapeInterval: DefaultScrapeInterval,
			ScenePageSize:  DefaultScenePageSize,
			LogLevel:       DefaultLogLevel,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Stash.URL == "" {
		return fmt.Errorf("stash.url is required")
	}
	if cfg.Stash.Timeout <= 0 {
		return fmt.Errorf("stash.timeout must be positive")
	}
	if cfg.Exporter.ListenPort <= 0 || cfg.Exporter.ListenPort > 65535 {
		return fmt.Errorf("exporter.listen_port must be in 1..65535")
	}
	if cfg.Exporter.ScrapeInterval <= 0 {
		return fmt.Errorf("exporter.scrape_interval must be positive")
	}
	if cfg.Exporter.ScenePageSize <= 0 && cfg.Exporter.ScenePageSize != PageSizeDisabled {
		return fmt.Errorf("exporter.scene_page_size must be positive or -1")
	}
	switch cfg.Exporter.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("exporter.log_level: unknown level %q", cfg.Exporter.LogLevel)
	}
	return nil
}
