package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/maorga/beacon/internal/adapters/queue"
	"github.com/maorga/beacon/internal/adapters/sink"
)

type Config struct {
	Collector CollectorConfig `yaml:"collector"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Queue     QueueConfig     `yaml:"queue"`
	Shutdown  ShutdownConfig  `yaml:"shutdown"`
	Identity  IdentityConfig  `yaml:"identity"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type CollectorConfig struct {
	Kind          string        `yaml:"kind"` // "ga4" or "postgres"
	MeasurementID string        `yaml:"measurement_id"`
	APISecret     string        `yaml:"api_secret"`
	Endpoint      string        `yaml:"endpoint"`
	Timeout       time.Duration `yaml:"timeout"`
}

type PostgresConfig struct {
	ConnString string `yaml:"conn_string"`
	Table      string `yaml:"table"`
}

type QueueConfig struct {
	Capacity    int           `yaml:"capacity"`
	DequeueWait time.Duration `yaml:"dequeue_wait"`
}

type ShutdownConfig struct {
	FlushTimeout time.Duration `yaml:"flush_timeout"`
	JoinTimeout  time.Duration `yaml:"join_timeout"`
}

type IdentityConfig struct {
	Path string `yaml:"path"`
}

type MetricsConfig struct {
	// Addr is the listen address of the Prometheus endpoint. Empty disables
	// the metrics server.
	Addr string `yaml:"addr"`
}

// Load reads YAML configuration from path, fills defaults, and validates.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a configuration with every default applied and no
// credentials, which constructs a disabled pipeline.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// FromEnv builds a configuration from environment variables, loading envPath
// as a dotenv file first when it exists. A missing file is not an error: the
// pipeline degrades to disabled when credentials stay unset.
func FromEnv(envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := Default()
	cfg.Collector.MeasurementID = os.Getenv("GA4_MEASUREMENT_ID")
	cfg.Collector.APISecret = os.Getenv("GA4_API_SECRET")
	return cfg, nil
}

// AppVersion reports the host application version from the environment.
func AppVersion() string {
	if v := os.Getenv("APP_VERSION"); v != "" {
		return v
	}
	return "1.0.0"
}

// DebugMode reports whether DEBUG is set to true in the environment.
func DebugMode() bool {
	return strings.EqualFold(os.Getenv("DEBUG"), "true")
}

// CollectorConfigured reports whether construction can reach an enabled
// state. Missing credentials are a supported degradation, not an error.
func (c *Config) CollectorConfigured() bool {
	switch c.Collector.Kind {
	case "postgres":
		return c.Postgres.ConnString != ""
	default:
		return c.Collector.MeasurementID != "" && c.Collector.APISecret != ""
	}
}

func (c *Config) applyDefaults() {
	if c.Collector.Kind == "" {
		c.Collector.Kind = "ga4"
	}
	if c.Collector.Endpoint == "" {
		c.Collector.Endpoint = sink.DefaultEndpoint
	}
	if c.Collector.Timeout == 0 {
		c.Collector.Timeout = sink.DefaultTimeout
	}
	if c.Postgres.Table == "" {
		c.Postgres.Table = "events"
	}
	if c.Queue.Capacity == 0 {
		c.Queue.Capacity = queue.DefaultCapacity
	}
	if c.Queue.DequeueWait == 0 {
		c.Queue.DequeueWait = time.Second
	}
	if c.Shutdown.FlushTimeout == 0 {
		c.Shutdown.FlushTimeout = 5 * time.Second
	}
	if c.Shutdown.JoinTimeout == 0 {
		c.Shutdown.JoinTimeout = 2 * time.Second
	}
	if c.Identity.Path == "" {
		c.Identity.Path = "user_config.json"
	}
}

func (c *Config) validate() error {
	switch c.Collector.Kind {
	case "ga4", "postgres":
	default:
		return fmt.Errorf("collector.kind must be ga4 or postgres, got %q", c.Collector.Kind)
	}
	if c.Collector.Kind == "postgres" && c.Postgres.ConnString == "" {
		return fmt.Errorf("postgres.conn_string is required for collector.kind postgres")
	}
	if c.Queue.Capacity <= 0 {
		return fmt.Errorf("queue.capacity must be > 0")
	}
	if c.Queue.DequeueWait <= 0 {
		return fmt.Errorf("queue.dequeue_wait must be > 0")
	}
	if c.Shutdown.FlushTimeout <= 0 || c.Shutdown.JoinTimeout <= 0 {
		return fmt.Errorf("shutdown timeouts must be > 0")
	}
	if c.Identity.Path == "" {
		return fmt.Errorf("identity.path is required")
	}
	return nil
}
