package beacon

import "github.com/maorga/beacon/internal/app/config"

// Config re-exports the configuration struct so callers can construct or
// modify it programmatically.
type Config = config.Config

type (
	// CollectorConfig selects and tunes the delivery backend.
	CollectorConfig = config.CollectorConfig
	// PostgresConfig configures the self-hosted collector sink.
	PostgresConfig = config.PostgresConfig
	// QueueConfig bounds the in-memory event buffer.
	QueueConfig = config.QueueConfig
	// ShutdownConfig bounds the flush and join phases of Shutdown.
	ShutdownConfig = config.ShutdownConfig
	// IdentityConfig locates the persisted client identity record.
	IdentityConfig = config.IdentityConfig
	// MetricsConfig configures the optional Prometheus endpoint.
	MetricsConfig = config.MetricsConfig
)

// LoadConfig loads YAML from disk using the internal config reader.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// ConfigFromEnv builds a Config from the environment, reading envPath as a
// dotenv file when present (GA4_MEASUREMENT_ID, GA4_API_SECRET).
func ConfigFromEnv(envPath string) (*Config, error) {
	return config.FromEnv(envPath)
}

// DefaultConfig returns a fully defaulted Config with no credentials.
func DefaultConfig() *Config {
	return config.Default()
}
