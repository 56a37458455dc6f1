package beacon

import (
	base "github.com/maorga/beacon/pkg/beacon"
)

// Type aliases so consumers can import github.com/maorga/beacon directly.
type (
	Pipeline        = base.Pipeline
	Option          = base.Option
	Config          = base.Config
	CollectorConfig = base.CollectorConfig
	PostgresConfig  = base.PostgresConfig
	QueueConfig     = base.QueueConfig
	ShutdownConfig  = base.ShutdownConfig
	IdentityConfig  = base.IdentityConfig
	MetricsConfig   = base.MetricsConfig
	Event           = base.Event
	EventQueue      = base.EventQueue
	Sink            = base.Sink
	Observability   = base.Observability
	Field           = base.Field
)

// Canonical event names for the host application lifecycle.
const (
	EventAppOpened    = base.EventAppOpened
	EventAppClosed    = base.EventAppClosed
	EventCtrlLocked   = base.EventCtrlLocked
	EventCtrlReleased = base.EventCtrlReleased
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func ConfigFromEnv(envPath string) (*Config, error) {
	return base.ConfigFromEnv(envPath)
}

func DefaultConfig() *Config {
	return base.DefaultConfig()
}

// Pipeline constructors.
func New(cfg *Config, opts ...Option) (*Pipeline, error) {
	return base.New(cfg, opts...)
}

func NewDisabled() *Pipeline {
	return base.NewDisabled()
}

// Dependency injection options.
func WithQueue(q EventQueue) Option {
	return base.WithQueue(q)
}

func WithSink(s Sink) Option {
	return base.WithSink(s)
}

func WithObservability(obs Observability) Option {
	return base.WithObservability(obs)
}

func WithClientID(id string) Option {
	return base.WithClientID(id)
}
