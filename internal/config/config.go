package config

import (
	"time"

	"github.com/baxromumarov/safely"
)

// AppConfig represents the top-level safecall configuration.
type AppConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Retry   RetryConfig   `yaml:"retry"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Errors bool   `yaml:"errors"` // log every failed attempt
}

// RetryConfig mirrors safely.RetryOptions.
type RetryConfig struct {
	Retries      int           `yaml:"retries"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	Jitter       bool          `yaml:"jitter"`
	Timeout      time.Duration `yaml:"timeout"` // 0 = no per-attempt timeout
}

// Default returns the configuration used when no file is given.
func Default() AppConfig {
	return AppConfig{
		Logging: LoggingConfig{
			Level:  "info",
			Errors: true,
		},
		Retry: RetryConfig{
			Retries:      3,
			InitialDelay: safely.DefaultInitialDelay,
		},
	}
}

// Options converts the retry section for SafeWithRetries.
func (c RetryConfig) Options() safely.RetryOptions {
	return safely.RetryOptions{
		Retries:      c.Retries,
		InitialDelay: c.InitialDelay,
		Jitter:       c.Jitter,
		Timeout:      c.Timeout,
	}
}
