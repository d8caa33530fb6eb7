package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

var levels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Load reads configuration from a YAML file. Keys missing from the file keep
// their Default values. An empty path returns the defaults.
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	if path == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate reports values SafeWithRetries would reject.
func (c *AppConfig) Validate() error {
	var errs []error
	if !levels[c.Logging.Level] {
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	if c.Retry.Retries < 0 {
		errs = append(errs, errors.New("retry.retries must be non-negative"))
	}
	if c.Retry.InitialDelay < 0 {
		errs = append(errs, errors.New("retry.initial_delay must be non-negative"))
	}
	if c.Retry.Timeout < 0 {
		errs = append(errs, errors.New("retry.timeout must be non-negative"))
	} else if c.Retry.Timeout > 0 && c.Retry.Timeout < time.Millisecond {
		errs = append(errs, errors.New("retry.timeout must be zero or at least 1ms"))
	}
	return errors.Join(errs...)
}
