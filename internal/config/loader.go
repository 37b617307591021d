package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/impaktor/pkg/impaktor"
)

// Environment variables that override file values.
const (
	EnvBaseAddress = "IMPAKTOR_BASE_ADDRESS"
	EnvAuthToken   = "IMPAKTOR_AUTH_TOKEN"
)

// Load reads a YAML or TOML configuration file, chosen by extension. An empty
// path loads the defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decode(path, data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvBaseAddress); ok && v != "" {
		cfg.BaseAddress = v
	}
	if v, ok := os.LookupEnv(EnvAuthToken); ok && v != "" {
		cfg.AuthToken = v
	}
}

// validate checks the configuration for errors.
func validate(cfg *Config) error {
	if cfg.TimeoutUnit == "" {
		cfg.TimeoutUnit = "ms"
	}
	if _, err := cfg.ClientTimeout().Duration(); err != nil {
		return fmt.Errorf("timeout: %w", err)
	}
	if _, err := impaktor.ParseTimeUnit(cfg.TimeoutUnit); err != nil {
		return fmt.Errorf("timeout_unit: %w", err)
	}

	if cfg.BaseAddress != "" && strings.Contains(cfg.BaseAddress, "://") {
		return fmt.Errorf("base_address must not include a scheme")
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Address == "" {
			return fmt.Errorf("metrics.address is required when metrics are enabled")
		}
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			return fmt.Errorf("metrics.path must start with /")
		}
	}

	if cfg.Probe.Count <= 0 {
		return fmt.Errorf("probe.count must be positive")
	}
	if cfg.Probe.Rate <= 0 {
		return fmt.Errorf("probe.rate must be positive")
	}

	return nil
}

// ClientTimeout returns the configured timeout as an impaktor.Timeout. An
// unknown unit is reported by the Timeout's Duration method.
func (c *Config) ClientTimeout() impaktor.Timeout {
	unit, err := impaktor.ParseTimeUnit(c.TimeoutUnit)
	if err != nil {
		unit = impaktor.TimeUnit(-1)
	}
	return impaktor.Timeout{Value: c.Timeout, Unit: unit}
}
