package config

// Config is the root configuration structure.
type Config struct {
	// BaseAddress is host[:port][/prefix], without a scheme.
	BaseAddress string `yaml:"base_address" toml:"base_address"`
	Timeout     int64  `yaml:"timeout" toml:"timeout"`
	TimeoutUnit string `yaml:"timeout_unit" toml:"timeout_unit"`
	AuthToken   string `yaml:"auth_token,omitempty" toml:"auth_token,omitempty"`
	UserAgent   string `yaml:"user_agent,omitempty" toml:"user_agent,omitempty"`
	// TLSInsecure skips certificate verification. Only for test servers.
	TLSInsecure bool `yaml:"tls_insecure" toml:"tls_insecure"`

	LogLevel string `yaml:"log_level" toml:"log_level"`
	LogFile  string `yaml:"log_file,omitempty" toml:"log_file,omitempty"`

	Metrics Metrics `yaml:"metrics" toml:"metrics"`
	Probe   Probe   `yaml:"probe" toml:"probe"`
}

// Metrics configures the Prometheus endpoint served while probing.
type Metrics struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Address string `yaml:"address" toml:"address"`
	Path    string `yaml:"path" toml:"path"`
}

// Probe configures the probe command.
type Probe struct {
	Count int     `yaml:"count" toml:"count"`
	Rate  float64 `yaml:"rate" toml:"rate"` // Calls per second
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Timeout:     30000,
		TimeoutUnit: "ms",
		LogLevel:    "info",
		Metrics: Metrics{
			Enabled: false,
			Address: ":9090",
			Path:    "/metrics",
		},
		Probe: Probe{
			Count: 10,
			Rate:  5,
		},
	}
}
