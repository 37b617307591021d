package cli

import (
	"crypto/tls"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/impaktor/internal/config"
	"github.com/impaktor/internal/logging"
	"github.com/impaktor/pkg/impaktor"
)

// load reads the configuration file and applies the global flags on top.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.base != "" {
		cfg.BaseAddress = o.base
	}
	if o.timeout != "" {
		t, err := parseTimeout(o.timeout)
		if err != nil {
			return nil, fmt.Errorf("--timeout: %w", err)
		}
		cfg.Timeout = t.Value
		cfg.TimeoutUnit = t.Unit.String()
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.insecure {
		cfg.TLSInsecure = true
	}

	return cfg, nil
}

// parseTimeout reads a value with an optional unit suffix; a bare number is
// milliseconds.
func parseTimeout(s string) (impaktor.Timeout, error) {
	s = strings.TrimSpace(s)
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}

	value, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return impaktor.Timeout{}, fmt.Errorf("invalid timeout %q", s)
	}

	unit := impaktor.Milliseconds
	if suffix := s[i:]; suffix != "" {
		if unit, err = impaktor.ParseTimeUnit(suffix); err != nil {
			return impaktor.Timeout{}, err
		}
	}

	t := impaktor.Timeout{Value: value, Unit: unit}
	if _, err := t.Duration(); err != nil {
		return impaktor.Timeout{}, err
	}
	return t, nil
}

// newLogger builds the logger for cfg. file overrides cfg.LogFile when set.
func newLogger(cfg *config.Config, file string) (*zap.Logger, error) {
	if file == "" {
		file = cfg.LogFile
	}
	return logging.New(cfg.LogLevel, file)
}

// newClient builds a client from cfg. A missing base address leaves the
// client unconfigured; its calls then resolve to a transport error.
func newClient(cfg *config.Config, logger *zap.Logger, extra ...impaktor.Option) (*impaktor.Client, error) {
	opts := []impaktor.Option{impaktor.WithLogger(logger)}
	if cfg.UserAgent != "" {
		opts = append(opts, impaktor.WithUserAgent(cfg.UserAgent))
	}
	if cfg.TLSInsecure {
		opts = append(opts, impaktor.WithTLSConfig(&tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: true, //nolint:gosec // opt-in for test servers
		}))
	}
	opts = append(opts, extra...)

	client, err := impaktor.New(opts...)
	if err != nil {
		return nil, err
	}

	t := cfg.ClientTimeout()
	if cfg.BaseAddress != "" {
		err = client.InitWithTimeout(cfg.BaseAddress, t.Value, t.Unit)
	} else {
		err = client.InitTimeout(t.Value, t.Unit)
	}
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// parsePairs reads repeated key=value flags. A later key replaces an earlier one.
func parsePairs(flag string, pairs []string) (impaktor.Values, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	values := make(impaktor.Values, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("--%s: expected key=value, got %q", flag, p)
		}
		values[k] = v
	}
	return values, nil
}
