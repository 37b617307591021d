package impaktor

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout applies until a timeout is configured.
const DefaultTimeout = 30000 * time.Millisecond

// TimeUnit is the unit of a Timeout value.
type TimeUnit int

const (
	Milliseconds TimeUnit = iota
	Seconds
	Minutes
)

func (u TimeUnit) String() string {
	switch u {
	case Milliseconds:
		return "ms"
	case Seconds:
		return "s"
	case Minutes:
		return "m"
	default:
		return fmt.Sprintf("TimeUnit(%d)", int(u))
	}
}

// ParseTimeUnit accepts the short forms ("ms", "s", "m") and the long names
// ("milliseconds", "seconds", "minutes"), case-insensitively.
func ParseTimeUnit(s string) (TimeUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ms", "millis", "milliseconds":
		return Milliseconds, nil
	case "s", "sec", "seconds":
		return Seconds, nil
	case "m", "min", "minute", "minutes":
		return Minutes, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTimeUnit, s)
	}
}

// Timeout is a duration expressed as a value and a unit.
type Timeout struct {
	Value int64
	Unit  TimeUnit
}

// maxMillis is the longest timeout a time.Duration can hold, in milliseconds.
const maxMillis = int64(math.MaxInt64 / time.Millisecond)

// Millis normalises t to milliseconds. The result is meaningless for an
// unknown unit or an out-of-range value; Duration reports both.
func (t Timeout) Millis() int64 {
	switch t.Unit {
	case Seconds:
		return t.Value * 1000
	case Minutes:
		return t.Value * 60 * 1000
	default:
		return t.Value
	}
}

// Duration validates t and converts it to a time.Duration.
func (t Timeout) Duration() (time.Duration, error) {
	if t.Value < 0 {
		return 0, fmt.Errorf("%w: %d%s", ErrNegativeTimeout, t.Value, t.Unit)
	}
	if t.Unit < Milliseconds || t.Unit > Minutes {
		return 0, fmt.Errorf("%w: %d", ErrUnknownTimeUnit, int(t.Unit))
	}
	if t.Value > maxMillis/(Timeout{Value: 1, Unit: t.Unit}).Millis() {
		return 0, fmt.Errorf("%w: %d%s", ErrTimeoutTooLarge, t.Value, t.Unit)
	}
	return time.Duration(t.Millis()) * time.Millisecond, nil
}

// Config is a snapshot of a client's call defaults.
type Config struct {
	// BaseAddress is host[:port][/prefix] without a scheme. Empty means the
	// client is not configured.
	BaseAddress string
	// Timeout bounds a whole call. Zero disables the bound.
	Timeout time.Duration
}

// normalizeBaseAddress validates a base address and strips surrounding
// whitespace and slashes.
func normalizeBaseAddress(s string) (string, error) {
	addr := strings.Trim(strings.TrimSpace(s), "/")
	if addr == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidBaseAddress)
	}
	if strings.Contains(addr, "://") {
		return "", fmt.Errorf("%w: %q must not include a scheme", ErrInvalidBaseAddress, s)
	}

	u, err := url.Parse("https://" + addr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBaseAddress, err)
	}
	if u.Host == "" || u.User != nil || u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidBaseAddress, s)
	}
	return addr, nil
}

// Init sets the base address, keeping the current timeout.
func (c *Client) Init(baseAddress string) error {
	addr, err := normalizeBaseAddress(baseAddress)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.cfg.BaseAddress = addr
	c.mu.Unlock()

	c.logger.Debug("client configured", zap.String("base_address", addr))
	return nil
}

// InitWithTimeout sets the base address and timeout together. Neither is
// applied if either is invalid.
func (c *Client) InitWithTimeout(baseAddress string, value int64, unit TimeUnit) error {
	addr, err := normalizeBaseAddress(baseAddress)
	if err != nil {
		return err
	}
	d, err := Timeout{Value: value, Unit: unit}.Duration()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.cfg = Config{BaseAddress: addr, Timeout: d}
	c.mu.Unlock()

	c.logger.Debug("client configured", zap.String("base_address", addr), zap.Duration("timeout", d))
	return nil
}

// InitTimeout sets the timeout, keeping the current base address.
func (c *Client) InitTimeout(value int64, unit TimeUnit) error {
	d, err := Timeout{Value: value, Unit: unit}.Duration()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.cfg.Timeout = d
	c.mu.Unlock()

	c.logger.Debug("client timeout set", zap.Duration("timeout", d))
	return nil
}

// Config returns the current call defaults.
func (c *Client) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// Configured reports whether a base address has been set.
func (c *Client) Configured() bool {
	return c.Config().BaseAddress != ""
}
