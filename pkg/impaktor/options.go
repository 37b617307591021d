package impaktor

import (
	"crypto/tls"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/impaktor/pkg/codec"
)

const defaultUserAgent = "impaktor"

// clientConfig collects options before the client is built.
type clientConfig struct {
	baseAddress string
	timeout     time.Duration
	httpClient  *http.Client
	tlsConfig   *tls.Config
	codec       codec.Codec
	logger      *zap.Logger
	observers   []Observer
	userAgent   string
}

// Option configures a Client.
type Option func(*clientConfig)

// WithBaseAddress configures the client at construction, as Init would.
func WithBaseAddress(addr string) Option {
	return func(c *clientConfig) {
		c.baseAddress = addr
	}
}

// WithTimeout sets the call timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithHTTPClient sets the HTTP client used for every call. The client is
// copied; redirects are disabled on the copy unless it already has a
// CheckRedirect policy.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTLSConfig sets the TLS configuration of the default transport. It has
// no effect together with WithHTTPClient.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *clientConfig) {
		c.tlsConfig = cfg
	}
}

// WithCodec replaces the JSON codec used for request and response bodies.
func WithCodec(cdc codec.Codec) Option {
	return func(c *clientConfig) {
		c.codec = cdc
	}
}

// WithLogger sets the logger classified failures are written to.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithObserver adds observers notified around every call.
func WithObserver(obs ...Observer) Option {
	return func(c *clientConfig) {
		c.observers = append(c.observers, obs...)
	}
}

// WithUserAgent sets the User-Agent header. Caller headers still override it.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}
