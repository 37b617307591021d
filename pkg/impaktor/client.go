package impaktor

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/impaktor/pkg/codec"
)

// Verb is the HTTP method of a call.
type Verb string

const (
	VerbGet    Verb = http.MethodGet
	VerbPost   Verb = http.MethodPost
	VerbPut    Verb = http.MethodPut
	VerbDelete Verb = http.MethodDelete
	VerbPatch  Verb = http.MethodPatch
)

// Valid reports whether v is one of the supported verbs.
func (v Verb) Valid() bool {
	switch v {
	case VerbGet, VerbPost, VerbPut, VerbDelete, VerbPatch:
		return true
	}
	return false
}

// Values maps header or query names to values. Values are sent in their
// fmt.Sprint form; nil is sent as "".
type Values map[string]any

// Request describes a single call.
type Request struct {
	Verb Verb
	// Path is joined to the base address with a single slash.
	Path string
	// Body is encoded with the client's codec. Nil sends no body. Ignored
	// for GET.
	Body any
	// AuthToken, when set, is sent as the Authorization header and replaces
	// any Authorization entry in Headers. A bare token is prefixed with
	// "Bearer "; a value that already contains a space, such as
	// "Basic abc" or "Bearer abc", is sent unchanged.
	AuthToken string
	// Query is appended to GET requests only.
	Query   Values
	Headers Values
	// BaseAddress overrides the configured base address for this call.
	BaseAddress string
}

// Class is the classification a finished call was given.
type Class string

const (
	ClassSuccess       Class = "success"
	ClassFailure       Class = "failure"
	ClassBadStatus     Class = "bad_status"
	ClassTimeout       Class = "timeout"
	ClassNetwork       Class = "network"
	ClassSerialization Class = "serialization"
	ClassNotConfigured Class = "not_configured"
	ClassUnexpected    Class = "unexpected"
)

// Observer is notified when a call starts and when it resolves. Methods are
// called on the calling goroutine and must not block.
type Observer interface {
	CallStarted(verb Verb, path string)
	CallFinished(verb Verb, path string, class Class, status int, d time.Duration)
}

// Client sends calls against a configurable base address. It is safe for
// concurrent use; reconfiguration does not affect calls already in flight.
type Client struct {
	mu  sync.RWMutex
	cfg Config

	httpClient *http.Client
	codec      codec.Codec
	logger     *zap.Logger
	observers  []Observer
	userAgent  string
}

// New creates a Client. Without WithBaseAddress the client starts
// unconfigured and rejects calls until Init is called.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		timeout:   DefaultTimeout,
		codec:     codec.JSON{},
		logger:    zap.NewNop(),
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.timeout < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNegativeTimeout, cfg.timeout)
	}

	var addr string
	if cfg.baseAddress != "" {
		var err error
		if addr, err = normalizeBaseAddress(cfg.baseAddress); err != nil {
			return nil, err
		}
	}

	httpClient, err := newHTTPClient(cfg.httpClient, cfg.tlsConfig)
	if err != nil {
		return nil, err
	}

	if cfg.codec == nil {
		cfg.codec = codec.JSON{}
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	return &Client{
		cfg:        Config{BaseAddress: addr, Timeout: cfg.timeout},
		httpClient: httpClient,
		codec:      cfg.codec,
		logger:     cfg.logger,
		observers:  cfg.observers,
		userAgent:  cfg.userAgent,
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) callStarted(verb Verb, path string) {
	for _, o := range c.observers {
		o.CallStarted(verb, path)
	}
}

func (c *Client) callFinished(verb Verb, path string, class Class, status int, d time.Duration) {
	for _, o := range c.observers {
		o.CallFinished(verb, path, class, status, d)
	}
}
