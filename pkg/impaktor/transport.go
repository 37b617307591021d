package impaktor

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// newTransport builds the default round tripper: HTTP/1.1 with HTTP/2
// negotiated over TLS.
func newTransport(tlsConfig *tls.Config) (*http.Transport, error) {
	if tlsConfig == nil {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	} else {
		tlsConfig = tlsConfig.Clone()
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		TLSClientConfig:       tlsConfig,
	}

	if err := http2.ConfigureTransport(transport); err != nil {
		return nil, fmt.Errorf("configure http2: %w", err)
	}
	return transport, nil
}

// newHTTPClient returns the client calls are sent through. A caller-supplied
// client is copied so the caller's value is never mutated.
func newHTTPClient(base *http.Client, tlsConfig *tls.Config) (*http.Client, error) {
	if base != nil {
		client := *base
		if client.CheckRedirect == nil {
			client.CheckRedirect = noRedirect
		}
		return &client, nil
	}

	transport, err := newTransport(tlsConfig)
	if err != nil {
		return nil, err
	}
	return &http.Client{
		Transport:     transport,
		CheckRedirect: noRedirect,
	}, nil
}

// noRedirect hands 3xx responses back to the caller.
func noRedirect(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}
