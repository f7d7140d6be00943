// Package httpx builds the outbound HTTP clients used for the object store and catalog.
package httpx

import (
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultClientTimeout         = 30 * time.Second
	defaultDialTimeout           = 5 * time.Second
	defaultResponseHeaderTimeout = 20 * time.Second
	defaultIdleConnTimeout       = 90 * time.Second
	defaultExpectContinueTimeout = 1 * time.Second
	defaultMaxIdleConns          = 128
	defaultMaxIdleConnsPerHost   = 16
)

type options struct {
	token           string
	traced          bool
	maxConnsPerHost int
}

// Option customises NewClient.
type Option func(*options)

// WithBearerToken sends "Authorization: Bearer <token>" on every request.
func WithBearerToken(token string) Option {
	return func(o *options) { o.token = token }
}

// WithTracing wraps the transport with OpenTelemetry client spans.
func WithTracing() Option {
	return func(o *options) { o.traced = true }
}

// WithMaxIdleConnsPerHost sizes the idle pool for callers that fan out to one host.
func WithMaxIdleConnsPerHost(n int) Option {
	return func(o *options) { o.maxConnsPerHost = n }
}

// NewClient returns a hardened HTTP client.
func NewClient(timeout time.Duration, opts ...Option) *http.Client {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}

	dialTimeout := min(timeout, defaultDialTimeout)
	responseHeaderTimeout := min(timeout, defaultResponseHeaderTimeout)

	perHost := defaultMaxIdleConnsPerHost
	if o.maxConnsPerHost > 0 {
		perHost = o.maxConnsPerHost
	}

	var rt http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          max(defaultMaxIdleConns, perHost),
		MaxIdleConnsPerHost:   perHost,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   dialTimeout,
		ResponseHeaderTimeout: responseHeaderTimeout,
		ExpectContinueTimeout: defaultExpectContinueTimeout,
	}
	if o.token != "" {
		rt = &BearerTransport{Token: o.token, Base: rt}
	}
	if o.traced {
		rt = otelhttp.NewTransport(rt)
	}

	return &http.Client{Timeout: timeout, Transport: rt}
}

// BearerTransport injects a bearer token into outgoing requests.
type BearerTransport struct {
	Token string
	Base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper. The request is cloned, never mutated.
func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+t.Token)
	return base.RoundTrip(r)
}
