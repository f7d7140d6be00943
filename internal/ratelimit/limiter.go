// SPDX-License-Identifier: MIT

// Package ratelimit provides the client-side token bucket applied to object store calls.
package ratelimit

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var (
	rateLimitWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hlsbundle",
			Name:      "ratelimit_wait_seconds",
			Help:      "Time spent waiting for a client-side rate limit token",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"endpoint"},
	)
	rateLimitAborted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hlsbundle",
			Name:      "ratelimit_aborted_total",
			Help:      "Requests abandoned while waiting for a rate limit token",
		},
		[]string{"endpoint"},
	)
)

// Config holds client-side limit settings. A zero Rate disables limiting.
type Config struct {
	Rate  rate.Limit // requests per second
	Burst int
}

// Limiter throttles outgoing requests.
type Limiter struct {
	lim *rate.Limiter
}

// New creates a limiter. A nil *Limiter is valid and never blocks.
func New(cfg Config) *Limiter {
	if cfg.Rate <= 0 {
		return &Limiter{}
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Limiter{lim: rate.NewLimiter(cfg.Rate, burst)}
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context, endpoint string) error {
	if l == nil || l.lim == nil {
		return nil
	}
	start := time.Now()
	if err := l.lim.Wait(ctx); err != nil {
		rateLimitAborted.WithLabelValues(endpoint).Inc()
		return err
	}
	rateLimitWait.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	return nil
}

// Transport returns a RoundTripper that waits on the limiter before each request.
// Requests are labeled by URL path.
func (l *Limiter) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		if err := l.Wait(req.Context(), req.URL.Path); err != nil {
			return nil, err
		}
		return base.RoundTrip(req)
	})
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }
