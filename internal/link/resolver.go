// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package link

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/hlsbundle/internal/log"
	"github.com/ManuGH/hlsbundle/internal/metrics"
	"github.com/ManuGH/hlsbundle/internal/remote"
	"github.com/ManuGH/hlsbundle/internal/resilience"
)

// ErrNoLink is returned when the store reports an existing link but lists none.
var ErrNoLink = errors.New("store listed no link for path")

// Store is the part of the store client the resolver needs.
type Store interface {
	CreateSharedLink(ctx context.Context, path string, settings remote.LinkSettings) (string, error)
	ListSharedLinks(ctx context.Context, path string) ([]remote.SharedLink, error)
}

// Cache remembers raw shared links by store path.
type Cache interface {
	Get(ctx context.Context, path string) (string, bool, error)
	Put(ctx context.Context, path, rawURL string) error
}

// Resolver obtains a public link for a store path, retrying under a Policy.
type Resolver struct {
	store   Store
	gateway Gateway
	policy  resilience.Policy
	cache   Cache
}

// ResolverOption customises a Resolver.
type ResolverOption func(*Resolver)

// WithCache consults c before calling the store and records new links in it.
func WithCache(c Cache) ResolverOption {
	return func(r *Resolver) { r.cache = c }
}

func NewResolver(store Store, gw Gateway, policy resilience.Policy, opts ...ResolverOption) *Resolver {
	r := &Resolver{store: store, gateway: gw, policy: policy}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the gateway URL for path. Resolving the same path twice
// returns the same URL.
func (r *Resolver) Resolve(ctx context.Context, path string) (string, error) {
	logger := log.WithComponentFromContext(ctx, "link").With().Str(log.FieldRemotePath, path).Logger()

	if r.cache != nil {
		raw, ok, err := r.cache.Get(ctx, path)
		if err != nil {
			logger.Warn().Err(err).Msg("link cache lookup failed")
		} else if ok {
			metrics.RecordResolveAttempt("cached")
			return r.gateway.Wrap(raw)
		}
	}

	var raw string
	err := r.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		raw, err = r.once(ctx, path)
		if err != nil && remote.IsPermanent(err) {
			return resilience.Permanent(err)
		}
		return err
	}, func(attempt int, delay time.Duration, err error) {
		metrics.RecordResolveAttempt("retry")
		logger.Warn().Err(err).Int(log.FieldAttempt, attempt).Dur(log.FieldDelay, delay).
			Str(log.FieldEvent, "link.retry").Msg("link resolution failed, backing off")
	})
	if err != nil {
		metrics.RecordResolveAttempt("failed")
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, path, raw); err != nil {
			logger.Warn().Err(err).Msg("link cache store failed")
		}
	}
	return r.gateway.Wrap(raw)
}

func (r *Resolver) once(ctx context.Context, path string) (string, error) {
	raw, err := r.store.CreateSharedLink(ctx, path, remote.PublicViewer)
	if err == nil {
		metrics.RecordResolveAttempt("created")
		return raw, nil
	}
	if !remote.HasTag(err, remote.TagSharedLinkAlreadyExists) {
		return "", err
	}

	links, err := r.store.ListSharedLinks(ctx, path)
	if err != nil {
		return "", err
	}
	if len(links) == 0 || links[0].URL == "" {
		return "", ErrNoLink
	}
	metrics.RecordResolveAttempt("existing")
	return links[0].URL, nil
}
