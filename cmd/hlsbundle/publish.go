// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ManuGH/hlsbundle/internal/catalog"
	"github.com/ManuGH/hlsbundle/internal/config"
	"github.com/ManuGH/hlsbundle/internal/encode"
	"github.com/ManuGH/hlsbundle/internal/ladder"
	"github.com/ManuGH/hlsbundle/internal/library"
	"github.com/ManuGH/hlsbundle/internal/link"
	xglog "github.com/ManuGH/hlsbundle/internal/log"
	"github.com/ManuGH/hlsbundle/internal/metrics"
	"github.com/ManuGH/hlsbundle/internal/pipeline"
	"github.com/ManuGH/hlsbundle/internal/probe"
	"github.com/ManuGH/hlsbundle/internal/ratelimit"
	"github.com/ManuGH/hlsbundle/internal/remote"
	"github.com/ManuGH/hlsbundle/internal/resilience"
	"github.com/ManuGH/hlsbundle/internal/syncwait"
	"github.com/ManuGH/hlsbundle/internal/telemetry"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 5 * time.Second

func publish(ctx context.Context, opts options, stdout io.Writer) (*pipeline.Summary, error) {
	cfg, err := config.NewLoader(opts.configPath, version).Load()
	if err != nil {
		return nil, &usageError{err}
	}
	if err := config.ValidateForRun(cfg); err != nil {
		return nil, &usageError{fmt.Errorf("config not usable for a run: %w", err)}
	}

	xglog.Configure(xglog.Config{Level: cfg.LogLevel, Service: "hlsbundle", Version: version})
	logger := xglog.WithComponent("cli")

	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "hlsbundle",
		ServiceVersion: version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	srv, err := metrics.Start(cfg.Metrics.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("start metrics listener: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(sctx)
		_ = tp.Shutdown(sctx)
	}()

	rec, err := loadRecord(opts)
	if err != nil {
		return nil, &usageError{err}
	}
	title := opts.title
	if title == "" {
		title = rec.Title
	}
	layout, err := library.NewLayout(cfg.Library.Root, cfg.Store.Root, title)
	if err != nil {
		return nil, &usageError{err}
	}

	pub, closeFn, err := buildPublisher(ctx, cfg, rec)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	logger.Info().Str(xglog.FieldTitle, layout.Title).Str("source", opts.source).Bool("skip_encode", opts.skip).
		Msg("starting run")
	sum, err := pub.Run(ctx, pipeline.Request{
		Layout:     layout,
		Source:     opts.source,
		SkipEncode: opts.skip,
		Record:     rec,
	})
	if err != nil {
		return sum, err
	}
	printSummary(stdout, sum)
	return sum, nil
}

func loadRecord(opts options) (*catalog.MediaRecord, error) {
	if opts.metaPath == "" {
		return &catalog.MediaRecord{Title: opts.title}, nil
	}
	return catalog.LoadRecord(opts.metaPath)
}

func buildPublisher(ctx context.Context, cfg config.AppConfig, rec *catalog.MediaRecord) (*pipeline.Publisher, func(), error) {
	store := remote.New(remote.Options{
		BaseURL:     cfg.Store.BaseURL,
		Token:       cfg.Store.Token,
		Timeout:     cfg.Store.Timeout,
		RateLimit:   ratelimit.Config{Rate: rate.Limit(cfg.Store.RateLimit), Burst: cfg.Store.RateBurst},
		MaxIdleConn: cfg.Resolve.Workers,
	})

	policy := resilience.Policy{
		BaseDelay:   cfg.Resolve.BaseDelay,
		MaxDelay:    cfg.Resolve.MaxDelay,
		Multiplier:  2,
		MaxAttempts: cfg.Resolve.MaxAttempts,
		MaxElapsed:  cfg.Resolve.MaxElapsed,
	}
	closeFn := func() {}
	var resolverOpts []link.ResolverOption
	if cfg.Cache.Path != "" {
		cache, err := link.OpenCache(cfg.Cache.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open link cache: %w", err)
		}
		if n, err := cache.Len(ctx); err == nil {
			logger := xglog.WithComponent("cli")
			logger.Info().Str(xglog.FieldPath, cfg.Cache.Path).Int("entries", n).Msg("link cache opened")
		}
		resolverOpts = append(resolverOpts, link.WithCache(cache))
		closeFn = func() { _ = cache.Close() }
	}
	resolver := link.NewResolver(store, link.Gateway{BaseURL: cfg.Gateway.BaseURL}, policy, resolverOpts...)

	pub := &pipeline.Publisher{
		Encoder:    encode.NewOrchestrator(encode.NewExecutor(cfg.Encode.FFmpegBin, cfg.Encode.KillGrace), cfg.Encode.Workers),
		Prober:     probe.NewProber(cfg.Encode.FFprobeBin),
		Barrier:    syncwait.New(store, cfg.Barrier.Interval, cfg.Barrier.Grace, cfg.Barrier.Timeout),
		Resolver:   link.NewPool(resolver, cfg.Resolve.Workers),
		Renditions: ladder.Standard(),
	}

	if cfg.Catalog.BaseURL != "" {
		cat := catalog.New(cfg.Catalog.BaseURL, cfg.Catalog.Token, cfg.Catalog.Timeout)
		if err := cat.Check(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		if err := cat.LinkPrevious(ctx, rec); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("link previous record: %w", err)
		}
		pub.Catalog = cat
	}
	return pub, closeFn, nil
}

func printSummary(w io.Writer, sum *pipeline.Summary) {
	fmt.Fprintf(w, "run %s: %s (%s)\n", sum.RunID, sum.Title, sum.Status)
	for _, it := range sum.Items {
		fmt.Fprintf(w, "  %-8s %s\n", it.Name, it.Playlist)
	}
	if sum.Record == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(sum.Record)
}
