// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

// mergeEnvConfig applies HLSBUNDLE_* overrides. ENV has the highest precedence.
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	cfg.LogLevel = l.envString("HLSBUNDLE_LOG_LEVEL", cfg.LogLevel)
	cfg.Library.Root = l.envString("HLSBUNDLE_LIBRARY_ROOT", cfg.Library.Root)

	l.mergeEnvStore(cfg)
	l.mergeEnvEncode(cfg)
	l.mergeEnvResolve(cfg)

	cfg.Barrier.Interval = l.envDuration("HLSBUNDLE_BARRIER_INTERVAL", cfg.Barrier.Interval)
	cfg.Barrier.Grace = l.envDuration("HLSBUNDLE_BARRIER_GRACE", cfg.Barrier.Grace)
	cfg.Barrier.Timeout = l.envDuration("HLSBUNDLE_BARRIER_TIMEOUT", cfg.Barrier.Timeout)

	cfg.Cache.Path = l.envString("HLSBUNDLE_CACHE_PATH", cfg.Cache.Path)
	cfg.Metrics.ListenAddr = l.envString("HLSBUNDLE_METRICS_LISTEN", cfg.Metrics.ListenAddr)

	cfg.Telemetry.Enabled = l.envBool("HLSBUNDLE_TRACING_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = l.envString("HLSBUNDLE_TRACING_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = l.envString("HLSBUNDLE_TRACING_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = l.envFloat("HLSBUNDLE_TRACING_SAMPLING_RATE", cfg.Telemetry.SamplingRate)
	cfg.Telemetry.Environment = l.envString("HLSBUNDLE_ENVIRONMENT", cfg.Telemetry.Environment)
}

func (l *Loader) mergeEnvStore(cfg *AppConfig) {
	cfg.Store.BaseURL = l.envString("HLSBUNDLE_STORE_URL", cfg.Store.BaseURL)
	cfg.Store.Token = l.envString("HLSBUNDLE_STORE_TOKEN", cfg.Store.Token)
	cfg.Store.Root = l.envString("HLSBUNDLE_STORE_ROOT", cfg.Store.Root)
	cfg.Store.Timeout = l.envDuration("HLSBUNDLE_STORE_TIMEOUT", cfg.Store.Timeout)
	cfg.Store.RateLimit = l.envFloat("HLSBUNDLE_STORE_RATE_LIMIT", cfg.Store.RateLimit)
	cfg.Store.RateBurst = l.envInt("HLSBUNDLE_STORE_RATE_BURST", cfg.Store.RateBurst)

	cfg.Gateway.BaseURL = l.envString("HLSBUNDLE_GATEWAY_URL", cfg.Gateway.BaseURL)

	cfg.Catalog.BaseURL = l.envString("HLSBUNDLE_CATALOG_URL", cfg.Catalog.BaseURL)
	cfg.Catalog.Token = l.envString("HLSBUNDLE_CATALOG_TOKEN", cfg.Catalog.Token)
	cfg.Catalog.Timeout = l.envDuration("HLSBUNDLE_CATALOG_TIMEOUT", cfg.Catalog.Timeout)
}

func (l *Loader) mergeEnvEncode(cfg *AppConfig) {
	cfg.Encode.FFmpegBin = l.envString("HLSBUNDLE_FFMPEG_BIN", cfg.Encode.FFmpegBin)
	cfg.Encode.FFprobeBin = l.envString("HLSBUNDLE_FFPROBE_BIN", cfg.Encode.FFprobeBin)
	cfg.Encode.Workers = l.envInt("HLSBUNDLE_ENCODE_WORKERS", cfg.Encode.Workers)
	cfg.Encode.KillGrace = l.envDuration("HLSBUNDLE_ENCODE_KILL_GRACE", cfg.Encode.KillGrace)
}

func (l *Loader) mergeEnvResolve(cfg *AppConfig) {
	cfg.Resolve.Workers = l.envInt("HLSBUNDLE_RESOLVE_WORKERS", cfg.Resolve.Workers)
	cfg.Resolve.BaseDelay = l.envDuration("HLSBUNDLE_RESOLVE_BASE_DELAY", cfg.Resolve.BaseDelay)
	cfg.Resolve.MaxDelay = l.envDuration("HLSBUNDLE_RESOLVE_MAX_DELAY", cfg.Resolve.MaxDelay)
	cfg.Resolve.MaxAttempts = l.envInt("HLSBUNDLE_RESOLVE_MAX_ATTEMPTS", cfg.Resolve.MaxAttempts)
	cfg.Resolve.MaxElapsed = l.envDuration("HLSBUNDLE_RESOLVE_MAX_ELAPSED", cfg.Resolve.MaxElapsed)
}
