// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"runtime"
	"time"
)

const (
	DefaultStoreBaseURL   = "https://api.dropboxapi.com/2"
	DefaultStoreRoot      = "/library1"
	DefaultResolveWorkers = 100
)

func (l *Loader) setDefaults(cfg *AppConfig) {
	cfg.LogLevel = "info"

	cfg.Store = StoreConfig{
		BaseURL:   DefaultStoreBaseURL,
		Root:      DefaultStoreRoot,
		Timeout:   30 * time.Second,
		RateLimit: 50,
		RateBurst: 100,
	}
	cfg.Catalog.Timeout = 10 * time.Second

	cfg.Encode = EncodeConfig{
		FFmpegBin:  "ffmpeg",
		FFprobeBin: "ffprobe",
		Workers:    runtime.NumCPU(),
		KillGrace:  5 * time.Second,
	}
	cfg.Resolve = ResolveConfig{
		Workers:     DefaultResolveWorkers,
		BaseDelay:   5 * time.Second,
		MaxDelay:    100 * time.Second,
		MaxAttempts: 12,
		MaxElapsed:  30 * time.Minute,
	}
	cfg.Barrier = BarrierConfig{
		Interval: 5 * time.Second,
		Grace:    5 * time.Second,
		Timeout:  30 * time.Minute,
	}
	cfg.Telemetry = TelemetryConfig{
		Exporter:     "grpc",
		SamplingRate: 1.0,
		Environment:  "production",
	}
}
