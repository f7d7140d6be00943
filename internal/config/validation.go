// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"time"

	"github.com/ManuGH/hlsbundle/internal/validate"
)

// Validate checks the effective configuration and reports every invalid field at once.
func Validate(cfg AppConfig) error {
	v := validate.New()

	if _, err := validate.ParseLogLevel(cfg.LogLevel); err != nil {
		v.AddError("LogLevel", err.Error(), cfg.LogLevel)
	}

	if cfg.Library.Root != "" {
		v.Directory("Library.Root", cfg.Library.Root, true)
	}

	v.URL("Store.BaseURL", cfg.Store.BaseURL, []string{"http", "https"})
	v.StorePath("Store.Root", cfg.Store.Root)
	v.MinDuration("Store.Timeout", cfg.Store.Timeout, time.Second)
	if cfg.Store.RateLimit < 0 {
		v.AddError("Store.RateLimit", "value cannot be negative", cfg.Store.RateLimit)
	}
	v.NonNegative("Store.RateBurst", cfg.Store.RateBurst)

	if cfg.Gateway.BaseURL != "" {
		v.URL("Gateway.BaseURL", cfg.Gateway.BaseURL, []string{"http", "https"})
	}
	if cfg.Catalog.BaseURL != "" {
		v.URL("Catalog.BaseURL", cfg.Catalog.BaseURL, []string{"http", "https"})
	}

	v.NotEmpty("Encode.FFmpegBin", cfg.Encode.FFmpegBin)
	v.NotEmpty("Encode.FFprobeBin", cfg.Encode.FFprobeBin)
	v.Range("Encode.Workers", cfg.Encode.Workers, 1, 256)
	v.MinDuration("Encode.KillGrace", cfg.Encode.KillGrace, 0)

	v.Range("Resolve.Workers", cfg.Resolve.Workers, 1, 1000)
	v.MinDuration("Resolve.BaseDelay", cfg.Resolve.BaseDelay, time.Millisecond)
	if cfg.Resolve.MaxDelay < cfg.Resolve.BaseDelay {
		v.AddError("Resolve.MaxDelay", "must not be smaller than Resolve.BaseDelay", cfg.Resolve.MaxDelay)
	}
	v.NonNegative("Resolve.MaxAttempts", cfg.Resolve.MaxAttempts)
	v.MinDuration("Resolve.MaxElapsed", cfg.Resolve.MaxElapsed, 0)

	v.MinDuration("Barrier.Interval", cfg.Barrier.Interval, time.Millisecond)
	v.MinDuration("Barrier.Grace", cfg.Barrier.Grace, 0)
	v.MinDuration("Barrier.Timeout", cfg.Barrier.Timeout, cfg.Barrier.Interval)

	if cfg.Telemetry.Enabled {
		v.OneOf("Telemetry.Exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("Telemetry.Endpoint", cfg.Telemetry.Endpoint)
		if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
			v.AddError("Telemetry.SamplingRate", "must be between 0 and 1", cfg.Telemetry.SamplingRate)
		}
	}

	return v.Err()
}

// ValidateForRun checks the settings only a publish run needs.
func ValidateForRun(cfg AppConfig) error {
	v := validate.New()
	v.NotEmpty("Library.Root", cfg.Library.Root)
	v.NotEmpty("Store.Token", cfg.Store.Token)
	v.NotEmpty("Gateway.BaseURL", cfg.Gateway.BaseURL)
	if cfg.Catalog.BaseURL != "" {
		v.NotEmpty("Catalog.Token", cfg.Catalog.Token)
	}
	return v.Err()
}
