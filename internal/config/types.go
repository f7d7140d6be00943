// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads hlsbundle configuration from defaults, a YAML file and
// HLSBUNDLE_* environment variables, in that order of precedence.
package config

import "time"

// AppConfig is the effective runtime configuration.
type AppConfig struct {
	Version  string `yaml:"-"`
	LogLevel string `yaml:"logLevel"`

	Library   LibraryConfig   `yaml:"library"`
	Store     StoreConfig     `yaml:"store"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Encode    EncodeConfig    `yaml:"encode"`
	Resolve   ResolveConfig   `yaml:"resolve"`
	Barrier   BarrierConfig   `yaml:"barrier"`
	Cache     CacheConfig     `yaml:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LibraryConfig points at the locally synced library folder.
type LibraryConfig struct {
	Root string `yaml:"root"`
}

// StoreConfig configures the remote object store API.
type StoreConfig struct {
	BaseURL   string        `yaml:"baseUrl"`
	Token     string        `yaml:"token"`
	Root      string        `yaml:"root"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rateLimit"`
	RateBurst int           `yaml:"rateBurst"`
}

// GatewayConfig configures the public tunnel gateway that fronts raw store links.
type GatewayConfig struct {
	BaseURL string `yaml:"baseUrl"`
}

// CatalogConfig configures the catalog service. Publishing is skipped when BaseURL is empty.
type CatalogConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

type EncodeConfig struct {
	FFmpegBin  string        `yaml:"ffmpegBin"`
	FFprobeBin string        `yaml:"ffprobeBin"`
	Workers    int           `yaml:"workers"`
	KillGrace  time.Duration `yaml:"killGrace"`
}

type ResolveConfig struct {
	Workers     int           `yaml:"workers"`
	BaseDelay   time.Duration `yaml:"baseDelay"`
	MaxDelay    time.Duration `yaml:"maxDelay"`
	MaxAttempts int           `yaml:"maxAttempts"`
	MaxElapsed  time.Duration `yaml:"maxElapsed"`
}

type BarrierConfig struct {
	Interval time.Duration `yaml:"interval"`
	Grace    time.Duration `yaml:"grace"`
	Timeout  time.Duration `yaml:"timeout"`
}

// CacheConfig enables the persistent link cache when Path is set.
type CacheConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig enables the Prometheus listener when ListenAddr is set.
type MetricsConfig struct {
	ListenAddr string `yaml:"listenAddr"`
}

type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"` // grpc | http
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment"`
}

// Redacted returns a copy with credentials masked, suitable for dumping.
func (c AppConfig) Redacted() AppConfig {
	out := c
	if out.Store.Token != "" {
		out.Store.Token = "***"
	}
	if out.Catalog.Token != "" {
		out.Catalog.Token = "***"
	}
	out.Store.BaseURL = MaskURL(out.Store.BaseURL)
	out.Catalog.BaseURL = MaskURL(out.Catalog.BaseURL)
	return out
}
