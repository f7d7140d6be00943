// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ManuGH/hlsbundle/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"HLSBUNDLE_STORE_TOKEN", "HLSBUNDLE_GATEWAY_URL", "HLSBUNDLE_LIBRARY_ROOT",
		"HLSBUNDLE_CATALOG_URL", "HLSBUNDLE_CATALOG_TOKEN",
	} {
		t.Setenv(k, "")
	}
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no source", nil, exitUsage},
		{"two sources", []string{"a", "b"}, exitUsage},
		{"unknown flag", []string{"--bogus", "a"}, exitUsage},
		{"help", []string{"-h"}, exitPublished},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, tt.want, run(t.Context(), tt.args, &stdout, &stderr))
		})
	}
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(t.Context(), []string{"--version"}, &stdout, &stderr)
	assert.Equal(t, exitPublished, code)
	assert.Contains(t, stdout.String(), version)
}

func TestRun_IncompleteConfigIsUsageError(t *testing.T) {
	clearEnv(t)
	cfg := writeConfig(t, "library:\n  root: "+t.TempDir()+"\n")

	var stdout, stderr bytes.Buffer
	code := run(t.Context(), []string{"--config", cfg, t.TempDir()}, &stdout, &stderr)
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr.String(), "Store.Token")
}

func TestParseFlags_TitleFromSource(t *testing.T) {
	var stdout, stderr bytes.Buffer
	opts, _, ok := parseFlags([]string{"-s", "/media/in/My Film/"}, &stdout, &stderr)
	require.True(t, ok)
	assert.True(t, opts.skip)
	assert.Equal(t, "My Film", opts.title)

	opts, _, ok = parseFlags([]string{"--meta", "meta.yaml", "/media/in/x"}, &stdout, &stderr)
	require.True(t, ok)
	assert.Empty(t, opts.title, "metadata title wins when --title is absent")
}

func TestExitCode(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	partial := &pipeline.Summary{
		Status: pipeline.StatusPartial,
		Items:  []pipeline.ItemSummary{{Name: "main", Missing: []string{"1080p"}}},
	}
	tests := []struct {
		name string
		ctx  context.Context
		sum  *pipeline.Summary
		err  error
		want int
	}{
		{"published", context.Background(), &pipeline.Summary{Status: pipeline.StatusPublished}, nil, exitPublished},
		{"partial", context.Background(), partial, nil, exitPartial},
		{"aborted", context.Background(), &pipeline.Summary{Status: pipeline.StatusAborted}, errors.New("boom"), exitAborted},
		{"usage", context.Background(), nil, &usageError{errors.New("bad")}, exitUsage},
		{"cancelled", cancelled, nil, context.Canceled, exitCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			assert.Equal(t, tt.want, exitCode(tt.ctx, tt.sum, tt.err, &stderr))
		})
	}
}

func TestConfigCLI(t *testing.T) {
	clearEnv(t)
	good := writeConfig(t, "store:\n  token: secret-token\ngateway:\n  baseUrl: https://gw.test\n")
	bad := writeConfig(t, "store:\n  nope: 1\n")

	t.Run("validate ok", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, 0, configCLI([]string{"validate", "-f", good}, &stdout, &stderr))
		assert.Contains(t, stdout.String(), "is valid")
	})
	t.Run("validate unknown field", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, exitAborted, configCLI([]string{"validate", "--file", bad}, &stdout, &stderr))
	})
	t.Run("dump requires effective", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, exitUsage, configCLI([]string{"dump", "-f", good}, &stdout, &stderr))
	})
	t.Run("dump redacts token", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		require.Equal(t, 0, configCLI([]string{"dump", "--effective", "-f", good, "--format", "json"}, &stdout, &stderr))
		assert.NotContains(t, stdout.String(), "secret-token")
		assert.Contains(t, stdout.String(), "https://gw.test")
	})
	t.Run("unknown subcommand", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, exitUsage, configCLI([]string{"frobnicate"}, &stdout, &stderr))
	})
}
