// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command hlsbundle encodes a title into an HLS package, publishes it through
// the synced object store and prints the resulting playlist URLs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ManuGH/hlsbundle/internal/pipeline"
)

var (
	version   = "v0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

// Exit codes.
const (
	exitPublished = 0
	exitAborted   = 1
	exitUsage     = 2
	exitPartial   = 3
	exitCancelled = 130
)

type options struct {
	configPath string
	metaPath   string
	title      string
	skip       bool
	source     string
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "config" {
		os.Exit(runConfigCLI(os.Args[2:]))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, code, ok := parseFlags(args, stdout, stderr)
	if !ok {
		return code
	}
	sum, err := publish(ctx, opts, stdout)
	return exitCode(ctx, sum, err, stderr)
}

func parseFlags(args []string, stdout, stderr io.Writer) (options, int, bool) {
	var opts options
	fs := flag.NewFlagSet("hlsbundle", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage:")
		fmt.Fprintln(stderr, "  hlsbundle [--config f] [--skip|-s] [--meta meta.yaml] [--title T] <source>")
		fmt.Fprintln(stderr, "  hlsbundle config validate|dump --effective [--file f]")
		fs.PrintDefaults()
	}

	showVersion := fs.Bool("version", false, "print version and exit")
	fs.StringVar(&opts.configPath, "config", "", "path to config file (YAML)")
	fs.StringVar(&opts.metaPath, "meta", "", "path to title metadata (YAML)")
	fs.StringVar(&opts.title, "title", "", "title folder name (defaults to the metadata title or the source folder name)")
	fs.BoolVar(&opts.skip, "skip", false, "skip encoding and link an already encoded title")
	fs.BoolVar(&opts.skip, "s", false, "shorthand for --skip")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, exitPublished, false
		}
		return opts, exitUsage, false
	}
	if *showVersion {
		fmt.Fprintf(stdout, "%s (commit: %s, built: %s)\n", version, commit, buildDate)
		return opts, exitPublished, false
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, exitUsage, false
	}
	opts.source = strings.TrimSpace(fs.Arg(0))
	if opts.source == "" {
		fs.Usage()
		return opts, exitUsage, false
	}
	if opts.title == "" && opts.metaPath == "" {
		opts.title = filepath.Base(filepath.Clean(opts.source))
	}
	return opts, exitPublished, true
}

func exitCode(ctx context.Context, sum *pipeline.Summary, err error, stderr io.Writer) int {
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			fmt.Fprintln(stderr, "cancelled")
			return exitCancelled
		}
		var usage *usageError
		if errors.As(err, &usage) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitUsage
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitAborted
	}
	if sum != nil && sum.Status == pipeline.StatusPartial {
		fmt.Fprintf(stderr, "published with missing renditions: %s\n", strings.Join(sum.Missing(), ", "))
		return exitPartial
	}
	return exitPublished
}

// usageError marks errors caused by invalid invocation or configuration.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }
