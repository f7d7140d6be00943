// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package syncwait blocks until the sync client has made a local folder
// visible in the remote store.
package syncwait

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

// ErrConsistencyTimeout is returned when a folder does not become visible in time.
var ErrConsistencyTimeout = errors.New("remote folder not visible before timeout")

var errNotReady = errors.New("folder not ready")

// Lister is the part of the store client the barrier needs.
type Lister interface {
	ListFolder(ctx context.Context, path string) (*remote.FolderPage, error)
	ListFolderContinue(ctx context.Context, cursor string) (*remote.FolderPage, error)
}

// Target is a remote folder and the entry names that must be present.
// An empty Expect only requires a non-empty listing.
type Target struct {
	Path   string
	Expect []string
}

// Barrier polls folder listings until a target is populated.
type Barrier struct {
	store  Lister
	policy resilience.Policy
	grace  time.Duration
}

// New returns a Barrier polling every interval, giving up after timeout and
// sleeping grace once the target is visible.
func New(store Lister, interval, grace, timeout time.Duration) *Barrier {
	return &Barrier{store: store, policy: resilience.Constant(interval, timeout), grace: grace}
}

// Wait returns once t is populated and the grace period has passed.
func (b *Barrier) Wait(ctx context.Context, t Target) error {
	logger := log.WithComponentFromContext(ctx, "syncwait").With().Str(log.FieldRemotePath, t.Path).Logger()
	start := time.Now()

	err := b.policy.Do(ctx, func(ctx context.Context) error {
		ready, err := b.populated(ctx, t)
		switch {
		case err != nil:
			metrics.RecordBarrierPoll("error")
			return err
		case !ready:
			metrics.RecordBarrierPoll("pending")
			return errNotReady
		}
		metrics.RecordBarrierPoll("ready")
		return nil
	}, func(attempt int, delay time.Duration, err error) {
		ev := logger.Debug()
		if !errors.Is(err, errNotReady) {
			ev = logger.Warn().Err(err)
		}
		ev.Int(log.FieldAttempt, attempt).Dur(log.FieldDelay, delay).Msg("remote folder not ready")
	})
	if err != nil {
		if errors.Is(err, resilience.ErrExhausted) {
			return fmt.Errorf("%w: %s after %s: %w", ErrConsistencyTimeout, t.Path, time.Since(start).Round(time.Second), err)
		}
		return err
	}

	if err := resilience.Sleep(ctx, b.grace); err != nil {
		return err
	}
	metrics.ObserveBarrierWait(time.Since(start))
	logger.Info().Str(log.FieldEvent, "syncwait.ready").Dur("waited", time.Since(start)).Msg("remote folder visible")
	return nil
}

func (b *Barrier) populated(ctx context.Context, t Target) (bool, error) {
	page, err := b.store.ListFolder(ctx, t.Path)
	if remote.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		if remote.IsPermanent(err) {
			return false, resilience.Permanent(err)
		}
		return false, err
	}

	missing := make(map[string]bool, len(t.Expect))
	for _, name := range t.Expect {
		missing[name] = true
	}
	count := 0
	for {
		for _, e := range page.Entries {
			if e.Tag == "deleted" {
				continue
			}
			count++
			delete(missing, e.Name)
		}
		if !page.HasMore {
			break
		}
		if page, err = b.store.ListFolderContinue(ctx, page.Cursor); err != nil {
			return false, err
		}
	}
	return count > 0 && len(missing) == 0, nil
}
