// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package resilience provides the retry and polling policy shared by the
// link resolver and the sync barrier.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted is returned when a Policy runs out of attempts or elapsed time.
var ErrExhausted = errors.New("retry budget exhausted")

// Policy describes a capped exponential backoff schedule.
// Zero MaxAttempts or MaxElapsed means unbounded on that axis.
type Policy struct {
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64 // defaults to 2
	MaxAttempts int
	MaxElapsed  time.Duration
}

// DefaultPolicy is the link resolution schedule: 5s doubling to a 100s cap.
func DefaultPolicy() Policy {
	return Policy{
		BaseDelay:   5 * time.Second,
		MaxDelay:    100 * time.Second,
		Multiplier:  2,
		MaxAttempts: 12,
		MaxElapsed:  30 * time.Minute,
	}
}

// Constant returns a fixed-interval policy bounded only by timeout.
func Constant(interval, timeout time.Duration) Policy {
	return Policy{
		BaseDelay:  interval,
		MaxDelay:   interval,
		Multiplier: 1,
		MaxElapsed: timeout,
	}
}

// Delay returns the wait before retry n (1-based).
func (p Policy) Delay(n int) time.Duration {
	if n < 1 {
		return 0
	}
	mult := p.Multiplier
	if mult <= 0 {
		mult = 2
	}
	d := float64(p.BaseDelay)
	for i := 1; i < n; i++ {
		d *= mult
		if p.MaxDelay > 0 && d >= float64(p.MaxDelay) {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && time.Duration(d) > p.MaxDelay {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// RetryFunc observes a failed attempt before the policy sleeps.
type RetryFunc func(attempt int, delay time.Duration, err error)

// Do runs op until it succeeds, returns a permanent error, or the policy is exhausted.
// Each sleep honours ctx.
func (p Policy) Do(ctx context.Context, op func(context.Context) error, onRetry RetryFunc) error {
	start := time.Now()
	var last error

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return ctxErr(err, last)
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		last = err

		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt, last)
		}
		delay := p.Delay(attempt)
		if p.MaxElapsed > 0 && time.Since(start)+delay > p.MaxElapsed {
			return fmt.Errorf("%w after %d attempts (%s elapsed): %w", ErrExhausted, attempt, time.Since(start).Round(time.Millisecond), last)
		}
		if onRetry != nil {
			onRetry(attempt, delay, err)
		}
		if err := Sleep(ctx, delay); err != nil {
			return ctxErr(err, last)
		}
	}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func ctxErr(err, last error) error {
	if last == nil {
		return err
	}
	return fmt.Errorf("%w (last error: %w)", err, last)
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not retryable. Do returns the wrapped error unchanged.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var perm *permanentError
	return errors.As(err, &perm)
}
