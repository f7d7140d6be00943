package encode

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ManuGH/hlsbundle/internal/log"
	"github.com/ManuGH/hlsbundle/internal/metrics"
	"golang.org/x/sync/semaphore"
)

// Orchestrator runs encode jobs concurrently. Failures are collected, never
// retried, and never cancel sibling jobs.
type Orchestrator struct {
	Runner  Runner
	Workers int
}

// NewOrchestrator returns an Orchestrator capped at workers concurrent processes.
func NewOrchestrator(r Runner, workers int) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{Runner: r, Workers: workers}
}

// Report holds one Result per job, in job order.
type Report struct {
	Results []Result
}

// Failed returns the failed results.
func (r Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.State == StateFailed {
			out = append(out, res)
		}
	}
	return out
}

// FailedRendition reports whether the rendition label of item failed.
func (r Report) FailedRendition(item, label string) bool {
	for _, res := range r.Results {
		if res.State == StateFailed && res.Job.Item == item && res.Job.Label == label {
			return true
		}
	}
	return false
}

// Err joins a *JobError per failed job, or returns nil.
func (r Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, &JobError{Job: res.Job, Err: res.Err, Diagnostics: res.Diagnostics})
	}
	return errors.Join(errs...)
}

// Run executes jobs and waits for all of them.
func (o *Orchestrator) Run(ctx context.Context, jobs []Job) Report {
	logger := log.WithComponentFromContext(ctx, "encode")
	sem := semaphore.NewWeighted(int64(o.Workers))
	results := make([]Result, len(jobs))

	var wg sync.WaitGroup
	for i, job := range jobs {
		if job.SkipReason != "" {
			results[i] = Result{Job: job, State: StateSkipped}
			metrics.RecordEncodeJob(string(job.Kind), string(StateSkipped), 0)
			logger.Info().Str(log.FieldEvent, "encode.job.skipped").Str(log.FieldJobID, job.ID).
				Str("reason", job.SkipReason).Msg("encode job skipped")
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = Result{Job: job, State: StateFailed, Err: err}
			continue
		}
		wg.Go(func() {
			defer sem.Release(1)
			results[i] = o.runOne(ctx, job)
		})
	}
	wg.Wait()

	rep := Report{Results: results}
	logger.Info().Str(log.FieldEvent, "encode.finished").
		Int("jobs", len(jobs)).Int("failed", len(rep.Failed())).
		Msg("encode phase finished")
	return rep
}

func (o *Orchestrator) runOne(ctx context.Context, job Job) Result {
	logger := log.WithComponentFromContext(ctx, "encode").With().
		Str(log.FieldJobID, job.ID).Str(log.FieldJobKind, string(job.Kind)).Logger()
	logger.Debug().Strs("args", job.Args).Msg("encode job starting")

	start := time.Now()
	diag, err := o.Runner.Run(ctx, job)
	res := Result{Job: job, State: StateSucceeded, Diagnostics: diag, Duration: time.Since(start)}
	if err != nil {
		res.State = StateFailed
		res.Err = err
		ev := logger.Error().Err(err).Str(log.FieldEvent, "encode.job.failed").Dur("duration", res.Duration)
		if n := len(diag); n > 0 {
			ev = ev.Str("stderr_tail", diag[n-1])
		}
		ev.Msg("encode job failed")
	} else {
		logger.Info().Str(log.FieldEvent, "encode.job.done").Dur("duration", res.Duration).Msg("encode job finished")
	}
	metrics.RecordEncodeJob(string(job.Kind), string(res.State), res.Duration)
	return res
}
