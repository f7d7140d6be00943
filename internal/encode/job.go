// Package encode turns content items into ffmpeg jobs and runs them with
// bounded concurrency.
package encode

import (
	"errors"
	"fmt"
	"time"
)

// ErrEncodeFailed is the sentinel every *JobError matches.
var ErrEncodeFailed = errors.New("encode failed")

// Kind classifies an encode job.
type Kind string

const (
	KindRendition  Kind = "rendition"
	KindSubtitles  Kind = "subtitles"
	KindThumbnails Kind = "thumbnails"
)

// State is the final state of a job.
type State string

const (
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateSkipped   State = "skipped"
)

// Job is one external encoder invocation.
type Job struct {
	ID        string // "<item>/<label>"
	Item      string
	Kind      Kind
	Label     string // rendition label, or the kind for auxiliary jobs
	Args      []string
	OutputDir string
	// SkipReason marks a job that must not run; the orchestrator records it as skipped.
	SkipReason string
}

// Result is the outcome of a job.
type Result struct {
	Job         Job
	State       State
	Err         error
	Diagnostics []string // trailing stderr lines
	Duration    time.Duration
}

// JobError describes a failed job.
type JobError struct {
	Job         Job
	Err         error
	Diagnostics []string
}

func (e *JobError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Job.ID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *JobError) Unwrap() error { return e.Err }

// Is matches ErrEncodeFailed.
func (e *JobError) Is(target error) bool { return target == ErrEncodeFailed }
