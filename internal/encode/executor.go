package encode

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/ManuGH/hlsbundle/internal/procgroup"
)

// Runner executes a single job and returns its trailing diagnostics.
type Runner interface {
	Run(ctx context.Context, job Job) ([]string, error)
}

// Executor runs jobs as ffmpeg processes, each in its own process group.
type Executor struct {
	Binary          string
	KillGrace       time.Duration
	DiagnosticLines int
}

// NewExecutor returns an Executor for binary (default "ffmpeg").
func NewExecutor(binary string, killGrace time.Duration) *Executor {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Executor{Binary: binary, KillGrace: killGrace, DiagnosticLines: 50}
}

// Run starts the process and waits for it. On cancellation the process group
// receives SIGTERM, then SIGKILL after KillGrace.
func (e *Executor) Run(ctx context.Context, job Job) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if job.OutputDir != "" {
		if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	// #nosec G204 -- binary comes from operator config; args are built by this package
	cmd := exec.Command(e.Binary, job.Args...)
	procgroup.Set(cmd)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to pipe stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("exec start failed: %w", err)
	}

	ring := NewRingBuffer(e.DiagnosticLines)
	done := make(chan struct{})
	var waitErr error
	go func() {
		defer close(done)
		monitor(stderr, ring)
		waitErr = cmd.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if err := procgroup.Terminate(cmd, done, e.KillGrace); err != nil {
			return ring.Lines(), fmt.Errorf("terminate %s: %w", job.ID, err)
		}
		return ring.Lines(), ctx.Err()
	}

	if waitErr != nil {
		return ring.Lines(), fmt.Errorf("%s exited: %w", e.Binary, waitErr)
	}
	return ring.Lines(), nil
}

func monitor(stderr io.Reader, ring *RingBuffer) {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		ring.Add(scanner.Text())
	}
	// keep draining so the child never blocks on a full pipe
	_, _ = io.Copy(io.Discard, stderr)
}
