//go:build linux

package encode

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shJob(t *testing.T, script string) Job {
	return Job{ID: "main/test", Args: []string{"-c", script}, OutputDir: filepath.Join(t.TempDir(), "out")}
}

func TestExecutorSuccess(t *testing.T) {
	e := NewExecutor("/bin/sh", time.Second)
	job := shJob(t, "echo progress >&2; exit 0")

	diag, err := e.Run(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, []string{"progress"}, diag)
	assert.DirExists(t, job.OutputDir)
}

func TestExecutorFailureKeepsDiagnostics(t *testing.T) {
	e := NewExecutor("/bin/sh", time.Second)
	e.DiagnosticLines = 2

	diag, err := e.Run(context.Background(), shJob(t, "echo one >&2; echo two >&2; echo three >&2; exit 3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 3")
	assert.Equal(t, []string{"two", "three"}, diag)
}

func TestExecutorCancellationTerminatesProcess(t *testing.T) {
	e := NewExecutor("/bin/sh", 200*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := e.Run(ctx, shJob(t, "sleep 30"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}
