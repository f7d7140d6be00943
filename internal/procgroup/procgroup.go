// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package procgroup runs encoder processes in their own process group so a
// cancelled run can reap ffmpeg together with any helpers it spawned.
package procgroup

import (
	"errors"
	"os/exec"
	"time"

	"github.com/ManuGH/hlsbundle/internal/log"
)

// ErrKillFailed is returned when the group survives SIGKILL for the final wait.
var ErrKillFailed = errors.New("kill operation failed")

// reapTimeout bounds the wait after SIGKILL.
const reapTimeout = 5 * time.Second

// Set configures the command to start in a new process group.
// Must be called before cmd.Start.
func Set(cmd *exec.Cmd) {
	set(cmd)
}

// Terminate stops a started command: SIGTERM to the group, then SIGKILL if
// done is not closed within grace. done must be closed by the goroutine that
// owns cmd.Wait.
func Terminate(cmd *exec.Cmd, done <-chan struct{}, grace time.Duration) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	pid := cmd.Process.Pid
	logger := log.WithComponent("procgroup")

	logger.Debug().Int("pid", pid).Msg("sending SIGTERM to process group")
	terminate(cmd)

	select {
	case <-done:
		return nil
	case <-time.After(grace):
	}

	logger.Warn().Int("pid", pid).Dur("grace", grace).
		Str("event", "procgroup.kill").
		Msg("SIGTERM grace period exceeded, sending SIGKILL to process group")
	kill(cmd)

	select {
	case <-done:
		return nil
	case <-time.After(reapTimeout):
		return ErrKillFailed
	}
}
