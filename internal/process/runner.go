// Package process provides abstractions for running external commands.
package process

import (
	"context"
	"time"
)

// SentinelExitCode marks results where the runner itself failed (timeout or
// launch failure) rather than the command exiting on its own.
const SentinelExitCode = -1

// Runner executes a rendered command line and reports its outcome.
// This interface allows the executor to be process-agnostic.
//
// Implementations must not return an error for timeouts or launch failures;
// those are folded into a sentinel Result instead.
type Runner interface {
	// Run executes the command and blocks until it exits or times out.
	Run(ctx context.Context, command string) Result

	// Name returns a human-readable name for this runner type.
	Name() string
}

// Result captures the outcome of a single command execution.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	TimedOut bool
}

// Failed reports whether the command did not complete successfully.
func (r Result) Failed() bool {
	return r.ExitCode != 0
}

// Infra reports whether the failure came from the runner itself (timeout or
// launch error) rather than the command's own exit status.
func (r Result) Infra() bool {
	return r.ExitCode == SentinelExitCode
}
