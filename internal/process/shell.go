package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"time"
)

// ShellConfig holds configuration for shell command execution.
type ShellConfig struct {
	// Shell is the shell binary used to interpret command lines.
	Shell string

	// Timeout bounds each command's wall-clock runtime.
	Timeout time.Duration
}

// DefaultShellConfig returns a ShellConfig with sensible defaults.
func DefaultShellConfig() *ShellConfig {
	return &ShellConfig{
		Shell:   "/bin/sh",
		Timeout: 300 * time.Second,
	}
}

// ShellRunner implements Runner by handing the command line to a shell.
//
// The command is passed as a single opaque string (`sh -c <command>`) so that
// templates may use pipes, redirects, and quoting. Templates are trusted
// operator input; no escaping or argument splitting is attempted.
type ShellRunner struct {
	config *ShellConfig
	logger *slog.Logger
}

// NewShellRunner creates a new shell runner with the given configuration.
func NewShellRunner(cfg *ShellConfig, logger *slog.Logger) *ShellRunner {
	return &ShellRunner{
		config: cfg,
		logger: logger,
	}
}

// Name returns "shell".
func (r *ShellRunner) Name() string {
	return "shell"
}

// Run executes the command and blocks until it exits or the timeout elapses.
//
// Three outcomes, none of which surface as a Go error:
//   - normal completion: the command's own exit code and captured streams
//   - timeout: sentinel exit code, empty stdout, diagnostic stderr
//   - launch failure: sentinel exit code, empty stdout, failure text as stderr
func (r *ShellRunner) Run(ctx context.Context, command string) Result {
	start := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.config.Shell, "-c", command)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	duration := time.Since(start)

	if err != nil {
		// Timeout: the context deadline killed the process.
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			r.logger.Error("command_timed_out",
				"timeout", r.config.Timeout.String(),
			)
			return Result{
				ExitCode: SentinelExitCode,
				Stderr:   fmt.Sprintf("command timed out after %s", r.config.Timeout),
				Duration: duration,
				TimedOut: true,
			}
		}

		// Normal completion with non-zero exit.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
				Duration: duration,
			}
		}

		// Launch failure (shell missing, fork failure, ...).
		r.logger.Error("command_launch_failed", "error", err)
		return Result{
			ExitCode: SentinelExitCode,
			Stderr:   err.Error(),
			Duration: duration,
		}
	}

	return Result{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}
}

// CommandString returns the full invocation that Run would execute
// (for --print-cmd and debugging).
func (r *ShellRunner) CommandString(command string) string {
	return r.config.Shell + " -c " + strconv.Quote(command)
}
