// Package executor implements the sequential batch execution loop.
//
// The executor walks an ordered identifier list, substitutes each identifier
// into a command template, runs the rendered command through an injected
// Runner, classifies the HTTP outcome of the captured output, and decides
// whether to continue or stop. Exactly one command is active at a time.
package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/randomizedcoder/go-batch-exec/internal/parser"
	"github.com/randomizedcoder/go-batch-exec/internal/process"
	"github.com/randomizedcoder/go-batch-exec/internal/source"
)

// Config holds configuration for creating a new Executor.
type Config struct {
	// Template is the command template containing placeholder occurrences.
	Template string

	// Placeholder is the literal substring replaced by each identifier.
	Placeholder string

	// Identifiers is the ordered list to process. Duplicates are permitted
	// and processed independently.
	Identifiers []string

	// Delay is the pause between consecutive executions. Applied only
	// between steps, never before the first or after the last.
	Delay time.Duration

	// DryRun renders and counts commands without executing them.
	// The inter-step delay still applies, preserving realistic timing.
	DryRun bool

	// StopOnHTTPError halts the loop on the first classified 4xx/5xx
	// response. This is the only early-abort path.
	StopOnHTTPError bool
}

// Callbacks contains optional callback functions for executor events.
type Callbacks struct {
	// OnStart is called before each identifier's command runs.
	OnStart func(index, total int, id, command string)

	// OnResult is called after each identifier completes (including
	// dry-run steps and the step that triggers an abort).
	OnResult func(rec Record)

	// OnAbort is called once when stop-on-HTTP-error halts the loop.
	OnAbort func(rec Record)

	// OnDelay is called before each inter-step pause.
	OnDelay func(delay time.Duration)
}

// Record captures the full outcome of one identifier's step.
type Record struct {
	Index   int
	ID      string
	Command string
	DryRun  bool
	Result  process.Result
	Outcome parser.Outcome
	Success bool
}

// Summary accumulates counts across one run. Counts reflect identifiers
// actually processed, not identifiers loaded; an aborted run reports only
// the steps that ran.
type Summary struct {
	Total     int
	Processed int
	Success   int
	Failure   int
	Aborted   bool
	AbortID   string
	AbortCode int
	Duration  time.Duration
}

// Executor drives one sequential batch run.
type Executor struct {
	config    Config
	runner    process.Runner
	logger    *slog.Logger
	callbacks Callbacks
}

// New creates a new Executor with the given configuration.
func New(cfg Config, runner process.Runner, logger *slog.Logger, callbacks Callbacks) *Executor {
	if cfg.Placeholder == "" {
		cfg.Placeholder = "<id>"
	}
	return &Executor{
		config:    cfg,
		runner:    runner,
		logger:    logger,
		callbacks: callbacks,
	}
}

// Run processes the identifier list in order and blocks until the list is
// exhausted, stop-on-HTTP-error aborts, or the context is cancelled.
//
// Per-identifier failures never surface as errors; they are folded into the
// summary counters. Cancellation takes effect before the next substitution,
// leaving partial counts as-is.
func (e *Executor) Run(ctx context.Context) Summary {
	start := time.Now()

	summary := Summary{Total: len(e.config.Identifiers)}

	if summary.Total == 0 {
		e.logger.Warn("no_identifiers_to_process")
		summary.Duration = time.Since(start)
		return summary
	}

	e.logger.Info("batch_starting",
		"identifiers", summary.Total,
		"delay", e.config.Delay.String(),
		"dry_run", e.config.DryRun,
		"stop_on_http_error", e.config.StopOnHTTPError,
	)

	for i, id := range e.config.Identifiers {
		if ctx.Err() != nil {
			e.logger.Warn("batch_cancelled",
				"processed", summary.Processed,
				"remaining", summary.Total-summary.Processed,
			)
			break
		}

		rec := e.step(ctx, i, id)
		summary.Processed++

		// A classified HTTP error that triggers the abort counts as a
		// failure even when the fetch tool itself exited zero.
		abort := e.shouldAbort(rec)
		if abort {
			rec.Success = false
		}

		if rec.Success {
			summary.Success++
		} else {
			summary.Failure++
		}

		if e.callbacks.OnResult != nil {
			e.callbacks.OnResult(rec)
		}

		if abort {
			summary.Aborted = true
			summary.AbortID = rec.ID
			summary.AbortCode = rec.Outcome.StatusCode
			e.logger.Error("stopping_on_http_error",
				"id", rec.ID,
				"status_code", rec.Outcome.StatusCode,
				"processed", summary.Processed,
				"remaining", summary.Total-summary.Processed,
			)
			if e.callbacks.OnAbort != nil {
				e.callbacks.OnAbort(rec)
			}
			break
		}

		// Pause between steps only
		if i < summary.Total-1 {
			e.pause(ctx)
		}
	}

	summary.Duration = time.Since(start)

	e.logger.Info("batch_complete",
		"processed", summary.Processed,
		"success", summary.Success,
		"failure", summary.Failure,
		"aborted", summary.Aborted,
		"duration", summary.Duration.String(),
	)

	return summary
}

// step runs one identifier: substitute, execute (or dry-run), classify.
func (e *Executor) step(ctx context.Context, index int, id string) Record {
	command := source.Render(e.config.Template, e.config.Placeholder, id)

	if e.callbacks.OnStart != nil {
		e.callbacks.OnStart(index, len(e.config.Identifiers), id, command)
	}

	if e.config.DryRun {
		e.logger.Info("dry_run_step",
			"index", index+1,
			"id", id,
			"command", command,
		)
		return Record{
			Index:   index,
			ID:      id,
			Command: command,
			DryRun:  true,
			Success: true,
		}
	}

	e.logger.Debug("executing",
		"index", index+1,
		"total", len(e.config.Identifiers),
		"id", id,
		"command", command,
	)

	result := e.runner.Run(ctx, command)
	outcome := parser.Analyze(command, result.Stdout, result.Stderr)

	rec := Record{
		Index:   index,
		ID:      id,
		Command: command,
		Result:  result,
		Outcome: outcome,
		Success: !result.Failed(),
	}

	// Success is determined by exit status. The HTTP outcome is surfaced
	// as informational unless stop-on-HTTP-error is enabled.
	attrs := []any{
		"id", id,
		"exit_code", result.ExitCode,
		"duration", result.Duration.String(),
	}
	if outcome.HasStatus {
		attrs = append(attrs, "http_status", outcome.StatusCode, "classification", outcome.Class.String())
	}
	if result.TimedOut {
		attrs = append(attrs, "timed_out", true)
	}

	if rec.Success {
		e.logger.Info("step_succeeded", attrs...)
	} else {
		attrs = append(attrs, "stderr", result.Stderr)
		e.logger.Warn("step_failed", attrs...)
	}

	return rec
}

// shouldAbort reports whether stop-on-HTTP-error halts the loop after rec.
func (e *Executor) shouldAbort(rec Record) bool {
	return e.config.StopOnHTTPError && rec.Outcome.Class == parser.ClassError
}

// pause blocks for the inter-step delay, returning early on cancellation.
func (e *Executor) pause(ctx context.Context) {
	if e.callbacks.OnDelay != nil {
		e.callbacks.OnDelay(e.config.Delay)
	}

	if e.config.Delay <= 0 {
		return
	}

	select {
	case <-ctx.Done():
	case <-time.After(e.config.Delay):
	}
}
