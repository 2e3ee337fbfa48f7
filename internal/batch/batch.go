// Package batch wires the executor, sources, stats, metrics, and TUI into a
// complete run.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/randomizedcoder/go-batch-exec/internal/config"
	"github.com/randomizedcoder/go-batch-exec/internal/executor"
	"github.com/randomizedcoder/go-batch-exec/internal/logging"
	"github.com/randomizedcoder/go-batch-exec/internal/metrics"
	"github.com/randomizedcoder/go-batch-exec/internal/preflight"
	"github.com/randomizedcoder/go-batch-exec/internal/process"
	"github.com/randomizedcoder/go-batch-exec/internal/source"
	"github.com/randomizedcoder/go-batch-exec/internal/stats"
	"github.com/randomizedcoder/go-batch-exec/internal/tui"
)

// Batch coordinates all components for one run.
type Batch struct {
	config  *config.Config
	version string
	logger  *slog.Logger

	runner   process.Runner
	output   *logging.OutputHandler
	recorder *stats.Recorder
	metrics  *metrics.Collector
	registry prometheus.Registerer

	startTime time.Time
}

// New creates a new Batch with the given configuration.
func New(cfg *config.Config, version string, logger *slog.Logger) *Batch {
	return NewWithRegistry(cfg, version, logger, prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a Batch with a custom metrics registry.
// Useful for testing.
func NewWithRegistry(cfg *config.Config, version string, logger *slog.Logger, registry prometheus.Registerer) *Batch {
	shellCfg := &process.ShellConfig{
		Shell:   cfg.Shell,
		Timeout: cfg.Timeout,
	}

	return &Batch{
		config:   cfg,
		version:  version,
		logger:   logger,
		runner:   process.NewShellRunner(shellCfg, logger),
		output:   logging.NewOutputHandler(logger, cfg.Verbose),
		registry: registry,
	}
}

// Run executes the batch. It blocks until the identifier list is exhausted,
// stop-on-HTTP-error aborts, or a signal arrives.
//
// Load failures (template or identifier file) are returned before any
// command runs. Per-identifier failures are reflected in the summary, not
// the error.
func (b *Batch) Run(ctx context.Context) (executor.Summary, error) {
	b.startTime = time.Now()

	template, err := source.LoadTemplate(b.config.CommandFile)
	if err != nil {
		return executor.Summary{}, fmt.Errorf("loading command template: %w", err)
	}

	// Print-cmd mode: show the shell invocation and stop.
	if b.config.PrintCmd {
		if sr, ok := b.runner.(*process.ShellRunner); ok {
			fmt.Println(sr.CommandString(template))
		}
		return executor.Summary{}, nil
	}

	identifiers, err := source.LoadIdentifiers(b.config.IDFile, b.logger)
	if err != nil {
		return executor.Summary{}, fmt.Errorf("loading identifiers: %w", err)
	}

	if !b.config.SkipPreflight {
		result := preflight.RunAll(preflight.Params{
			CommandFile: b.config.CommandFile,
			IDFile:      b.config.IDFile,
			Placeholder: b.config.Placeholder,
			Shell:       b.config.Shell,
		})
		preflight.PrintResults(result)
		if !result.Passed {
			return executor.Summary{}, fmt.Errorf("preflight checks failed (use --skip-preflight to override)")
		}
	}

	b.recorder = stats.NewRecorder(len(identifiers), b.config.DryRun)
	b.metrics = metrics.NewCollectorWithRegistry(metrics.CollectorConfig{
		Version:     b.version,
		CommandFile: b.config.CommandFile,
		IDFile:      b.config.IDFile,
		Identifiers: len(identifiers),
	}, b.registry)

	var metricsServer *metrics.Server
	if b.config.MetricsAddr != "" {
		metricsServer = metrics.NewServer(b.config.MetricsAddr, b.logger)
		metricsServer.Start()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			b.logger.Info("received_signal", "signal", sig.String())
			cancel()
		case <-runCtx.Done():
		}
	}()

	exec := executor.New(executor.Config{
		Template:        template,
		Placeholder:     b.config.Placeholder,
		Identifiers:     identifiers,
		Delay:           b.config.Delay,
		DryRun:          b.config.DryRun,
		StopOnHTTPError: b.config.StopOnHTTPError,
	}, b.runner, b.logger, b.callbacks())

	summary := b.runWithDisplay(runCtx, cancel, exec)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			b.logger.Warn("metrics_server_shutdown_error", "error", err)
		}
	}

	fmt.Print(stats.FormatExitSummary(b.recorder.GetSnapshot(), stats.SummaryConfig{
		Duration:    time.Since(b.startTime),
		Delay:       b.config.Delay,
		MetricsAddr: b.config.MetricsAddr,
	}))

	return summary, nil
}

// runWithDisplay drives the executor, with the TUI attached when enabled.
func (b *Batch) runWithDisplay(ctx context.Context, cancel context.CancelFunc, exec *executor.Executor) executor.Summary {
	if !b.config.TUIEnabled {
		return exec.Run(ctx)
	}

	model := tui.New(tui.Config{
		CommandFile: b.config.CommandFile,
		MetricsAddr: b.config.MetricsAddr,
		StatsSource: b.recorder,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())

	summaryCh := make(chan executor.Summary, 1)
	go func() {
		summaryCh <- exec.Run(ctx)
		tui.SendQuit(program)
	}()

	// Blocks until the run finishes or the user quits.
	if _, err := program.Run(); err != nil {
		b.logger.Warn("tui_error", "error", err)
	}

	// User quit: stop the loop before its next substitution.
	cancel()
	return <-summaryCh
}

// callbacks wires executor events into the recorder, metrics, and output
// handler.
func (b *Batch) callbacks() executor.Callbacks {
	return executor.Callbacks{
		OnStart: func(index, total int, id, command string) {
			b.recorder.RecordStart(id)
		},
		OnResult: func(rec executor.Record) {
			if rec.DryRun {
				b.recorder.RecordDryRun()
				b.metrics.RecordDryRunStep()
				return
			}

			b.recorder.RecordResult(
				rec.ID,
				rec.Success,
				rec.Result.ExitCode,
				rec.Result.Duration,
				rec.Result.TimedOut,
				rec.Outcome.StatusCode,
				rec.Outcome.HasStatus,
			)
			b.metrics.RecordStep(rec.Success, rec.Result.ExitCode, rec.Result.Duration, rec.Result.TimedOut)
			if rec.Outcome.HasStatus {
				b.metrics.RecordHTTPResponse(rec.Outcome.StatusCode)
			}

			// Surface the response text. The body has headers stripped for
			// fetch commands; stderr carries diagnostics.
			b.output.HandleOutput(rec.ID, "stdout", rec.Outcome.Body)
			b.output.HandleOutput(rec.ID, "stderr", rec.Result.Stderr)
		},
		OnAbort: func(rec executor.Record) {
			b.recorder.RecordAbort(rec.ID, rec.Outcome.StatusCode)
			b.metrics.RecordAbort()
		},
		OnDelay: func(delay time.Duration) {
			b.metrics.RecordDelay()
			b.metrics.UpdateElapsed()
		},
	}
}
