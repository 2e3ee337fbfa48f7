// Package main provides the go-batch-exec CLI entry point.
//
// go-batch-exec runs a command template once per identifier read from a CSV
// file, sequentially, with a fixed delay between executions and optional
// early termination on HTTP error responses.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/randomizedcoder/go-batch-exec/internal/batch"
	"github.com/randomizedcoder/go-batch-exec/internal/config"
	"github.com/randomizedcoder/go-batch-exec/internal/logging"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/go-batch-exec
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Handle version flag early (before flag parsing)
	if len(os.Args) > 1 {
		arg := os.Args[1]
		if arg == "-version" || arg == "--version" || arg == "version" {
			fmt.Printf("go-batch-exec %s\n", version)
			return 0
		}
	}

	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return 1
	}

	// When the TUI is enabled, suppress logs to avoid interfering with
	// TUI rendering
	var logger *slog.Logger
	if cfg.TUIEnabled {
		logger = logging.NewLoggerWithWriter(io.Discard, "json", "info")
	} else {
		logger = logging.NewLogger(cfg.LogFormat, "info", cfg.Verbose)
	}
	logging.SetDefault(logger)

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	// Apply --check mode modifications
	if cfg.Check {
		config.ApplyCheckMode(cfg)
		logger.Info("check_mode_enabled", "dry_run", cfg.DryRun)
	}

	logger.Info("starting",
		"version", version,
		"command_file", cfg.CommandFile,
		"ids_file", cfg.IDFile,
		"delay", cfg.Delay.String(),
		"dry_run", cfg.DryRun,
		"stop_on_http_error", cfg.StopOnHTTPError,
		"metrics_addr", cfg.MetricsAddr,
	)

	if !cfg.TUIEnabled && !cfg.PrintCmd {
		printBanner(cfg)
	}

	b := batch.New(cfg, version, logger)
	summary, err := b.Run(context.Background())
	if err != nil {
		logger.Error("batch_failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if summary.Failure > 0 {
		return 2
	}
	return 0
}

// printBanner prints the startup banner.
func printBanner(cfg *config.Config) {
	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                          go-batch-exec                            ║")
	fmt.Println("║        Sequential Batch Command Execution with ID Substitution    ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Template:    %s\n", cfg.CommandFile)
	fmt.Printf("  Identifiers: %s\n", cfg.IDFile)
	fmt.Printf("  Delay:       %s between executions\n", cfg.Delay)
	fmt.Printf("  Metrics:     http://%s/metrics\n", cfg.MetricsAddr)
	if cfg.DryRun {
		fmt.Println("  Mode:        DRY RUN (commands printed, not executed)")
	}
	if cfg.StopOnHTTPError {
		fmt.Println("  Policy:      stop on first HTTP 4xx/5xx response")
	}
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop.")
	fmt.Println()
}
