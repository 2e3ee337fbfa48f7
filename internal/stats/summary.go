// Package stats provides run statistics for batch command execution.
//
// This file implements the exit summary formatter which displays run
// statistics when the batch completes or aborts.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SummaryConfig holds configuration for summary formatting.
type SummaryConfig struct {
	// Duration is the total run duration
	Duration time.Duration

	// Delay is the configured inter-step delay
	Delay time.Duration

	// MetricsAddr is the Prometheus metrics endpoint address
	MetricsAddr string
}

// FormatExitSummary formats run statistics for display at program exit.
//
// The summary includes:
// - Run information
// - Step outcomes with rates
// - Command duration percentiles
// - HTTP status distribution
// - Abort details (if stop-on-HTTP-error fired)
func FormatExitSummary(snap Snapshot, cfg SummaryConfig) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("═══════════════════════════════════════════════════════════════════════════════\n")
	b.WriteString("                          go-batch-exec Run Summary\n")
	b.WriteString("═══════════════════════════════════════════════════════════════════════════════\n\n")

	// Run info
	fmt.Fprintf(&b, "Run Duration:           %s\n", FormatDuration(cfg.Duration))
	fmt.Fprintf(&b, "Identifiers Loaded:     %d\n", snap.Total)
	fmt.Fprintf(&b, "Inter-step Delay:       %s\n", cfg.Delay)
	if snap.DryRun {
		b.WriteString("Mode:                   DRY RUN (no commands executed)\n")
	}
	b.WriteString("\n")

	// Outcomes
	b.WriteString("───────────────────────────────────────────────────────────────────────────────\n")
	b.WriteString("                                  Outcomes\n")
	b.WriteString("───────────────────────────────────────────────────────────────────────────────\n\n")

	fmt.Fprintf(&b, "  Processed:            %s\n", FormatNumber(int64(snap.Processed)))
	fmt.Fprintf(&b, "  Successful:           %s\n", FormatNumber(int64(snap.Success)))
	fmt.Fprintf(&b, "  Failed:               %s\n", FormatNumber(int64(snap.Failure)))
	if snap.Timeouts > 0 {
		fmt.Fprintf(&b, "  Timeouts:             %d\n", snap.Timeouts)
	}
	if snap.Infra > 0 {
		fmt.Fprintf(&b, "  Launch/Infra Errors:  %d\n", snap.Infra)
	}
	if snap.Rate > 0 && !snap.DryRun {
		fmt.Fprintf(&b, "  Throughput:           %s\n", FormatRate(snap.Rate))
	}
	b.WriteString("\n")

	// Duration percentiles
	if snap.DurationP50 > 0 {
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n")
		b.WriteString("                            Command Duration\n")
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n\n")

		fmt.Fprintf(&b, "  P50 (median):         %s\n", FormatMs(snap.DurationP50))
		fmt.Fprintf(&b, "  P95:                  %s\n", FormatMs(snap.DurationP95))
		fmt.Fprintf(&b, "  P99:                  %s\n", FormatMs(snap.DurationP99))
		b.WriteString("\n")
	}

	// HTTP status distribution
	if len(snap.HTTPStatuses) > 0 {
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n")
		b.WriteString("                              HTTP Statuses\n")
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n\n")

		codes := make([]int, 0, len(snap.HTTPStatuses))
		for code := range snap.HTTPStatuses {
			codes = append(codes, code)
		}
		sort.Ints(codes)

		for _, code := range codes {
			fmt.Fprintf(&b, "  HTTP %3d %-12s %d\n", code, statusLabel(code), snap.HTTPStatuses[code])
		}
		b.WriteString("\n")
	}

	// Abort details
	if snap.Aborted {
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n")
		b.WriteString("                                   Abort\n")
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n\n")

		fmt.Fprintf(&b, "  Halted on identifier: %s (HTTP %d)\n", snap.AbortID, snap.AbortCode)
		fmt.Fprintf(&b, "  Not processed:        %d\n\n", snap.Total-snap.Processed)
	}

	if cfg.MetricsAddr != "" {
		fmt.Fprintf(&b, "Metrics endpoint was: http://%s/metrics\n", cfg.MetricsAddr)
	}

	b.WriteString("═══════════════════════════════════════════════════════════════════════════════\n")

	return b.String()
}

// statusLabel returns a short label for common HTTP status classes.
func statusLabel(code int) string {
	switch {
	case code >= 200 && code <= 299:
		return "(success)"
	case code >= 300 && code <= 399:
		return "(redirect)"
	case code >= 400 && code <= 499:
		return "(client err)"
	case code >= 500 && code <= 599:
		return "(server err)"
	default:
		return ""
	}
}

// =============================================================================
// Formatting Helper Functions (exported for reuse)
// =============================================================================

// FormatDuration formats a duration as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatNumber formats a number with K/M suffixes for readability.
func FormatNumber(n int64) string {
	if n >= 1_000_000 {
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	}
	if n >= 1_000 {
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	}
	return fmt.Sprintf("%d", n)
}

// FormatMs formats a duration as milliseconds.
func FormatMs(d time.Duration) string {
	ms := d.Milliseconds()
	if ms == 0 && d > 0 {
		// Sub-millisecond, show microseconds
		return fmt.Sprintf("%d µs", d.Microseconds())
	}
	return fmt.Sprintf("%d ms", ms)
}

// FormatRate formats a rate with appropriate precision.
func FormatRate(rate float64) string {
	if rate >= 1000 {
		return fmt.Sprintf("%.1fK/s", rate/1000)
	}
	if rate >= 1 {
		return fmt.Sprintf("%.1f/s", rate)
	}
	return fmt.Sprintf("%.2f/s", rate)
}
