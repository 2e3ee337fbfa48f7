package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlags parses command-line flags and returns a Config.
// Returns an error if required arguments are missing or invalid.
func ParseFlags() (*Config, error) {
	cfg := DefaultConfig()

	// Custom usage message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `go-batch-exec - run a command template once per identifier in a CSV file

Usage:
  go-batch-exec [flags] <COMMAND_FILE> <ID_CSV_FILE>

The command template may contain the placeholder token (default "<id>");
every occurrence is replaced with each identifier before execution.

Execution Flags:
`)
		printFlagCategory([]string{"delay", "timeout", "shell", "placeholder"})

		fmt.Fprintf(os.Stderr, "\nPolicy:\n")
		printFlagCategory([]string{"dry-run", "stop-on-http-error"})

		fmt.Fprintf(os.Stderr, "\nSafety & Diagnostics:\n")
		printFlagCategory([]string{"print-cmd", "check", "skip-preflight"})

		fmt.Fprintf(os.Stderr, "\nObservability:\n")
		printFlagCategory([]string{"metrics", "v", "log-format", "tui"})

		fmt.Fprintf(os.Stderr, `
Examples:
  # Run a curl template for every ID, one second apart
  go-batch-exec command.txt ids.csv

  # Rehearse without executing anything
  go-batch-exec --dry-run command.txt ids.csv

  # Halt on the first 4xx/5xx response, 500ms between requests
  go-batch-exec --stop-on-http-error -delay 500ms command.txt ids.csv

`)
	}

	// Execution flags
	flag.DurationVar(&cfg.Delay, "delay", cfg.Delay, "Pause between consecutive executions")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-command wall-clock timeout")
	flag.StringVar(&cfg.Shell, "shell", cfg.Shell, "Shell used to run rendered commands")
	flag.StringVar(&cfg.Placeholder, "placeholder", cfg.Placeholder, "Placeholder token in the command template")

	// Policy (double-dash convention)
	flag.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Print rendered commands without executing them")
	flag.BoolVar(&cfg.StopOnHTTPError, "stop-on-http-error", cfg.StopOnHTTPError, "Halt on the first 4xx/5xx response from a fetch command")

	// Safety & Diagnostics
	flag.BoolVar(&cfg.PrintCmd, "print-cmd", cfg.PrintCmd, "Print an example rendered command and exit")
	flag.BoolVar(&cfg.Check, "check", cfg.Check, "Validate config and rehearse the run (implies --dry-run)")
	flag.BoolVar(&cfg.SkipPreflight, "skip-preflight", cfg.SkipPreflight, "Skip preflight checks")

	// Observability
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus metrics address (empty = disabled)")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json" or "text"`)
	flag.BoolVar(&cfg.TUIEnabled, "tui", cfg.TUIEnabled, "Enable live terminal dashboard")

	// Parse
	flag.Parse()

	// Positional arguments: command template file, identifier CSV file
	args := flag.Args()
	if len(args) >= 1 {
		cfg.CommandFile = args[0]
	}
	if len(args) >= 2 {
		cfg.IDFile = args[1]
	}

	return cfg, nil
}

// printFlagCategory prints flags matching the given names (helper for usage).
func printFlagCategory(names []string) {
	flag.VisitAll(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				fmt.Fprintf(os.Stderr, "  -%s %s\n    \t%s", f.Name, flagType(f), f.Usage)
				if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" && f.DefValue != "0s" {
					fmt.Fprintf(os.Stderr, " (default %s)", f.DefValue)
				}
				fmt.Fprintln(os.Stderr)
				return
			}
		}
	})
}

// flagType returns a type hint for the flag value.
func flagType(f *flag.Flag) string {
	// Infer type from default value format
	switch f.DefValue {
	case "true", "false":
		return ""
	}

	// Check if it looks like a duration
	if strings.HasSuffix(f.DefValue, "s") || strings.HasSuffix(f.DefValue, "m") || strings.HasSuffix(f.DefValue, "h") {
		return "duration"
	}

	// Check if numeric
	if _, err := fmt.Sscanf(f.DefValue, "%d", new(int)); err == nil {
		return "int"
	}

	return "string"
}
