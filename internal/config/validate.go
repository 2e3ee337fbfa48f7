package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or an error describing the problem.
func Validate(cfg *Config) error {
	var errs []error

	// Command template file is always required
	if cfg.CommandFile == "" {
		errs = append(errs, ValidationError{
			Field:   "command_file",
			Message: "command template file is required",
		})
	}

	// Identifier file is required except for --print-cmd
	if cfg.IDFile == "" && !cfg.PrintCmd {
		errs = append(errs, ValidationError{
			Field:   "id_file",
			Message: "identifier CSV file is required",
		})
	}

	// Placeholder must not be empty
	if cfg.Placeholder == "" {
		errs = append(errs, ValidationError{
			Field:   "placeholder",
			Message: "must not be empty",
		})
	}

	// Delay must be non-negative
	if cfg.Delay < 0 {
		errs = append(errs, ValidationError{
			Field:   "delay",
			Message: "must be non-negative",
		})
	}

	// Timeout must be positive
	if cfg.Timeout <= 0 {
		errs = append(errs, ValidationError{
			Field:   "timeout",
			Message: "must be positive",
		})
	}

	// Shell must be set
	if cfg.Shell == "" {
		errs = append(errs, ValidationError{
			Field:   "shell",
			Message: "must not be empty",
		})
	}

	// Log format must be valid
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.LogFormat] {
		errs = append(errs, ValidationError{
			Field:   "log_format",
			Message: fmt.Sprintf("must be 'json' or 'text' (got %q)", cfg.LogFormat),
		})
	}

	// TUI and verbose logging fight over the terminal
	if cfg.TUIEnabled && cfg.Verbose {
		errs = append(errs, ValidationError{
			Field:   "tui",
			Message: "-tui cannot be combined with -v (logs would corrupt the dashboard)",
		})
	}

	// Return combined errors
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// ApplyCheckMode modifies config for --check mode.
// Check mode rehearses the run without executing anything.
func ApplyCheckMode(cfg *Config) {
	cfg.DryRun = true
	cfg.Verbose = true
	cfg.TUIEnabled = false
}
