// Package config provides configuration management for go-batch-exec.
package config

import "time"

// DefaultPlaceholder is the token in the command template that is replaced
// with each identifier.
const DefaultPlaceholder = "<id>"

// Config holds all configuration options for the batch driver.
type Config struct {
	// Inputs
	CommandFile string `json:"command_file"`
	IDFile      string `json:"id_file"`
	Placeholder string `json:"placeholder"`

	// Execution
	Delay   time.Duration `json:"delay"`
	Timeout time.Duration `json:"timeout"`
	Shell   string        `json:"shell"`

	// Policy
	DryRun          bool `json:"dry_run"`
	StopOnHTTPError bool `json:"stop_on_http_error"`

	// Observability
	MetricsAddr string `json:"metrics_addr"`
	Verbose     bool   `json:"verbose"`
	LogFormat   string `json:"log_format"` // json, text
	TUIEnabled  bool   `json:"tui"`

	// Diagnostic modes
	PrintCmd      bool `json:"print_cmd"`
	Check         bool `json:"check"`
	SkipPreflight bool `json:"skip_preflight"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		// Inputs
		Placeholder: DefaultPlaceholder,

		// Execution
		Delay:   1 * time.Second,
		Timeout: 300 * time.Second,
		Shell:   "/bin/sh",

		// Observability
		MetricsAddr: "0.0.0.0:17092",
		Verbose:     false,
		LogFormat:   "json",
		TUIEnabled:  false,
	}
}
