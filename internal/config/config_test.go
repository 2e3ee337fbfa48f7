package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Placeholder != "<id>" {
		t.Errorf("Placeholder = %q, want %q", cfg.Placeholder, "<id>")
	}
	if cfg.Delay != 1*time.Second {
		t.Errorf("Delay = %v, want 1s", cfg.Delay)
	}
	if cfg.Timeout != 300*time.Second {
		t.Errorf("Timeout = %v, want 300s", cfg.Timeout)
	}
	if cfg.Shell != "/bin/sh" {
		t.Errorf("Shell = %q, want /bin/sh", cfg.Shell)
	}
	if cfg.DryRun {
		t.Error("DryRun should default to false")
	}
	if cfg.StopOnHTTPError {
		t.Error("StopOnHTTPError should default to false")
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
	if cfg.TUIEnabled {
		t.Error("TUIEnabled should default to false")
	}
}

// validConfig returns a config that passes validation.
func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.CommandFile = "command.txt"
	cfg.IDFile = "ids.csv"
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing_command_file",
			mutate:  func(c *Config) { c.CommandFile = "" },
			wantErr: "command_file",
		},
		{
			name:    "missing_id_file",
			mutate:  func(c *Config) { c.IDFile = "" },
			wantErr: "id_file",
		},
		{
			name:    "empty_placeholder",
			mutate:  func(c *Config) { c.Placeholder = "" },
			wantErr: "placeholder",
		},
		{
			name:    "negative_delay",
			mutate:  func(c *Config) { c.Delay = -1 * time.Second },
			wantErr: "delay",
		},
		{
			name:    "zero_timeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: "timeout",
		},
		{
			name:    "empty_shell",
			mutate:  func(c *Config) { c.Shell = "" },
			wantErr: "shell",
		},
		{
			name:    "bad_log_format",
			mutate:  func(c *Config) { c.LogFormat = "xml" },
			wantErr: "log_format",
		},
		{
			name: "tui_with_verbose",
			mutate: func(c *Config) {
				c.TUIEnabled = true
				c.Verbose = true
			},
			wantErr: "tui",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_PrintCmdWithoutIDFile(t *testing.T) {
	cfg := validConfig()
	cfg.IDFile = ""
	cfg.PrintCmd = true

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() with --print-cmd and no ID file = %v, want nil", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.CommandFile = ""
	cfg.Timeout = 0
	cfg.LogFormat = "yaml"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}

	msg := err.Error()
	for _, want := range []string{"command_file", "timeout", "log_format"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Validate() error missing %q: %v", want, msg)
		}
	}
}

func TestValidate_ZeroDelayAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.Delay = 0

	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() with zero delay = %v, want nil", err)
	}
}

func TestApplyCheckMode(t *testing.T) {
	cfg := validConfig()
	cfg.TUIEnabled = true

	ApplyCheckMode(cfg)

	if !cfg.DryRun {
		t.Error("Check mode should force DryRun")
	}
	if !cfg.Verbose {
		t.Error("Check mode should force Verbose")
	}
	if cfg.TUIEnabled {
		t.Error("Check mode should disable the TUI")
	}
}
