// Package preflight provides startup validation checks.
package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/randomizedcoder/go-batch-exec/internal/parser"
)

// Check represents the result of a single preflight check.
type Check struct {
	Name    string // Name of the check
	Passed  bool   // Whether the check passed
	Warning bool   // True if it's a warning (non-fatal)
	Message string // Additional context
}

// Result holds the results of all preflight checks.
type Result struct {
	Checks []Check
	Passed bool
}

// String returns a human-readable summary of the check.
func (c Check) String() string {
	status := "✓"
	if !c.Passed {
		status = "✗"
	} else if c.Warning {
		status = "⚠"
	}
	return fmt.Sprintf("  %s %s: %s", status, c.Name, c.Message)
}

// Params holds the inputs the preflight checks inspect.
type Params struct {
	CommandFile string
	IDFile      string
	Placeholder string
	Shell       string
}

// RunAll executes all preflight checks.
func RunAll(p Params) *Result {
	result := &Result{
		Checks: make([]Check, 0, 4),
		Passed: true,
	}

	template, templateCheck := checkTemplate(p.CommandFile, p.Placeholder)
	result.Checks = append(result.Checks, templateCheck)
	if !templateCheck.Passed {
		result.Passed = false
	}

	idCheck := checkIDFile(p.IDFile)
	result.Checks = append(result.Checks, idCheck)
	if !idCheck.Passed {
		result.Passed = false
	}

	shellCheck := checkShell(p.Shell)
	result.Checks = append(result.Checks, shellCheck)
	if !shellCheck.Passed {
		result.Passed = false
	}

	// The fetch-tool check is advisory. A missing tool surfaces as per-step
	// launch failures, not a refusal to start.
	if parser.IsFetchCommand(template) {
		result.Checks = append(result.Checks, checkFetchTool())
	}

	return result
}

// checkTemplate verifies the command template is readable and looks usable.
// A template without the placeholder runs the identical command per
// identifier, which is legal but usually a mistake, so it warns.
func checkTemplate(path, placeholder string) (string, Check) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", Check{
			Name:    "command_template",
			Passed:  false,
			Message: fmt.Sprintf("unreadable: %v", err),
		}
	}

	template := strings.TrimSpace(string(data))
	if template == "" {
		return "", Check{
			Name:    "command_template",
			Passed:  false,
			Message: fmt.Sprintf("%s is empty", path),
		}
	}

	if !strings.Contains(template, placeholder) {
		return template, Check{
			Name:    "command_template",
			Passed:  true,
			Warning: true,
			Message: fmt.Sprintf("no %q placeholder found (same command will run for every identifier)", placeholder),
		}
	}

	return template, Check{
		Name:    "command_template",
		Passed:  true,
		Message: fmt.Sprintf("loaded from %s (%d bytes)", path, len(template)),
	}
}

// checkIDFile verifies the identifier file is readable.
func checkIDFile(path string) Check {
	info, err := os.Stat(path)
	if err != nil {
		return Check{
			Name:    "identifier_file",
			Passed:  false,
			Message: fmt.Sprintf("unreadable: %v", err),
		}
	}

	if info.Size() == 0 {
		return Check{
			Name:    "identifier_file",
			Passed:  true,
			Warning: true,
			Message: fmt.Sprintf("%s is empty (nothing to process)", path),
		}
	}

	return Check{
		Name:    "identifier_file",
		Passed:  true,
		Message: fmt.Sprintf("found %s (%d bytes)", path, info.Size()),
	}
}

// checkShell verifies the configured shell exists and is executable.
func checkShell(shell string) Check {
	path, err := exec.LookPath(shell)
	if err != nil {
		return Check{
			Name:    "shell",
			Passed:  false,
			Message: fmt.Sprintf("not found: %v", err),
		}
	}

	return Check{
		Name:    "shell",
		Passed:  true,
		Message: fmt.Sprintf("found at %s", path),
	}
}

// checkFetchTool verifies the HTTP fetch tool is on PATH when the template
// begins with it.
func checkFetchTool() Check {
	path, err := exec.LookPath(parser.FetchTool)
	if err != nil {
		return Check{
			Name:    "fetch_tool",
			Passed:  true,
			Warning: true,
			Message: fmt.Sprintf("%s not found on PATH (steps will fail at launch)", parser.FetchTool),
		}
	}

	return Check{
		Name:    "fetch_tool",
		Passed:  true,
		Message: fmt.Sprintf("found at %s", path),
	}
}

// PrintResults prints the preflight check results to stdout.
func PrintResults(result *Result) {
	fmt.Println("Preflight checks:")
	for _, check := range result.Checks {
		fmt.Println(check.String())
	}
	if !result.Passed {
		fmt.Println("\nPreflight checks failed. Use --skip-preflight to bypass (not recommended).")
	}
}
