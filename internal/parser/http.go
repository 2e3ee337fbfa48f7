// Package parser provides HTTP outcome classification for captured command
// output.
//
// Commands recognized as fetch invocations (curl) typically emit an HTTP
// status line on one of their streams. With `-i` the status line and headers
// arrive on stdout ahead of the body; with `-v` the status line appears in
// the stderr trace.
//
// Example curl output:
//
//	HTTP/1.1 404 Not Found
//	Content-Type: text/html
//
//	<html>not found</html>
package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// FetchTool is the invocation name used to recognize HTTP fetch commands.
const FetchTool = "curl"

// Classification describes the policy meaning of an HTTP status code.
type Classification int

const (
	// ClassIndeterminate means no status code could be extracted.
	ClassIndeterminate Classification = iota

	// ClassSuccess means 2xx, or any present code outside 4xx/5xx.
	// 1xx, 3xx, and out-of-range codes deliberately count as success for
	// stop-on-error purposes; only 4xx/5xx ever halt a run.
	ClassSuccess

	// ClassError means 4xx or 5xx.
	ClassError
)

// String returns a human-readable name for the classification.
func (c Classification) String() string {
	switch c {
	case ClassSuccess:
		return "success"
	case ClassError:
		return "error"
	default:
		return "indeterminate"
	}
}

// reStatusLine matches a protocol/version token immediately followed by a
// 3-digit status code:
//
//	HTTP/1.1 404 Not Found
//	HTTP/2 200
var reStatusLine = regexp.MustCompile(`HTTP/[0-9.]+ (\d{3})`)

// IsFetchCommand reports whether the trimmed command text begins with the
// fetch tool's invocation name. This is a heuristic: it recognizes plain
// "curl ..." command lines, not curl buried behind env vars or wrappers.
func IsFetchCommand(command string) bool {
	trimmed := strings.TrimSpace(command)
	if !strings.HasPrefix(trimmed, FetchTool) {
		return false
	}
	rest := trimmed[len(FetchTool):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

// ExtractStatusCode extracts an HTTP status code from the captured output of
// a fetch invocation. The diagnostic stream is searched before the output
// stream, since curl's verbose trace carries the status line even when the
// body is redirected. Returns the first code found, or false if the command
// is not a fetch invocation or no status line is present.
func ExtractStatusCode(command, stdout, stderr string) (int, bool) {
	if !IsFetchCommand(command) {
		return 0, false
	}

	for _, stream := range []string{stderr, stdout} {
		if m := reStatusLine.FindStringSubmatch(stream); m != nil {
			code, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return code, true
		}
	}

	return 0, false
}

// ExtractBody strips header-like lines from a fetch invocation's stdout.
//
// Headers and body are conventionally separated by the first blank line; the
// text after it is returned trimmed. When no blank line exists, or the
// command is not a fetch invocation, stdout is returned unchanged.
func ExtractBody(command, stdout string) string {
	if !IsFetchCommand(command) {
		return stdout
	}

	lines := strings.Split(stdout, "\n")
	for i, line := range lines {
		// curl -i emits CRLF header lines
		if strings.TrimRight(line, "\r") == "" {
			return strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		}
	}

	return stdout
}

// Classify maps an extracted status code to its policy classification.
// present=false (no code extracted) yields ClassIndeterminate.
func Classify(code int, present bool) Classification {
	if !present {
		return ClassIndeterminate
	}

	switch {
	case code >= 200 && code <= 299:
		return ClassSuccess
	case code >= 400 && code <= 599:
		return ClassError
	default:
		// 1xx, 3xx, and out-of-range values do not block continuation.
		return ClassSuccess
	}
}

// Outcome is the derived HTTP interpretation of one command execution.
type Outcome struct {
	StatusCode int
	HasStatus  bool
	Body       string
	Class      Classification
}

// Analyze derives the full HTTP outcome for a command's captured output.
// For non-fetch commands the outcome is indeterminate with the raw stdout
// as body.
func Analyze(command, stdout, stderr string) Outcome {
	code, ok := ExtractStatusCode(command, stdout, stderr)
	return Outcome{
		StatusCode: code,
		HasStatus:  ok,
		Body:       ExtractBody(command, stdout),
		Class:      Classify(code, ok),
	}
}
