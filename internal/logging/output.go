package logging

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"
)

const (
	// MaxLineLength is the maximum length of a single output line before truncation.
	MaxLineLength = 4096

	// MaxBufferedLines is the maximum number of output lines buffered per batch run.
	MaxBufferedLines = 100
)

// reStatusLine matches an HTTP status line embedded in command output.
var reStatusLine = regexp.MustCompile(`HTTP/[0-9.]+ (\d{3})`)

// OutputHandler handles captured output from executed commands.
// It buffers recent lines for failure reporting and logs them.
type OutputHandler struct {
	logger  *slog.Logger
	verbose bool

	// Circular buffer for recent lines
	buffer []string
	bufIdx int
	mu     sync.Mutex
}

// NewOutputHandler creates a new output handler.
func NewOutputHandler(logger *slog.Logger, verbose bool) *OutputHandler {
	return &OutputHandler{
		logger:  logger,
		verbose: verbose,
		buffer:  make([]string, MaxBufferedLines),
	}
}

// HandleOutput processes a block of captured output, line by line.
// The stream label ("stdout" or "stderr") is attached to each log record.
func (h *OutputHandler) HandleOutput(id, stream, text string) {
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		h.HandleLine(id, stream, line)
	}
}

// HandleLine processes a single line of command output.
func (h *OutputHandler) HandleLine(id, stream, line string) {
	// Truncate if too long
	if len(line) > MaxLineLength {
		line = line[:MaxLineLength] + "...(truncated)"
	}

	// Store in circular buffer
	h.mu.Lock()
	h.buffer[h.bufIdx] = line
	h.bufIdx = (h.bufIdx + 1) % MaxBufferedLines
	h.mu.Unlock()

	h.logLine(id, stream, line)
}

// logLine logs the line at appropriate level based on content.
func (h *OutputHandler) logLine(id, stream, line string) {
	level := h.classifyLine(line)

	// In non-verbose mode, only log warnings and errors
	if !h.verbose && level == slog.LevelDebug {
		return
	}

	h.logger.Log(nil, level, "command_output",
		"id", id,
		"stream", stream,
		"line", line,
	)
}

// classifyLine determines the log level for a line based on content.
func (h *OutputHandler) classifyLine(line string) slog.Level {
	lower := strings.ToLower(line)

	// HTTP error status lines
	if m := reStatusLine.FindStringSubmatch(line); m != nil {
		if m[1][0] == '4' || m[1][0] == '5' {
			return slog.LevelWarn
		}
		return slog.LevelDebug
	}

	// Error patterns (curl diagnostics, shell failures)
	if strings.Contains(lower, "curl:") ||
		strings.Contains(lower, "error") ||
		strings.Contains(lower, "failed") ||
		strings.Contains(lower, "refused") ||
		strings.Contains(lower, "not found") ||
		strings.Contains(lower, "timed out") {
		return slog.LevelWarn
	}

	// Default to debug (headers, bodies, progress meters)
	return slog.LevelDebug
}

// RecentLines returns the most recent n lines from the buffer, oldest first.
func (h *OutputHandler) RecentLines(n int) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n > MaxBufferedLines {
		n = MaxBufferedLines
	}

	lines := make([]string, 0, n)
	for i := 0; i < MaxBufferedLines; i++ {
		idx := (h.bufIdx + i) % MaxBufferedLines
		if h.buffer[idx] != "" {
			lines = append(lines, h.buffer[idx])
		}
	}

	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

// CountStatuses counts HTTP status codes seen in the buffered lines.
func (h *OutputHandler) CountStatuses() map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	counts := make(map[string]int)
	for _, line := range h.buffer {
		if line == "" {
			continue
		}
		if m := reStatusLine.FindStringSubmatch(line); m != nil {
			counts[m[1]]++
		}
	}
	return counts
}
