package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewOutputHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "text", "debug")

	h := NewOutputHandler(logger, false)
	if h == nil {
		t.Fatal("NewOutputHandler returned nil")
	}
	if len(h.buffer) != MaxBufferedLines {
		t.Errorf("buffer length = %d, want %d", len(h.buffer), MaxBufferedLines)
	}
}

func TestOutputHandler_HandleLine(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "text", "debug")

	h := NewOutputHandler(logger, true)

	h.HandleLine("id1", "stdout", "test line")

	lines := h.RecentLines(1)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if lines[0] != "test line" {
		t.Errorf("Line = %q, want %q", lines[0], "test line")
	}
}

func TestOutputHandler_HandleLine_Truncation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "text", "debug")

	h := NewOutputHandler(logger, true)

	longLine := strings.Repeat("x", MaxLineLength+100)
	h.HandleLine("id1", "stderr", longLine)

	lines := h.RecentLines(1)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if len(lines[0]) > MaxLineLength+20 {
		t.Errorf("Line should be truncated, got length %d", len(lines[0]))
	}
	if !strings.HasSuffix(lines[0], "...(truncated)") {
		t.Error("Truncated line should end with '...(truncated)'")
	}
}

func TestOutputHandler_HandleOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "text", "debug")
	h := NewOutputHandler(logger, true)

	h.HandleOutput("id1", "stdout", "line1\nline2\n\nline3\n")

	// Blank lines are skipped
	lines := h.RecentLines(10)
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d: %v", len(lines), lines)
	}
	if lines[0] != "line1" || lines[2] != "line3" {
		t.Errorf("Unexpected lines: %v", lines)
	}
}

func TestOutputHandler_CircularBuffer(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "text", "debug")

	h := NewOutputHandler(logger, false)

	for i := 0; i < MaxBufferedLines+50; i++ {
		h.HandleLine("id1", "stdout", strings.Repeat("x", i+1))
	}

	lines := h.RecentLines(MaxBufferedLines + 10)
	if len(lines) > MaxBufferedLines {
		t.Errorf("Got %d lines, max should be %d", len(lines), MaxBufferedLines)
	}
}

func TestOutputHandler_RecentLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "text", "debug")

	h := NewOutputHandler(logger, false)

	for i := 0; i < 5; i++ {
		h.HandleLine("id1", "stdout", "line"+string(rune('0'+i)))
	}

	lines := h.RecentLines(3)
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "line2" || lines[1] != "line3" || lines[2] != "line4" {
		t.Errorf("Unexpected lines: %v", lines)
	}
}

func TestOutputHandler_ClassifyLine(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "text", "debug")

	h := NewOutputHandler(logger, true)

	testCases := []struct {
		line     string
		expected slog.Level
	}{
		// HTTP error status lines
		{"HTTP/1.1 404 Not Found", slog.LevelWarn},
		{"HTTP/2 503", slog.LevelWarn},
		{"HTTP/1.1 200 OK", slog.LevelDebug},
		{"HTTP/1.1 301 Moved Permanently", slog.LevelDebug},

		// curl diagnostics
		{"curl: (7) Failed to connect", slog.LevelWarn},
		{"Connection refused", slog.LevelWarn},
		{"Operation timed out", slog.LevelWarn},
		{"sh: foo: command not found", slog.LevelWarn},

		// Default
		{"Content-Type: application/json", slog.LevelDebug},
		{"some random output", slog.LevelDebug},
	}

	for _, tc := range testCases {
		t.Run(tc.line, func(t *testing.T) {
			level := h.classifyLine(tc.line)
			if level != tc.expected {
				t.Errorf("classifyLine(%q) = %v, want %v", tc.line, level, tc.expected)
			}
		})
	}
}

func TestOutputHandler_CountStatuses(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "text", "debug")

	h := NewOutputHandler(logger, false)

	h.HandleLine("id1", "stderr", "HTTP/1.1 404 Not Found")
	h.HandleLine("id2", "stderr", "HTTP/1.1 404 Not Found")
	h.HandleLine("id3", "stderr", "HTTP/1.1 200 OK")
	h.HandleLine("id4", "stdout", "normal line")

	counts := h.CountStatuses()

	if counts["404"] != 2 {
		t.Errorf("404 count = %d, want 2", counts["404"])
	}
	if counts["200"] != 1 {
		t.Errorf("200 count = %d, want 1", counts["200"])
	}
}

func TestOutputHandler_VerboseLogging(t *testing.T) {
	t.Run("verbose_true", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerWithWriter(&buf, "text", "debug")
		h := NewOutputHandler(logger, true)

		h.HandleLine("id1", "stdout", "debug line")

		if !strings.Contains(buf.String(), "debug line") {
			t.Error("Verbose mode should log debug lines")
		}
	})

	t.Run("verbose_false", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerWithWriter(&buf, "text", "debug")
		h := NewOutputHandler(logger, false)

		h.HandleLine("id1", "stdout", "debug line")

		if strings.Contains(buf.String(), "debug line") {
			t.Error("Non-verbose mode should not log debug lines")
		}
	})

	t.Run("verbose_false_logs_errors", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerWithWriter(&buf, "text", "debug")
		h := NewOutputHandler(logger, false)

		h.HandleLine("id1", "stderr", "curl: (7) Failed to connect")

		if !strings.Contains(buf.String(), "Failed to connect") {
			t.Error("Non-verbose mode should still log errors")
		}
	})
}

func TestOutputHandler_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, "text", "debug")
	h := NewOutputHandler(logger, false)

	done := make(chan bool)

	go func() {
		for i := 0; i < 100; i++ {
			h.HandleLine("id1", "stdout", "concurrent line")
		}
		done <- true
	}()

	go func() {
		for i := 0; i < 100; i++ {
			_ = h.RecentLines(10)
			_ = h.CountStatuses()
		}
		done <- true
	}()

	<-done
	<-done
}
