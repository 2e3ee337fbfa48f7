package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/randomizedcoder/go-batch-exec/internal/stats"
)

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderProgress())
	b.WriteString("\n")
	b.WriteString(m.renderOutcomes())

	if len(m.snapshot.HTTPStatuses) > 0 {
		b.WriteString("\n")
		b.WriteString(m.renderHTTPStatuses())
	}

	if len(m.snapshot.RecentFailures) > 0 {
		b.WriteString("\n")
		b.WriteString(m.renderRecentFailures())
	}

	if m.snapshot.Aborted {
		b.WriteString("\n")
		b.WriteString(valueBadStyle.Render(fmt.Sprintf(
			"  HALTED: identifier %s returned HTTP %d",
			m.snapshot.AbortID, m.snapshot.AbortCode,
		)))
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())

	return b.String()
}

func (m Model) renderHeader() string {
	title := headerStyle.Render(" go-batch-exec ")
	file := mutedStyle.Render(m.commandFile)
	mode := ""
	if m.snapshot.DryRun {
		mode = "  " + valueWarnStyle.Render("DRY RUN")
	}
	return title + " " + file + mode + "\n"
}

func (m Model) renderProgress() string {
	var b strings.Builder

	barWidth := m.width - 30
	if barWidth > 50 {
		barWidth = 50
	}

	b.WriteString(subtitleStyle.Render("  Progress"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s  %d/%d\n",
		RenderProgressBar(m.Progress(), barWidth),
		m.snapshot.Processed,
		m.snapshot.Total,
	)

	if m.snapshot.CurrentID != "" && m.snapshot.Processed < m.snapshot.Total && !m.snapshot.Aborted {
		b.WriteString("  ")
		b.WriteString(RenderKeyValue("Current", m.snapshot.CurrentID))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderOutcomes() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("  Outcomes"))
	b.WriteString("\n")

	success := valueGoodStyle.Render(stats.FormatNumber(int64(m.snapshot.Success)))
	failed := GetFailureRateStyle(m.FailureRate()).Render(stats.FormatNumber(int64(m.snapshot.Failure)))

	fmt.Fprintf(&b, "  %s %s   %s %s",
		mutedStyle.Render("Success:"), success,
		mutedStyle.Render("Failed:"), failed,
	)

	if m.snapshot.Timeouts > 0 {
		fmt.Fprintf(&b, "   %s %s",
			mutedStyle.Render("Timeouts:"),
			valueWarnStyle.Render(fmt.Sprintf("%d", m.snapshot.Timeouts)),
		)
	}

	if m.snapshot.Rate > 0 {
		fmt.Fprintf(&b, "   %s %s",
			mutedStyle.Render("Rate:"),
			valueStyle.Render(stats.FormatRate(m.snapshot.Rate)),
		)
	}
	b.WriteString("\n")

	if m.snapshot.DurationP50 > 0 {
		fmt.Fprintf(&b, "  %s p50 %s  p95 %s  p99 %s\n",
			mutedStyle.Render("Duration:"),
			valueStyle.Render(stats.FormatMs(m.snapshot.DurationP50)),
			valueStyle.Render(stats.FormatMs(m.snapshot.DurationP95)),
			valueStyle.Render(stats.FormatMs(m.snapshot.DurationP99)),
		)
	}

	return b.String()
}

func (m Model) renderHTTPStatuses() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("  HTTP Statuses"))
	b.WriteString("\n  ")

	codes := make([]int, 0, len(m.snapshot.HTTPStatuses))
	for code := range m.snapshot.HTTPStatuses {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, fmt.Sprintf("%s %s",
			GetStatusStyle(code).Render(fmt.Sprintf("%d", code)),
			mutedStyle.Render(fmt.Sprintf("x%d", m.snapshot.HTTPStatuses[code])),
		))
	}
	b.WriteString(strings.Join(parts, "  "))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderRecentFailures() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("  Recent Failures"))
	b.WriteString("\n")

	for _, f := range m.snapshot.RecentFailures {
		detail := fmt.Sprintf("exit %d", f.ExitCode)
		if f.TimedOut {
			detail = "timeout"
		} else if f.StatusCode != 0 {
			detail = fmt.Sprintf("HTTP %d", f.StatusCode)
		}
		fmt.Fprintf(&b, "  %s %s %s\n",
			valueBadStyle.Render("✗"),
			f.ID,
			dimStyle.Render("("+detail+")"),
		)
	}

	return b.String()
}

func (m Model) renderFooter() string {
	elapsed := stats.FormatDuration(m.Elapsed())
	parts := []string{"elapsed " + elapsed}
	if m.metricsAddr != "" {
		parts = append(parts, "metrics http://"+m.metricsAddr+"/metrics")
	}
	parts = append(parts, "q to quit")
	return footerStyle.Render("  " + strings.Join(parts, "  •  "))
}
