package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/go-batch-exec/internal/stats"
)

// =============================================================================
// Messages
// =============================================================================

// TickMsg is sent periodically to update the display.
type TickMsg time.Time

// QuitMsg signals the TUI should exit.
type QuitMsg struct{}

// =============================================================================
// Model
// =============================================================================

// StatsSource provides run statistics snapshots.
type StatsSource interface {
	GetSnapshot() stats.Snapshot
}

// Config holds TUI configuration.
type Config struct {
	CommandFile string
	MetricsAddr string
	StatsSource StatsSource
}

// Model represents the TUI state.
type Model struct {
	commandFile string
	metricsAddr string

	snapshot   stats.Snapshot
	startTime  time.Time
	lastUpdate time.Time

	width  int
	height int

	statsSource StatsSource

	quitting bool
}

// New creates a new TUI model.
func New(cfg Config) Model {
	return Model{
		commandFile: cfg.CommandFile,
		metricsAddr: cfg.MetricsAddr,
		statsSource: cfg.StatsSource,
		startTime:   time.Now(),
		lastUpdate:  time.Now(),
		width:       80,
		height:      24,
	}
}

// =============================================================================
// Bubble Tea Interface
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		if m.statsSource != nil {
			m.snapshot = m.statsSource.GetSnapshot()
		}
		m.lastUpdate = time.Now()
		return m, tickCmd()

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// =============================================================================
// Commands
// =============================================================================

// tickCmd returns a command that sends a tick after 500ms.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// =============================================================================
// Accessors
// =============================================================================

// Elapsed returns the time since the run started.
func (m Model) Elapsed() time.Duration {
	return time.Since(m.startTime)
}

// Progress returns loop progress (0.0 to 1.0).
func (m Model) Progress() float64 {
	if m.snapshot.Total == 0 {
		return 0
	}
	return float64(m.snapshot.Processed) / float64(m.snapshot.Total)
}

// FailureRate returns the fraction of processed steps that failed.
func (m Model) FailureRate() float64 {
	if m.snapshot.Processed == 0 {
		return 0
	}
	return float64(m.snapshot.Failure) / float64(m.snapshot.Processed)
}

// =============================================================================
// Helper for external use
// =============================================================================

// SendQuit sends a quit message to the TUI.
func SendQuit(p *tea.Program) {
	if p != nil {
		p.Send(QuitMsg{})
	}
}
