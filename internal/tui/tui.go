// Package tui provides a Bubble Tea terminal user interface for memefetch.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/memefetch/internal/config"
	"github.com/handiism/memefetch/internal/download"
	"github.com/handiism/memefetch/internal/model"
	"github.com/handiism/memefetch/internal/report"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// maxLogLines is how many progress messages stay on screen.
const maxLogLines = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	catalog   *model.Catalog
	opts      []download.Option
	logs      []LogEntry
	report    *model.Report
	err       error

	// Run context
	ctx        context.Context
	cancel     context.CancelFunc
	cancelling bool

	// Run state
	manager *download.Manager
	events  chan download.ProgressEvent

	// Run progress
	processed int32
	total     int32
	received  int64

	// Options
	convert bool
	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model that downloads memes with settings.
// The directory prompt starts with settings.DownloadsPath.
func NewModel(settings *config.Settings, memes *model.Catalog, opts ...download.Option) Model {
	ti := textinput.New()
	ti.Placeholder = config.DefaultDownloadsPath
	ti.SetValue(settings.DownloadsPath)
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		catalog:   memes,
		opts:      opts,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		convert:   settings.ConvertImages,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one event from the running manager.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// RunDoneMsg is sent when the run returns.
	RunDoneMsg struct {
		Report *model.Report
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateDownloading && !m.cancelling {
				// Run finishes the current items and marks the rest cancelled.
				m.cancel()
				m.cancelling = true
			}

		case "enter":
			if m.state == StateInput {
				return m.start()
			}

		case "tab":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "ctrl+o":
			if m.state == StateInput {
				m.convert = !m.convert
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.reset()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if msg.Event.Level != download.LevelVerbose || m.verbose {
			m.logs = append(m.logs, LogEntry{
				Message: msg.Event.Message,
				Level:   msg.Event.Level,
			})
			if len(m.logs) > maxLogLines {
				m.logs = m.logs[len(m.logs)-maxLogLines:]
			}
		}
		cmds = append(cmds, waitForEvent(m.events))

	case RunDoneMsg:
		m.cancelling = false
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		m.report = msg.Report
		m.processed = int32(len(msg.Report.Results))
		m.total = m.processed
		m.state = StateComplete

	case TickMsg:
		if m.manager != nil && m.state == StateDownloading {
			m.processed, m.total, m.received = m.manager.GetProgress()
			cmds = append(cmds, m.tickProgress())
		}
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// start builds a manager for the entered directory and begins the run.
func (m Model) start() (tea.Model, tea.Cmd) {
	settings := *m.settings
	if dir := strings.TrimSpace(m.textInput.Value()); dir != "" {
		settings.DownloadsPath = dir
	}
	settings.ConvertImages = m.convert

	m.events = make(chan download.ProgressEvent)
	m.manager = download.NewManager(&settings, m.catalog, m.forward(), m.opts...)
	m.total = int32(m.catalog.Len())
	m.state = StateDownloading
	m.textInput.Blur()

	return m, tea.Batch(
		m.run(),
		waitForEvent(m.events),
		m.tickProgress(),
		m.spinner.Tick,
	)
}

// reset returns to the directory prompt for another run.
func (m *Model) reset() {
	m.state = StateInput
	m.logs = nil
	m.report = nil
	m.err = nil
	m.processed = 0
	m.total = 0
	m.received = 0
	m.manager = nil
	m.events = nil
	m.cancelling = false
	m.cancel()
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.Focus()
}

// forward hands progress events to the UI. It stops delivering once the run
// context is done and nobody may be listening any more.
func (m Model) forward() func(download.ProgressEvent) {
	events, ctx := m.events, m.ctx
	return func(event download.ProgressEvent) {
		select {
		case events <- event:
		case <-ctx.Done():
		}
	}
}

// run executes the download in the background.
func (m Model) run() tea.Cmd {
	manager, events, ctx := m.manager, m.events, m.ctx
	return func() tea.Msg {
		defer close(events)
		result, err := manager.Run(ctx)
		return RunDoneMsg{Report: result, Err: err}
	}
}

// waitForEvent blocks until the next progress event. It yields nil once the
// run has finished.
func waitForEvent(events <-chan download.ProgressEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: event}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m Model) percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.processed) / float64(m.total)
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("memefetch"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download %d meme templates", m.catalog.Len())))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Destination directory:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Convert images to match file names (ctrl+o)\n", checkbox(m.convert)))
	b.WriteString(fmt.Sprintf("  %s Show skipped files (tab)\n", checkbox(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf(
		"Timeout: %s | Workers: %d", m.settings.Timeout, m.settings.MaxConcurrentDownloads)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	if m.cancelling {
		b.WriteString(warningStyle.Render("Cancelling..."))
	} else {
		b.WriteString(subtitleStyle.Render(fmt.Sprintf("Downloading into %s", m.manager.Directory())))
	}
	b.WriteString("\n\n")

	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Files: %d/%d | Downloaded: %.2f MB",
		m.processed,
		m.total,
		float64(m.received)/1024/1024,
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	b.WriteString(boxStyle.Render(strings.TrimRight(report.RenderText(m.report), "\n")))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+o: convert • tab: verbose • esc: quit"
	case StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

// Run starts the TUI application.
func Run(settings *config.Settings, memes *model.Catalog, opts ...download.Option) error {
	p := tea.NewProgram(NewModel(settings, memes, opts...), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
