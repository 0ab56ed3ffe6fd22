// Package tui provides a Bubble Tea terminal user interface that creates a
// metadata record from a map link and renders it.
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

	"github.com/handiism/topoart/internal/config"
	"github.com/handiism/topoart/internal/metadata"
	"github.com/handiism/topoart/internal/model"
	"github.com/handiism/topoart/internal/pipeline"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0BBCD6")).
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

	artworkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateRendering
	StateComplete
	StateError
)

const (
	inputLink = iota
	inputCountry
	inputCount
)

const maxLogs = 10

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   pipeline.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	inputs   []textinput.Model
	focus    int
	spinner  spinner.Model
	progress progress.Model
	settings *config.Settings
	logs     []LogEntry
	artworks []string
	record   model.Artwork
	err      error

	ctx    context.Context
	cancel context.CancelFunc

	manager *pipeline.Manager
	events  chan pipeline.ProgressEvent

	renderedFrames int32
	totalFrames    int32

	// Options
	sweep   bool
	reverse bool
	fetch   bool
	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model rendering with settings.
func NewModel(settings *config.Settings) Model {
	link := textinput.New()
	link.Placeholder = "https://www.google.com/maps/place/Mount+Rainier/@46.8523,-121.7603,13z"
	link.Focus()
	link.CharLimit = 500
	link.Width = 60

	country := textinput.New()
	country.Placeholder = metadata.DefaultCountry
	country.CharLimit = 100
	country.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#0BBCD6"))

	prog := progress.New(progress.WithGradient("#340B0B", "#0BBCD6"))
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:    StateInput,
		inputs:   []textinput.Model{link, country},
		spinner:  sp,
		progress: prog,
		settings: settings,
		logs:     make([]LogEntry, 0),
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan pipeline.ProgressEvent, 64),
		fetch:    true,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one event from the render manager.
	ProgressMsg struct {
		Event pipeline.ProgressEvent
	}

	// InitDoneMsg is sent once the record is saved and the manager is ready.
	InitDoneMsg struct {
		Record   model.Artwork
		Artworks []string
		Manager  *pipeline.Manager
		Err      error
	}

	// RenderDoneMsg is sent when the render finishes.
	RenderDoneMsg struct {
		Rendered int32
		Total    int32
		Err      error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// kind returns the artwork kind selected by the toggles.
func (m Model) kind() model.Kind {
	switch {
	case m.sweep && m.reverse:
		return model.KindReverseSweep
	case m.sweep:
		return model.KindSweep
	default:
		return model.KindStatic
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
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
			if m.state == StateRendering || m.state == StateInitializing {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "tab", "shift+tab", "up", "down":
			if m.state == StateInput {
				m.focusInput((m.focus + 1) % inputCount)
				return m, nil
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.inputs[inputLink].Value()) != "" {
				m.state = StateInitializing
				return m, tea.Batch(m.createRecord(), m.spinner.Tick)
			}

		case "ctrl+g":
			if m.state == StateInput {
				m.sweep = !m.sweep
				return m, nil
			}

		case "ctrl+r":
			if m.state == StateInput {
				m.reverse = !m.reverse
				if m.reverse {
					m.sweep = true
				}
				return m, nil
			}

		case "ctrl+f":
			if m.state == StateInput {
				m.fetch = !m.fetch
				return m, nil
			}

		case "ctrl+e":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "n":
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
		cmds = append(cmds, m.waitForEvent())
		if msg.Event.Level == pipeline.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{Message: msg.Event.Message, Level: msg.Event.Level})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case InitDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.record = msg.Record
			m.artworks = msg.Artworks
			m.manager = msg.Manager
			m.state = StateRendering
			cmds = append(cmds, m.startRender(), m.tickProgress())
		}

	case RenderDoneMsg:
		m.renderedFrames = msg.Rendered
		m.totalFrames = msg.Total
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateRendering {
			m.renderedFrames, m.totalFrames = m.manager.GetProgress()
			var percent float64
			if m.totalFrames > 0 {
				percent = float64(m.renderedFrames) / float64(m.totalFrames)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) focusInput(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

func (m *Model) reset() {
	m.state = StateInput
	m.logs = nil
	m.artworks = nil
	m.record = model.Artwork{}
	m.err = nil
	m.renderedFrames = 0
	m.totalFrames = 0
	m.manager = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.focusInput(inputLink)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent delivers the next manager event as a ProgressMsg.
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return ProgressMsg{Event: <-events}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("⛰ topoart"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Contour art from elevation data"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateRendering:
		b.WriteString(m.viewRendering())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func check(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Map link:"))
	b.WriteString("\n")
	b.WriteString(m.inputs[inputLink].View())
	b.WriteString("\n\n")
	b.WriteString(subtitleStyle.Render("Country:"))
	b.WriteString("\n")
	b.WriteString(m.inputs[inputCountry].View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Animated sweep (ctrl+g)\n", check(m.sweep)))
	b.WriteString(fmt.Sprintf("  %s Reverse sweep (ctrl+r)\n", check(m.reverse)))
	b.WriteString(fmt.Sprintf("  %s Fetch missing DEM (ctrl+f)\n", check(m.fetch)))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+e)\n", check(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Metadata: %s  Output: %s", m.settings.MetadataPath, m.settings.OutputDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Creating record..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewRendering() string {
	var b strings.Builder

	if len(m.artworks) > 0 {
		for _, name := range m.artworks {
			b.WriteString(artworkStyle.Render("  ▲ " + name))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	var percent float64
	if m.totalFrames > 0 {
		percent = float64(m.renderedFrames) / float64(m.totalFrames)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Frames: %d/%d", m.renderedFrames, m.totalFrames)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	out := m.record.Dir(m.settings.OutputDir)
	box := boxStyle.Render(fmt.Sprintf(
		"✨ Render Complete!\n\n"+
			"Record: %s\n"+
			"Type: %s\n"+
			"Frames: %d\n"+
			"Output: %s",
		m.record.DisplayName(),
		m.record.Kind,
		m.renderedFrames,
		out,
	))
	b.WriteString(box)

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case pipeline.LevelError:
			style = errorStyle
			prefix = "✗"
		case pipeline.LevelWarning:
			style = warningStyle
			prefix = "!"
		case pipeline.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case pipeline.LevelInfo:
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
		return "enter: create & render • tab: next field • ctrl+g: sweep • ctrl+r: reverse • esc: quit"
	case StateInitializing, StateRendering:
		return "esc: cancel"
	case StateComplete, StateError:
		return "n: new record • q: quit"
	}
	return ""
}

// createRecord appends a record for the entered link to the metadata store
// and prepares a manager to render it.
func (m *Model) createRecord() tea.Cmd {
	link := m.inputs[inputLink].Value()
	country := strings.TrimSpace(m.inputs[inputCountry].Value())
	kind := m.kind()
	settings := *m.settings
	settings.FetchMissingDEM = m.fetch
	ctx := m.ctx
	events := m.events

	return func() tea.Msg {
		art, err := metadata.NewRecordFromMapsURL(link, country, settings.DEMDir, kind)
		if err != nil {
			return InitDoneMsg{Err: err}
		}

		store, err := metadata.Open(settings.MetadataPath)
		if err != nil {
			return InitDoneMsg{Err: err}
		}
		art = store.Append(art)
		if err := store.Save(ctx); err != nil {
			return InitDoneMsg{Err: err}
		}

		manager, err := pipeline.NewManager(&settings, func(event pipeline.ProgressEvent) {
			select {
			case events <- event:
			default:
			}
		})
		if err != nil {
			return InitDoneMsg{Err: err}
		}
		manager.Add(art)

		return InitDoneMsg{
			Record:   art,
			Artworks: manager.GetArtworkNames(),
			Manager:  manager,
		}
	}
}

// startRender renders the new record in the background.
func (m *Model) startRender() tea.Cmd {
	manager := m.manager
	ctx := m.ctx
	return tea.Batch(m.waitForEvent(), func() tea.Msg {
		if manager == nil {
			return RenderDoneMsg{Err: fmt.Errorf("no manager")}
		}

		err := manager.StartRenders(ctx)
		rendered, total := manager.GetProgress()

		return RenderDoneMsg{
			Rendered: rendered,
			Total:    total,
			Err:      err,
		}
	})
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
