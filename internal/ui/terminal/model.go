// Package terminal is a bubbletea front end for the practice timer.
package terminal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"practicetimer/internal/core/model"
	"practicetimer/internal/core/phase"
	"practicetimer/internal/core/timekeeper"
)

// RefreshInterval is how often the view polls the controller.
const RefreshInterval = 250 * time.Millisecond

// Controller is the part of practice.Controller the terminal drives.
type Controller interface {
	Config() model.TimerConfig
	Snapshot() timekeeper.Snapshot
	Toggle() error
	Stop() bool
	Sync()
	UpdateConfig(config model.TimerConfig) bool
}

type refreshMsg struct{}

// Model is the bubbletea model.
type Model struct {
	controller Controller
	snapshot   timekeeper.Snapshot
	config     model.TimerConfig
	keys       keyMap
	help       help.Model
	tempo      textinput.Model
	editing    bool
	message    string
}

var (
	practiceColor = lipgloss.Color("#EBCB8B")
	restColor     = lipgloss.Color("#88C0D0")
	dimColor      = lipgloss.Color("#4C566A")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D8DEE9"))
	timerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 2)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(dimColor).Padding(0, 1)
	faintStyle   = lipgloss.NewStyle().Faint(true)
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#BF616A"))
	onStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#A3BE8C"))
)

// New creates the model around controller.
func New(controller Controller) Model {
	input := textinput.New()
	input.Prompt = "Tempo: "
	input.Placeholder = "BPM"
	input.CharLimit = 4
	input.Width = 6

	m := Model{
		controller: controller,
		keys:       defaultKeyMap(),
		help:       help.New(),
		tempo:      input,
	}
	m.refresh()
	return m
}

// Init starts the refresh loop.
func (m Model) Init() tea.Cmd {
	return scheduleRefresh()
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(RefreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

// Update handles key presses, refresh ticks and focus reports.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		m.refresh()
		return m, scheduleRefresh()
	case tea.FocusMsg:
		m.controller.Sync()
		m.refresh()
		return m, nil
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.editing {
			return m.updateTempoInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		m.message = ""
		if err := m.controller.Toggle(); err != nil {
			m.message = startFailure(err)
		}
	case key.Matches(msg, m.keys.Stop):
		m.message = ""
		m.controller.Stop()
	case key.Matches(msg, m.keys.Metronome):
		config := m.controller.Config()
		config.Metronome.Enabled = !config.Metronome.Enabled
		m.controller.UpdateConfig(config)
	case key.Matches(msg, m.keys.AutoMute):
		config := m.controller.Config()
		config.Metronome.AutoMuteRest = !config.Metronome.AutoMuteRest
		m.controller.UpdateConfig(config)
	case key.Matches(msg, m.keys.Faster):
		m.nudgeTempo(1)
	case key.Matches(msg, m.keys.Slower):
		m.nudgeTempo(-1)
	case key.Matches(msg, m.keys.EditTempo):
		m.editing = true
		m.tempo.SetValue(strconv.Itoa(m.controller.Config().Metronome.Tempo))
		m.tempo.CursorEnd()
		return m, m.tempo.Focus()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	m.refresh()
	return m, nil
}

func (m Model) updateTempoInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Commit):
		m.commitTempo()
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		m.tempo.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.tempo, cmd = m.tempo.Update(msg)
	return m, cmd
}

func (m *Model) commitTempo() {
	m.editing = false
	m.tempo.Blur()

	config := m.controller.Config()
	tempo := model.CommitTempo(m.tempo.Value(), config.Metronome.Tempo)
	if tempo != config.Metronome.Tempo {
		config.Metronome.Tempo = tempo
		m.controller.UpdateConfig(config)
	}
	m.refresh()
}

func (m *Model) nudgeTempo(delta int) {
	config := m.controller.Config()
	config.Metronome.Tempo = model.Clamp(config.Metronome.Tempo+delta, model.TempoMin, model.TempoMax)
	m.controller.UpdateConfig(config)
}

func (m *Model) refresh() {
	m.snapshot = m.controller.Snapshot()
	m.config = m.controller.Config()
}

func startFailure(err error) string {
	if errors.Is(err, timekeeper.ErrCannotStart) {
		return "Set a duration"
	}
	return err.Error()
}

// View renders the timer face, the metronome line and the key help.
func (m Model) View() string {
	view := m.snapshot.Display()

	color := practiceColor
	if m.snapshot.Phase == phase.Rest {
		color = restColor
	}

	var face strings.Builder
	face.WriteString(titleStyle.Render(m.snapshot.Title("Practice Timer")))
	face.WriteString("\n\n")
	face.WriteString(timerStyle.Foreground(color).Render(view.FormattedRemaining))
	face.WriteString("\n")
	face.WriteString(lipgloss.NewStyle().Foreground(color).Render(view.PhaseLabel))
	face.WriteString(faintStyle.Render(fmt.Sprintf("  next: %s  cycle %d", view.NextPhaseLabel, view.Cycle)))
	face.WriteString("\n")
	face.WriteString(view.Status)

	sections := []string{panelStyle.Render(face.String()), m.metronomeLine()}
	if m.editing {
		sections = append(sections, m.tempo.View())
	}
	if m.message != "" {
		sections = append(sections, messageStyle.Render(m.message))
	}
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m Model) metronomeLine() string {
	metronome := m.config.Metronome
	state := faintStyle.Render("off")
	if metronome.Enabled {
		state = onStyle.Render("on")
	}
	line := fmt.Sprintf("Metronome %s · %d BPM · %s", state, metronome.Tempo, metronome.Signature)
	if metronome.AutoMuteRest {
		line += " · muted in rest"
	}
	return line
}
