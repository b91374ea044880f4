// Package tui renders the radio console in the terminal: sign-on screen,
// broadcast console with transcript and world sidebar, and the sign-off
// stats screen.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/myrjola/lastbroadcast/internal/director"
	"github.com/myrjola/lastbroadcast/internal/engine"
	"github.com/myrjola/lastbroadcast/internal/errors"
	"github.com/myrjola/lastbroadcast/internal/session"
	"github.com/myrjola/lastbroadcast/internal/world"
)

type uiState int

const (
	stateSignOn uiState = iota
	stateConsole
	stateSignOff
)

var (
	hostStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1)

	callerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2).
			Foreground(lipgloss.Color("#AAAAAA"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	tickerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)
)

// Model is the bubbletea model driving the console.
type Model struct {
	state    uiState
	engine   *engine.Engine
	events   <-chan Event
	input    textinput.Model
	viewport viewport.Model
	log      string
	phase    session.Phase
	ticker   string
	stats    *director.FinalStats
	width    int
	height   int
	err      error
}

// Event carries engine notifications into the bubbletea loop.
type Event struct {
	Phase   *session.Phase
	Message *session.Message
	Ticker  string
	Stats   *director.FinalStats
}

// ChannelListener adapts engine events to a channel the TUI consumes. It is
// called with the engine lock held, so sends must not block; overflow is
// dropped rather than deadlocking the engine.
type ChannelListener struct {
	ch chan Event
}

func NewChannelListener() *ChannelListener {
	return &ChannelListener{ch: make(chan Event, 256)}
}

func (l *ChannelListener) Events() <-chan Event { return l.ch }

func (l *ChannelListener) send(e Event) {
	select {
	case l.ch <- e:
	default:
	}
}

func (l *ChannelListener) PhaseChanged(phase session.Phase) {
	l.send(Event{Phase: &phase})
}

func (l *ChannelListener) MessageAdded(message session.Message) {
	l.send(Event{Message: &message})
}

func (l *ChannelListener) TickerUpdated(line string) {
	l.send(Event{Ticker: line})
}

func (l *ChannelListener) GameEnded(stats director.FinalStats) {
	l.send(Event{Stats: &stats})
}

// NewModel builds the TUI around an engine and its event channel.
func NewModel(eng *engine.Engine, events <-chan Event) Model {
	ti := textinput.New()
	ti.Placeholder = "Enter your callsign..."
	ti.Focus()
	ti.CharLimit = 64
	ti.Width = 40

	return Model{
		state:  stateSignOn,
		engine: eng,
		events: events,
		input:  ti,
		phase:  session.PhaseSignOn,
	}
}

type engineEventMsg Event

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return engineEventMsg(<-m.events)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.handleEnter()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = int(float64(msg.Width) * 0.72)
		m.viewport.Height = msg.Height - 7
		m.viewport.SetContent(m.log)

	case engineEventMsg:
		m.applyEvent(Event(msg))
		return m, m.waitForEvent()
	}

	if m.state == stateSignOn || m.state == stateConsole {
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) applyEvent(e Event) {
	if e.Phase != nil {
		m.phase = *e.Phase
		if m.phase == session.PhaseSignOff {
			m.state = stateSignOff
		}
	}
	if e.Message != nil {
		m.appendMessage(*e.Message)
	}
	if e.Ticker != "" {
		m.ticker = e.Ticker
	}
	if e.Stats != nil {
		m.stats = e.Stats
	}
}

func (m *Model) appendMessage(message session.Message) {
	width := m.viewport.Width
	if width <= 0 {
		width = 72
	}
	var line string
	if message.Speaker == session.SpeakerPlayer {
		line = hostStyle.Width(width).Render("> " + message.Text)
	} else {
		line = callerStyle.Width(width).Render(message.Text)
	}
	m.log += line + "\n\n"
	m.viewport.SetContent(m.log)
	m.viewport.GotoBottom()
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())

	switch m.state {
	case stateSignOn:
		if text == "" {
			return m, nil
		}
		if err := m.engine.Start(text); err != nil {
			m.err = err
			return m, nil
		}
		m.state = stateConsole
		m.input.Reset()
		m.input.Placeholder = "Speak into the mic, or /answer, /broadcast, /help, /ignore, /expose"
		if m.viewport.Width == 0 {
			m.viewport = viewport.New(72, 20)
		}
		return m, nil

	case stateConsole:
		m.input.Reset()
		m.err = nil
		var err error
		switch text {
		case "":
			if m.phase == session.PhaseCallerConnected {
				err = m.engine.AnswerCall()
			}
		case "/answer":
			err = m.engine.AnswerCall()
		case "/broadcast", "/help", "/ignore", "/expose":
			err = m.engine.ChooseOutcome(choiceFor(text))
		case "/quit":
			return m, tea.Quit
		default:
			err = m.engine.SendPlayerMessage(text)
		}
		if err != nil && !errors.Is(err, engine.ErrBusy) {
			m.err = err
		}
		return m, nil
	}
	return m, nil
}

func choiceFor(command string) world.Choice {
	return world.Choice(strings.TrimPrefix(command, "/"))
}

func (m Model) View() string {
	switch m.state {
	case stateSignOn:
		prompt := titleStyle.Render("THE LAST BROADCAST") + "\n\n" +
			"The city has gone quiet. The tower still has power.\n" +
			"Choose your callsign and open the frequency:\n\n" +
			m.input.View()
		if m.err != nil {
			prompt += "\n\n" + helpStyle.Render(m.err.Error())
		}
		return "\n" + prompt + "\n"

	case stateConsole:
		main := lipgloss.JoinHorizontal(lipgloss.Top, m.viewport.View(), m.renderSidebar())
		ticker := ""
		if m.ticker != "" {
			ticker = tickerStyle.Render("NEWS: " + m.ticker)
		}
		help := helpStyle.Render("Enter answers a ringing call. /broadcast /help /ignore /expose decide. Esc quits.")
		status := ""
		if m.err != nil {
			status = helpStyle.Render(m.err.Error())
		}
		return lipgloss.JoinVertical(lipgloss.Left, main, ticker, "\n"+m.input.View(), help, status)

	case stateSignOff:
		return m.renderSignOff()
	}
	return ""
}

func (m Model) renderSidebar() string {
	w := m.engine.WorldSnapshot()
	_, round, c := m.engine.Snapshot()

	var b strings.Builder
	b.WriteString(titleStyle.Render("ON AIR") + "\n")
	fmt.Fprintf(&b, "Round %d/%d\n", round, director.MaxRounds)
	fmt.Fprintf(&b, "Phase: %s\n\n", m.phase)

	b.WriteString(titleStyle.Render("CITY") + "\n")
	fmt.Fprintf(&b, "Condition: %s\n\n", w.CityCondition)

	b.WriteString(titleStyle.Render("REPUTATION") + "\n")
	fmt.Fprintf(&b, "Honesty: %d\n", w.PlayerReputation.Honesty)
	fmt.Fprintf(&b, "Compassion: %d\n", w.PlayerReputation.Compassion)
	fmt.Fprintf(&b, "Boldness: %d\n\n", w.PlayerReputation.Boldness)

	if c != nil {
		b.WriteString(titleStyle.Render("CALLER") + "\n")
		fmt.Fprintf(&b, "%s, %d\n", c.Name, c.Age)
		fmt.Fprintf(&b, "Sounds %s\n", c.EmotionalState)
	}

	width := int(float64(m.width) * 0.25)
	if width < 20 {
		width = 20
	}
	return sidebarStyle.Width(width).Height(m.viewport.Height).Render(b.String())
}

func (m Model) renderSignOff() string {
	if m.stats == nil {
		return "\nThe signal fades...\n"
	}
	s := m.stats
	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render("SIGNING OFF") + "\n\n")
	fmt.Fprintf(&b, "Callers taken: %d\n", s.TotalCallers)
	fmt.Fprintf(&b, "Survival rate: %.0f%%\n", s.SurvivalRate)
	fmt.Fprintf(&b, "Claims broadcast: %d\n", s.BroadcastsMade)
	fmt.Fprintf(&b, "Honesty %d / Compassion %d / Boldness %d\n", s.HonestyScore, s.CompassionScore, s.BoldnessScore)
	fmt.Fprintf(&b, "\nPerformance: %d\n", s.PerformanceScore)
	fmt.Fprintf(&b, "Ending: %s\n", strings.ToUpper(string(s.EndingType)))
	b.WriteString("\n" + helpStyle.Render("Press Esc to leave the tower.") + "\n")
	return b.String()
}

// Run starts the TUI program.
func Run(eng *engine.Engine, events <-chan Event) error {
	p := tea.NewProgram(NewModel(eng, events), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, "run TUI")
	}
	return nil
}
