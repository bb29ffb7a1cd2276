package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	conversation "github.com/vaanilabs/vaani-core/core"
	"github.com/vaanilabs/vaani-core/core/events"
	"github.com/vaanilabs/vaani-core/core/visualizer"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4"))

	interimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4444"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// turnStateChanged carries controller state transitions onto the same event
// channel the typed session events arrive on.
type turnStateChanged struct {
	events.Base
	state conversation.TurnState
}

const kindTurnStateChanged events.Kind = "ui.turn_state_changed"

func newTurnStateChanged(state conversation.TurnState) turnStateChanged {
	return turnStateChanged{Base: events.NewBase(kindTurnStateChanged), state: state}
}

// Model is the terminal session view: a scrolling transcript, the live
// interim line, an audio meter driven by the visualizer, and a text input
// for typed turns.
type Model struct {
	conversation *conversation.Conversation
	visualizer   *visualizer.Visualizer
	events       <-chan events.Event

	spinner spinner.Model
	input   textinput.Model

	width  int
	height int

	state        conversation.TurnState
	userSpeaking bool
	audioEnergy  float64
	audioIdle    bool

	transcript   []string
	interim      string
	pendingReply string
	errorText    string
}

type eventMsg struct{ event events.Event }
type tickMsg time.Time

func NewModel(session *conversation.Conversation, viz *visualizer.Visualizer, eventStream <-chan events.Event) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	input := textinput.New()
	input.Placeholder = "type to talk, or just speak"
	input.Prompt = "> "
	input.Focus()

	return Model{
		conversation: session,
		visualizer:   viz,
		events:       eventStream,
		spinner:      s,
		input:        input,
		state:        conversation.TurnStateIdle,
		audioIdle:    true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.listenForEvents(),
		textinput.Blink,
		tick(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			m.conversation.Cancel()
			return m, nil
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text != "" {
				m.input.Reset()
				m.conversation.SubmitText(text)
			}
			return m, nil
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case eventMsg:
		m = m.handleEvent(msg.event)
		cmds = append(cmds, m.listenForEvents())

	case tickMsg:
		frame := m.visualizer.Render()
		m.audioEnergy = frame.Energy
		m.audioIdle = frame.Idle
		cmds = append(cmds, tick())
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🎙 vaani"))
	b.WriteString("\n\n")

	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderAudioLevel())
	b.WriteString("\n\n")

	b.WriteString(m.renderTranscript())
	b.WriteString("\n")

	if m.errorText != "" {
		b.WriteString(errorStyle.Render("⚠ " + m.errorText))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter to send  │  esc to interrupt  │  ctrl+c to quit"))

	return b.String()
}

func (m Model) renderStatus() string {
	var parts []string

	switch m.state {
	case conversation.TurnStateGenerating:
		parts = append(parts, m.spinner.View()+" "+activeStyle.Render("thinking"))
	case conversation.TurnStateSpeaking:
		parts = append(parts, activeStyle.Render("speaking"))
	case conversation.TurnStateListening:
		parts = append(parts, activeStyle.Render("listening"))
	default:
		parts = append(parts, statusStyle.Render("idle"))
	}

	if m.userSpeaking {
		parts = append(parts, activeStyle.Render("🎤 voice detected"))
	}

	return strings.Join(parts, "  │  ")
}

func (m Model) renderAudioLevel() string {
	barWidth := 30
	filledWidth := int(m.audioEnergy * float64(barWidth))
	if filledWidth > barWidth {
		filledWidth = barWidth
	}

	bar := strings.Repeat("█", filledWidth) + strings.Repeat("░", barWidth-filledWidth)

	indicator := "🔇"
	if !m.audioIdle {
		indicator = "🔊"
	}

	return fmt.Sprintf("%s [%s]", indicator, bar)
}

func (m Model) renderTranscript() string {
	width := m.width - 2
	if width < 20 {
		width = 78
	}

	var lines []string
	for _, entry := range m.transcript {
		lines = append(lines, wordwrap.String(entry, width))
	}
	if m.pendingReply != "" {
		lines = append(lines, wordwrap.String(assistantStyle.Render("vaani: ")+m.pendingReply, width))
	}
	if m.interim != "" {
		lines = append(lines, wordwrap.String(interimStyle.Render("… "+m.interim), width))
	}

	// Keep only what fits above the input area.
	visible := m.height - 10
	if visible > 0 && len(lines) > visible {
		lines = lines[len(lines)-visible:]
	}

	return strings.Join(lines, "\n")
}

func (m Model) handleEvent(event events.Event) Model {
	switch event := event.(type) {
	case turnStateChanged:
		m.state = event.state

	case events.UserSpeechStarted:
		m.userSpeaking = true
	case events.UserSpeechEnded:
		m.userSpeaking = false

	case events.UserTranscriptInterimUpdated:
		m.interim = event.Transcript
	case events.UserTranscriptFinal:
		m.interim = ""
		m.transcript = append(m.transcript, userStyle.Render("you: ")+event.Transcript)

	case events.TurnStarted:
		m.errorText = ""
		m.pendingReply = ""

	case events.ResponseFragment:
		if m.pendingReply != "" {
			m.pendingReply += " "
		}
		m.pendingReply += event.Text

	case events.ResponseComplete:
		m.pendingReply = ""
		m.transcript = append(m.transcript, assistantStyle.Render("vaani: ")+event.Text)

	case events.ResponseFailed:
		m.errorText = fmt.Sprintf("%s: %v", event.Class, event.Err)
		m.pendingReply = ""

	case events.TurnCancelled:
		m.pendingReply = ""
		m.transcript = append(m.transcript, statusStyle.Render("(interrupted)"))
	}

	return m
}

func (m Model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		if !ok {
			return tea.Quit()
		}
		return eventMsg{event: event}
	}
}

func tick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// RunUI runs the terminal session until the user quits.
func RunUI(session *conversation.Conversation, viz *visualizer.Visualizer, eventStream <-chan events.Event) error {
	p := tea.NewProgram(NewModel(session, viz, eventStream), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
