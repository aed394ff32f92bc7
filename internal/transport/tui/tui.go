// Package tui implements transport.Sink as a local interactive chat
// view for the `ragcat chat` command, adapted from the teacher's
// internal/tui chat handlers and lipgloss styling (render_chat.go,
// handlers_chat.go) — kept wired to the pipeline engine instead of a
// Kibana agent conversation.
package tui

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	bodyStyle      = lipgloss.NewStyle().PaddingLeft(2)
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).Padding(0, 1)
)

// chatLine is one message currently rendered in the transcript.
type chatLine struct {
	id   string
	role string
	text string
}

type editMsg struct {
	id   string
	text string
}

type appendMsg struct {
	line chatLine
}

type model struct {
	viewport viewport.Model
	input    textinput.Model
	lines    []chatLine
	width    int
	height   int
	onSubmit func(string)
}

func newModel(onSubmit func(string)) model {
	ti := textinput.New()
	ti.Placeholder = "Ask about a log, an incident, an error..."
	ti.Focus()
	vp := viewport.New(80, 20)
	return model{input: ti, viewport: vp, onSubmit: onSubmit}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4
		m.viewport.SetContent(m.render())
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.SetValue("")
			m.lines = append(m.lines, chatLine{role: "user", text: text})
			m.viewport.SetContent(m.render())
			m.viewport.GotoBottom()
			if m.onSubmit != nil {
				m.onSubmit(text)
			}
			return m, nil
		}
	case appendMsg:
		m.lines = append(m.lines, msg.line)
		m.viewport.SetContent(m.render())
		m.viewport.GotoBottom()
		return m, nil
	case editMsg:
		for i := range m.lines {
			if m.lines[i].id == msg.id {
				m.lines[i].text = msg.text
			}
		}
		m.viewport.SetContent(m.render())
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ragcat") + "\n")
	b.WriteString(m.viewport.View() + "\n")
	b.WriteString(m.input.View())
	return b.String()
}

func (m model) render() string {
	var b strings.Builder
	for _, l := range m.lines {
		style := assistantStyle
		if l.role == "user" {
			style = userStyle
		}
		b.WriteString(style.Render(l.role) + "\n")
		b.WriteString(bodyStyle.Render(l.text) + "\n\n")
	}
	return b.String()
}

// Sink is a transport.Sink backed by a local bubbletea program.
type Sink struct {
	program *tea.Program
	mu      sync.Mutex
	nextID  int
}

// New builds a Sink. onQuestion is invoked (from the bubbletea event
// loop) whenever the operator submits a question; the caller is
// expected to drive the pipeline engine from that callback.
func New(onQuestion func(string)) *Sink {
	m := newModel(onQuestion)
	return &Sink{program: tea.NewProgram(m)}
}

// Run blocks running the interactive program until the operator quits.
func (s *Sink) Run() error {
	_, err := s.program.Run()
	return err
}

// Send appends text as an assistant line and returns its handle.
func (s *Sink) Send(ctx context.Context, chatID, text string) (string, error) {
	s.mu.Lock()
	s.nextID++
	id := strconv.Itoa(s.nextID)
	s.mu.Unlock()

	s.program.Send(appendMsg{line: chatLine{id: id, role: "assistant", text: text}})
	return id, nil
}

// Edit replaces the text of a previously sent line.
func (s *Sink) Edit(ctx context.Context, chatID, handle, text string) error {
	s.program.Send(editMsg{id: handle, text: text})
	return nil
}
