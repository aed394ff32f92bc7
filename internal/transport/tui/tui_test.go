package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ragcat-dev/ragcat/internal/transport"
)

var _ transport.Sink = (*Sink)(nil)

func TestModel_RenderIncludesAppendedLines(t *testing.T) {
	t.Parallel()
	m := newModel(nil)
	m.lines = append(m.lines, chatLine{id: "1", role: "assistant", text: "hello operator"})
	out := m.render()
	if !strings.Contains(out, "hello operator") {
		t.Errorf("render() = %q, want it to contain the message text", out)
	}
}

func TestModel_SubmitAppendsUserLineAndCallsOnSubmit(t *testing.T) {
	t.Parallel()
	var got string
	m := newModel(func(q string) { got = q })
	m.input.SetValue("what broke?")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	mm := updated.(model)

	if got != "what broke?" {
		t.Errorf("onSubmit question = %q, want %q", got, "what broke?")
	}
	if len(mm.lines) != 1 || mm.lines[0].role != "user" || mm.lines[0].text != "what broke?" {
		t.Errorf("lines = %+v, want a single user line with the submitted text", mm.lines)
	}
	if mm.input.Value() != "" {
		t.Errorf("input value = %q, want cleared after submit", mm.input.Value())
	}
}

func TestModel_EditUpdatesExistingLine(t *testing.T) {
	t.Parallel()
	m := newModel(nil)
	m.lines = []chatLine{{id: "1", role: "assistant", text: "thinking..."}}
	updated, _ := m.Update(editMsg{id: "1", text: "done"})
	mm := updated.(model)
	if mm.lines[0].text != "done" {
		t.Errorf("lines[0].text = %q, want done", mm.lines[0].text)
	}
}
