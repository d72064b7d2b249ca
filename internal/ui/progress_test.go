package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"docprint/internal/driver"
)

func TestProgressModel_TracksEvents(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("printing docs", []string{"a.json", "b.yaml"}, events).(*progressModel)

	m.Update(eventMsg{File: "a.json", Stage: driver.StagePrint, Status: driver.StatusWorking})
	if got := m.items[0].status; got != "printing" {
		t.Fatalf("status = %q, want printing", got)
	}
	if got := m.percent(); got != 0.3 {
		t.Fatalf("percent = %v, want 0.3", got)
	}

	m.Update(eventMsg{File: "a.json", Stage: driver.StagePrint, Status: driver.StatusDone})
	m.Update(eventMsg{File: "b.yaml", Stage: driver.StageDecode, Status: driver.StatusError, Err: errors.New("boom")})
	if got := m.percent(); got != 1.0 {
		t.Fatalf("percent = %v, want 1", got)
	}

	m.Update(eventMsg{File: "unknown.json", Status: driver.StatusDone})

	view := m.View()
	for _, want := range []string{"printing docs", "a.json", "b.yaml", "done", "error"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestProgressModel_QuitsWhenEventsClose(t *testing.T) {
	events := make(chan driver.Event)
	close(events)
	m := NewProgressModel("x", []string{"a.json"}, events).(*progressModel)

	msg := m.listenForEvent()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("msg = %T, want doneMsg", msg)
	}
	m.Update(msg)
	if !m.done {
		t.Fatal("model should be done")
	}
	if !strings.Contains(m.View(), "done: x") {
		t.Fatalf("view: %s", m.View())
	}
}

func TestProgressModel_CtrlCInterrupts(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("x", []string{"a.json"}, events)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("ctrl+c should quit the program")
	}
	if !Interrupted(next) {
		t.Fatal("model should report the interrupt")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if cmd != nil {
		t.Fatal("other keys are ignored")
	}
}

func TestProgressModel_QuitAfterDoneIsNotAnInterrupt(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("x", []string{"a.json"}, events)
	m.Update(doneMsg{})
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if Interrupted(next) {
		t.Fatal("a finished batch was not interrupted")
	}
}
