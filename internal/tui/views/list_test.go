package views

import (
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/interviewer-dev/interviewer/internal/api"
	"github.com/interviewer-dev/interviewer/internal/i18n"
	"github.com/interviewer-dev/interviewer/internal/tui"
)

func sampleInterviews(n int) []api.Interview {
	out := make([]api.Interview, n)
	for i := range out {
		out[i] = api.Interview{
			ID:              fmt.Sprintf("iv-%02d", i),
			Title:           fmt.Sprintf("Interview %02d", i),
			Level:           api.Middle,
			DurationMinutes: 30,
			Questions:       []api.Question{{ID: "q1"}, {ID: "q2"}},
		}
	}
	return out
}

func newTestList(width, height, n int) ListModel {
	m := NewListModel(i18n.MustNew(i18n.English), width, height)
	m.SetInterviews(sampleInterviews(n))
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestListFitsTerminal(t *testing.T) {
	m := newTestList(80, 20, 50)
	for i := 0; i < 45; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}

	iv, ok := m.Selected()
	if !ok || iv.ID != "iv-45" {
		t.Fatalf("expected iv-45 selected, got %q (ok=%v)", iv.ID, ok)
	}

	view := m.View("")
	if h := lipgloss.Height(view); h > 20 {
		t.Errorf("view is %d rows tall, terminal has 20", h)
	}
	if !strings.Contains(view, "Interview 45") {
		t.Errorf("selected interview is not on screen:\n%s", view)
	}
}

func TestListFollowsResize(t *testing.T) {
	m := newTestList(80, 40, 50)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 60, Height: 12})

	if h := lipgloss.Height(m.View("")); h > 12 {
		t.Errorf("view is %d rows tall after shrinking to 12", h)
	}
}

func TestListDescribesInterview(t *testing.T) {
	m := newTestList(80, 24, 1)
	view := m.View("")
	if !strings.Contains(view, "Middle · 2 questions · 30 min") {
		t.Errorf("missing description line:\n%s", view)
	}
}

func TestListEnterStartsSelected(t *testing.T) {
	m := newTestList(80, 24, 3)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter returned no command")
	}
	start, ok := cmd().(tui.StartInterviewMsg)
	if !ok || start.InterviewID != "iv-01" {
		t.Errorf("expected StartInterviewMsg for iv-01, got %#v", start)
	}
}

func TestListFilterOwnsKeys(t *testing.T) {
	m := newTestList(80, 24, 3)

	m, _ = m.Update(runes("/"))
	if m.list.FilterState() != list.Filtering {
		t.Fatalf("expected filtering, got %v", m.list.FilterState())
	}

	// q is filter text, not a way out.
	m, _ = m.Update(runes("q"))
	if m.list.FilterState() != list.Filtering {
		t.Fatalf("q left the filter: %v", m.list.FilterState())
	}
	if got := m.list.FilterValue(); got != "q" {
		t.Errorf("expected filter text %q, got %q", "q", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.list.FilterState() != list.Unfiltered {
		t.Errorf("esc should cancel the filter, got %v", m.list.FilterState())
	}
}

func TestListEscGoesHomeWhenUnfiltered(t *testing.T) {
	m := newTestList(80, 24, 3)

	for _, k := range []tea.KeyMsg{{Type: tea.KeyEsc}, runes("q")} {
		_, cmd := m.Update(k)
		if cmd == nil {
			t.Fatalf("%s returned no command", k)
		}
		if _, ok := cmd().(tui.GoHomeMsg); !ok {
			t.Errorf("%s should go home", k)
		}
	}
}

func TestListStatesWithoutItems(t *testing.T) {
	tr := i18n.MustNew(i18n.English)

	m := NewListModel(tr, 80, 24)
	if !strings.Contains(m.View("*"), "* Loading") {
		t.Errorf("loading view missing spinner:\n%s", m.View("*"))
	}

	m.SetInterviews(nil)
	if !strings.Contains(m.View(""), tr.T("interviews.empty")) {
		t.Errorf("empty view missing notice:\n%s", m.View(""))
	}

	m.SetError(fmt.Errorf("boom"))
	if !strings.Contains(m.View(""), "boom") {
		t.Errorf("error view missing detail:\n%s", m.View(""))
	}
}
