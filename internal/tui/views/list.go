// Package views provides TUI view components for the interviewer application.
package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/interviewer-dev/interviewer/internal/api"
	"github.com/interviewer-dev/interviewer/internal/i18n"
	"github.com/interviewer-dev/interviewer/internal/tui"
)

// ============================================================================
// InterviewItem
// ============================================================================

// InterviewItem implements list.Item for the interview picker.
type InterviewItem struct {
	interview api.Interview
	desc      string
}

// Title returns the interview title for list display.
func (i InterviewItem) Title() string {
	return i.interview.Title
}

// Description returns the level, size and duration line.
func (i InterviewItem) Description() string {
	return i.desc
}

// FilterValue returns the value used for filtering in the list.
func (i InterviewItem) FilterValue() string {
	return i.interview.Title + " " + i.interview.ID
}

// ============================================================================
// ListModel
// ============================================================================

// listChrome is the number of rows the box border, padding and key hint add
// around the list.
const listChrome = 6

// ListModel is the interview picker shown when no interview id was given.
type ListModel struct {
	tr      *i18n.Translator
	keys    tui.KeyMap
	list    list.Model
	loading bool
	Err     error
	width   int
	height  int
}

// NewListModel creates a ListModel waiting for its first page.
func NewListModel(tr *i18n.Translator, width, height int) ListModel {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(tui.SelectedStyle.GetForeground()).
		BorderForeground(tui.SelectedStyle.GetForeground())
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(tui.NormalStyle.GetForeground())

	l := list.New(nil, delegate, 0, 0)
	l.Title = tr.T("interviews.title")
	l.Styles.Title = tui.TitleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.KeyMap.CursorUp = tui.DefaultKeyMap.Up
	l.KeyMap.CursorDown = tui.DefaultKeyMap.Down
	// Leaving the picker is the app's decision.
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	m := ListModel{
		tr:      tr,
		keys:    tui.DefaultKeyMap,
		list:    l,
		loading: true,
		width:   width,
		height:  height,
	}
	m.resize()
	return m
}

// SetInterviews replaces the list contents.
func (m *ListModel) SetInterviews(interviews []api.Interview) tea.Cmd {
	items := make([]list.Item, len(interviews))
	for i, iv := range interviews {
		items[i] = InterviewItem{interview: iv, desc: m.describe(iv)}
	}
	m.loading = false
	m.Err = nil
	return m.list.SetItems(items)
}

// SetError shows a fetch failure.
func (m *ListModel) SetError(err error) {
	m.loading = false
	m.Err = err
}

// Selected returns the highlighted interview.
func (m ListModel) Selected() (api.Interview, bool) {
	item, ok := m.list.SelectedItem().(InterviewItem)
	if !ok {
		return api.Interview{}, false
	}
	return item.interview, true
}

// Update handles messages for the list view.
func (m ListModel) Update(msg tea.Msg) (ListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// While the filter is being typed, every key belongs to it.
		if m.list.FilterState() != list.Filtering {
			if cmd, handled := m.handleKey(msg); handled {
				return m, cmd
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m ListModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Enter):
		iv, ok := m.Selected()
		if !ok {
			return nil, true
		}
		return func() tea.Msg {
			return tui.StartInterviewMsg{InterviewID: iv.ID}
		}, true

	case key.Matches(msg, m.keys.Back):
		// Esc first clears an applied filter.
		if m.list.FilterState() == list.FilterApplied {
			return nil, false
		}
		return goHome, true

	case msg.String() == "q":
		return goHome, true
	}
	return nil, false
}

func goHome() tea.Msg {
	return tui.GoHomeMsg{}
}

func (m ListModel) describe(iv api.Interview) string {
	parts := []string{
		m.tr.T("difficulty." + iv.Level.String()),
		m.tr.Tf("interviews.questionCount", map[string]any{"count": len(iv.Questions)}),
	}
	if iv.DurationMinutes > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", iv.DurationMinutes, m.tr.T("interviews.minutes")))
	}
	return strings.Join(parts, " · ")
}

func (m *ListModel) resize() {
	h := m.height - listChrome
	if h < 5 {
		h = 5
	}
	m.list.SetSize(m.boxWidth()-4, h)
}

func (m ListModel) boxWidth() int {
	w := m.width - 4
	if w > maxBoxWidth {
		w = maxBoxWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

// View renders the list view.
func (m ListModel) View(spinnerView string) string {
	var b strings.Builder

	switch {
	case m.loading:
		b.WriteString(tui.TitleStyle.Render(m.tr.T("interviews.title")) + "\n\n")
		b.WriteString(spinnerView + " " + m.tr.T("common.loading"))
	case m.Err != nil:
		b.WriteString(tui.TitleStyle.Render(m.tr.T("interviews.title")) + "\n\n")
		b.WriteString(tui.ErrorStyle.Render(m.tr.T("common.error") + " " + api.DetailOrError(m.Err)))
	case len(m.list.Items()) == 0:
		b.WriteString(tui.TitleStyle.Render(m.tr.T("interviews.title")) + "\n\n")
		b.WriteString(tui.DimStyle.Render(m.tr.T("interviews.empty")))
	default:
		b.WriteString(m.list.View())
	}

	b.WriteString("\n\n")
	b.WriteString(tui.DimStyle.Render("↑↓ · " + m.tr.T("keys.filter") + " · " + m.tr.T("keys.start") + " · q"))

	boxed := tui.BoxStyle.Width(m.boxWidth()).Render(b.String())

	contentHeight := lipgloss.Height(boxed)
	if m.height > contentHeight {
		padding := (m.height - contentHeight) / 3
		if padding > 0 {
			boxed = strings.Repeat("\n", padding) + boxed
		}
	}
	return boxed
}
