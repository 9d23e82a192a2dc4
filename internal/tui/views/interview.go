package views

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/interviewer-dev/interviewer/internal/i18n"
	"github.com/interviewer-dev/interviewer/internal/session"
	"github.com/interviewer-dev/interviewer/internal/tui"
)

// ============================================================================
// InterviewModel
// ============================================================================

// maxBoxWidth is the maximum width for boxed screens.
const maxBoxWidth = 90

// InterviewModel renders one session. It owns the answer textarea; the
// controller owns everything else and is mirrored in through Sync.
type InterviewModel struct {
	tr         *i18n.Translator
	keys       tui.KeyMap
	answer     textarea.Model
	snap       session.Snapshot
	questionID string
	loaded     string // draft last copied into the answer box
	notice     string
	escPending bool
	width      int
	height     int
}

// NewInterviewModel creates an InterviewModel in the loading state.
func NewInterviewModel(tr *i18n.Translator, width, height int) InterviewModel {
	ta := textarea.New()
	ta.Placeholder = tr.T("interviews.answerPlaceholder")
	ta.ShowLineNumbers = false
	ta.CharLimit = 10000
	ta.SetHeight(8)

	m := InterviewModel{
		tr:     tr,
		keys:   tui.DefaultKeyMap,
		answer: ta,
		width:  width,
		height: height,
	}
	m.resize()
	return m
}

// Init returns the initial command for the interview view.
func (m InterviewModel) Init() tea.Cmd {
	return textarea.Blink
}

// Sync mirrors a controller snapshot into the view. The answer box is reset
// when the cursor lands on a different question, or when the draft changed
// underneath an answer box the user has not touched (drafts restored after
// the first sync). Typing is never overwritten by its own echo.
func (m *InterviewModel) Sync(snap session.Snapshot) {
	m.snap = snap
	if snap.Interview != nil && len(snap.Interview.Questions) > 0 {
		q := snap.Interview.Questions[snap.Cursor]
		draft := snap.Drafts[q.ID]
		untouched := m.answer.Value() == m.loaded
		if q.ID != m.questionID || (untouched && draft != m.loaded) {
			m.questionID = q.ID
			m.loaded = draft
			m.answer.SetValue(draft)
			m.answer.CursorEnd()
		}
	}
	if snap.State.Editable() {
		m.answer.Focus()
	} else {
		m.answer.Blur()
	}
}

// SetNotice shows a transient message under the answer box.
func (m *InterviewModel) SetNotice(notice string) {
	m.notice = notice
}

// QuestionID returns the id of the question being edited.
func (m InterviewModel) QuestionID() string {
	return m.questionID
}

// Value returns the text in the answer box.
func (m InterviewModel) Value() string {
	return m.answer.Value()
}

// Update handles messages for the interview view.
func (m InterviewModel) Update(msg tea.Msg) (InterviewModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tui.EscResetMsg:
		m.escPending = false
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			if m.escPending {
				// Second press - leave the session
				return m, func() tea.Msg { return tui.GoHomeMsg{} }
			}
			// First press - set pending and start timeout
			m.escPending = true
			return m, tea.Tick(time.Second, func(time.Time) tea.Msg {
				return tui.EscResetMsg{}
			})

		case key.Matches(msg, m.keys.Next):
			return m, navigate(1)

		case key.Matches(msg, m.keys.Prev):
			return m, navigate(-1)

		case key.Matches(msg, m.keys.Submit):
			return m, func() tea.Msg { return tui.SubmitRequestMsg{} }
		}

		if !m.snap.State.Editable() {
			return m, nil
		}
		m.notice = ""
	}

	m.answer, cmd = m.answer.Update(msg)
	return m, cmd
}

func navigate(delta int) tea.Cmd {
	return func() tea.Msg { return tui.NavigateMsg{Delta: delta} }
}

func (m *InterviewModel) resize() {
	w := m.boxWidth() - 6
	if w < 20 {
		w = 20
	}
	m.answer.SetWidth(w)
}

func (m InterviewModel) boxWidth() int {
	w := m.width - 4
	if w > maxBoxWidth {
		w = maxBoxWidth
	}
	return w
}

// View renders the interview view.
func (m InterviewModel) View(spinnerView string) string {
	var content string
	switch m.snap.State {
	case session.StateIdle, session.StateLoading:
		content = spinnerView + " " + m.tr.T("common.loading")
	case session.StateLoadFailed:
		content = m.renderLoadFailed()
	case session.StateCompleted:
		content = m.renderCompleted()
	default:
		content = m.renderQuestion(spinnerView)
	}

	return tui.BoxStyle.Width(m.boxWidth()).Render(content)
}

func (m InterviewModel) renderLoadFailed() string {
	var b strings.Builder
	b.WriteString(tui.TitleStyle.Render(m.tr.T("interviews.title")))
	b.WriteString("\n\n")
	b.WriteString(tui.ErrorStyle.Render(errorMessage(m.snap.Err, m.tr)))
	b.WriteString("\n\n")
	b.WriteString(tui.DimStyle.Render(m.tr.T("keys.quit")))
	return b.String()
}

func (m InterviewModel) renderCompleted() string {
	var b strings.Builder
	b.WriteString(tui.SuccessStyle.Bold(true).Render("✓ " + m.tr.T("interviews.completed")))
	b.WriteString("\n\n")
	b.WriteString(m.tr.T("interviews.answersSubmitted"))
	if m.snap.Result != nil {
		fmt.Fprintf(&b, "\n\n%s: %s", m.tr.T("reports.score"), formatScore(m.snap.Result.Report.Score))
	}
	b.WriteString("\n\n")
	b.WriteString(tui.DimStyle.Render(m.tr.T("keys.report") + " · " + m.tr.T("keys.quit")))
	return b.String()
}

func (m InterviewModel) renderQuestion(spinnerView string) string {
	var b strings.Builder
	iv := m.snap.Interview
	q := iv.Questions[m.snap.Cursor]
	total := len(iv.Questions)

	// Header
	b.WriteString(tui.TitleStyle.Render(iv.Title))
	b.WriteString(" ")
	b.WriteString(tui.LevelBadge(iv.Level, m.tr.T("difficulty."+iv.Level.String())))
	if iv.DurationMinutes > 0 {
		b.WriteString(tui.DimStyle.Render(fmt.Sprintf("  %s: %d %s",
			m.tr.T("interviews.duration"), iv.DurationMinutes, m.tr.T("interviews.minutes"))))
	}
	b.WriteString("\n\n")

	// Progress
	position := m.tr.Tf("interviews.questionNumber", map[string]any{"number": m.snap.Cursor + 1, "total": total})
	b.WriteString(tui.DimStyle.Render(position))
	b.WriteString("  ")
	b.WriteString(tui.ProgressBar(m.snap.Cursor+1, total, 20))
	answered := 0
	for _, text := range m.snap.Drafts {
		if strings.TrimSpace(text) != "" {
			answered++
		}
	}
	b.WriteString("  ")
	b.WriteString(tui.DimStyle.Render(m.tr.Tf("interviews.answered", map[string]any{"answered": answered, "total": len(m.snap.Drafts)})))
	b.WriteString("\n\n")

	// Question
	b.WriteString(tui.LevelBadge(q.Level, m.tr.T("difficulty."+q.Level.String())))
	b.WriteString("\n")
	b.WriteString(tui.QuestionStyle.Width(m.boxWidth() - 6).Render(q.Text))
	b.WriteString("\n\n")

	// Answer
	b.WriteString(tui.DimStyle.Render(m.tr.T("interviews.yourAnswer")))
	b.WriteString("\n")
	b.WriteString(m.answer.View())
	b.WriteString("\n\n")

	// Banners
	switch {
	case m.snap.State == session.StateSubmitting:
		b.WriteString(spinnerView + " " + m.tr.T("interviews.submitting"))
		b.WriteString("\n\n")
	case m.snap.State == session.StateSubmitFailed && m.snap.Err != nil:
		b.WriteString(tui.ErrorStyle.Render(errorMessage(m.snap.Err, m.tr)))
		b.WriteString("\n\n")
	}
	if m.notice != "" {
		b.WriteString(tui.WarningStyle.Render(m.notice))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderFooter(total))
	return b.String()
}

func (m InterviewModel) renderFooter(total int) string {
	var hints []string
	if m.snap.Cursor > 0 {
		hints = append(hints, m.tr.T("keys.prev"))
	}
	if m.snap.Cursor < total-1 {
		hints = append(hints, m.tr.T("keys.next"))
	} else {
		submit := m.tr.T("keys.submit")
		if m.snap.State == session.StateSubmitFailed {
			submit = m.tr.T("keys.retry")
		}
		if m.snap.CanSubmit {
			hints = append(hints, tui.SuccessStyle.Render(submit))
		} else {
			hints = append(hints, submit)
		}
	}

	footer := tui.DimStyle.Render(strings.Join(hints, " · ")) + tui.DimStyle.Render(" · ")
	if m.escPending {
		footer += lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Render(m.tr.T("keys.quit"))
	} else {
		footer += tui.DimStyle.Render(m.tr.T("keys.quit"))
	}
	return footer
}

// errorMessage renders a session error in the user's language.
func errorMessage(err error, tr *i18n.Translator) string {
	var loadErr *session.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Message(tr)
	}
	var submitErr *session.SubmitError
	if errors.As(err, &submitErr) {
		return submitErr.Message(tr)
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func formatScore(score float64) string {
	if score == float64(int(score)) {
		return fmt.Sprintf("%d", int(score))
	}
	return fmt.Sprintf("%.1f", score)
}
