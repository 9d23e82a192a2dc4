package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interviewer-dev/interviewer/internal/api"
	"github.com/interviewer-dev/interviewer/internal/i18n"
	"github.com/interviewer-dev/interviewer/internal/log"
	"github.com/interviewer-dev/interviewer/internal/session"
	"github.com/interviewer-dev/interviewer/internal/store"
	"github.com/interviewer-dev/interviewer/internal/testutil"
	"github.com/interviewer-dev/interviewer/internal/tui"
)

type harness struct {
	fake  *testutil.FakeAPI
	store *store.Store
	log   *log.Logger
	tr    *i18n.Translator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()

	st, err := store.NewStore(filepath.Join(dir, "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	lg, err := log.NewLogger(dir)
	require.NoError(t, err)

	fake := testutil.NewFakeAPI(t)
	fake.AddInterview(testutil.Interview("iv-1", "q1", "q2"))
	fake.AddInterview(testutil.Interview("iv-2", "q3"))

	return &harness{fake: fake, store: st, log: lg, tr: i18n.MustNew(i18n.English)}
}

func (h *harness) app(t *testing.T, interviewID string, resume bool) *App {
	t.Helper()
	a := New(Options{
		Client:       h.fake.Client(t),
		Tr:           h.tr,
		Store:        h.store,
		Log:          h.log,
		ResumeDrafts: resume,
		InterviewID:  interviewID,
	})
	t.Cleanup(a.Close)
	settle(t, a, a.Init())
	return a
}

// exec runs cmd and flattens batches. Only commands that return promptly
// may be passed in; timers are never run.
func exec(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("command did not return")
	}

	switch msg := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, exec(t, c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

// settle runs cmd and feeds every app message it produces back into a,
// following the chain. Other messages (ticks, quit) are returned.
func settle(t *testing.T, a *App, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var rest []tea.Msg
	for _, msg := range exec(t, cmd) {
		switch msg.(type) {
		case tui.InterviewsLoadedMsg, tui.InterviewsErrorMsg, tui.StartInterviewMsg,
			tui.SessionLoadedMsg, tui.SessionLoadFailedMsg, tui.SessionClosedMsg,
			tui.NavigateMsg, tui.SubmitRequestMsg, tui.SubmitDoneMsg, tui.SubmitFailedMsg,
			tui.DraftsSavedMsg, tui.ReportLoadedMsg, tui.ReportErrorMsg, tui.GoHomeMsg:
			_, next := a.Update(msg)
			rest = append(rest, settle(t, a, next)...)
		default:
			rest = append(rest, msg)
		}
	}
	return rest
}

func press(a *App, k tea.KeyMsg) tea.Cmd {
	_, cmd := a.Update(k)
	return cmd
}

func typeText(a *App, s string) {
	press(a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

var (
	keyNext   = tea.KeyMsg{Type: tea.KeyCtrlN}
	keySubmit = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyEsc    = tea.KeyMsg{Type: tea.KeyEsc}
	keyEnter  = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown   = tea.KeyMsg{Type: tea.KeyDown}
	keyCtrlC  = tea.KeyMsg{Type: tea.KeyCtrlC}
)

func hasQuit(msgs []tea.Msg) bool {
	for _, m := range msgs {
		if _, ok := m.(tea.QuitMsg); ok {
			return true
		}
	}
	return false
}

func TestSessionFromLoadToReport(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, "iv-1", false)

	ctrl := a.Session()
	require.NotNil(t, ctrl)
	require.Equal(t, session.StateReady, ctrl.State())
	assert.Contains(t, a.View(), "Question q1")

	typeText(a, "A")
	assert.Equal(t, "A", ctrl.Draft("q1"))

	settle(t, a, press(a, keyNext))
	assert.Equal(t, 1, ctrl.Cursor())
	assert.Contains(t, a.View(), "Question q2")

	typeText(a, "B")
	settle(t, a, press(a, keySubmit))

	assert.Equal(t, session.StateCompleted, ctrl.State())
	assert.Equal(t, [][]api.Answer{{
		{QuestionID: "q1", UserAnswer: "A"},
		{QuestionID: "q2", UserAnswer: "B"},
	}}, h.fake.Submissions("iv-1"))

	assert.Equal(t, tui.StateReport, a.model.State)
	assert.Contains(t, a.View(), "rep-1")

	attempts, err := h.store.ListAttempts(10)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, store.StatusCompleted, attempts[0].Status)
	assert.Equal(t, "rep-1", attempts[0].ReportID)
	assert.Equal(t, "Interview iv-1", attempts[0].Title)

	// Esc goes back to the completed screen, Enter reopens the report.
	settle(t, a, press(a, keyEsc))
	assert.Equal(t, tui.StateSession, a.model.State)
	assert.Contains(t, a.View(), h.tr.T("interviews.completed"))

	settle(t, a, press(a, keyEnter))
	assert.Equal(t, tui.StateReport, a.model.State)
}

func TestSubmitWithBlankAnswerShowsNotice(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, "iv-1", false)

	typeText(a, "A")
	settle(t, a, press(a, keyNext))
	settle(t, a, press(a, keySubmit))

	assert.Equal(t, session.StateReady, a.Session().State())
	assert.Empty(t, h.fake.Submissions("iv-1"))
	assert.Contains(t, a.View(), h.tr.T("interviews.incomplete"))
}

func TestSubmitFailureKeepsAnswersForRetry(t *testing.T) {
	h := newHarness(t)
	h.fake.FailSubmit(500, "")
	a := h.app(t, "iv-1", false)
	ctrl := a.Session()

	typeText(a, "A")
	settle(t, a, press(a, keyNext))
	typeText(a, "B")
	settle(t, a, press(a, keySubmit))

	assert.Equal(t, session.StateSubmitFailed, ctrl.State())
	assert.Equal(t, tui.StateSession, a.model.State)
	assert.Equal(t, "A", ctrl.Draft("q1"))
	assert.Equal(t, "B", ctrl.Draft("q2"))
	assert.Contains(t, a.View(), h.tr.T("interviews.submitError"))

	h.fake.FailSubmit(0, "")
	settle(t, a, press(a, keySubmit))
	assert.Equal(t, session.StateCompleted, ctrl.State())
	assert.Len(t, h.fake.Submissions("iv-1"), 2)
}

func TestLoadFailureIsShown(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, "missing", false)

	assert.Equal(t, session.StateLoadFailed, a.Session().State())
	assert.Contains(t, a.View(), "Interview not found")

	// Input is ignored on a failed session.
	typeText(a, "x")
	settle(t, a, press(a, keySubmit))
	assert.Empty(t, h.fake.Submissions("missing"))
}

func TestDoubleEscQuitsAndResumeRestoresDrafts(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, "iv-1", true)

	typeText(a, "half done")

	// A single Esc only arms the exit.
	first := press(a, keyEsc)
	assert.NotNil(t, first)
	assert.NotNil(t, a.Session())

	msgs := settle(t, a, press(a, keyEsc))
	assert.True(t, hasQuit(msgs))
	assert.Nil(t, a.Session())

	again := h.app(t, "iv-1", true)
	ctrl := again.Session()
	require.Equal(t, session.StateReady, ctrl.State())
	assert.Equal(t, "half done", ctrl.Draft("q1"))
	// Both drafts were saved, the second one empty.
	assert.Contains(t, again.View(), h.tr.Tf("interviews.resumed", map[string]any{"count": 2}))

	attempts, err := h.store.ListAttempts(10)
	require.NoError(t, err)
	assert.Len(t, attempts, 1)
}

func TestFreshStartAbandonsUnfinishedAttempt(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, "iv-1", false)
	typeText(a, "old")
	a.Close()

	b := h.app(t, "iv-1", false)
	assert.Empty(t, b.Session().Draft("q1"))

	attempts, err := h.store.ListAttempts(10)
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	statuses := []string{attempts[0].Status, attempts[1].Status}
	assert.ElementsMatch(t, []string{store.StatusInProgress, store.StatusAbandoned}, statuses)
}

func TestPickerStartsSelectedInterview(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, "", false)

	assert.Equal(t, tui.StateList, a.model.State)
	assert.Contains(t, a.View(), "Interview iv-1")

	press(a, keyDown)
	settle(t, a, press(a, keyEnter))

	require.NotNil(t, a.Session())
	assert.Equal(t, "iv-2", a.Session().InterviewID())
	assert.Equal(t, session.StateReady, a.Session().State())

	// Leaving a session started from the picker returns to it.
	press(a, keyEsc)
	msgs := settle(t, a, press(a, keyEsc))
	assert.False(t, hasQuit(msgs))
	assert.Equal(t, tui.StateList, a.model.State)
	assert.Nil(t, a.Session())
}

func TestCtrlCTwiceQuits(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, "iv-1", false)

	press(a, keyCtrlC)
	assert.True(t, a.model.CtrlCPending)
	assert.Contains(t, a.View(), h.tr.T("common.ctrlCAgain"))

	_, _ = a.Update(tui.CtrlCResetMsg{})
	assert.False(t, a.model.CtrlCPending)

	press(a, keyCtrlC)
	msgs := exec(t, press(a, keyCtrlC))
	assert.True(t, hasQuit(msgs))
	assert.Nil(t, a.Session())
}

func TestMessagesAfterCloseAreIgnored(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, "iv-1", false)
	a.Close()

	assert.NotPanics(t, func() {
		a.Update(tui.SessionClosedMsg{})
		a.Update(tui.NavigateMsg{Delta: 1})
		a.Update(tui.SubmitDoneMsg{})
	})
}

func TestRestoredDraftSurvivesEarlyTick(t *testing.T) {
	h := newHarness(t)
	prev, err := h.store.CreateAttempt("iv-1", "")
	require.NoError(t, err)
	require.NoError(t, h.store.SaveDraft(prev.ID, "q1", "half done"))

	a := New(Options{
		Client:       h.fake.Client(t),
		Tr:           h.tr,
		Store:        h.store,
		Log:          h.log,
		ResumeDrafts: true,
		InterviewID:  "iv-1",
	})
	t.Cleanup(a.Close)
	_ = a.Init() // the load below is driven by hand

	ctrl := a.Session()
	require.NoError(t, ctrl.Load(context.Background()))

	// A spinner frame lands between the load and the draft restore.
	a.Update(spinner.TickMsg{})
	assert.Equal(t, "", a.interviewView.Value())

	n, err := a.tracker.Restore(ctrl)
	require.NoError(t, err)
	a.Update(tui.SessionLoadedMsg{Ctrl: ctrl, Restored: n})
	assert.Equal(t, "half done", a.interviewView.Value())

	typeText(a, "!")
	assert.Equal(t, "half done!", ctrl.Draft("q1"))
}

func TestTypingSurvivesTicks(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, "iv-1", false)

	typeText(a, "abc")
	a.Update(spinner.TickMsg{})
	assert.Equal(t, "abc", a.interviewView.Value())
	assert.Equal(t, "abc", a.Session().Draft("q1"))
}

func TestStaleSessionMessagesAreDropped(t *testing.T) {
	h := newHarness(t)
	a := h.app(t, "", false)

	settle(t, a, press(a, keyEnter))
	first := a.Session()
	require.NotNil(t, first)
	require.Equal(t, "iv-1", first.InterviewID())
	press(a, keyEsc)
	settle(t, a, press(a, keyEsc))
	require.Equal(t, tui.StateList, a.model.State)

	press(a, keyDown)
	settle(t, a, press(a, keyEnter))
	second := a.Session()
	require.NotNil(t, second)
	require.Equal(t, "iv-2", second.InterviewID())

	a.Update(tui.SessionLoadedMsg{Ctrl: first, Restored: 3})
	a.Update(tui.SubmitDoneMsg{Ctrl: first, Result: &session.Result{ReportID: "rep-old"}})
	a.Update(tui.SessionLoadFailedMsg{Ctrl: first, Err: context.Canceled})

	assert.Equal(t, tui.StateSession, a.model.State)
	assert.Same(t, second, a.Session())
	assert.NotContains(t, a.View(), h.tr.Tf("interviews.resumed", map[string]any{"count": 3}))
	assert.Equal(t, session.StateReady, second.State())
}
