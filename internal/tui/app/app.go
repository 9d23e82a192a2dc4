// Package app provides the main TUI application that wires all views together.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/interviewer-dev/interviewer/internal/attempt"
	"github.com/interviewer-dev/interviewer/internal/i18n"
	"github.com/interviewer-dev/interviewer/internal/log"
	"github.com/interviewer-dev/interviewer/internal/session"
	"github.com/interviewer-dev/interviewer/internal/tui"
	"github.com/interviewer-dev/interviewer/internal/tui/commands"
	"github.com/interviewer-dev/interviewer/internal/tui/views"
)

// listPageSize is how many interviews the picker shows.
const listPageSize = 50

// Client is everything the TUI asks of the API. *api.Client satisfies it.
type Client interface {
	session.API
	commands.ReportAPI
	commands.InterviewLister
}

// Options configures an App.
type Options struct {
	Client Client
	Tr     *i18n.Translator

	// Store persists attempts and drafts. Nil disables persistence.
	Store attempt.Store

	// Log receives session events. Nil disables the event log.
	Log *log.Logger

	// ResumeDrafts continues the last unfinished attempt of an interview.
	ResumeDrafts bool

	// InterviewID starts a session right away; empty shows the picker.
	InterviewID string
}

// App is the main TUI application that wires all views together.
type App struct {
	model *tui.Model
	opts  Options

	ctx    context.Context
	cancel context.CancelFunc

	// View models
	listView      views.ListModel
	interviewView views.InterviewModel
	reportView    views.ReportModel

	// Current session, nil on the picker
	ctrl    *session.Controller
	tracker *attempt.Tracker
}

// New creates a new App with the given options.
func New(opts Options) *App {
	ctx, cancel := context.WithCancel(context.Background())
	model := tui.NewModel(opts.Tr)

	return &App{
		model:    model,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		listView: views.NewListModel(opts.Tr, model.Width, model.Height),
	}
}

// Init returns the initial command for the TUI.
func (a *App) Init() tea.Cmd {
	if a.opts.InterviewID != "" {
		return tea.Batch(a.model.Spinner.Tick, a.startSession(a.opts.InterviewID))
	}
	return tea.Batch(
		a.model.Spinner.Tick,
		commands.ListInterviewsCmd(a.ctx, a.opts.Client, listPageSize),
	)
}

// Close tears down the running session, if any. Safe to call more than once.
func (a *App) Close() {
	a.endSession()
	a.cancel()
}

// Session returns the controller of the current session, or nil.
func (a *App) Session() *session.Controller {
	return a.ctrl
}

// Update handles messages and updates the application state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.model.Width = msg.Width
		a.model.Height = msg.Height
		// Only propagate to the currently active view
		var cmd tea.Cmd
		switch a.model.State {
		case tui.StateList:
			a.listView, cmd = a.listView.Update(msg)
		case tui.StateSession:
			a.interviewView, cmd = a.interviewView.Update(msg)
		case tui.StateReport:
			a.reportView, cmd = a.reportView.Update(msg)
		}
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == tui.KeyCtrlC {
			if a.model.CtrlCPending {
				// Second press within timeout - exit
				return a, a.quit()
			}
			// First press - set pending and start timeout
			a.model.CtrlCPending = true
			return a, tea.Tick(time.Second, func(time.Time) tea.Msg {
				return tui.CtrlCResetMsg{}
			})
		}

	case tui.CtrlCResetMsg:
		a.model.CtrlCPending = false
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.model.Spinner, cmd = a.model.Spinner.Update(msg)
		// Requests run off the UI loop; pick up state changes such as Submitting.
		if a.model.State == tui.StateSession && a.ctrl != nil {
			a.interviewView.Sync(a.ctrl.Snapshot())
		}
		return a, cmd
	}

	// Route messages based on current state
	switch a.model.State {
	case tui.StateList:
		return a.updateList(msg)
	case tui.StateSession:
		return a.updateSession(msg)
	case tui.StateReport:
		return a.updateReport(msg)
	}
	return a, nil
}

// View renders the current application state.
func (a *App) View() string {
	var content string
	spin := a.model.Spinner.View()

	switch a.model.State {
	case tui.StateList:
		content = a.listView.View(spin)
	case tui.StateSession:
		content = a.interviewView.View(spin)
	case tui.StateReport:
		return a.reportView.View(spin)
	default:
		content = "Unknown state"
	}

	if a.model.CtrlCPending {
		content = lipgloss.JoinVertical(lipgloss.Center, content, "",
			tui.WarningStyle.Render(a.opts.Tr.T("common.ctrlCAgain")))
	}
	return a.centerContent(content)
}

// centerContent centers the given content both horizontally and vertically.
func (a *App) centerContent(content string) string {
	return lipgloss.Place(
		a.model.Width,
		a.model.Height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

// ============================================================================
// State Update Handlers
// ============================================================================

func (a *App) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tui.InterviewsLoadedMsg:
		return a, a.listView.SetInterviews(msg.Interviews)

	case tui.InterviewsErrorMsg:
		a.listView.SetError(msg.Err)
		return a, nil

	case tui.StartInterviewMsg:
		return a, a.startSession(msg.InterviewID)

	case tui.GoHomeMsg:
		return a, a.quit()
	}

	var cmd tea.Cmd
	a.listView, cmd = a.listView.Update(msg)
	return a, cmd
}

func (a *App) updateSession(msg tea.Msg) (tea.Model, tea.Cmd) {
	tr := a.opts.Tr
	if a.ctrl == nil {
		// Closed underneath us; nothing left to drive.
		return a, nil
	}
	if from, ok := origin(msg); ok && from != a.ctrl {
		return a, nil
	}

	switch msg := msg.(type) {
	case tui.SessionLoadedMsg:
		a.sync()
		switch {
		case msg.Err != nil:
			a.interviewView.SetNotice(msg.Err.Error())
		case msg.Restored > 0:
			a.interviewView.SetNotice(tr.Tf("interviews.resumed", map[string]any{"count": msg.Restored}))
		}
		return a, nil

	case tui.SessionLoadFailedMsg, tui.SessionClosedMsg:
		a.sync()
		return a, nil

	case tui.NavigateMsg:
		a.recordDraft()
		if msg.Delta > 0 {
			_ = a.ctrl.Next()
		} else {
			_ = a.ctrl.Prev()
		}
		a.sync()
		return a, a.saveDrafts()

	case tui.SubmitRequestMsg:
		a.recordDraft()
		if !a.ctrl.State().Editable() {
			return a, nil
		}
		return a, tea.Batch(a.saveDrafts(), commands.SubmitCmd(a.ctx, a.ctrl))

	case tui.SubmitFailedMsg:
		switch {
		case errors.Is(msg.Err, session.ErrIncompleteAnswers):
			a.interviewView.SetNotice(tr.T("interviews.incomplete"))
		case errors.Is(msg.Err, session.ErrNotAtLastQuestion):
			a.interviewView.SetNotice(tr.T("interviews.notAtLast"))
		}
		a.sync()
		return a, nil

	case tui.SubmitDoneMsg:
		a.sync()
		return a, a.openReport(msg.Result.ReportID)

	case tui.DraftsSavedMsg:
		if msg.Err != nil {
			a.interviewView.SetNotice(msg.Err.Error())
		}
		return a, nil

	case tui.GoHomeMsg:
		a.recordDraft()
		a.endSession()
		if a.opts.InterviewID != "" {
			return a, a.quit()
		}
		a.model.State = tui.StateList
		return a, commands.ListInterviewsCmd(a.ctx, a.opts.Client, listPageSize)

	case tea.KeyMsg:
		if msg.String() == tui.KeyEnter && a.ctrl.State() == session.StateCompleted {
			if res := a.ctrl.Result(); res != nil {
				return a, a.openReport(res.ReportID)
			}
		}
	}

	var cmd tea.Cmd
	a.interviewView, cmd = a.interviewView.Update(msg)
	a.recordDraft()
	return a, cmd
}

func (a *App) updateReport(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tui.ReportLoadedMsg:
		if msg.Doc.Report.ID == a.reportView.ReportID() {
			a.reportView.SetDocument(msg.Doc)
		}
		return a, nil

	case tui.ReportErrorMsg:
		if msg.ReportID == a.reportView.ReportID() {
			a.reportView.SetError(msg.Err)
		}
		return a, nil

	case tui.GoHomeMsg:
		// Back to the completed session screen.
		a.model.State = tui.StateSession
		a.sync()
		return a, nil
	}

	var cmd tea.Cmd
	a.reportView, cmd = a.reportView.Update(msg)
	return a, cmd
}

// ============================================================================
// Transitions
// ============================================================================

// startSession builds a controller for interviewID and starts loading it.
func (a *App) startSession(interviewID string) tea.Cmd {
	a.endSession()

	var notice string
	tracker, err := attempt.Begin(a.opts.Store, interviewID, a.opts.ResumeDrafts)
	if err != nil {
		// Taking the interview matters more than remembering it.
		notice = err.Error()
		tracker, _ = attempt.Begin(nil, interviewID, false)
	}

	opts := []session.Option{
		session.WithAttemptID(tracker.ID()),
		session.WithHandoff(tracker.Handoff()),
	}
	if a.opts.Log != nil {
		opts = append(opts, session.WithEventSink(a.opts.Log))
	}
	a.ctrl = session.New(a.opts.Client, interviewID, opts...)
	a.tracker = tracker

	a.interviewView = views.NewInterviewModel(a.opts.Tr, a.model.Width, a.model.Height)
	a.interviewView.SetNotice(notice)
	a.sync()
	a.model.State = tui.StateSession

	return tea.Batch(
		a.interviewView.Init(),
		commands.LoadSessionCmd(a.ctx, a.ctrl, tracker),
	)
}

// endSession saves drafts and closes the controller so late responses are
// dropped.
func (a *App) endSession() {
	if a.ctrl == nil {
		return
	}
	if a.ctrl.State().Editable() {
		_ = a.tracker.Save(a.ctrl.Drafts())
	}
	a.ctrl.Close()
	a.ctrl = nil
	a.tracker = nil
}

func (a *App) openReport(reportID string) tea.Cmd {
	questions := make(map[string]string)
	if iv := a.ctrl.Interview(); iv != nil {
		for _, q := range iv.Questions {
			questions[q.ID] = q.Text
		}
	}

	a.reportView = views.NewReportModel(a.opts.Tr, reportID, a.model.Width, a.model.Height)
	a.model.State = tui.StateReport

	var events commands.EventSource
	if a.opts.Log != nil {
		events = a.opts.Log
	}
	return commands.FetchReportCmd(a.ctx, a.opts.Client, reportID, questions, events)
}

func (a *App) quit() tea.Cmd {
	a.Close()
	return tea.Quit
}

// ============================================================================
// Helpers
// ============================================================================

// recordDraft copies the answer box into the controller.
func (a *App) recordDraft() {
	if a.ctrl == nil {
		return
	}
	qid := a.interviewView.QuestionID()
	if qid == "" || !a.ctrl.State().Editable() {
		return
	}
	if v := a.interviewView.Value(); v != a.ctrl.Draft(qid) {
		_ = a.ctrl.RecordAnswer(qid, v)
	}
}

func (a *App) sync() {
	if a.ctrl != nil {
		a.interviewView.Sync(a.ctrl.Snapshot())
	}
}

func (a *App) saveDrafts() tea.Cmd {
	return commands.SaveDraftsCmd(a.ctrl, a.tracker, a.ctrl.Drafts())
}

// origin returns the controller a session message was produced for.
func origin(msg tea.Msg) (*session.Controller, bool) {
	switch msg := msg.(type) {
	case tui.SessionLoadedMsg:
		return msg.Ctrl, true
	case tui.SessionLoadFailedMsg:
		return msg.Ctrl, true
	case tui.SessionClosedMsg:
		return msg.Ctrl, true
	case tui.SubmitDoneMsg:
		return msg.Ctrl, true
	case tui.SubmitFailedMsg:
		return msg.Ctrl, true
	case tui.DraftsSavedMsg:
		return msg.Ctrl, true
	}
	return nil, false
}
