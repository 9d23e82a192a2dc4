package tui

import (
	"github.com/interviewer-dev/interviewer/internal/api"
	"github.com/interviewer-dev/interviewer/internal/report"
	"github.com/interviewer-dev/interviewer/internal/session"
)

// ============================================================================
// Interview List Messages
// ============================================================================

// InterviewsLoadedMsg carries one page of interviews.
type InterviewsLoadedMsg struct {
	Interviews []api.Interview
}

// InterviewsErrorMsg signals that the interview list could not be fetched.
type InterviewsErrorMsg struct {
	Err error
}

// StartInterviewMsg asks the app to start a session for an interview.
type StartInterviewMsg struct {
	InterviewID string
}

// ============================================================================
// Session Messages
// ============================================================================

// The session messages below carry the controller they came from, so a
// response that outlived its session is not applied to the next one.

// SessionLoadedMsg signals that the controller reached Ready.
type SessionLoadedMsg struct {
	Ctrl *session.Controller

	// Restored is the number of saved drafts applied from a previous attempt.
	Restored int

	// Err is a non-fatal problem restoring drafts.
	Err error
}

// SessionLoadFailedMsg signals that the interview could not be fetched.
type SessionLoadFailedMsg struct {
	Ctrl *session.Controller
	Err  error
}

// NavigateMsg asks to move the cursor by Delta questions.
type NavigateMsg struct {
	Delta int
}

// SubmitRequestMsg asks to submit the answers.
type SubmitRequestMsg struct{}

// SubmitDoneMsg signals a completed submission.
type SubmitDoneMsg struct {
	Ctrl   *session.Controller
	Result *session.Result
}

// SubmitFailedMsg signals a failed or rejected submission.
type SubmitFailedMsg struct {
	Ctrl *session.Controller
	Err  error
}

// SessionClosedMsg is produced when a response arrived after teardown.
type SessionClosedMsg struct {
	Ctrl *session.Controller
}

// DraftsSavedMsg reports the outcome of persisting drafts.
type DraftsSavedMsg struct {
	Ctrl *session.Controller
	Err  error
}

// ============================================================================
// Report Messages
// ============================================================================

// ReportLoadedMsg carries a report ready to render.
type ReportLoadedMsg struct {
	Doc report.Document
}

// ReportErrorMsg signals that a report could not be fetched.
type ReportErrorMsg struct {
	ReportID string
	Err      error
}

// ============================================================================
// Utility Messages
// ============================================================================

// GoHomeMsg asks to leave the current screen.
type GoHomeMsg struct{}

// EscResetMsg resets the Esc pending state after timeout.
type EscResetMsg struct{}

// CtrlCResetMsg resets the Ctrl+C pending state after timeout.
type CtrlCResetMsg struct{}
