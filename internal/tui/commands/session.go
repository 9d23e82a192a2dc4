// Package commands provides Bubble Tea commands for TUI operations.
package commands

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/interviewer-dev/interviewer/internal/attempt"
	"github.com/interviewer-dev/interviewer/internal/session"
	"github.com/interviewer-dev/interviewer/internal/tui"
)

// LoadSessionCmd loads the interview and restores saved drafts for a resumed
// attempt. Returns SessionLoadedMsg, SessionLoadFailedMsg, or
// SessionClosedMsg when the app was torn down first.
func LoadSessionCmd(ctx context.Context, ctrl *session.Controller, tracker *attempt.Tracker) tea.Cmd {
	return func() tea.Msg {
		if err := ctrl.Load(ctx); err != nil {
			if errors.Is(err, session.ErrClosed) {
				return tui.SessionClosedMsg{Ctrl: ctrl}
			}
			return tui.SessionLoadFailedMsg{Ctrl: ctrl, Err: err}
		}

		// A failed restore leaves an empty but usable session.
		n, err := tracker.Restore(ctrl)
		return tui.SessionLoadedMsg{Ctrl: ctrl, Restored: n, Err: err}
	}
}

// SubmitCmd submits the drafts. Returns SubmitDoneMsg, SubmitFailedMsg for
// both rejected preconditions and failed requests, or SessionClosedMsg.
func SubmitCmd(ctx context.Context, ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		res, err := ctrl.Submit(ctx)
		if err != nil {
			if errors.Is(err, session.ErrClosed) {
				return tui.SessionClosedMsg{Ctrl: ctrl}
			}
			return tui.SubmitFailedMsg{Ctrl: ctrl, Err: err}
		}
		return tui.SubmitDoneMsg{Ctrl: ctrl, Result: res}
	}
}

// SaveDraftsCmd persists the drafts of ctrl's attempt in the background.
func SaveDraftsCmd(ctrl *session.Controller, tracker *attempt.Tracker, drafts map[string]string) tea.Cmd {
	return func() tea.Msg {
		return tui.DraftsSavedMsg{Ctrl: ctrl, Err: tracker.Save(drafts)}
	}
}
