package tui

import (
	"github.com/charmbracelet/bubbles/spinner"

	"github.com/interviewer-dev/interviewer/internal/i18n"
)

// ViewState represents the current screen of the TUI.
type ViewState int

const (
	StateList    ViewState = iota // Interview picker
	StateSession                  // Taking an interview; details come from the controller
	StateReport                   // Viewing a graded report
)

// Model holds state shared by every screen.
type Model struct {
	State ViewState
	Err   error

	Tr *i18n.Translator

	Spinner spinner.Model

	// Terminal dimensions
	Width  int
	Height int

	// Ctrl+C confirmation state
	CtrlCPending bool
}

// NewModel creates a new Model rendering text with tr.
func NewModel(tr *i18n.Translator) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = TitleStyle

	return &Model{
		State:   StateList,
		Tr:      tr,
		Spinner: sp,

		// Default dimensions (will be updated on WindowSizeMsg)
		Width:  80,
		Height: 24,
	}
}
