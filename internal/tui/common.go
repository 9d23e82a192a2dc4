// Package tui implements the terminal user interface using Bubble Tea.
package tui

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// Common key binding constants.
const (
	KeyCtrlC = "ctrl+c"
	KeyEnter = "enter"
	KeyEsc   = "esc"
	KeyUp    = "up"
	KeyDown  = "down"
)

// IsTTY returns true if stdout is connected to a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Run starts the TUI program with the given model in alternate screen mode.
// Without a terminal it returns ErrNotInteractive so the caller can fall
// back to a non-interactive command. Cancelling ctx stops the program.
func Run(ctx context.Context, m tea.Model) error {
	if !IsTTY() {
		return ErrNotInteractive
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
