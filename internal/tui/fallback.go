package tui

import (
	"errors"
	"fmt"
	"io"
)

// ErrNotInteractive is returned by Run when stdout is not a terminal.
var ErrNotInteractive = errors.New("interactive mode requires a terminal")

// PrintFallback tells the user how to do the same thing without a terminal.
func PrintFallback(w io.Writer, interviewID string) {
	fmt.Fprintln(w, "Non-TTY environment detected.")
	if interviewID == "" {
		fmt.Fprintln(w, "Use 'interviewer interviews' to list interviews and")
		fmt.Fprintln(w, "'interviewer take <id> --answers answers.yaml' to submit answers.")
		return
	}
	fmt.Fprintf(w, "Use 'interviewer take %s --answers answers.yaml' for non-interactive submission.\n", interviewID)
}
