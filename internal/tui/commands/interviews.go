package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/interviewer-dev/interviewer/internal/api"
	"github.com/interviewer-dev/interviewer/internal/tui"
)

// InterviewLister lists interviews page by page.
type InterviewLister interface {
	ListInterviews(ctx context.Context, page, limit int) ([]api.Interview, error)
}

// ListInterviewsCmd fetches the first page of interviews.
func ListInterviewsCmd(ctx context.Context, client InterviewLister, limit int) tea.Cmd {
	return func() tea.Msg {
		interviews, err := client.ListInterviews(ctx, 1, limit)
		if err != nil {
			return tui.InterviewsErrorMsg{Err: err}
		}
		return tui.InterviewsLoadedMsg{Interviews: interviews}
	}
}
