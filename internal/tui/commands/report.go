package commands

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/interviewer-dev/interviewer/internal/api"
	"github.com/interviewer-dev/interviewer/internal/log"
	"github.com/interviewer-dev/interviewer/internal/report"
	"github.com/interviewer-dev/interviewer/internal/tui"
)

// ReportAPI is the part of the API client the report screen needs.
type ReportAPI interface {
	GetReport(ctx context.Context, id string) (*api.Report, error)
	GetReportAnswers(ctx context.Context, id string) ([]api.AnswerRecord, error)
}

// EventSource reads the local event log. *log.Logger satisfies it.
type EventSource interface {
	ReadAll() ([]log.LogEvent, error)
}

// FetchReportCmd fetches a report with its graded answers. questions maps
// question ids to their text for labelling; it may be nil. A missing answers
// endpoint is tolerated, and events, when given, supply the time spent.
func FetchReportCmd(ctx context.Context, client ReportAPI, reportID string, questions map[string]string, events EventSource) tea.Cmd {
	return func() tea.Msg {
		doc, err := BuildDocument(ctx, client, reportID, questions, events)
		if err != nil {
			return tui.ReportErrorMsg{ReportID: reportID, Err: err}
		}
		return tui.ReportLoadedMsg{Doc: doc}
	}
}

// BuildDocument gathers everything needed to render a report.
func BuildDocument(ctx context.Context, client ReportAPI, reportID string, questions map[string]string, events EventSource) (report.Document, error) {
	r, err := client.GetReport(ctx, reportID)
	if err != nil {
		return report.Document{}, err
	}
	doc := report.Document{Report: *r, Questions: questions}

	answers, err := client.GetReportAnswers(ctx, reportID)
	switch {
	case err == nil:
		doc.Answers = answers
	case errors.Is(err, api.ErrNotFound):
		// Older servers embed answers in the report itself.
	default:
		return report.Document{}, err
	}

	if events != nil {
		if all, err := events.ReadAll(); err == nil {
			doc.Duration = report.AttemptDuration(all, reportID)
		}
	}
	return doc, nil
}
