// Package report renders graded interview reports for the terminal and for
// saving as Markdown.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/interviewer-dev/interviewer/internal/api"
	"github.com/interviewer-dev/interviewer/internal/log"
)

// Translator resolves localized labels.
type Translator interface {
	T(key string) string
}

// Document is everything needed to render one report.
type Document struct {
	Report api.Report

	// Answers are the graded answers. When empty, Report.Answers is used.
	Answers []api.AnswerRecord

	// Questions maps question id to its text, if known.
	Questions map[string]string

	// Duration is the local time spent on the attempt, zero if unknown.
	Duration time.Duration
}

// FormatReport produces a terminal-friendly, human-readable summary string.
func FormatReport(doc Document, tr Translator) string {
	var b strings.Builder
	r := doc.Report

	b.WriteString("========================================\n")
	fmt.Fprintf(&b, "  %s %s\n", tr.T("reports.title"), r.ID)
	b.WriteString("========================================\n")
	b.WriteString("\n")

	fmt.Fprintf(&b, "%-16s %s\n", tr.T("reports.score")+":", formatScore(r.Score))
	fmt.Fprintf(&b, "%-16s %s\n", tr.T("reports.achievedLevel")+":", LevelLabel(r.AchievedLevel, tr))
	if doc.Duration > 0 {
		fmt.Fprintf(&b, "%-16s %s\n", tr.T("reports.timeSpent")+":", formatDuration(doc.Duration))
	}
	b.WriteString("\n")

	writeSection(&b, tr.T("reports.feedback"), r.Feedback)
	writeSection(&b, tr.T("reports.assessment"), r.Assessment)

	answers := doc.Answers
	if len(answers) == 0 {
		answers = r.Answers
	}
	if len(answers) > 0 {
		fmt.Fprintf(&b, "%s:\n", tr.T("reports.answers"))
		for i, a := range answers {
			title := a.QuestionID
			if text, ok := doc.Questions[a.QuestionID]; ok && text != "" {
				title = text
			}
			fmt.Fprintf(&b, "\n  %d. %s\n", i+1, title)
			fmt.Fprintf(&b, "     %s: %s\n", tr.T("reports.yourAnswer"), indentTail(a.UserAnswer, "     "))
			if a.CorrectAnswer != "" {
				fmt.Fprintf(&b, "     %s: %s\n", tr.T("reports.correctAnswer"), indentTail(a.CorrectAnswer, "     "))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("========================================\n")

	return b.String()
}

// LevelLabel returns the localized name of a difficulty level.
func LevelLabel(l api.Level, tr Translator) string {
	return tr.T("difficulty." + l.String())
}

// WriteReport writes the formatted report to {dir}/report-{id}.md and
// returns the path. Creates the directory if it does not exist.
func WriteReport(dir string, doc Document, tr Translator) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	content := FormatReport(doc, tr)
	path := filepath.Join(dir, "report-"+doc.Report.ID+".md")

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing report file: %w", err)
	}

	return path, nil
}

// AttemptDuration calculates how long the attempt that produced reportID
// took, from the session_loaded event of the same attempt to its
// submit_completed event. Returns zero when either end is missing.
func AttemptDuration(events []log.LogEvent, reportID string) time.Duration {
	var attempt string
	var end time.Time
	for _, e := range events {
		if e.Event == log.EventSubmitCompleted && e.ReportID == reportID {
			attempt = e.AttemptID
			end = e.Time
		}
	}
	if end.IsZero() || attempt == "" {
		return 0
	}

	var start time.Time
	for _, e := range events {
		if e.Event == log.EventSessionLoaded && e.AttemptID == attempt && !e.Time.After(end) {
			start = e.Time
			break
		}
	}
	if start.IsZero() {
		return 0
	}
	return end.Sub(start)
}

func writeSection(b *strings.Builder, title, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, line := range strings.Split(body, "\n") {
		fmt.Fprintf(b, "  %s\n", line)
	}
	b.WriteString("\n")
}

func indentTail(s, indent string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n"+indent)
}

func formatScore(score float64) string {
	if score == float64(int(score)) {
		return fmt.Sprintf("%d", int(score))
	}
	return fmt.Sprintf("%.1f", score)
}

// formatDuration produces a human-readable duration string such as "5m 32s"
// or "1h 12m 5s". Sub-second durations are shown as "< 1s".
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "< 1s"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
