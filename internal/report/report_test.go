package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/interviewer-dev/interviewer/internal/api"
	"github.com/interviewer-dev/interviewer/internal/i18n"
	"github.com/interviewer-dev/interviewer/internal/log"
)

func sampleDoc() Document {
	return Document{
		Report: api.Report{
			ID:            "rep-9",
			Score:         7.5,
			AchievedLevel: api.Middle,
			Feedback:      "Solid fundamentals.\nWork on concurrency.",
			Assessment:    "Middle",
		},
		Answers: []api.AnswerRecord{
			{QuestionID: "q1", UserAnswer: "goroutines", CorrectAnswer: "lightweight threads"},
			{QuestionID: "q2", UserAnswer: "channels"},
		},
		Questions: map[string]string{"q1": "What is a goroutine?"},
	}
}

func TestFormatReport(t *testing.T) {
	out := FormatReport(sampleDoc(), i18n.MustNew(i18n.English))

	for _, want := range []string{
		"Reports rep-9",
		"Score:           7.5",
		"Achieved level:  Middle",
		"  Work on concurrency.",
		"1. What is a goroutine?",
		"Reference answer: lightweight threads",
		"2. q2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatReport output missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "Time spent") {
		t.Error("duration line should be omitted when unknown")
	}
}

func TestFormatReportRussian(t *testing.T) {
	out := FormatReport(sampleDoc(), i18n.MustNew(i18n.Russian))
	if !strings.Contains(out, "Эталонный ответ") {
		t.Errorf("expected Russian labels:\n%s", out)
	}
}

func TestFormatReportFallsBackToEmbeddedAnswers(t *testing.T) {
	doc := Document{Report: api.Report{
		ID:      "r1",
		Answers: []api.AnswerRecord{{QuestionID: "q7", UserAnswer: "embedded"}},
	}}
	out := FormatReport(doc, i18n.MustNew(i18n.English))
	if !strings.Contains(out, "embedded") {
		t.Errorf("expected embedded answers:\n%s", out)
	}
}

func TestWriteReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	path, err := WriteReport(dir, sampleDoc(), i18n.MustNew(i18n.English))
	if err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}
	if filepath.Base(path) != "report-rep-9.md" {
		t.Errorf("path = %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.Contains(string(data), "Solid fundamentals.") {
		t.Error("written report is missing feedback")
	}
}

func TestAttemptDuration(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	events := []log.LogEvent{
		{Time: t0.Add(-time.Hour), Event: log.EventSessionLoaded, AttemptID: "other"},
		{Time: t0, Event: log.EventSessionLoaded, AttemptID: "a1"},
		{Time: t0.Add(3 * time.Minute), Event: log.EventSubmitFailed, AttemptID: "a1"},
		{Time: t0.Add(5*time.Minute + 32*time.Second), Event: log.EventSubmitCompleted, AttemptID: "a1", ReportID: "rep-9"},
	}

	if got := AttemptDuration(events, "rep-9"); got != 5*time.Minute+32*time.Second {
		t.Errorf("AttemptDuration = %v, want 5m32s", got)
	}
	if got := AttemptDuration(events, "unknown"); got != 0 {
		t.Errorf("AttemptDuration(unknown) = %v, want 0", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "< 1s"},
		{45 * time.Second, "45s"},
		{5*time.Minute + 32*time.Second, "5m 32s"},
		{time.Hour + 12*time.Minute + 5*time.Second, "1h 12m 5s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
