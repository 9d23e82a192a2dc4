package log

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestAppendAndReadAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	l, err := NewLogger(dir)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}

	if err := l.Append(LogEvent{Event: EventSessionLoaded, InterviewID: "iv-1", Questions: 3}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := l.Append(LogEvent{Event: EventSubmitCompleted, InterviewID: "iv-1", ReportID: "rep-1"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	events, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Time.IsZero() {
		t.Error("Append should stamp a zero Time")
	}
	if events[1].ReportID != "rep-1" {
		t.Errorf("ReportID = %q, want %q", events[1].ReportID, "rep-1")
	}
}

func TestReadAllMissingFile(t *testing.T) {
	l, err := NewLogger(t.TempDir())
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	events, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll on missing file should not fail: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("len(events) = %d, want 0", len(events))
	}
}

func TestReadAllCorruptLine(t *testing.T) {
	dir := t.TempDir()
	l, _ := NewLogger(dir)
	if err := os.WriteFile(l.Path(), []byte("{\"event\":\"x\"}\nnot json\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := l.ReadAll(); err == nil {
		t.Error("ReadAll should fail on a corrupt line")
	}
}

func TestAppendConcurrent(t *testing.T) {
	l, _ := NewLogger(t.TempDir())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Append(LogEvent{Event: EventSubmitStarted})
		}()
	}
	wg.Wait()

	events, err := l.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 20 {
		t.Errorf("len(events) = %d, want 20", len(events))
	}
}

func TestFilter(t *testing.T) {
	events := []LogEvent{
		{Event: EventSessionLoaded, InterviewID: "a"},
		{Event: EventSessionLoaded, InterviewID: "b"},
		{Event: EventSubmitFailed, InterviewID: "a"},
	}
	got := Filter(events, "a")
	if len(got) != 2 {
		t.Fatalf("len(Filter) = %d, want 2", len(got))
	}
	if got[1].Event != EventSubmitFailed {
		t.Errorf("got[1].Event = %q, want %q", got[1].Event, EventSubmitFailed)
	}
}
