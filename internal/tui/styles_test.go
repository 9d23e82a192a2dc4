package tui

import (
	"strings"
	"testing"

	"github.com/interviewer-dev/interviewer/internal/api"
)

func TestLevelBadgeCoversEveryLevel(t *testing.T) {
	for _, l := range append(api.Levels(), api.LevelUnset, api.Level(42), api.Level(-1)) {
		got := LevelBadge(l, "label")
		if !strings.Contains(got, "label") {
			t.Errorf("LevelBadge(%d) = %q, want it to contain the label", int(l), got)
		}
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		current, total, width int
		wantFull              int
	}{
		{0, 4, 8, 0},
		{2, 4, 8, 4},
		{4, 4, 8, 8},
		{9, 4, 8, 8},
	}
	for _, tt := range tests {
		got := ProgressBar(tt.current, tt.total, tt.width)
		if n := strings.Count(got, "█"); n != tt.wantFull {
			t.Errorf("ProgressBar(%d, %d, %d) has %d filled cells, want %d", tt.current, tt.total, tt.width, n, tt.wantFull)
		}
		if n := strings.Count(got, "█") + strings.Count(got, "░"); n != tt.width {
			t.Errorf("ProgressBar(%d, %d, %d) has %d cells, want %d", tt.current, tt.total, tt.width, n, tt.width)
		}
	}
	if got := ProgressBar(1, 0, 8); got != "" {
		t.Errorf("ProgressBar with zero total = %q, want empty", got)
	}
}
