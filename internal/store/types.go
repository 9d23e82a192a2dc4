// Package store provides SQLite-backed persistence for local interview
// attempts, their answer drafts and user preferences.
package store

import "time"

// Attempt statuses.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusAbandoned  = "abandoned"
)

// Attempt is one local run through an interview.
type Attempt struct {
	ID          string
	InterviewID string
	Title       string
	Status      string // in_progress, completed, abandoned
	ReportID    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Draft is the saved text for one question of an attempt.
type Draft struct {
	AttemptID  string
	QuestionID string
	Answer     string
	UpdatedAt  time.Time
}

// Summary provides a high-level view of an attempt for listing.
type Summary struct {
	ID          string
	InterviewID string
	Title       string
	Status      string
	ReportID    string
	Answered    int
	Drafts      int
	UpdatedAt   time.Time
}
