// Package api is the client for the interviewer REST API.
// This file holds the wire types shared by every endpoint.
package api

import (
	"bytes"
	"fmt"
	"time"
)

// Level is the difficulty tier of a question, interview or graded report.
// The zero value means the server sent no tier. Decoding accepts only the
// three named tiers.
type Level int

const (
	LevelUnset Level = iota
	Junior
	Middle
	Senior
)

var levelNames = [...]string{
	Junior: "junior",
	Middle: "middle",
	Senior: "senior",
}

// Levels returns every difficulty tier from easiest to hardest.
func Levels() []Level {
	return []Level{Junior, Middle, Senior}
}

// Valid reports whether l is one of the named tiers.
func (l Level) Valid() bool {
	return l >= Junior && l <= Senior
}

// String returns the wire name of the level, or "unknown" outside the tiers.
func (l Level) String() string {
	if !l.Valid() {
		return "unknown"
	}
	return levelNames[l]
}

// ParseLevel converts a wire name into a Level.
func ParseLevel(s string) (Level, error) {
	for _, l := range Levels() {
		if levelNames[l] == s {
			return l, nil
		}
	}
	return LevelUnset, fmt.Errorf("unknown difficulty level %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid difficulty level %d", int(l))
	}
	return []byte(levelNames[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// timestampLayouts are tried in order. The server emits naive UTC
// datetimes without a zone suffix.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp is a server datetime that tolerates a missing zone offset.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := string(bytes.Trim(b, `"`))
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("parse timestamp %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}

// Tag is a named category attached to questions.
type Tag struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Question is a single interview question.
type Question struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Level     Level     `json:"difficulty_level"`
	Tags      []Tag     `json:"tags"`
	CreatedAt Timestamp `json:"created_at,omitempty"`
}

// Interview is an ordered set of questions taken in one sitting.
type Interview struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Level           Level      `json:"difficulty_level"`
	DurationMinutes int        `json:"duration_minutes,omitempty"`
	CreatedAt       Timestamp  `json:"created_at,omitempty"`
	Questions       []Question `json:"questions"`
}

// Answer is one entry of a submission payload.
type Answer struct {
	QuestionID string `json:"question_id"`
	UserAnswer string `json:"user_answer"`
}

// AnswerRecord is an answer as stored by the server after grading.
type AnswerRecord struct {
	ID            string `json:"id,omitempty"`
	QuestionID    string `json:"question_id"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
}

// Report is the server-computed evaluation of a submitted interview.
type Report struct {
	ID            string         `json:"id"`
	InterviewID   string         `json:"interview_id"`
	Feedback      string         `json:"feedback"`
	Assessment    string         `json:"assessment"`
	AchievedLevel Level          `json:"achieved_level"`
	Score         float64        `json:"score"`
	CreatedAt     Timestamp      `json:"created_at,omitempty"`
	Answers       []AnswerRecord `json:"answers,omitempty"`
}

// SubmitResponse is the body returned by the submit endpoint.
//
// Two server versions exist: one wraps the report ({"report": {"id": ...}}),
// the other returns the report fields at the top level ({"id": ...}).
// Both shapes decode into this struct.
type SubmitResponse struct {
	Report     *Report `json:"report,omitempty"`
	ID         string  `json:"id,omitempty"`
	Feedback   string  `json:"feedback,omitempty"`
	Assessment string  `json:"assessment,omitempty"`
	Score      float64 `json:"score,omitempty"`
}

// ReportID returns the report identifier, preferring report.id over id.
// ok is false when neither shape carries one.
func (r SubmitResponse) ReportID() (id string, ok bool) {
	if r.Report != nil && r.Report.ID != "" {
		return r.Report.ID, true
	}
	if r.ID != "" {
		return r.ID, true
	}
	return "", false
}

// Summary returns the report carried by the response in whichever shape it came.
func (r SubmitResponse) Summary() Report {
	if r.Report != nil && r.Report.ID != "" {
		return *r.Report
	}
	return Report{
		ID:         r.ID,
		Feedback:   r.Feedback,
		Assessment: r.Assessment,
		Score:      r.Score,
	}
}

// GenerateInterviewRequest asks the server to assemble an interview from a prompt.
type GenerateInterviewRequest struct {
	Prompt  string `json:"prompt"`
	TagName string `json:"tag_name,omitempty"`
}

// GenerateQuestionsRequest asks the server to generate new questions.
type GenerateQuestionsRequest struct {
	Prompt string `json:"prompt"`
}

type generateQuestionsResponse struct {
	Questions []Question `json:"questions"`
}

// submitRequest is the body of POST /api/interviews/{id}/submit.
type submitRequest struct {
	Answers []Answer `json:"answers"`
}
