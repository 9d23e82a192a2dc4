package session

import (
	"errors"
	"fmt"

	"github.com/interviewer-dev/interviewer/internal/api"
)

// Precondition errors. A call rejected with one of these changes nothing.
var (
	ErrNotReady          = errors.New("session is not accepting input in its current state")
	ErrBusy              = errors.New("a request is already in flight")
	ErrNotAtLastQuestion = errors.New("submit is only allowed from the last question")
	ErrIncompleteAnswers = errors.New("every question needs a non-empty answer")
	ErrUnknownQuestion   = errors.New("question is not part of this interview")
	ErrClosed            = errors.New("session closed")
)

// ErrMissingReportID is the cause of a SubmitError when the server accepted
// the answers but returned no report identifier in either known shape.
var ErrMissingReportID = errors.New("submit response carries no report id")

// ErrNoQuestions is the cause of a LoadError for an interview without questions.
var ErrNoQuestions = errors.New("interview has no questions")

// Translator resolves localized fallback messages.
type Translator interface {
	T(key string) string
}

// LoadError means the interview could not be fetched. It ends the session.
type LoadError struct {
	InterviewID string

	// Detail is the server-supplied message, if any.
	Detail string

	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading interview %s: %v", e.InterviewID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// NotFound reports whether the server said the interview does not exist.
func (e *LoadError) NotFound() bool {
	return errors.Is(e.Err, api.ErrNotFound)
}

// Message returns the text to show the user.
func (e *LoadError) Message(tr Translator) string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.NotFound() {
		return tr.T("interviews.notFound")
	}
	return tr.T("interviews.loadError")
}

// SubmitError means a submission failed. The session stays resubmittable.
type SubmitError struct {
	InterviewID string

	// Detail is the server-supplied message, if any.
	Detail string

	Err error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submitting interview %s: %v", e.InterviewID, e.Err)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// Message returns the text to show the user.
func (e *SubmitError) Message(tr Translator) string {
	if e.Detail != "" {
		return e.Detail
	}
	return tr.T("interviews.submitError")
}
