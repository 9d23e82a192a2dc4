package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/interviewer-dev/interviewer/internal/api"
	"github.com/interviewer-dev/interviewer/internal/log"
)

// API is the remote collaborator the controller fetches from and submits to.
// *api.Client satisfies it.
type API interface {
	GetInterview(ctx context.Context, id string) (*api.Interview, error)
	SubmitInterview(ctx context.Context, id string, answers []api.Answer) (*api.SubmitResponse, error)
}

// EventSink receives diagnostic events. *log.Logger satisfies it.
type EventSink interface {
	Append(event log.LogEvent) error
}

// Handoff receives the report identifier once the session completes.
type Handoff func(reportID string)

// Result is created once, by a successful submission.
type Result struct {
	ReportID string
	Report   api.Report
}

// Snapshot is a consistent copy of the controller state for rendering.
type Snapshot struct {
	State     State
	Interview *api.Interview
	Cursor    int
	Drafts    map[string]string
	CanSubmit bool
	Result    *Result
	Err       error
}

// Option configures a Controller.
type Option func(*Controller)

// WithEventSink sends lifecycle and diagnostic events to sink.
func WithEventSink(sink EventSink) Option {
	return func(c *Controller) { c.sink = sink }
}

// WithHandoff registers the callback that receives the report id on completion.
func WithHandoff(h Handoff) Option {
	return func(c *Controller) { c.handoff = h }
}

// WithAttemptID tags emitted events with a local attempt identifier.
func WithAttemptID(id string) Option {
	return func(c *Controller) { c.attemptID = id }
}

// Controller owns the lifecycle of one interview attempt.
//
// At most one fetch and one submission can be in flight; overlap is refused
// by the Loading and Submitting states. The mutex only guards field access
// and is never held across a network call. After Close, any response that
// arrives is discarded without touching the session.
type Controller struct {
	client      API
	interviewID string
	attemptID   string
	sink        EventSink
	handoff     Handoff

	life   context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     State
	interview *api.Interview
	drafts    map[string]string
	cursor    int
	result    *Result
	err       error
	closed    bool
}

// New creates a controller for interviewID in StateIdle.
func New(client API, interviewID string, opts ...Option) *Controller {
	life, cancel := context.WithCancel(context.Background())
	c := &Controller{
		client:      client,
		interviewID: interviewID,
		life:        life,
		cancel:      cancel,
		state:       StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// InterviewID returns the id of the interview this session takes.
func (c *Controller) InterviewID() string {
	return c.interviewID
}

// ============================================================================
// Transitions
// ============================================================================

// Load fetches the interview: Idle -> Loading -> Ready | LoadFailed.
// On success every question gets an empty draft and the cursor is 0.
// The returned error is a *LoadError for fetch failures, or a precondition
// sentinel (ErrBusy, ErrNotReady, ErrClosed) when nothing was attempted.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	switch c.state {
	case StateIdle:
	case StateLoading:
		c.mu.Unlock()
		return ErrBusy
	default:
		c.mu.Unlock()
		return ErrNotReady
	}
	c.state = StateLoading
	c.mu.Unlock()

	reqCtx, stop := c.requestContext(ctx)
	defer stop()

	start := time.Now()
	iv, err := c.client.GetInterview(reqCtx, c.interviewID)
	elapsed := time.Since(start)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if err == nil && (iv == nil || len(iv.Questions) == 0) {
		err = ErrNoQuestions
	}
	if err != nil {
		loadErr := &LoadError{
			InterviewID: c.interviewID,
			Detail:      api.DetailOf(err),
			Err:         err,
		}
		c.state = StateLoadFailed
		c.err = loadErr
		c.mu.Unlock()

		c.emit(log.LogEvent{
			Event:      log.EventLoadFailed,
			Error:      err.Error(),
			Detail:     loadErr.Detail,
			DurationMs: elapsed.Milliseconds(),
		})
		return loadErr
	}

	drafts := make(map[string]string, len(iv.Questions))
	for _, q := range iv.Questions {
		drafts[q.ID] = ""
	}
	c.interview = iv
	c.drafts = drafts
	c.cursor = 0
	c.state = StateReady
	c.mu.Unlock()

	c.emit(log.LogEvent{
		Event:      log.EventSessionLoaded,
		Title:      iv.Title,
		Questions:  len(iv.Questions),
		DurationMs: elapsed.Milliseconds(),
	})
	return nil
}

// Next moves the cursor forward. It is a no-op on the last question.
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	if c.cursor < len(c.interview.Questions)-1 {
		c.cursor++
	}
	return nil
}

// Prev moves the cursor back. It is a no-op on the first question.
func (c *Controller) Prev() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	if c.cursor > 0 {
		c.cursor--
	}
	return nil
}

// RecordAnswer overwrites the draft for questionID. Any text is accepted,
// including the empty string.
func (c *Controller) RecordAnswer(questionID, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	if _, ok := c.drafts[questionID]; !ok {
		return ErrUnknownQuestion
	}
	c.drafts[questionID] = text
	return nil
}

// RestoreDrafts applies previously saved drafts for known questions and
// returns how many were applied. Unknown question ids are ignored.
func (c *Controller) RestoreDrafts(saved map[string]string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return 0, err
	}
	n := 0
	for id, text := range saved {
		if _, ok := c.drafts[id]; ok {
			c.drafts[id] = text
			n++
		}
	}
	return n, nil
}

// CanSubmit reports whether Submit's preconditions hold: the cursor is on
// the last question and every draft is non-empty after trimming whitespace.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Editable() && c.atLastLocked() && c.allAnsweredLocked()
}

// Submit sends the drafts for grading: Ready -> Submitting -> Completed | SubmitFailed.
//
// When a precondition fails the call returns a sentinel and changes nothing.
// A failed submission returns a *SubmitError and leaves drafts and cursor
// untouched so the user can retry. On success the handoff, if any, receives
// the report id.
func (c *Controller) Submit(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if !c.state.Editable() {
		c.mu.Unlock()
		return nil, ErrNotReady
	}
	if !c.allAnsweredLocked() {
		c.mu.Unlock()
		return nil, ErrIncompleteAnswers
	}
	if !c.atLastLocked() {
		c.mu.Unlock()
		return nil, ErrNotAtLastQuestion
	}
	payload := c.answersLocked()
	c.state = StateSubmitting
	c.err = nil
	c.mu.Unlock()

	c.emit(log.LogEvent{Event: log.EventSubmitStarted, Answered: len(payload)})

	reqCtx, stop := c.requestContext(ctx)
	defer stop()

	start := time.Now()
	resp, err := c.client.SubmitInterview(reqCtx, c.interviewID, payload)
	elapsed := time.Since(start)

	var reportID string
	if err == nil {
		var ok bool
		if resp != nil {
			reportID, ok = resp.ReportID()
		}
		if !ok {
			c.emit(log.LogEvent{
				Event: log.EventUnexpectedResponse,
				Error: ErrMissingReportID.Error(),
				Data:  map[string]interface{}{"response": resp},
			})
			err = ErrMissingReportID
		}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if err != nil {
		submitErr := &SubmitError{
			InterviewID: c.interviewID,
			Detail:      api.DetailOf(err),
			Err:         err,
		}
		c.state = StateSubmitFailed
		c.err = submitErr
		c.mu.Unlock()

		c.emit(log.LogEvent{
			Event:      log.EventSubmitFailed,
			Error:      err.Error(),
			Detail:     submitErr.Detail,
			DurationMs: elapsed.Milliseconds(),
		})
		return nil, submitErr
	}

	result := &Result{ReportID: reportID, Report: resp.Summary()}
	c.result = result
	c.state = StateCompleted
	handoff := c.handoff
	c.mu.Unlock()

	c.emit(log.LogEvent{
		Event:      log.EventSubmitCompleted,
		ReportID:   reportID,
		DurationMs: elapsed.Milliseconds(),
	})
	if handoff != nil {
		handoff(reportID)
	}
	return result, nil
}

// Close tears the session down. In-flight requests are cancelled and their
// eventual responses are ignored. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
}

// ============================================================================
// Accessors
// ============================================================================

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Cursor returns the zero-based index of the current question.
func (c *Controller) Cursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// Interview returns the loaded interview, or nil before Ready.
// The interview must be treated as read-only.
func (c *Controller) Interview() *api.Interview {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interview
}

// CurrentQuestion returns the question under the cursor.
func (c *Controller) CurrentQuestion() (api.Question, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.interview == nil {
		return api.Question{}, false
	}
	return c.interview.Questions[c.cursor], true
}

// Progress returns the one-based position of the cursor and the question count.
func (c *Controller) Progress() (current, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.interview == nil {
		return 0, 0
	}
	return c.cursor + 1, len(c.interview.Questions)
}

// Draft returns the draft for questionID.
func (c *Controller) Draft(questionID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drafts[questionID]
}

// Drafts returns a copy of every draft keyed by question id.
func (c *Controller) Drafts() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draftsLocked()
}

// Answers returns the submission payload the drafts would produce, in
// question order.
func (c *Controller) Answers() []api.Answer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.answersLocked()
}

// Unanswered returns the ids of questions whose draft is blank, in question order.
func (c *Controller) Unanswered() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.interview == nil {
		return nil
	}
	var out []string
	for _, a := range c.answersLocked() {
		if strings.TrimSpace(a.UserAnswer) == "" {
			out = append(out, a.QuestionID)
		}
	}
	return out
}

// Result returns the submission result once Completed, else nil.
func (c *Controller) Result() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Err returns the *LoadError or *SubmitError of the last failed transition.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Snapshot returns a consistent copy of the session for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:     c.state,
		Interview: c.interview,
		Cursor:    c.cursor,
		Drafts:    c.draftsLocked(),
		CanSubmit: c.state.Editable() && c.atLastLocked() && c.allAnsweredLocked(),
		Result:    c.result,
		Err:       c.err,
	}
}

// ============================================================================
// Helpers (callers hold c.mu)
// ============================================================================

func (c *Controller) editableLocked() error {
	if c.closed {
		return ErrClosed
	}
	if !c.state.Editable() {
		return ErrNotReady
	}
	return nil
}

func (c *Controller) atLastLocked() bool {
	return c.interview != nil && c.cursor == len(c.interview.Questions)-1
}

func (c *Controller) allAnsweredLocked() bool {
	if c.interview == nil {
		return false
	}
	for _, text := range c.drafts {
		if strings.TrimSpace(text) == "" {
			return false
		}
	}
	return true
}

// answersLocked projects the drafts into question order, once per id.
func (c *Controller) answersLocked() []api.Answer {
	if c.interview == nil {
		return nil
	}
	out := make([]api.Answer, 0, len(c.drafts))
	seen := make(map[string]bool, len(c.drafts))
	for _, q := range c.interview.Questions {
		if seen[q.ID] {
			continue
		}
		seen[q.ID] = true
		out = append(out, api.Answer{QuestionID: q.ID, UserAnswer: c.drafts[q.ID]})
	}
	return out
}

func (c *Controller) draftsLocked() map[string]string {
	out := make(map[string]string, len(c.drafts))
	for k, v := range c.drafts {
		out[k] = v
	}
	return out
}

// requestContext derives a request context that is also cancelled by Close.
func (c *Controller) requestContext(ctx context.Context) (context.Context, func()) {
	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.life, cancel)
	return reqCtx, func() {
		stop()
		cancel()
	}
}

func (c *Controller) emit(event log.LogEvent) {
	if c.sink == nil {
		return
	}
	event.InterviewID = c.interviewID
	event.AttemptID = c.attemptID
	// Diagnostics are best-effort; a failing sink never affects the session.
	_ = c.sink.Append(event)
}
