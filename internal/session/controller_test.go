package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interviewer-dev/interviewer/internal/api"
	"github.com/interviewer-dev/interviewer/internal/i18n"
	"github.com/interviewer-dev/interviewer/internal/log"
)

// fakeAPI is an in-memory API. When gate is non-nil, calls block until a
// value is sent on it (or the request context ends).
type fakeAPI struct {
	mu sync.Mutex

	interview *api.Interview
	loadErr   error

	submitResp *api.SubmitResponse
	submitErr  error
	submitted  [][]api.Answer

	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeAPI) wait(ctx context.Context) error {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate == nil {
		return nil
	}
	select {
	case <-f.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeAPI) GetInterview(ctx context.Context, id string) (*api.Interview, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.interview, nil
}

func (f *fakeAPI) SubmitInterview(ctx context.Context, id string, answers []api.Answer) (*api.SubmitResponse, error) {
	f.mu.Lock()
	f.submitted = append(f.submitted, answers)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.submitResp, nil
}

type memSink struct {
	mu     sync.Mutex
	events []log.LogEvent
}

func (m *memSink) Append(e log.LogEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *memSink) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Event
	}
	return out
}

func interviewWith(ids ...string) *api.Interview {
	iv := &api.Interview{ID: "iv-1", Title: "Go", Level: api.Middle}
	for _, id := range ids {
		iv.Questions = append(iv.Questions, api.Question{ID: id, Text: "question " + id, Level: api.Junior})
	}
	return iv
}

func loaded(t *testing.T, f *fakeAPI, opts ...Option) *Controller {
	t.Helper()
	c := New(f, "iv-1", opts...)
	require.NoError(t, c.Load(context.Background()))
	require.Equal(t, StateReady, c.State())
	return c
}

func TestLoadInitializesEmptyDrafts(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("%d questions", n), func(t *testing.T) {
			ids := make([]string, n)
			for i := range ids {
				ids[i] = fmt.Sprintf("q%d", i+1)
			}
			c := loaded(t, &fakeAPI{interview: interviewWith(ids...)})

			drafts := c.Drafts()
			assert.Len(t, drafts, n)
			for _, id := range ids {
				v, ok := drafts[id]
				assert.True(t, ok, "missing draft for %s", id)
				assert.Equal(t, "", v)
			}
			assert.Equal(t, 0, c.Cursor())
		})
	}
}

func TestLoadFailures(t *testing.T) {
	tr := i18n.MustNew(i18n.English)
	tests := []struct {
		name         string
		api          *fakeAPI
		wantNotFound bool
		wantMessage  string
	}{
		{
			name:         "not found",
			api:          &fakeAPI{loadErr: &api.Error{Kind: api.KindNotFound, Op: "get interview", Status: 404}},
			wantNotFound: true,
			wantMessage:  "Interview not found",
		},
		{
			name:        "network",
			api:         &fakeAPI{loadErr: &api.Error{Kind: api.KindNetwork, Op: "get interview", Err: errors.New("connection refused")}},
			wantMessage: "Failed to load the interview",
		},
		{
			name:        "server detail wins",
			api:         &fakeAPI{loadErr: &api.Error{Kind: api.KindNetwork, Op: "get interview", Status: 500, Detail: "db down"}},
			wantMessage: "db down",
		},
		{
			name:        "no questions",
			api:         &fakeAPI{interview: interviewWith()},
			wantMessage: "Failed to load the interview",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &memSink{}
			c := New(tt.api, "iv-1", WithEventSink(sink))
			err := c.Load(context.Background())

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, tt.wantNotFound, loadErr.NotFound())
			assert.Equal(t, tt.wantMessage, loadErr.Message(tr))
			assert.Equal(t, StateLoadFailed, c.State())
			assert.Equal(t, err, c.Err())
			assert.Equal(t, []string{log.EventLoadFailed}, sink.names())

			// Absorbing: nothing else is accepted.
			assert.ErrorIs(t, c.Load(context.Background()), ErrNotReady)
			assert.ErrorIs(t, c.Next(), ErrNotReady)
			assert.ErrorIs(t, c.RecordAnswer("q1", "x"), ErrNotReady)
			_, err = c.Submit(context.Background())
			assert.ErrorIs(t, err, ErrNotReady)
		})
	}
}

func TestCursorClampsAtBounds(t *testing.T) {
	c := loaded(t, &fakeAPI{interview: interviewWith("q1", "q2", "q3")})

	require.NoError(t, c.Prev())
	assert.Equal(t, 0, c.Cursor(), "prev at 0 stays at 0")

	require.NoError(t, c.Next())
	require.NoError(t, c.Next())
	assert.Equal(t, 2, c.Cursor())
	require.NoError(t, c.Next())
	assert.Equal(t, 2, c.Cursor(), "next at N-1 stays at N-1")

	require.NoError(t, c.Prev())
	assert.Equal(t, 1, c.Cursor())

	q, ok := c.CurrentQuestion()
	require.True(t, ok)
	assert.Equal(t, "q2", q.ID)
}

func TestRecordAnswer(t *testing.T) {
	c := loaded(t, &fakeAPI{interview: interviewWith("q1", "q2")})

	require.NoError(t, c.RecordAnswer("q2", "later"))
	require.NoError(t, c.RecordAnswer("q2", ""))
	assert.Equal(t, "", c.Draft("q2"), "empty text is allowed mid-session")

	assert.ErrorIs(t, c.RecordAnswer("q9", "x"), ErrUnknownQuestion)
	assert.Len(t, c.Drafts(), 2, "unknown ids never enter the draft")
}

func TestSubmitRejectsBlankAnswersAtAnyCursor(t *testing.T) {
	f := &fakeAPI{interview: interviewWith("q1", "q2", "q3")}
	c := loaded(t, f)

	require.NoError(t, c.RecordAnswer("q1", "a"))
	require.NoError(t, c.RecordAnswer("q2", "b"))
	require.NoError(t, c.RecordAnswer("q3", "  \t\n"))

	for i := 0; i < 3; i++ {
		_, err := c.Submit(context.Background())
		assert.ErrorIs(t, err, ErrIncompleteAnswers)
		assert.Equal(t, StateReady, c.State())
		require.NoError(t, c.Next())
	}
	assert.False(t, c.CanSubmit())
	assert.Equal(t, []string{"q3"}, c.Unanswered())

	require.NoError(t, c.RecordAnswer("q3", "ok"))
	assert.True(t, c.CanSubmit())
	assert.Empty(t, f.submitted, "rejected submits never reach the API")
}

func TestSubmitRequiresLastQuestion(t *testing.T) {
	c := loaded(t, &fakeAPI{interview: interviewWith("q1", "q2")})
	require.NoError(t, c.RecordAnswer("q1", "a"))
	require.NoError(t, c.RecordAnswer("q2", "b"))

	assert.False(t, c.CanSubmit())
	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotAtLastQuestion)
	assert.Equal(t, StateReady, c.State())
}

func TestSubmitScenario(t *testing.T) {
	f := &fakeAPI{
		interview:  interviewWith("q1", "q2"),
		submitResp: &api.SubmitResponse{Report: &api.Report{ID: "rep-9", Score: 8}},
	}
	sink := &memSink{}
	var handedOff string
	c := loaded(t, f, WithEventSink(sink), WithHandoff(func(id string) { handedOff = id }))

	require.NoError(t, c.RecordAnswer("q1", "A"))
	require.NoError(t, c.Next())
	require.NoError(t, c.RecordAnswer("q2", "B"))

	res, err := c.Submit(context.Background())
	require.NoError(t, err)

	require.Len(t, f.submitted, 1)
	assert.Equal(t, []api.Answer{
		{QuestionID: "q1", UserAnswer: "A"},
		{QuestionID: "q2", UserAnswer: "B"},
	}, f.submitted[0])

	assert.Equal(t, StateCompleted, c.State())
	assert.Equal(t, "rep-9", res.ReportID)
	assert.Equal(t, 8.0, res.Report.Score)
	assert.Equal(t, res, c.Result())
	assert.Equal(t, "rep-9", handedOff)
	assert.Equal(t, []string{
		log.EventSessionLoaded,
		log.EventSubmitStarted,
		log.EventSubmitCompleted,
	}, sink.names())

	// Completed is terminal.
	assert.ErrorIs(t, c.RecordAnswer("q1", "changed"), ErrNotReady)
	assert.Equal(t, "A", c.Draft("q1"))
	_, err = c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestSubmitResponseShapes(t *testing.T) {
	tests := []struct {
		name    string
		resp    *api.SubmitResponse
		wantID  string
		wantErr bool
	}{
		{"nested", &api.SubmitResponse{Report: &api.Report{ID: "r1"}}, "r1", false},
		{"flat", &api.SubmitResponse{ID: "r2"}, "r2", false},
		{"empty", &api.SubmitResponse{}, "", true},
		{"nil body", nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeAPI{interview: interviewWith("q1"), submitResp: tt.resp}
			sink := &memSink{}
			c := loaded(t, f, WithEventSink(sink))
			require.NoError(t, c.RecordAnswer("q1", "answer"))

			res, err := c.Submit(context.Background())
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, res.ReportID)
				assert.Equal(t, StateCompleted, c.State())
				return
			}

			var submitErr *SubmitError
			require.True(t, errors.As(err, &submitErr))
			assert.ErrorIs(t, err, ErrMissingReportID)
			assert.Nil(t, res)
			assert.Equal(t, StateSubmitFailed, c.State())
			assert.Equal(t, map[string]string{"q1": "answer"}, c.Drafts())
			assert.Contains(t, sink.names(), log.EventUnexpectedResponse)
		})
	}
}

func TestSubmitNetworkErrorKeepsSession(t *testing.T) {
	tr := i18n.MustNew(i18n.English)
	f := &fakeAPI{
		interview: interviewWith("q1", "q2"),
		submitErr: &api.Error{Kind: api.KindNetwork, Op: "submit interview", Err: errors.New("connection reset")},
	}
	c := loaded(t, f)
	require.NoError(t, c.RecordAnswer("q1", "A"))
	require.NoError(t, c.Next())
	require.NoError(t, c.RecordAnswer("q2", "B"))
	before := c.Drafts()

	_, err := c.Submit(context.Background())
	var submitErr *SubmitError
	require.True(t, errors.As(err, &submitErr))
	assert.ErrorIs(t, err, api.ErrNetwork)
	assert.Equal(t, "Failed to submit answers. Please try again.", submitErr.Message(tr))

	assert.Equal(t, StateSubmitFailed, c.State())
	assert.Equal(t, 1, c.Cursor())
	assert.Equal(t, before, c.Drafts())
	assert.Equal(t, err, c.Err())

	// Resubmittable: editing works and a retry can succeed.
	require.NoError(t, c.RecordAnswer("q2", "B2"))
	f.submitErr = nil
	f.submitResp = &api.SubmitResponse{ID: "r-retry"}
	res, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r-retry", res.ReportID)
	assert.Nil(t, c.Err())
}

func TestSubmitValidationDetail(t *testing.T) {
	tr := i18n.MustNew(i18n.English)
	f := &fakeAPI{
		interview: interviewWith("q1"),
		submitErr: &api.Error{Kind: api.KindValidation, Op: "submit interview", Status: 422, Detail: "answers: field required"},
	}
	c := loaded(t, f)
	require.NoError(t, c.RecordAnswer("q1", "x"))

	_, err := c.Submit(context.Background())
	var submitErr *SubmitError
	require.True(t, errors.As(err, &submitErr))
	assert.Equal(t, "answers: field required", submitErr.Message(tr))
	assert.ErrorIs(t, err, api.ErrValidation)
}

func TestOverlappingRequestsRejected(t *testing.T) {
	f := &fakeAPI{
		interview:  interviewWith("q1"),
		submitResp: &api.SubmitResponse{ID: "r1"},
		gate:       make(chan struct{}),
		entered:    make(chan struct{}, 1),
	}
	c := New(f, "iv-1")

	loadDone := make(chan error, 1)
	go func() { loadDone <- c.Load(context.Background()) }()
	<-f.entered
	assert.Equal(t, StateLoading, c.State())
	assert.ErrorIs(t, c.Load(context.Background()), ErrBusy)
	f.gate <- struct{}{}
	require.NoError(t, <-loadDone)

	require.NoError(t, c.RecordAnswer("q1", "x"))
	submitDone := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background())
		submitDone <- err
	}()
	<-f.entered
	assert.Equal(t, StateSubmitting, c.State())
	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, c.RecordAnswer("q1", "y"), ErrNotReady, "drafts are frozen while submitting")
	f.gate <- struct{}{}
	require.NoError(t, <-submitDone)
	assert.Equal(t, StateCompleted, c.State())
	assert.Len(t, f.submitted, 1)
}

func TestCloseDiscardsLateResponses(t *testing.T) {
	t.Run("load", func(t *testing.T) {
		f := &fakeAPI{interview: interviewWith("q1"), gate: make(chan struct{}), entered: make(chan struct{}, 1)}
		c := New(f, "iv-1")
		done := make(chan error, 1)
		go func() { done <- c.Load(context.Background()) }()
		<-f.entered

		c.Close()
		assert.ErrorIs(t, <-done, ErrClosed)
		assert.Equal(t, StateLoading, c.State(), "no mutation after teardown")
		assert.Nil(t, c.Interview())
		assert.Nil(t, c.Err())
	})

	t.Run("submit", func(t *testing.T) {
		f := &fakeAPI{
			interview:  interviewWith("q1"),
			submitResp: &api.SubmitResponse{ID: "r1"},
			entered:    make(chan struct{}, 2),
		}
		c := loaded(t, f)
		<-f.entered // the load call
		require.NoError(t, c.RecordAnswer("q1", "x"))

		f.gate = make(chan struct{})
		var handedOff bool
		c.handoff = func(string) { handedOff = true }
		done := make(chan error, 1)
		go func() {
			_, err := c.Submit(context.Background())
			done <- err
		}()
		<-f.entered

		c.Close()
		assert.ErrorIs(t, <-done, ErrClosed)
		assert.Equal(t, StateSubmitting, c.State())
		assert.Nil(t, c.Result())
		assert.False(t, handedOff)
	})
}

func TestRestoreDrafts(t *testing.T) {
	c := loaded(t, &fakeAPI{interview: interviewWith("q1", "q2")})
	n, err := c.RestoreDrafts(map[string]string{"q1": "saved", "gone": "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, map[string]string{"q1": "saved", "q2": ""}, c.Drafts())
}

func TestDuplicateQuestionIDsProjectOnce(t *testing.T) {
	c := loaded(t, &fakeAPI{interview: interviewWith("q1", "q2", "q1")})
	assert.Len(t, c.Drafts(), 2)
	assert.Len(t, c.Answers(), 2)
}

func TestSnapshot(t *testing.T) {
	c := loaded(t, &fakeAPI{interview: interviewWith("q1")})
	require.NoError(t, c.RecordAnswer("q1", "x"))
	snap := c.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.True(t, snap.CanSubmit)

	snap.Drafts["q1"] = "mutated"
	assert.Equal(t, "x", c.Draft("q1"), "snapshot drafts are a copy")
}

func TestProgress(t *testing.T) {
	c := New(&fakeAPI{interview: interviewWith("q1", "q2", "q3")}, "iv-1")
	cur, total := c.Progress()
	assert.Equal(t, 0, cur)
	assert.Equal(t, 0, total)

	require.NoError(t, c.Load(context.Background()))
	require.NoError(t, c.Next())
	cur, total = c.Progress()
	assert.Equal(t, 2, cur)
	assert.Equal(t, 3, total)
}
