// Package testutil provides test helpers shared across packages.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/interviewer-dev/interviewer/internal/api"
)

// TempDir creates a temporary directory with the given files and returns its path.
// Files is a map of relative path -> content. Directories are created as needed.
// The directory is automatically cleaned up when the test finishes.
func TempDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	for relPath, content := range files {
		absPath := filepath.Join(dir, relPath)
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			t.Fatalf("creating directory for %s: %v", relPath, err)
		}
		if err := os.WriteFile(absPath, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", relPath, err)
		}
	}

	return dir
}

// Interview returns an interview whose questions have the given ids.
// Question text is "Question <id>".
func Interview(id string, questionIDs ...string) api.Interview {
	iv := api.Interview{
		ID:              id,
		Title:           "Interview " + id,
		Level:           api.Middle,
		DurationMinutes: 30,
	}
	for _, qid := range questionIDs {
		iv.Questions = append(iv.Questions, api.Question{
			ID:    qid,
			Text:  "Question " + qid,
			Level: api.Junior,
		})
	}
	return iv
}

// SubmitShape selects the body the fake returns from the submit endpoint.
type SubmitShape int

const (
	// SubmitNested answers {"report": {...}}.
	SubmitNested SubmitShape = iota
	// SubmitFlat answers with the report fields at the top level.
	SubmitFlat
	// SubmitEmpty answers {} with no report id.
	SubmitEmpty
)

// FakeAPI is an in-memory interviewer server. Submitting an interview grades
// it as a fixed report and stores the answers for later inspection.
type FakeAPI struct {
	*httptest.Server

	mu          sync.Mutex
	interviews  map[string]api.Interview
	order       []string
	reports     map[string]api.Report
	answers     map[string][]api.AnswerRecord
	tags        []api.Tag
	questions   []api.Question
	submissions map[string][][]api.Answer
	deleted     []string
	nextReport  int

	shape        SubmitShape
	submitStatus int
	submitDetail string
}

// NewFakeAPI starts a FakeAPI that is closed when the test finishes.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		interviews:  make(map[string]api.Interview),
		reports:     make(map[string]api.Report),
		answers:     make(map[string][]api.AnswerRecord),
		submissions: make(map[string][][]api.Answer),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/interviews", f.listInterviews)
	mux.HandleFunc("GET /api/interviews/{id}", f.getInterview)
	mux.HandleFunc("POST /api/interviews/generate", f.generateInterview)
	mux.HandleFunc("POST /api/interviews/{id}/submit", f.submit)
	mux.HandleFunc("GET /api/reports", f.listReports)
	mux.HandleFunc("GET /api/reports/{id}", f.getReport)
	mux.HandleFunc("GET /api/reports/{id}/answers", f.getReportAnswers)
	mux.HandleFunc("DELETE /api/reports/{id}", f.deleteReport)
	mux.HandleFunc("GET /api/tags", f.listTags)
	mux.HandleFunc("GET /api/tags/{id}", f.getTag)
	mux.HandleFunc("GET /api/tags/{id}/questions", f.getTagQuestions)
	mux.HandleFunc("GET /api/questions", f.listQuestions)
	mux.HandleFunc("GET /api/questions/{id}", f.getQuestion)
	mux.HandleFunc("POST /api/questions/generate", f.generateQuestions)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// Client returns an API client pointed at the fake.
func (f *FakeAPI) Client(t *testing.T) *api.Client {
	t.Helper()
	c, err := api.NewClient(f.URL, api.WithHTTPClient(f.Server.Client()))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

// AddInterview registers an interview.
func (f *FakeAPI) AddInterview(iv api.Interview) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.interviews[iv.ID]; !ok {
		f.order = append(f.order, iv.ID)
	}
	f.interviews[iv.ID] = iv
}

// AddReport registers a report and the graded answers behind it.
func (f *FakeAPI) AddReport(r api.Report, answers []api.AnswerRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports[r.ID] = r
	if answers != nil {
		f.answers[r.ID] = answers
	}
}

// AddTag registers a tag.
func (f *FakeAPI) AddTag(tag api.Tag) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags = append(f.tags, tag)
}

// AddQuestion registers a question in the question bank.
func (f *FakeAPI) AddQuestion(q api.Question) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions = append(f.questions, q)
}

// SetShape selects the submit response body format.
func (f *FakeAPI) SetShape(shape SubmitShape) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shape = shape
}

// FailSubmit makes submit answer with status and a {"detail": ...} body.
// A zero status restores normal grading.
func (f *FakeAPI) FailSubmit(status int, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitStatus = status
	f.submitDetail = detail
}

// Submissions returns every payload posted for an interview, oldest first.
func (f *FakeAPI) Submissions(interviewID string) [][]api.Answer {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]api.Answer, len(f.submissions[interviewID]))
	copy(out, f.submissions[interviewID])
	return out
}

// Deleted returns the ids of deleted reports.
func (f *FakeAPI) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// ============================================================================
// Handlers
// ============================================================================

func (f *FakeAPI) listInterviews(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	out := make([]api.Interview, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.interviews[id])
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, window(out, r))
}

func (f *FakeAPI) getInterview(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	iv, ok := f.interviews[r.PathValue("id")]
	f.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Interview not found")
		return
	}
	writeJSON(w, http.StatusOK, iv)
}

func (f *FakeAPI) generateInterview(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateInterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "prompt is required")
		return
	}

	f.mu.Lock()
	id := fmt.Sprintf("gen-%d", len(f.order)+1)
	f.mu.Unlock()

	iv := Interview(id, id+"-q1", id+"-q2")
	iv.Title = req.Prompt
	if req.TagName != "" {
		for i := range iv.Questions {
			iv.Questions[i].Tags = []api.Tag{{ID: req.TagName, Name: req.TagName}}
		}
	}
	f.AddInterview(iv)
	writeJSON(w, http.StatusOK, iv)
}

func (f *FakeAPI) submit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var body struct {
		Answers []api.Answer `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "malformed body")
		return
	}

	f.mu.Lock()
	f.submissions[id] = append(f.submissions[id], body.Answers)
	_, known := f.interviews[id]
	status, detail, shape := f.submitStatus, f.submitDetail, f.shape
	f.mu.Unlock()

	if status != 0 {
		writeDetail(w, status, detail)
		return
	}
	if !known {
		writeDetail(w, http.StatusNotFound, "Interview not found")
		return
	}

	rep := f.grade(id, body.Answers)
	switch shape {
	case SubmitFlat:
		writeJSON(w, http.StatusOK, rep)
	case SubmitEmpty:
		writeJSON(w, http.StatusOK, struct{}{})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"report": rep})
	}
}

// grade stores a report for the submission and returns it.
func (f *FakeAPI) grade(interviewID string, answers []api.Answer) api.Report {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextReport++
	rep := api.Report{
		ID:            "rep-" + strconv.Itoa(f.nextReport),
		InterviewID:   interviewID,
		Feedback:      "Solid answers.",
		Assessment:    "Ready for the next level.",
		AchievedLevel: api.Middle,
		Score:         7.5,
	}
	records := make([]api.AnswerRecord, 0, len(answers))
	for i, a := range answers {
		records = append(records, api.AnswerRecord{
			ID:            fmt.Sprintf("%s-a%d", rep.ID, i+1),
			QuestionID:    a.QuestionID,
			UserAnswer:    a.UserAnswer,
			CorrectAnswer: "Reference for " + a.QuestionID,
		})
	}
	f.reports[rep.ID] = rep
	f.answers[rep.ID] = records
	return rep
}

func (f *FakeAPI) listReports(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	out := make([]api.Report, 0, len(f.reports))
	for _, rep := range f.reports {
		out = append(out, rep)
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, window(out, r))
}

func (f *FakeAPI) getReport(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	rep, ok := f.reports[r.PathValue("id")]
	f.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Report not found")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (f *FakeAPI) getReportAnswers(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	answers, ok := f.answers[r.PathValue("id")]
	f.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Answers not found")
		return
	}
	writeJSON(w, http.StatusOK, answers)
}

func (f *FakeAPI) deleteReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	f.mu.Lock()
	_, ok := f.reports[id]
	if ok {
		delete(f.reports, id)
		delete(f.answers, id)
		f.deleted = append(f.deleted, id)
	}
	f.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Report not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeAPI) listTags(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	out := append([]api.Tag{}, f.tags...)
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) getTag(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tags {
		if t.ID == id {
			writeJSON(w, http.StatusOK, t)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Tag not found")
}

func (f *FakeAPI) getTagQuestions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	f.mu.Lock()
	out := []api.Question{}
	for _, q := range f.questions {
		for _, t := range q.Tags {
			if t.ID == id {
				out = append(out, q)
				break
			}
		}
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) generateQuestions(w http.ResponseWriter, r *http.Request) {
	var req api.GenerateQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "prompt is required")
		return
	}

	f.mu.Lock()
	n := len(f.questions)
	q := api.Question{
		ID:    fmt.Sprintf("gq-%d", n+1),
		Text:  req.Prompt + "?",
		Level: api.Junior,
	}
	f.questions = append(f.questions, q)
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"questions": []api.Question{q}})
}

// listQuestions filters by tag name and difficulty before paging, like the
// real server.
func (f *FakeAPI) listQuestions(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")
	difficulty := r.URL.Query().Get("difficulty")

	f.mu.Lock()
	out := []api.Question{}
	for _, q := range f.questions {
		if difficulty != "" && q.Level.String() != difficulty {
			continue
		}
		if tag != "" && !hasTag(q, tag) {
			continue
		}
		out = append(out, q)
	}
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, window(out, r))
}

func (f *FakeAPI) getQuestion(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.questions {
		if q.ID == r.PathValue("id") {
			writeJSON(w, http.StatusOK, q)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "Question not found")
}

func hasTag(q api.Question, name string) bool {
	for _, t := range q.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// window applies the skip/limit query parameters.
func window[T any](items []T, r *http.Request) []T {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if skip > len(items) {
		skip = len(items)
	}
	items = items[skip:]
	if err == nil && limit >= 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
