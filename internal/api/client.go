package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000"

// maxErrorBody bounds how much of an error response is read for its detail.
const maxErrorBody = 1 << 20

// Client talks to the interviewer API over HTTP.
//
// No request timeout is applied: question generation and grading can take
// minutes. Callers bound requests through the context they pass in.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a Client rooted at baseURL (e.g. "http://localhost:8000").
// An empty baseURL falls back to DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ============================================================================
// Interviews
// ============================================================================

// GetInterview fetches a single interview with its questions.
func (c *Client) GetInterview(ctx context.Context, id string) (*Interview, error) {
	var out Interview
	if err := c.do(ctx, "get interview", http.MethodGet, "/api/interviews/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListInterviews returns one page of interviews. page is 1-based.
func (c *Client) ListInterviews(ctx context.Context, page, limit int) ([]Interview, error) {
	var out []Interview
	if err := c.do(ctx, "list interviews", http.MethodGet, "/api/interviews", pageQuery(page, limit), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateInterview asks the server to assemble an interview for prompt,
// optionally restricted to questions carrying tagName.
func (c *Client) GenerateInterview(ctx context.Context, prompt, tagName string) (*Interview, error) {
	req := GenerateInterviewRequest{Prompt: prompt, TagName: tagName}
	var out Interview
	if err := c.do(ctx, "generate interview", http.MethodPost, "/api/interviews/generate", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitInterview posts the answers for grading. The returned response may
// carry the report in either shape; see SubmitResponse.
func (c *Client) SubmitInterview(ctx context.Context, id string, answers []Answer) (*SubmitResponse, error) {
	if answers == nil {
		answers = []Answer{}
	}
	var out SubmitResponse
	if err := c.do(ctx, "submit interview", http.MethodPost, "/api/interviews/"+url.PathEscape(id)+"/submit", nil, submitRequest{Answers: answers}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Questions
// ============================================================================

// QuestionFilter narrows the question bank listing. Zero fields do not filter.
type QuestionFilter struct {
	Tag   string // tag name
	Level Level
	Page  int
	Limit int
}

func (f QuestionFilter) query() url.Values {
	q := pageQuery(f.Page, f.Limit)
	if f.Tag != "" {
		q.Set("tag", f.Tag)
	}
	if f.Level.Valid() {
		q.Set("difficulty", f.Level.String())
	}
	return q
}

// ListQuestions returns the questions matching filter, newest first.
func (c *Client) ListQuestions(ctx context.Context, filter QuestionFilter) ([]Question, error) {
	var out []Question
	if err := c.do(ctx, "list questions", http.MethodGet, "/api/questions", filter.query(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateQuestions asks the server to generate questions for prompt.
func (c *Client) GenerateQuestions(ctx context.Context, prompt string) ([]Question, error) {
	var out generateQuestionsResponse
	if err := c.do(ctx, "generate questions", http.MethodPost, "/api/questions/generate", nil, GenerateQuestionsRequest{Prompt: prompt}, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

// GetQuestion fetches a single question.
func (c *Client) GetQuestion(ctx context.Context, id string) (*Question, error) {
	var out Question
	if err := c.do(ctx, "get question", http.MethodGet, "/api/questions/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// Tags
// ============================================================================

// ListTags returns all tags.
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	var out []Tag
	if err := c.do(ctx, "list tags", http.MethodGet, "/api/tags", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTag fetches a single tag.
func (c *Client) GetTag(ctx context.Context, id string) (*Tag, error) {
	var out Tag
	if err := c.do(ctx, "get tag", http.MethodGet, "/api/tags/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTagQuestions returns the questions carrying the tag.
func (c *Client) GetTagQuestions(ctx context.Context, id string) ([]Question, error) {
	var out []Question
	if err := c.do(ctx, "get tag questions", http.MethodGet, "/api/tags/"+url.PathEscape(id)+"/questions", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ============================================================================
// Reports
// ============================================================================

// ListReports returns one page of reports. page is 1-based.
func (c *Client) ListReports(ctx context.Context, page, limit int) ([]Report, error) {
	var out []Report
	if err := c.do(ctx, "list reports", http.MethodGet, "/api/reports", pageQuery(page, limit), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetReport fetches a single report.
func (c *Client) GetReport(ctx context.Context, id string) (*Report, error) {
	var out Report
	if err := c.do(ctx, "get report", http.MethodGet, "/api/reports/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReportAnswers returns the graded answers behind a report.
func (c *Client) GetReportAnswers(ctx context.Context, id string) ([]AnswerRecord, error) {
	var out []AnswerRecord
	if err := c.do(ctx, "get report answers", http.MethodGet, "/api/reports/"+url.PathEscape(id)+"/answers", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteReport removes a report.
func (c *Client) DeleteReport(ctx context.Context, id string) error {
	return c.do(ctx, "delete report", http.MethodDelete, "/api/reports/"+url.PathEscape(id), nil, nil, nil)
}

// ============================================================================
// Transport
// ============================================================================

// pageQuery converts a 1-based page into the server's skip/limit window.
func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if limit <= 0 {
		return q
	}
	if page < 1 {
		page = 1
	}
	q.Set("skip", strconv.Itoa((page-1)*limit))
	q.Set("limit", strconv.Itoa(limit))
	return q
}

// do sends one JSON request and decodes the JSON response into out.
// out may be nil when the body is not needed.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &Error{Kind: KindValidation, Op: op, Err: fmt.Errorf("encoding request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return &Error{Kind: KindNetwork, Op: op, Err: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Prefer the context error so callers can match context.Canceled.
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return statusError(op, resp.StatusCode, data)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return &Error{Kind: KindNetwork, Op: op, Status: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindDecode, Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
