// Package attempt ties an interview session to its local record: which
// attempt it is, the drafts saved so far, and how it ended.
package attempt

import (
	"fmt"
	"sync"

	"github.com/interviewer-dev/interviewer/internal/session"
	"github.com/interviewer-dev/interviewer/internal/store"
)

// Store is the subset of *store.Store the tracker needs.
type Store interface {
	CreateAttempt(interviewID, title string) (*store.Attempt, error)
	LatestInProgress(interviewID string) (*store.Attempt, error)
	AbandonInProgress(interviewID string) (int, error)
	SetAttemptTitle(id, title string) error
	GetDrafts(attemptID string) (map[string]string, error)
	SaveDrafts(attemptID string, drafts map[string]string) error
	CompleteAttempt(id, reportID string) error
	AbandonAttempt(id string) error
}

// Tracker records one attempt. A Tracker built without a store does nothing,
// so callers never need to check whether persistence is available.
type Tracker struct {
	store   Store
	attempt *store.Attempt
	resumed bool

	mu      sync.Mutex
	saved   map[string]string
	lastErr error
}

// Begin finds or creates the attempt for interviewID. With resume set, the
// most recent unfinished attempt is continued; otherwise earlier unfinished
// attempts are abandoned and a fresh one is started.
func Begin(st Store, interviewID string, resume bool) (*Tracker, error) {
	t := &Tracker{store: st}
	if st == nil {
		return t, nil
	}

	if resume {
		open, err := st.LatestInProgress(interviewID)
		if err != nil {
			return nil, fmt.Errorf("finding unfinished attempt: %w", err)
		}
		if open != nil {
			t.attempt = open
			t.resumed = true
			return t, nil
		}
	} else if _, err := st.AbandonInProgress(interviewID); err != nil {
		return nil, fmt.Errorf("abandoning unfinished attempts: %w", err)
	}

	a, err := st.CreateAttempt(interviewID, "")
	if err != nil {
		return nil, fmt.Errorf("starting attempt: %w", err)
	}
	t.attempt = a
	return t, nil
}

// ID returns the attempt id, or "" without a store.
func (t *Tracker) ID() string {
	if t.attempt == nil {
		return ""
	}
	return t.attempt.ID
}

// Resumed reports whether an unfinished attempt was continued.
func (t *Tracker) Resumed() bool {
	return t.resumed
}

// Restore runs once the controller is Ready: it records the interview title
// and, for a resumed attempt, applies the saved drafts. It returns how many
// drafts were restored.
func (t *Tracker) Restore(ctrl *session.Controller) (int, error) {
	if t.store == nil {
		return 0, nil
	}
	if iv := ctrl.Interview(); iv != nil && t.attempt.Title != iv.Title {
		if err := t.store.SetAttemptTitle(t.attempt.ID, iv.Title); err != nil {
			return 0, err
		}
		t.attempt.Title = iv.Title
	}
	if !t.resumed {
		return 0, nil
	}

	saved, err := t.store.GetDrafts(t.attempt.ID)
	if err != nil {
		return 0, err
	}
	n, err := ctrl.RestoreDrafts(saved)
	if err != nil {
		return 0, err
	}
	t.mu.Lock()
	t.saved = saved
	t.mu.Unlock()
	return n, nil
}

// Save persists the drafts that changed since the last save.
func (t *Tracker) Save(drafts map[string]string) error {
	if t.store == nil {
		return nil
	}
	t.mu.Lock()
	changed := make(map[string]string)
	for qid, text := range drafts {
		if prev, ok := t.saved[qid]; !ok || prev != text {
			changed[qid] = text
		}
	}
	t.mu.Unlock()
	if len(changed) == 0 {
		return nil
	}

	if err := t.store.SaveDrafts(t.attempt.ID, changed); err != nil {
		return err
	}

	t.mu.Lock()
	if t.saved == nil {
		t.saved = make(map[string]string, len(changed))
	}
	for qid, text := range changed {
		t.saved[qid] = text
	}
	t.mu.Unlock()
	return nil
}

// Handoff returns the completion callback for session.WithHandoff. It marks
// the attempt completed with the report id; a failure is kept for Err.
func (t *Tracker) Handoff() session.Handoff {
	return func(reportID string) {
		if t.store == nil {
			return
		}
		if err := t.store.CompleteAttempt(t.attempt.ID, reportID); err != nil {
			t.mu.Lock()
			t.lastErr = err
			t.mu.Unlock()
		}
	}
}

// Err returns the error of the last completion callback, if any.
func (t *Tracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

// Abandon marks the attempt abandoned.
func (t *Tracker) Abandon() error {
	if t.store == nil {
		return nil
	}
	return t.store.AbandonAttempt(t.attempt.ID)
}
