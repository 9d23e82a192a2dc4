package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrAttemptNotFound is returned when an attempt id is unknown.
var ErrAttemptNotFound = errors.New("attempt not found")

// Store provides SQLite-backed persistence for attempts.
type Store struct {
	db *sql.DB
}

// NewStore opens the SQLite database at dbPath and creates tables if they don't exist.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS attempts (
		id TEXT PRIMARY KEY,
		interview_id TEXT NOT NULL,
		title TEXT NOT NULL,
		status TEXT NOT NULL,
		report_id TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS attempts_interview ON attempts(interview_id, status);

	CREATE TABLE IF NOT EXISTS drafts (
		attempt_id TEXT NOT NULL,
		question_id TEXT NOT NULL,
		answer TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (attempt_id, question_id),
		FOREIGN KEY (attempt_id) REFERENCES attempts(id)
	);

	CREATE TABLE IF NOT EXISTS prefs (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.Exec(schema)
	return err
}

// ============================================================================
// Attempts
// ============================================================================

// CreateAttempt starts a new in-progress attempt for an interview.
func (s *Store) CreateAttempt(interviewID, title string) (*Attempt, error) {
	id := uuid.New().String()
	now := time.Now()

	_, err := s.db.Exec(
		`INSERT INTO attempts (id, interview_id, title, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, interviewID, title, StatusInProgress, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert attempt: %w", err)
	}

	return &Attempt{
		ID:          id,
		InterviewID: interviewID,
		Title:       title,
		Status:      StatusInProgress,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// GetAttempt retrieves an attempt by ID. It returns nil, nil when absent.
func (s *Store) GetAttempt(id string) (*Attempt, error) {
	row := s.db.QueryRow(
		`SELECT id, interview_id, title, status, report_id, created_at, updated_at
		 FROM attempts WHERE id = ?`,
		id,
	)
	return scanAttempt(row)
}

// LatestInProgress returns the most recently updated unfinished attempt for
// the interview, or nil when there is none.
func (s *Store) LatestInProgress(interviewID string) (*Attempt, error) {
	row := s.db.QueryRow(
		`SELECT id, interview_id, title, status, report_id, created_at, updated_at
		 FROM attempts
		 WHERE interview_id = ? AND status = ?
		 ORDER BY updated_at DESC
		 LIMIT 1`,
		interviewID, StatusInProgress,
	)
	return scanAttempt(row)
}

// CompleteAttempt marks an attempt completed with the report it produced.
func (s *Store) CompleteAttempt(id, reportID string) error {
	return s.updateAttempt(id,
		`UPDATE attempts SET status = ?, report_id = ?, updated_at = ? WHERE id = ?`,
		StatusCompleted, reportID, time.Now(), id)
}

// AbandonAttempt marks an attempt abandoned.
func (s *Store) AbandonAttempt(id string) error {
	return s.updateAttempt(id,
		`UPDATE attempts SET status = ?, updated_at = ? WHERE id = ?`,
		StatusAbandoned, time.Now(), id)
}

// SetAttemptTitle records the interview title once it is known.
func (s *Store) SetAttemptTitle(id, title string) error {
	return s.updateAttempt(id,
		`UPDATE attempts SET title = ?, updated_at = ? WHERE id = ?`,
		title, time.Now(), id)
}

// AbandonInProgress marks every unfinished attempt of an interview abandoned
// and returns how many there were.
func (s *Store) AbandonInProgress(interviewID string) (int, error) {
	result, err := s.db.Exec(
		`UPDATE attempts SET status = ?, updated_at = ? WHERE interview_id = ? AND status = ?`,
		StatusAbandoned, time.Now(), interviewID, StatusInProgress,
	)
	if err != nil {
		return 0, fmt.Errorf("abandon attempts: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rows affected: %w", err)
	}
	return int(n), nil
}

func (s *Store) updateAttempt(id, query string, args ...interface{}) error {
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("update attempt: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update attempt %s: %w", id, ErrAttemptNotFound)
	}
	return nil
}

// ListAttempts returns summaries of the most recent attempts.
func (s *Store) ListAttempts(limit int) ([]Summary, error) {
	rows, err := s.db.Query(
		`SELECT a.id, a.interview_id, a.title, a.status, a.report_id, a.updated_at,
		        COALESCE(SUM(CASE WHEN TRIM(d.answer) != '' THEN 1 ELSE 0 END), 0) AS answered,
		        COALESCE(COUNT(d.question_id), 0) AS drafts
		 FROM attempts a
		 LEFT JOIN drafts d ON a.id = d.attempt_id
		 GROUP BY a.id
		 ORDER BY a.updated_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.InterviewID, &sum.Title, &sum.Status, &sum.ReportID,
			&sum.UpdatedAt, &sum.Answered, &sum.Drafts); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return summaries, nil
}

// FinishedAttempts returns completed and abandoned attempts, least recently
// updated first.
func (s *Store) FinishedAttempts() ([]Attempt, error) {
	rows, err := s.db.Query(
		`SELECT id, interview_id, title, status, report_id, created_at, updated_at
		 FROM attempts
		 WHERE status != ?
		 ORDER BY updated_at ASC`,
		StatusInProgress,
	)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.InterviewID, &a.Title, &a.Status, &a.ReportID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return attempts, nil
}

// DeleteAttempt removes an attempt and its drafts.
func (s *Store) DeleteAttempt(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM drafts WHERE attempt_id = ?`, id); err != nil {
		return fmt.Errorf("delete drafts: %w", err)
	}
	result, err := tx.Exec(`DELETE FROM attempts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete attempt: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("delete attempt %s: %w", id, ErrAttemptNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func scanAttempt(row *sql.Row) (*Attempt, error) {
	var a Attempt
	err := row.Scan(&a.ID, &a.InterviewID, &a.Title, &a.Status, &a.ReportID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan attempt: %w", err)
	}
	return &a, nil
}

// ============================================================================
// Drafts
// ============================================================================

// SaveDraft updates or inserts the draft for one question and bumps the
// attempt's updated_at.
func (s *Store) SaveDraft(attemptID, questionID, answer string) error {
	now := time.Now()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	touched, err := tx.Exec(`UPDATE attempts SET updated_at = ? WHERE id = ?`, now, attemptID)
	if err != nil {
		return fmt.Errorf("touch attempt: %w", err)
	}
	if n, _ := touched.RowsAffected(); n == 0 {
		return fmt.Errorf("save draft for %s: %w", attemptID, ErrAttemptNotFound)
	}

	// Try to update existing record first
	result, err := tx.Exec(
		`UPDATE drafts SET answer = ?, updated_at = ?
		 WHERE attempt_id = ? AND question_id = ?`,
		answer, now, attemptID, questionID,
	)
	if err != nil {
		return fmt.Errorf("update draft: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		_, err = tx.Exec(
			`INSERT INTO drafts (attempt_id, question_id, answer, updated_at)
			 VALUES (?, ?, ?, ?)`,
			attemptID, questionID, answer, now,
		)
		if err != nil {
			return fmt.Errorf("insert draft: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SaveDrafts saves every draft in the map.
func (s *Store) SaveDrafts(attemptID string, drafts map[string]string) error {
	for qid, text := range drafts {
		if err := s.SaveDraft(attemptID, qid, text); err != nil {
			return err
		}
	}
	return nil
}

// GetDrafts returns the saved drafts of an attempt keyed by question id.
func (s *Store) GetDrafts(attemptID string) (map[string]string, error) {
	rows, err := s.db.Query(
		`SELECT question_id, answer FROM drafts WHERE attempt_id = ?`,
		attemptID,
	)
	if err != nil {
		return nil, fmt.Errorf("query drafts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	drafts := make(map[string]string)
	for rows.Next() {
		var qid, answer string
		if err := rows.Scan(&qid, &answer); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		drafts[qid] = answer
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return drafts, nil
}

// ============================================================================
// Preferences
// ============================================================================

// GetPref returns the stored value for key and whether it exists.
func (s *Store) GetPref(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get pref %s: %w", key, err)
	}
	return value, true, nil
}

// SetPref stores value under key, replacing any previous value.
func (s *Store) SetPref(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO prefs (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("set pref %s: %w", key, err)
	}
	return nil
}
