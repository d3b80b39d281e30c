// Package journal writes the per-run JSON records of applications,
// questions, preference-match decisions, errors, and session summaries.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	applicationsFile = "applications/job_applications_log.json"
	questionsFile    = "questions/application_questions_log.json"
	preferencesFile  = "preferences/job_preference_matches.json"
	errorsFile       = "errors/errors_log.json"
	summaryFile      = "summary_log.json"
)

// Journal appends structured records to JSON documents under a base
// directory. The mutex serializes the read-modify-write cycle, so a
// Journal is safe to share between the discovery and worker goroutines.
type Journal struct {
	mu  sync.Mutex
	dir string
}

// Application is one attempted job application.
type Application struct {
	URL       string `json:"job_url"`
	Title     string `json:"title,omitempty"`
	Company   string `json:"company,omitempty"`
	Status    string `json:"status"`
	Method    string `json:"application_method,omitempty"`
	Questions int    `json:"questions_answered,omitempty"`
	Reason    string `json:"error_reason,omitempty"`
	Details   string `json:"error_details,omitempty"`
	Timestamp string `json:"application_time"`
}

// Question is one application-form question together with the answer given.
type Question struct {
	URL       string   `json:"job_url"`
	Title     string   `json:"job_title,omitempty"`
	Company   string   `json:"company,omitempty"`
	Kind      string   `json:"question_type"`
	Text      string   `json:"question"`
	Options   []string `json:"options,omitempty"`
	Answer    string   `json:"answer,omitempty"`
	Number    int      `json:"question_number,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// PreferenceMatch is one AI match decision.
type PreferenceMatch struct {
	URL       string `json:"job_url"`
	Title     string `json:"job_title,omitempty"`
	Company   string `json:"company,omitempty"`
	Match     bool   `json:"matches_preferences"`
	Response  string `json:"ai_response,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Failure is one error entry.
type Failure struct {
	URL       string `json:"url"`
	Kind      string `json:"error_type"`
	Details   string `json:"details"`
	Timestamp string `json:"timestamp"`
}

// Summary describes one completed run.
type Summary struct {
	Succeeded int    `json:"successful_applications"`
	Failed    int    `json:"failed_applications"`
	Skipped   int    `json:"skipped_applications"`
	Total     int    `json:"total_processed"`
	Timestamp string `json:"timestamp"`
}

// Open creates the journal directory tree.
func Open(dir string) (*Journal, error) {
	if dir == "" {
		return nil, errors.New("journal directory is required")
	}

	for _, sub := range []string{"applications", "questions", "preferences", "errors"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	return &Journal{dir: dir}, nil
}

func (j *Journal) Dir() string {
	return j.dir
}

// Application records an application outcome. Failed applications are
// mirrored into the errors journal.
func (j *Journal) Application(app Application) error {
	if app.Timestamp == "" {
		app.Timestamp = Now()
	}

	if err := j.appendEntry(filepath.Join(j.dir, applicationsFile), "applications", app); err != nil {
		return err
	}

	if app.Status == "failed" {
		return j.Error(Failure{
			URL:       app.URL,
			Kind:      app.Reason,
			Details:   app.Details,
			Timestamp: app.Timestamp,
		})
	}
	return nil
}

func (j *Journal) Question(q Question) error {
	if q.Timestamp == "" {
		q.Timestamp = Now()
	}
	return j.appendEntry(filepath.Join(j.dir, questionsFile), "questions", q)
}

func (j *Journal) PreferenceMatch(m PreferenceMatch) error {
	if m.Timestamp == "" {
		m.Timestamp = Now()
	}
	return j.appendEntry(filepath.Join(j.dir, preferencesFile), "preference_matches", m)
}

func (j *Journal) Error(f Failure) error {
	if f.Timestamp == "" {
		f.Timestamp = Now()
	}
	if f.Kind == "" {
		f.Kind = "unknown"
	}
	return j.appendEntry(filepath.Join(j.dir, errorsFile), "errors", f)
}

func (j *Journal) Summary(s Summary) error {
	if s.Timestamp == "" {
		s.Timestamp = Now()
	}
	s.Total = s.Succeeded + s.Failed + s.Skipped
	return j.appendEntry(filepath.Join(j.dir, summaryFile), "sessions", s)
}

// Now is the timestamp format shared by all journal entries.
func Now() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

// appendEntry loads the JSON document at path, appends entry to the named
// array, and rewrites the document. A missing or corrupt document is
// replaced by a fresh one.
func (j *Journal) appendEntry(path, key string, entry any) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	doc := make(map[string]json.RawMessage)

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, &doc); err != nil {
			doc = make(map[string]json.RawMessage)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read journal %s: %w", path, err)
	}

	var entries []json.RawMessage
	if raw, ok := doc[key]; ok {
		// Corrupt arrays are dropped rather than failing the run.
		_ = json.Unmarshal(raw, &entries)
	}

	encoded, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}
	entries = append(entries, encoded)

	updated, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode journal entries: %w", err)
	}
	doc[key] = updated

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode journal document: %w", err)
	}

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write journal %s: %w", path, err)
	}
	return nil
}
