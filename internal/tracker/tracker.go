// Package tracker persists which listings have already been processed so a
// new run never re-applies to the same posting.
package tracker

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Outcome of processing a single listing.
const (
	StatusApplied = "applied"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

const schema = `
CREATE TABLE IF NOT EXISTS processed_jobs (
	url          TEXT PRIMARY KEY,
	title        TEXT NOT NULL DEFAULT '',
	company      TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	detail       TEXT NOT NULL DEFAULT '',
	processed_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_processed_jobs_status ON processed_jobs (status);
`

// Store is a sqlite-backed record of processed listings.
type Store struct {
	db *sql.DB
}

// Open creates the database file (and parent directory) if needed and
// applies the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("tracker database path is required")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create tracker directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open tracker database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply tracker schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record describes one processed listing.
type Record struct {
	URL         string
	Title       string
	Company     string
	Status      string
	Detail      string
	ProcessedAt time.Time
}

// MarkProcessed upserts the record. A later outcome for the same URL
// replaces the earlier one.
func (s *Store) MarkProcessed(rec Record) error {
	if rec.URL == "" {
		return errors.New("record url is required")
	}
	if rec.ProcessedAt.IsZero() {
		rec.ProcessedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO processed_jobs (url, title, company, status, detail, processed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			company = excluded.company,
			status = excluded.status,
			detail = excluded.detail,
			processed_at = excluded.processed_at
	`, rec.URL, rec.Title, rec.Company, rec.Status, rec.Detail, rec.ProcessedAt)
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

func (s *Store) IsProcessed(url string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM processed_jobs WHERE url = ?`, url).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query processed: %w", err)
	}
	return true, nil
}

// ProcessedURLs returns every known URL, most recent first.
func (s *Store) ProcessedURLs() ([]string, error) {
	rows, err := s.db.Query(`SELECT url FROM processed_jobs ORDER BY processed_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query processed urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

// CountByStatus returns the number of processed listings per outcome.
func (s *Store) CountByStatus() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(1) FROM processed_jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
