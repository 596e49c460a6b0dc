// Package state persists page fingerprints and run history between
// enhancement runs so unchanged pages can be skipped.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/inful/mdfp"
	_ "modernc.org/sqlite"
)

// PageRecord is the stored enhancement state of a single page.
type PageRecord struct {
	Path        string
	Fingerprint string
	RunID       string
	EnhancedAt  time.Time
	Buttons     int
	Tables      int
	Anchors     int
}

// Run is the stored summary of one enhancement run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Enhanced   int
	Skipped    int
	Failed     int
	Outcome    string
}

// Store is a SQLite-backed state store.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (and if needed creates) the state database.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create state directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	// Single connection: avoids SQLITE_BUSY on concurrent writers and keeps
	// a ":memory:" database on one connection instead of one per pool slot.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		path TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		run_id TEXT NOT NULL,
		enhanced_at INTEGER NOT NULL,
		buttons INTEGER NOT NULL DEFAULT 0,
		tables INTEGER NOT NULL DEFAULT 0,
		anchors INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_pages_run_id ON pages(run_id);
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		pages_total INTEGER NOT NULL,
		pages_enhanced INTEGER NOT NULL,
		pages_skipped INTEGER NOT NULL,
		pages_failed INTEGER NOT NULL,
		outcome TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ContentFingerprint computes the canonical fingerprint of page content.
// Pages carry no frontmatter, so only the body part contributes.
func ContentFingerprint(content []byte) string {
	return mdfp.CalculateFingerprintFromParts("", string(content))
}

// Fingerprint returns the stored fingerprint for a page path.
// The second return value reports whether the page is known.
func (s *Store) Fingerprint(ctx context.Context, path string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var fingerprint string
	err := s.db.QueryRowContext(ctx,
		"SELECT fingerprint FROM pages WHERE path = ?", path,
	).Scan(&fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query page fingerprint: %w", err)
	}

	return fingerprint, true, nil
}

// Unchanged reports whether a page's stored fingerprint matches the given one.
func (s *Store) Unchanged(ctx context.Context, path, fingerprint string) (bool, error) {
	stored, known, err := s.Fingerprint(ctx, path)
	if err != nil {
		return false, err
	}
	return known && stored == fingerprint, nil
}

// RecordPage upserts the enhancement state of a page.
func (s *Store) RecordPage(ctx context.Context, page PageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pages (path, fingerprint, run_id, enhanced_at, buttons, tables, anchors)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET fingerprint = excluded.fingerprint,
		 run_id = excluded.run_id, enhanced_at = excluded.enhanced_at,
		 buttons = excluded.buttons, tables = excluded.tables, anchors = excluded.anchors`,
		page.Path, page.Fingerprint, page.RunID, page.EnhancedAt.Unix(),
		page.Buttons, page.Tables, page.Anchors,
	)
	if err != nil {
		return fmt.Errorf("record page: %w", err)
	}

	return nil
}

// ForgetPage drops the stored state of a page, forcing re-enhancement.
func (s *Store) ForgetPage(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM pages WHERE path = ?", path); err != nil {
		return fmt.Errorf("forget page: %w", err)
	}
	return nil
}

// Pages returns all stored page records ordered by path.
func (s *Store) Pages(ctx context.Context) ([]PageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT path, fingerprint, run_id, enhanced_at, buttons, tables, anchors
		 FROM pages ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	var pages []PageRecord
	for rows.Next() {
		var page PageRecord
		var enhancedUnix int64
		err := rows.Scan(&page.Path, &page.Fingerprint, &page.RunID, &enhancedUnix,
			&page.Buttons, &page.Tables, &page.Anchors)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		page.EnhancedAt = time.Unix(enhancedUnix, 0)
		pages = append(pages, page)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}

	return pages, nil
}

// RecordRun stores the summary of a finished run.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, pages_total, pages_enhanced,
		 pages_skipped, pages_failed, outcome) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.Unix(), run.FinishedAt.Unix(),
		run.Total, run.Enhanced, run.Skipped, run.Failed, run.Outcome,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	return nil
}

// LastRun returns the most recent run, or nil when none is recorded.
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	runs, err := s.RecentRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, pages_total, pages_enhanced,
		 pages_skipped, pages_failed, outcome FROM runs
		 ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedUnix, finishedUnix int64
		err := rows.Scan(&run.ID, &startedUnix, &finishedUnix,
			&run.Total, &run.Enhanced, &run.Skipped, &run.Failed, &run.Outcome)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = time.Unix(startedUnix, 0)
		run.FinishedAt = time.Unix(finishedUnix, 0)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// PruneRuns deletes all but the newest keep runs and returns how many
// rows were removed.
func (s *Store) PruneRuns(ctx context.Context, keep int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 0 {
		keep = 0
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (
		 SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count pruned runs: %w", err)
	}

	return int(removed), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
