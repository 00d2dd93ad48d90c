// Package baseline persists the last-cascaded content of each document in a
// local SQLite database. An absent baseline means "treat the whole document
// as changed" and is reported via ErrNoBaseline, never conflated with an
// empty-string baseline.
package baseline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// ErrNoBaseline is returned when no baseline exists for a document.
var ErrNoBaseline = errors.New("no baseline recorded")

// schema contains the DDL executed on first open. Using IF NOT EXISTS makes
// it safe to run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS baselines (
    artifact   TEXT NOT NULL,
    phase      TEXT NOT NULL,
    content    TEXT NOT NULL,
    run_id     TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (artifact, phase)
);
`

// Entry describes a stored baseline without its content.
type Entry struct {
	Artifact  string
	Phase     string
	RunID     string
	UpdatedAt time.Time
}

// Store is a baseline store backed by a local SQLite database in WAL mode.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dbPath, enables WAL mode and a
// busy timeout, and creates the schema if needed.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("baseline: open database: %w", err)
	}

	// SQLite supports a single writer; one connection avoids SQLITE_BUSY
	// contention between pooled connections that each need PRAGMA setup.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("baseline: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("baseline: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("baseline: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the baseline content for a document, or ErrNoBaseline if none
// has been recorded. An empty string is a valid stored baseline.
func (s *Store) Get(ctx context.Context, artifactID, phase string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx,
		"SELECT content FROM baselines WHERE artifact = ? AND phase = ?",
		artifactID, phase).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s.%s", ErrNoBaseline, artifactID, phase)
	}
	if err != nil {
		return "", fmt.Errorf("baseline: get %s.%s: %w", artifactID, phase, err)
	}
	return content, nil
}

// Put upserts the baseline content for a document, recording the cascade
// run that produced it.
func (s *Store) Put(ctx context.Context, artifactID, phase, content, runID string) error {
	const q = `
		INSERT INTO baselines (artifact, phase, content, run_id, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(artifact, phase) DO UPDATE SET
			content = excluded.content,
			run_id = excluded.run_id,
			updated_at = CURRENT_TIMESTAMP`
	if _, err := s.db.ExecContext(ctx, q, artifactID, phase, content, runID); err != nil {
		return fmt.Errorf("baseline: put %s.%s: %w", artifactID, phase, err)
	}
	return nil
}

// Delete removes the baseline for a document. Deleting a missing baseline
// is a no-op.
func (s *Store) Delete(ctx context.Context, artifactID, phase string) error {
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM baselines WHERE artifact = ? AND phase = ?",
		artifactID, phase); err != nil {
		return fmt.Errorf("baseline: delete %s.%s: %w", artifactID, phase, err)
	}
	return nil
}

// Stat returns baseline metadata for a document without loading its
// content, or ErrNoBaseline if none exists.
func (s *Store) Stat(ctx context.Context, artifactID, phase string) (*Entry, error) {
	e := &Entry{Artifact: artifactID, Phase: phase}
	err := s.db.QueryRowContext(ctx,
		"SELECT run_id, updated_at FROM baselines WHERE artifact = ? AND phase = ?",
		artifactID, phase).Scan(&e.RunID, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoBaseline, artifactID, phase)
	}
	if err != nil {
		return nil, fmt.Errorf("baseline: stat %s.%s: %w", artifactID, phase, err)
	}
	return e, nil
}

// List returns metadata for every stored baseline, ordered by artifact then
// phase.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT artifact, phase, run_id, updated_at FROM baselines ORDER BY artifact, phase")
	if err != nil {
		return nil, fmt.Errorf("baseline: list: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Artifact, &e.Phase, &e.RunID, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("baseline: scan row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("baseline: iterate rows: %w", err)
	}
	return entries, nil
}
