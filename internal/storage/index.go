// Package storage persists the incremental index: content hashes of
// every scanned project file plus a record per generation run. The hash
// table lets a run skip re-rendering pages whose inputs did not change;
// the run table keeps diagnostic counts for reporting.
package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gddoc/internal/diag"
)

const schema = `
CREATE TABLE IF NOT EXISTS files (
	path TEXT PRIMARY KEY,
	hash TEXT NOT NULL,
	kind TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	files_total INTEGER NOT NULL DEFAULT 0,
	files_changed INTEGER NOT NULL DEFAULT 0,
	errors INTEGER NOT NULL DEFAULT 0,
	warnings INTEGER NOT NULL DEFAULT 0,
	dropped_endpoints INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

func (db *DB) initializeSchema() error {
	_, err := db.conn.Exec(schema)
	return err
}

// HashContent returns the content hash used by the file index.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FileChanged reports whether a path's content differs from the indexed
// hash. Unindexed paths count as changed.
func (db *DB) FileChanged(path, hash string) (bool, error) {
	var stored string
	err := db.QueryRow("SELECT hash FROM files WHERE path = ?", path).Scan(&stored)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read file index: %w", err)
	}
	return stored != hash, nil
}

// RecordFile stores or refreshes a path's content hash.
func (db *DB) RecordFile(path, hash, kind string) error {
	_, err := db.Exec(`
		INSERT INTO files (path, hash, kind, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			hash = excluded.hash,
			kind = excluded.kind,
			updated_at = excluded.updated_at`,
		path, hash, kind, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record file: %w", err)
	}
	return nil
}

// FileCount returns the number of indexed files.
func (db *DB) FileCount() (int, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM files").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count files: %w", err)
	}
	return n, nil
}

// Run is one generation run's persisted record.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	FilesTotal   int
	FilesChanged int
	Counts       diag.Counts
}

// StartRun inserts a new run record and returns its id.
func (db *DB) StartRun() (string, error) {
	id := uuid.NewString()
	_, err := db.Exec("INSERT INTO runs (id, started_at) VALUES (?, ?)",
		id, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("failed to start run: %w", err)
	}
	return id, nil
}

// FinishRun closes a run record with its final counters.
func (db *DB) FinishRun(id string, total, changed int, counts diag.Counts) error {
	_, err := db.Exec(`
		UPDATE runs SET
			finished_at = ?,
			files_total = ?,
			files_changed = ?,
			errors = ?,
			warnings = ?,
			dropped_endpoints = ?
		WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339),
		total, changed, counts.Errors, counts.Warnings, counts.DroppedEndpoints, id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// LastRun returns the most recently started finished run, if any.
func (db *DB) LastRun() (*Run, bool, error) {
	var r Run
	var started, finished string
	err := db.QueryRow(`
		SELECT id, started_at, finished_at, files_total, files_changed,
		       errors, warnings, dropped_endpoints
		FROM runs
		WHERE finished_at IS NOT NULL
		ORDER BY started_at DESC
		LIMIT 1`).Scan(
		&r.ID, &started, &finished, &r.FilesTotal, &r.FilesChanged,
		&r.Counts.Errors, &r.Counts.Warnings, &r.Counts.DroppedEndpoints)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read last run: %w", err)
	}
	r.StartedAt, _ = time.Parse(time.RFC3339, started)
	r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
	return &r, true, nil
}
