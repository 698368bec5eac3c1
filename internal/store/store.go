// Package store persists video processing records backed by SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"subburn/internal/subtitle"
)

// Record statuses.
const (
	StatusUploaded   = "uploaded"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Record is a tracked video and the state of its subtitle run.
type Record struct {
	ID         string
	Filename   string
	SourcePath string
	Status     string
	Progress   int
	Error      string
	OutputPath string
	Segments   []subtitle.Segment
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS records (
    id TEXT PRIMARY KEY,
    filename TEXT NOT NULL,
    source_path TEXT NOT NULL,
    status TEXT NOT NULL,
    progress INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT '',
    output_path TEXT NOT NULL DEFAULT '',
    segments_json TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_status ON records(status);
`

// Store manages record persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the record database at dataDir/subburn.db.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "subburn.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path reports the location of the backing database file.
func (s *Store) Path() string {
	return s.path
}

// Create inserts a new uploaded record and returns it.
func (s *Store) Create(ctx context.Context, filename, sourcePath string) (*Record, error) {
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	id := uuid.NewString()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO records (id, filename, source_path, status, progress, created_at, updated_at)
         VALUES (?, ?, ?, ?, 0, ?, ?)`,
		id, filename, sourcePath, StatusUploaded, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}

	return s.GetRecord(ctx, id)
}

// GetRecord fetches a record by id.
func (s *Store) GetRecord(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, filename, source_path, status, progress, error, output_path, segments_json, created_at, updated_at
         FROM records WHERE id = ?`,
		id,
	)
	return scanRecord(row)
}

// List returns all records, newest first.
func (s *Store) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, filename, source_path, status, progress, error, output_path, segments_json, created_at, updated_at
         FROM records ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateStatus sets the record's status, progress, and error message.
func (s *Store) UpdateStatus(ctx context.Context, id, status string, progress int, errMsg string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE records SET status = ?, progress = ?, error = ?, updated_at = ? WHERE id = ?`,
		status, progress, errMsg, timestamp, id,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return requireRow(res, id)
}

// UpdateProgress advances the record's progress counter only.
func (s *Store) UpdateProgress(ctx context.Context, id string, progress int) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE records SET progress = ?, updated_at = ? WHERE id = ?`,
		progress, timestamp, id,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return requireRow(res, id)
}

// UpdateOutput records the rendered video path and final segments of a
// completed run.
func (s *Store) UpdateOutput(ctx context.Context, id, outputPath string, segments []subtitle.Segment) error {
	segmentsJSON, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE records SET status = ?, progress = 100, output_path = ?, segments_json = ?, error = '', updated_at = ?
         WHERE id = ?`,
		StatusCompleted, outputPath, string(segmentsJSON), timestamp, id,
	)
	if err != nil {
		return fmt.Errorf("update output: %w", err)
	}
	return requireRow(res, id)
}

// UpdateSegments replaces the record's stored segments, used when the caller
// supplies edited subtitles for a re-render.
func (s *Store) UpdateSegments(ctx context.Context, id string, segments []subtitle.Segment) error {
	segmentsJSON, err := json.Marshal(segments)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE records SET segments_json = ?, updated_at = ? WHERE id = ?`,
		string(segmentsJSON), timestamp, id,
	)
	if err != nil {
		return fmt.Errorf("update segments: %w", err)
	}
	return requireRow(res, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec          Record
		segmentsJSON string
		createdAt    string
		updatedAt    string
	)
	err := row.Scan(
		&rec.ID, &rec.Filename, &rec.SourcePath, &rec.Status, &rec.Progress,
		&rec.Error, &rec.OutputPath, &segmentsJSON, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}

	if segmentsJSON != "" {
		if err := json.Unmarshal([]byte(segmentsJSON), &rec.Segments); err != nil {
			return nil, fmt.Errorf("decode segments for %s: %w", rec.ID, err)
		}
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at for %s: %w", rec.ID, err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at for %s: %w", rec.ID, err)
	}
	return &rec, nil
}

func requireRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
