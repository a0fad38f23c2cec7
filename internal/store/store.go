// Package store persists the submission ledger backed by SQLite: every
// accepted delivery, every rejection, and the end-of-period snapshots
// handed to report collaborators.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the
// schema changes; existing databases must be cleared afterwards.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different
// release.
var ErrSchemaMismatch = errors.New("store: schema version mismatch")

// Submission is one accepted delivery.
type Submission struct {
	ID          int64
	SessionID   string
	Period      string
	Unit        string
	Category    string
	Filename    string
	StoredPath  string
	StampedDate string
	Strategy    string
	Score       float64
	Source      string
	ReceivedAt  time.Time
}

// Rejection is one refused filename with its reason.
type Rejection struct {
	ID         int64
	SessionID  string
	Period     string
	Filename   string
	Reason     string
	BestScore  float64
	Detail     string
	ReceivedAt time.Time
}

// Snapshot is a point-in-time summary of the satisfaction grid. Payload
// carries the full grid as JSON for the report side.
type Snapshot struct {
	ID        int64
	SessionID string
	Period    string
	Pending   int
	Partial   int
	Satisfied int
	Payload   any
	CreatedAt time.Time
}

// Store manages ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database in dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dbPath := filepath.Join(dir, "ledger.db")
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

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// RecordSubmission appends an accepted delivery to the ledger.
func (s *Store) RecordSubmission(ctx context.Context, sub Submission) (int64, error) {
	if sub.ReceivedAt.IsZero() {
		sub.ReceivedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO submissions (
            session_id, period, unit, category, filename, stored_path,
            stamped_date, strategy, score, source, received_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.SessionID, sub.Period, sub.Unit, sub.Category, sub.Filename,
		sub.StoredPath, sub.StampedDate, sub.Strategy, sub.Score, sub.Source,
		sub.ReceivedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert submission: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// RecordRejection appends a refused filename to the ledger.
func (s *Store) RecordRejection(ctx context.Context, rej Rejection) (int64, error) {
	if rej.ReceivedAt.IsZero() {
		rej.ReceivedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO rejections (
            session_id, period, filename, reason, best_score, detail, received_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rej.SessionID, rej.Period, rej.Filename, rej.Reason, rej.BestScore,
		rej.Detail, rej.ReceivedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert rejection: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// RecordSnapshot appends a grid snapshot for the period.
func (s *Store) RecordSnapshot(ctx context.Context, snap Snapshot) (int64, error) {
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(snap.Payload)
	if err != nil {
		return 0, fmt.Errorf("marshal snapshot payload: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (
            session_id, period, pending, partial, satisfied, payload_json, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.SessionID, snap.Period, snap.Pending, snap.Partial, snap.Satisfied,
		string(payload), snap.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// SubmissionsForPeriod lists accepted deliveries for a period in
// arrival order.
func (s *Store) SubmissionsForPeriod(ctx context.Context, periodStamp string) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, period, unit, category, filename, stored_path,
                stamped_date, strategy, score, source, received_at
         FROM submissions WHERE period = ? ORDER BY id`, periodStamp)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		var sub Submission
		var receivedAt string
		if err := rows.Scan(&sub.ID, &sub.SessionID, &sub.Period, &sub.Unit,
			&sub.Category, &sub.Filename, &sub.StoredPath, &sub.StampedDate,
			&sub.Strategy, &sub.Score, &sub.Source, &receivedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		sub.ReceivedAt, err = time.Parse(time.RFC3339Nano, receivedAt)
		if err != nil {
			return nil, fmt.Errorf("parse received_at: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// RejectionsForPeriod lists refused filenames for a period in arrival
// order.
func (s *Store) RejectionsForPeriod(ctx context.Context, periodStamp string) ([]Rejection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, period, filename, reason, best_score, detail, received_at
         FROM rejections WHERE period = ? ORDER BY id`, periodStamp)
	if err != nil {
		return nil, fmt.Errorf("query rejections: %w", err)
	}
	defer rows.Close()

	var out []Rejection
	for rows.Next() {
		var rej Rejection
		var receivedAt string
		if err := rows.Scan(&rej.ID, &rej.SessionID, &rej.Period, &rej.Filename,
			&rej.Reason, &rej.BestScore, &rej.Detail, &receivedAt); err != nil {
			return nil, fmt.Errorf("scan rejection: %w", err)
		}
		rej.ReceivedAt, err = time.Parse(time.RFC3339Nano, receivedAt)
		if err != nil {
			return nil, fmt.Errorf("parse received_at: %w", err)
		}
		out = append(out, rej)
	}
	return out, rows.Err()
}

// LatestSnapshot returns the most recent snapshot for a period, or nil
// when none was recorded. Payload is returned as raw JSON.
func (s *Store) LatestSnapshot(ctx context.Context, periodStamp string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, period, pending, partial, satisfied, payload_json, created_at
         FROM snapshots WHERE period = ? ORDER BY id DESC LIMIT 1`, periodStamp)

	var snap Snapshot
	var payload, createdAt string
	err := row.Scan(&snap.ID, &snap.SessionID, &snap.Period, &snap.Pending,
		&snap.Partial, &snap.Satisfied, &payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	snap.Payload = json.RawMessage(payload)
	snap.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &snap, nil
}
