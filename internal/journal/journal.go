// Package journal persists telemetry events to a local SQLite database, one
// row per event. It is an append-only operation log: aggregation and analysis
// happen outside the driver. The journal implements telemetry.Sink, so it
// plugs into the same fan-out as the Prometheus recorder.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/gitdriver/internal/errors"
	"git.home.luguber.info/inful/gitdriver/internal/logfields"
)

// Journal is a SQLite-backed operation log. Safe for concurrent use.
type Journal struct {
	db    *sql.DB
	runID string
	mu    sync.Mutex
}

// Entry is one recorded telemetry event.
type Entry struct {
	ID         int64
	RunID      string
	Event      string
	Props      map[string]string
	RecordedAt time.Time
}

// Open creates or opens the journal database. Use ":memory:" for tests.
// Each Journal instance gets a fresh run id, so rows from one worker session
// can be grouped later.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.JournalError("open", err)
	}
	j := &Journal{db: db, runID: uuid.NewString()}
	if err := j.initialize(); err != nil {
		_ = db.Close()
		return nil, errors.JournalError("initialize", err)
	}
	return j, nil
}

func (j *Journal) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS operations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		event TEXT NOT NULL,
		props TEXT,
		recorded_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_operations_run_id ON operations(run_id);
	CREATE INDEX IF NOT EXISTS idx_operations_event ON operations(event);
	`
	_, err := j.db.Exec(schema)
	return err
}

// RunID returns this session's run identifier.
func (j *Journal) RunID() string { return j.runID }

// Track implements telemetry.Sink. Failures are logged and swallowed; the
// journal must never fail an operation that only wanted to record telemetry.
func (j *Journal) Track(event string, props map[string]string) {
	var propsJSON []byte
	if props != nil {
		var err error
		propsJSON, err = json.Marshal(props)
		if err != nil {
			slog.Warn("journal: marshal props failed", logfields.Error(err))
			return
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	_, err := j.db.Exec(
		"INSERT INTO operations (run_id, event, props, recorded_at) VALUES (?, ?, ?, ?)",
		j.runID, event, propsJSON, time.Now().Unix(),
	)
	if err != nil {
		slog.Warn("journal: insert failed", logfields.Error(err))
	}
}

// Recent returns up to limit entries for the current run, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.QueryContext(ctx,
		"SELECT id, run_id, event, props, recorded_at FROM operations WHERE run_id = ? ORDER BY id DESC LIMIT ?",
		j.runID, limit,
	)
	if err != nil {
		return nil, errors.JournalError("query", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var propsJSON sql.NullString
		var recorded int64
		if err := rows.Scan(&e.ID, &e.RunID, &e.Event, &propsJSON, &recorded); err != nil {
			return nil, errors.JournalError("scan", err)
		}
		e.RecordedAt = time.Unix(recorded, 0)
		if propsJSON.Valid && propsJSON.String != "" {
			if err := json.Unmarshal([]byte(propsJSON.String), &e.Props); err != nil {
				return nil, errors.JournalError("unmarshal", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (j *Journal) Close() error { return j.db.Close() }
