// Package history persists completed workflow runs to SQLite so the run
// record survives process restarts. Writes are best-effort: a storage error
// is logged, never propagated, because losing a history row must not fail a
// workflow that already completed.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/sjson"
	_ "modernc.org/sqlite"
)

// Record is one persisted workflow run.
type Record struct {
	WorkflowID   string    `json:"workflow_id"`
	WorkflowType string    `json:"workflow_type"`
	Status       string    `json:"status"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	TotalCost    float64   `json:"total_cost"`
	Payload      string    `json:"payload"`
}

// Store wraps the SQLite database holding workflow run records.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS workflow_runs (
	workflow_id   TEXT PRIMARY KEY,
	workflow_type TEXT NOT NULL,
	status        TEXT NOT NULL,
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP NOT NULL,
	total_cost    REAL NOT NULL DEFAULT 0,
	payload       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_workflow_runs_started ON workflow_runs (started_at DESC);
`

// Open opens (creating if needed) the run store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// modernc sqlite is single-writer; serialize access at the pool level.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// heavyPayloadKeys are stripped from the stored payload to keep rows small.
// Step texts can run to thousands of characters each; the summary and
// per-step status are what the history view actually needs.
var heavyPayloadKeys = []string{"shared_context"}

// Save persists one run. Errors are logged and swallowed.
func (s *Store) Save(rec Record, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Str("workflow_id", rec.WorkflowID).Msg("history payload marshal failed")
		return
	}
	trimmed := string(raw)
	for _, key := range heavyPayloadKeys {
		trimmed, _ = sjson.Delete(trimmed, key)
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO workflow_runs
		 (workflow_id, workflow_type, status, started_at, finished_at, total_cost, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.WorkflowID, rec.WorkflowType, rec.Status,
		rec.StartedAt.UTC(), rec.FinishedAt.UTC(), rec.TotalCost, trimmed,
	)
	if err != nil {
		log.Warn().Err(err).Str("workflow_id", rec.WorkflowID).Msg("history save failed")
		return
	}
	log.Debug().Str("workflow_id", rec.WorkflowID).Msg("workflow run persisted")
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT workflow_id, workflow_type, status, started_at, finished_at, total_cost, payload
		 FROM workflow_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.WorkflowID, &rec.WorkflowType, &rec.Status,
			&rec.StartedAt, &rec.FinishedAt, &rec.TotalCost, &rec.Payload); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the number of persisted runs.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM workflow_runs`).Scan(&n)
	return n, err
}
