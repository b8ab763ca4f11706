package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is a file-backed Store. Safe for concurrent use within one
// process; WAL mode keeps readers unblocked while a run is being saved.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and migrates) the history database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		pipeline TEXT NOT NULL,
		event_kind TEXT NOT NULL,
		event_branch TEXT DEFAULT '',
		status TEXT NOT NULL,
		start_time DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		data TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS run_jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		name TEXT NOT NULL,
		label TEXT NOT NULL,
		status TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		error TEXT DEFAULT '',
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_pipeline ON runs(pipeline);
	CREATE INDEX IF NOT EXISTS idx_run_jobs_run_id ON run_jobs(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun persists a completed run and its job rows in one transaction.
func (s *SQLiteStore) SaveRun(rec *RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, pipeline, event_kind, event_branch, status, start_time, duration_ms, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Pipeline, rec.EventKind, rec.EventBranch, rec.Status,
		rec.StartTime.UTC(), rec.DurationMs, string(data), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, job := range rec.Jobs {
		_, err = tx.Exec(`
			INSERT INTO run_jobs (run_id, name, label, status, duration_ms, error)
			VALUES (?, ?, ?, ?, ?, ?)
		`, rec.ID, job.Name, job.Label, job.Status, job.DurationMs, job.Error)
		if err != nil {
			return fmt.Errorf("insert job %s: %w", job.Label, err)
		}
	}

	return tx.Commit()
}

// GetRun retrieves one run by ID.
func (s *SQLiteStore) GetRun(id string) (*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRow("SELECT data FROM runs WHERE id = ?", id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	var rec RunRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal run: %w", err)
	}
	return &rec, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(pipeline string, limit int) ([]*RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT data FROM runs"
	args := []interface{}{}
	if pipeline != "" {
		query += " WHERE pipeline = ?"
		args = append(args, pipeline)
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var results []*RunRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rec RunRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, err
		}
		results = append(results, &rec)
	}
	return results, rows.Err()
}
