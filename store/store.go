// Package store records finished runs in a SQLite history database
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one recorded experiment run
type Run struct {
	ID         string
	Decision   string
	Checkpoint string
	Classes    []string
	Matrix     [][]int
	Accuracy   float64
	MacroF1    float64
	CreatedAt  time.Time
}

// Store is a run history backed by SQLite
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS runs (
  run_id TEXT PRIMARY KEY,
  decision TEXT NOT NULL,
  checkpoint TEXT NOT NULL,
  classes TEXT NOT NULL,
  matrix TEXT NOT NULL,
  accuracy REAL NOT NULL DEFAULT 0,
  macro_f1 REAL NOT NULL DEFAULT 0,
  created_at DATETIME NOT NULL
);
`)
	return err
}

// RecordRun stores r
func (s *Store) RecordRun(ctx context.Context, r Run) error {
	classes, err := json.Marshal(r.Classes)
	if err != nil {
		return err
	}
	matrix, err := json.Marshal(r.Matrix)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO runs(run_id, decision, checkpoint, classes, matrix, accuracy, macro_f1, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?);
`, r.ID, r.Decision, r.Checkpoint, string(classes), string(matrix), r.Accuracy, r.MacroF1, r.CreatedAt.UTC())
	return err
}

// ListRuns returns every run, newest first
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, decision, checkpoint, classes, matrix, accuracy, macro_f1, created_at
FROM runs ORDER BY created_at DESC, run_id;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var classes, matrix string
		if err := rows.Scan(&r.ID, &r.Decision, &r.Checkpoint, &classes, &matrix, &r.Accuracy, &r.MacroF1, &r.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(classes), &r.Classes); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(matrix), &r.Matrix); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
