package store

import (
	"database/sql"
	"fmt"

	_ "github.com/glebarez/go-sqlite"
)

// AuditStore persists audit entries in SQLite, grouped by run id.
type AuditStore struct {
	DB *sql.DB
}

func NewAuditStore(dbPath string) (*AuditStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// A single connection serialises writers.
	db.SetMaxOpenConns(1)

	// Create tables if not exist
	queries := []string{
		`CREATE TABLE IF NOT EXISTS audit_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			label TEXT NOT NULL,
			content TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_audit_entries_run ON audit_entries (run_id, seq);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, fmt.Errorf("init audit store: %w", err)
		}
	}

	return &AuditStore{DB: db}, nil
}

func (s *AuditStore) Record(runID string, seq int, label, content string) error {
	query := `INSERT INTO audit_entries (run_id, seq, label, content) VALUES (?, ?, ?, ?)`
	_, err := s.DB.Exec(query, runID, seq, label, content)
	return err
}

// Entries returns a run's entries in the order they were appended.
func (s *AuditStore) Entries(runID string) ([]Record, error) {
	query := `SELECT run_id, seq, label, content, created_at FROM audit_entries WHERE run_id = ? ORDER BY seq ASC`
	rows, err := s.DB.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.RunID, &r.Seq, &r.Label, &r.Content, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Runs lists the most recent run ids, newest first.
func (s *AuditStore) Runs(limit int) ([]RunSummary, error) {
	query := `
		SELECT run_id, COUNT(*), MIN(created_at)
		FROM audit_entries
		GROUP BY run_id
		ORDER BY MIN(id) DESC
		LIMIT ?`
	rows, err := s.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.Entries, &r.StartedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *AuditStore) Close() error {
	return s.DB.Close()
}
