// Package database provides schema instantiation
package database

import (
	"database/sql"
	"fmt"
)

// TableCreator handles the creation of the engine's database schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the tables and indexes.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS form_states (
		form_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (form_id, session_id)
	)`,
	`CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		form_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_form_states_session ON form_states(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_form ON submissions(form_id)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_session ON submissions(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_created ON submissions(created_at)`,
}
