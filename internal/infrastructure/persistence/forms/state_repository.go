// Package forms provides repositories for persisted form data and submissions.
package forms

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/formweave/formweave-go/internal/domain/entities/forms"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/logging"
	"github.com/formweave/formweave-go/internal/infrastructure/persistence/database"
)

// StateRepository persists each session's latest form data per form, so a
// session survives an engine restart.
type StateRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewStateRepository creates a state repository
func NewStateRepository(db *database.DB, logger *logging.ChanneledLogger) *StateRepository {
	return &StateRepository{db: db, logger: logger}
}

// Upsert stores the current form data for a form/session pair
func (r *StateRepository) Upsert(formID, sessionID string, data domain.FormData) error {
	start := time.Now()

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode form data: %w", err)
	}

	query := `INSERT INTO form_states (form_id, session_id, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(form_id, session_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`
	if _, err := r.db.Exec(query, formID, sessionID, string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert form state: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, "UPSERT_FORM_STATE", time.Since(start), formID)
	return nil
}

// Get loads the stored form data for a form/session pair. The second return
// value reports whether any state was found.
func (r *StateRepository) Get(formID, sessionID string) (domain.FormData, bool, error) {
	start := time.Now()

	var payload string
	query := `SELECT payload FROM form_states WHERE form_id = ? AND session_id = ?`
	err := r.db.QueryRow(query, formID, sessionID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load form state: %w", err)
	}

	var data domain.FormData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, false, fmt.Errorf("failed to decode form state payload: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, "GET_FORM_STATE", time.Since(start), formID)
	return data, true, nil
}

// DeleteSession removes all stored form data for a session
func (r *StateRepository) DeleteSession(sessionID string) error {
	if _, err := r.db.Exec(`DELETE FROM form_states WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session form states: %w", err)
	}
	return nil
}
