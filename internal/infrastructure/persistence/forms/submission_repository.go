package forms

import (
	"encoding/json"
	"fmt"
	"time"

	domain "github.com/formweave/formweave-go/internal/domain/entities/forms"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/logging"
	"github.com/formweave/formweave-go/internal/infrastructure/persistence/database"
)

// Submission is one persisted form submission
type Submission struct {
	ID        string          `json:"id"`
	FormID    string          `json:"formId"`
	SessionID string          `json:"sessionId"`
	Payload   domain.FormData `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

// SubmissionRepository persists completed form submissions
type SubmissionRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSubmissionRepository creates a submission repository
func NewSubmissionRepository(db *database.DB, logger *logging.ChanneledLogger) *SubmissionRepository {
	return &SubmissionRepository{db: db, logger: logger}
}

// Insert stores a submission
func (r *SubmissionRepository) Insert(submission *Submission) error {
	start := time.Now()

	payload, err := json.Marshal(submission.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode submission payload: %w", err)
	}

	query := `INSERT INTO submissions (id, form_id, session_id, payload, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.Exec(query, submission.ID, submission.FormID, submission.SessionID, string(payload), submission.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, "INSERT_SUBMISSION", time.Since(start), submission.FormID)
	return nil
}

// FindByForm returns all submissions for a form, newest first
func (r *SubmissionRepository) FindByForm(formID string) ([]*Submission, error) {
	start := time.Now()

	query := `SELECT id, form_id, session_id, payload, created_at FROM submissions WHERE form_id = ? ORDER BY created_at DESC`
	rows, err := r.db.Query(query, formID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var submissions []*Submission
	for rows.Next() {
		var sub Submission
		var payload string
		if err := rows.Scan(&sub.ID, &sub.FormID, &sub.SessionID, &payload, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission row: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &sub.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode submission payload: %w", err)
		}
		submissions = append(submissions, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submission rows: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, "FIND_SUBMISSIONS_BY_FORM", time.Since(start), formID)
	return submissions, nil
}
