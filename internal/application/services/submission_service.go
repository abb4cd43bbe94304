package services

import (
	"fmt"
	"time"

	"github.com/formweave/formweave-go/internal/domain/entities/forms"
	"github.com/formweave/formweave-go/internal/domain/entities/session"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/logging"
	formstore "github.com/formweave/formweave-go/internal/infrastructure/persistence/forms"
	"github.com/formweave/formweave-go/internal/infrastructure/security"
)

// SubmissionService runs the submission pipeline: collapse flat entries,
// unflatten into the nested form-data tree, and persist the submission
// along with the session's new form state.
type SubmissionService struct {
	formSvc    *FormService
	sessionSvc *SessionService
	subRepo    *formstore.SubmissionRepository
	logger     *logging.ChanneledLogger
}

// NewSubmissionService creates a submission service
func NewSubmissionService(
	formSvc *FormService,
	sessionSvc *SessionService,
	subRepo *formstore.SubmissionRepository,
	logger *logging.ChanneledLogger,
) *SubmissionService {
	return &SubmissionService{
		formSvc:    formSvc,
		sessionSvc: sessionSvc,
		subRepo:    subRepo,
		logger:     logger,
	}
}

// Submit processes flat serialized form entries for one form and session.
// It returns the stored submission.
func (s *SubmissionService) Submit(ctx *session.Context, formID string, entries []forms.FormEntry) (*formstore.Submission, error) {
	start := time.Now()

	if _, ok := s.formSvc.Get(formID); !ok {
		return nil, fmt.Errorf("unknown form %q", formID)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("submission carries no form entries")
	}

	collapsed := forms.CollapseEntries(entries)
	data := forms.ParseFormData(collapsed)

	submission := &formstore.Submission{
		ID:        security.GenerateULID(),
		FormID:    formID,
		SessionID: ctx.SessionID,
		Payload:   data,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.subRepo.Insert(submission); err != nil {
		return nil, err
	}

	// The submitted data becomes the session's new form state.
	if _, _, err := s.sessionSvc.RebuildFormState(ctx, formID, data); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Submission().Info("Form submitted",
			"sessionId", ctx.SessionID, "formId", formID,
			"submissionId", submission.ID, "duration", time.Since(start))
	}
	return submission, nil
}
