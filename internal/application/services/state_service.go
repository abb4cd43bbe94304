package services

import (
	"fmt"

	"github.com/formweave/formweave-go/internal/domain/entities/forms"
	"github.com/formweave/formweave-go/internal/domain/entities/session"
	"github.com/formweave/formweave-go/internal/domain/events"
	"github.com/formweave/formweave-go/internal/infrastructure/messaging"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/logging"
	formstore "github.com/formweave/formweave-go/internal/infrastructure/persistence/forms"
)

// StateService orchestrates control change events: it applies the change to
// the session's form state, persists the updated form data, and broadcasts
// the resulting effect updates to the session's websocket subscribers.
type StateService struct {
	sessionSvc  *SessionService
	evaluation  *EvaluationService
	stateRepo   *formstore.StateRepository
	broadcaster *messaging.Broadcaster
	logger      *logging.ChanneledLogger
}

// NewStateService creates a state service
func NewStateService(
	sessionSvc *SessionService,
	evaluation *EvaluationService,
	stateRepo *formstore.StateRepository,
	broadcaster *messaging.Broadcaster,
	logger *logging.ChanneledLogger,
) *StateService {
	return &StateService{
		sessionSvc:  sessionSvc,
		evaluation:  evaluation,
		stateRepo:   stateRepo,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// HandleChange applies one control change against a session's form state
// and returns the computed effect updates
func (s *StateService) HandleChange(ctx *session.Context, formID string, change events.ControlChange) ([]events.EffectUpdate, error) {
	if _, err := s.sessionSvc.EnsureFormState(ctx, formID); err != nil {
		return nil, err
	}

	var updates []events.EffectUpdate
	err := ctx.WithFormState(formID, func(state *forms.FormState) error {
		applied, err := s.evaluation.ApplyChange(state, change)
		if err != nil {
			return err
		}
		updates = applied
		return s.stateRepo.Upsert(formID, ctx.SessionID, state.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to handle control change: %w", err)
	}

	if s.logger != nil {
		s.logger.Engine().Debug("Control change applied",
			"sessionId", ctx.SessionID, "formId", formID,
			"control", change.Name, "updates", len(updates))
	}
	s.broadcaster.BroadcastEffects(ctx.SessionID, formID, updates)
	return updates, nil
}
