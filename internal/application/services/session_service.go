package services

import (
	"fmt"

	"github.com/formweave/formweave-go/internal/domain/entities/forms"
	"github.com/formweave/formweave-go/internal/domain/entities/session"
	"github.com/formweave/formweave-go/internal/domain/events"
	"github.com/formweave/formweave-go/internal/infrastructure/caching"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/logging"
	formstore "github.com/formweave/formweave-go/internal/infrastructure/persistence/forms"
)

// SessionService resolves session contexts and materializes per-session
// form states, restoring persisted form data on first access.
type SessionService struct {
	store      *caching.SessionStore
	stateRepo  *formstore.StateRepository
	formSvc    *FormService
	evaluation *EvaluationService
	logger     *logging.ChanneledLogger
}

// NewSessionService creates a session service
func NewSessionService(
	store *caching.SessionStore,
	stateRepo *formstore.StateRepository,
	formSvc *FormService,
	evaluation *EvaluationService,
	logger *logging.ChanneledLogger,
) *SessionService {
	return &SessionService{
		store:      store,
		stateRepo:  stateRepo,
		formSvc:    formSvc,
		evaluation: evaluation,
		logger:     logger,
	}
}

// Resolve returns the session context for an ID, creating it on first use
func (s *SessionService) Resolve(sessionID string) (*session.Context, error) {
	return s.store.GetOrCreate(sessionID)
}

// EnsureFormState returns the session's state for a form, building it when
// the session has none yet. The build contextualizes any persisted form
// data, constructs the graph, and runs the unconditional initial pass, so
// the state is fully evaluated before it is first served.
func (s *SessionService) EnsureFormState(ctx *session.Context, formID string) (*forms.FormState, error) {
	if state, ok := ctx.FormState(formID); ok {
		return state, nil
	}

	def, ok := s.formSvc.Get(formID)
	if !ok {
		return nil, fmt.Errorf("unknown form %q", formID)
	}

	data, found, err := s.stateRepo.Get(formID, ctx.SessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		data = make(forms.FormData)
	}

	state, err := s.formSvc.BuildState(def, data)
	if err != nil {
		return nil, err
	}
	s.evaluation.InitialPass(state)
	ctx.SetFormState(formID, state)

	if s.logger != nil {
		s.logger.Session().Debug("Form state built for session",
			"sessionId", ctx.SessionID, "formId", formID, "restored", found)
	}
	return state, nil
}

// RebuildFormState replaces the session's state for a form from the given
// form data, rebuilding state and graph from scratch and re-running the
// initial pass. This is the engine's invalidation policy for structural
// changes; the graph is never patched incrementally.
func (s *SessionService) RebuildFormState(ctx *session.Context, formID string, data forms.FormData) (*forms.FormState, []events.EffectUpdate, error) {
	def, ok := s.formSvc.Get(formID)
	if !ok {
		return nil, nil, fmt.Errorf("unknown form %q", formID)
	}

	state, err := s.formSvc.BuildState(def, data)
	if err != nil {
		return nil, nil, err
	}
	updates := s.evaluation.InitialPass(state)
	ctx.SetFormState(formID, state)

	if err := s.stateRepo.Upsert(formID, ctx.SessionID, state.Data); err != nil {
		return nil, nil, err
	}
	return state, updates, nil
}
