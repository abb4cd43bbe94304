package services

import (
	"fmt"

	"github.com/formweave/formweave-go/internal/domain/entities/forms"
	"github.com/formweave/formweave-go/internal/domain/entities/session"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/logging"
)

// RepetitionService manages repeated element groups. Adding appends copies
// of the last instance to the form data and rebuilds the session's state;
// removing is bounded by the repetition's initial count and silently
// refused at the floor.
type RepetitionService struct {
	sessionSvc *SessionService
	logger     *logging.ChanneledLogger
}

// NewRepetitionService creates a repetition service
func NewRepetitionService(sessionSvc *SessionService, logger *logging.ChanneledLogger) *RepetitionService {
	return &RepetitionService{sessionSvc: sessionSvc, logger: logger}
}

// Add appends increment copies of the referenced repetition's last instance
// and rebuilds the session's state and graph from the modified form data.
// The flat form data in the request represents the client's current inputs,
// so nothing typed since the last change event is lost across the rebuild.
// The element name must resolve to a registered repetition and the form data
// must carry at least one instance for it, otherwise Add errors.
func (s *RepetitionService) Add(ctx *session.Context, formID, elementName string, flat map[string]any, increment int) (*forms.FormState, error) {
	if elementName == "" {
		return nil, fmt.Errorf("missing repetition element name")
	}
	if increment < 1 {
		return nil, fmt.Errorf("increment must be at least 1")
	}

	current, err := s.sessionSvc.EnsureFormState(ctx, formID)
	if err != nil {
		return nil, err
	}
	reference := forms.ParseReference(elementName)
	node, ok := current.Registry.Get(reference.String())
	if !ok || node.Kind != forms.KindRepetition {
		return nil, fmt.Errorf("unknown repetition element %q", elementName)
	}

	data := forms.ParseFormData(flat)
	data, appended := forms.AddRepetition(data, reference, increment)
	if !appended {
		return nil, fmt.Errorf("no repetition instances under %q in form data", elementName)
	}

	state, _, err := s.sessionSvc.RebuildFormState(ctx, formID, data)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Engine().Info("Repetition instances added",
			"sessionId", ctx.SessionID, "formId", formID,
			"element", elementName, "increment", increment)
	}
	return state, nil
}

// Remove deletes the instance at index from the referenced repetition,
// refusing silently when the count is at or below the repetition's
// initial_repetitions floor. It reports whether an instance was removed;
// removal rebuilds the session's state.
func (s *RepetitionService) Remove(ctx *session.Context, formID, elementName string, index int) (*forms.FormState, bool, error) {
	state, err := s.sessionSvc.EnsureFormState(ctx, formID)
	if err != nil {
		return nil, false, err
	}

	reference := forms.ParseReference(elementName)
	node, ok := state.Registry.Get(reference.String())
	if !ok || node.Kind != forms.KindRepetition {
		return nil, false, fmt.Errorf("unknown repetition element %q", elementName)
	}
	floor := node.InitialRepetitions

	removed := forms.RemoveRepetition(state.Data, reference, index, floor)
	if !removed {
		// At or below the floor: refused without error.
		return state, false, nil
	}

	rebuilt, _, err := s.sessionSvc.RebuildFormState(ctx, formID, state.Data)
	if err != nil {
		return nil, false, err
	}

	if s.logger != nil {
		s.logger.Engine().Info("Repetition instance removed",
			"sessionId", ctx.SessionID, "formId", formID,
			"element", elementName, "index", index)
	}
	return rebuilt, true, nil
}
