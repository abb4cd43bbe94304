// Package services provides the application services of the form engine
package services

import (
	"fmt"
	"time"

	"github.com/formweave/formweave-go/internal/domain/entities/forms"
	"github.com/formweave/formweave-go/internal/domain/events"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/logging"
	"github.com/formweave/formweave-go/pkg/config"
)

// EvaluationService re-evaluates condition-bearing elements and applies
// visibility and availability effects. Evaluation is synchronous and
// idempotent; repeated passes with unchanged inputs produce no updates.
type EvaluationService struct {
	logger *logging.ChanneledLogger
}

// NewEvaluationService creates a new evaluation service
func NewEvaluationService(logger *logging.ChanneledLogger) *EvaluationService {
	return &EvaluationService{logger: logger}
}

// InitialPass unconditionally evaluates every condition-bearing element of
// a freshly built state, so visibility and availability are correct before
// any change event is served.
func (s *EvaluationService) InitialPass(state *forms.FormState) []events.EffectUpdate {
	var updates []events.EffectUpdate
	state.Registry.Walk(func(node *forms.ElementNode) {
		if node.HasConditions(forms.EffectHideIf) {
			updates = append(updates, s.ToggleVisibility(state, node)...)
		}
		if node.HasConditions(forms.EffectDisableIf) {
			updates = append(updates, s.ToggleAvailability(state, node)...)
		}
	})
	return updates
}

// ApplyChange records a control change and re-evaluates only the dependents
// registered for each effect type on the changed control.
func (s *EvaluationService) ApplyChange(state *forms.FormState, change events.ControlChange) ([]events.EffectUpdate, error) {
	start := time.Now()

	controls := state.Registry.Controls(change.Name)
	if len(controls) == 0 {
		return nil, fmt.Errorf("unknown control %q", change.Name)
	}
	for _, control := range controls {
		if change.Checked != nil {
			control.Checked = *change.Checked
			// Checkbox presence in form data is the checked signal.
			dataValue := ""
			if control.Checked {
				dataValue = "on"
			}
			forms.SetValue(state.Data, control.Path, dataValue)
			continue
		}
		control.Value = change.Value
		forms.SetValue(state.Data, control.Path, change.Value)
	}

	var updates []events.EffectUpdate
	for _, effect := range forms.EffectTypes {
		for _, dependentID := range state.Graph.DependentsOf(effect, change.Name) {
			node, ok := state.Registry.Get(dependentID)
			if !ok {
				continue
			}
			switch effect {
			case forms.EffectHideIf:
				updates = append(updates, s.ToggleVisibility(state, node)...)
			case forms.EffectDisableIf:
				updates = append(updates, s.ToggleAvailability(state, node)...)
			}
		}
	}

	if duration := time.Since(start); duration > config.SlowEvalWarning && s.logger != nil {
		s.logger.LogSlowEvaluation(state.FormID, change.Name, duration)
	}
	return updates, nil
}

// ToggleVisibility hides the element when every hide_if condition holds and
// restores the default display otherwise. Only an actual transition yields
// an update.
func (s *EvaluationService) ToggleVisibility(state *forms.FormState, node *forms.ElementNode) []events.EffectUpdate {
	display := forms.DisplayDefault
	if s.allHold(state, node.Conditions[forms.EffectHideIf]) {
		display = forms.DisplayHidden
	}
	if node.Display == display {
		return nil
	}
	node.Display = display
	return []events.EffectUpdate{{
		ElementID: node.ID,
		Effect:    string(forms.EffectHideIf),
		Display:   string(display),
	}}
}

// ToggleAvailability disables the element and every descendant when all
// disable_if conditions hold, and re-enables them all otherwise. The
// cascade is unconditional: a descendant's own conditions are not consulted
// while cascading from an ancestor.
func (s *EvaluationService) ToggleAvailability(state *forms.FormState, node *forms.ElementNode) []events.EffectUpdate {
	disabled := s.allHold(state, node.Conditions[forms.EffectDisableIf])

	var updates []events.EffectUpdate
	node.Walk(func(descendant *forms.ElementNode) {
		if descendant.Disabled == disabled {
			return
		}
		descendant.Disabled = disabled
		value := disabled
		updates = append(updates, events.EffectUpdate{
			ElementID: descendant.ID,
			Effect:    string(forms.EffectDisableIf),
			Disabled:  &value,
		})
	})
	return updates
}

// allHold reports whether every condition holds, each conjunctive over the
// controls sharing its target name. An empty condition list holds.
func (s *EvaluationService) allHold(state *forms.FormState, conditions []forms.Condition) bool {
	for _, condition := range conditions {
		if !condition.Holds(state.Registry.Controls(condition.TargetName())) {
			return false
		}
	}
	return len(conditions) > 0
}
