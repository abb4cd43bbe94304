package forms

import (
	"encoding/json"
	"fmt"
)

// ElementKind identifies the closed set of form element kinds
type ElementKind string

const (
	KindStaticText    ElementKind = "static_text"
	KindInput         ElementKind = "input"
	KindCheckbox      ElementKind = "checkbox"
	KindCheckboxGroup ElementKind = "checkbox_group"
	KindRadioGroup    ElementKind = "radio_group"
	KindSelect        ElementKind = "select"
	KindHidden        ElementKind = "hidden"
	KindGroup         ElementKind = "group"
	KindRepetition    ElementKind = "repetition"
)

// Option is one selectable choice of a radio group or select element
type Option struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Selected bool   `json:"selected,omitempty"`
}

// Element is a form element definition as carried by a form definition
// document. Which fields are meaningful depends on Kind; the kind
// discriminator keeps the variant closed at decode time.
type Element struct {
	Kind  ElementKind `json:"kind"`
	Name  string      `json:"name,omitempty"`
	Label string      `json:"label,omitempty"`

	// static_text
	Text string `json:"text,omitempty"`

	// input
	Required    bool   `json:"required,omitempty"`
	Default     string `json:"default,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`

	// checkbox
	LeftLabel  string `json:"left_label,omitempty"`
	RightLabel string `json:"right_label,omitempty"`
	Selected   bool   `json:"selected,omitempty"`

	// checkbox_group
	Checkboxes []Element `json:"checkboxes,omitempty"`

	// radio_group, select
	Options  []Option `json:"options,omitempty"`
	Multiple bool     `json:"multiple,omitempty"`

	// hidden
	Value string `json:"value,omitempty"`

	// group, repetition
	Elements []Element `json:"elements,omitempty"`

	// repetition
	InitialRepetitions int `json:"initial_repetitions,omitempty"`
	Increment          int `json:"increment,omitempty"`

	// Condition declarations keyed by effect
	HideIf    []ConditionDecl `json:"hide_if,omitempty"`
	DisableIf []ConditionDecl `json:"disable_if,omitempty"`
}

// IsControl reports whether this element kind carries a submittable value
func (e *Element) IsControl() bool {
	switch e.Kind {
	case KindInput, KindCheckbox, KindRadioGroup, KindSelect, KindHidden:
		return true
	}
	return false
}

// IsContainer reports whether this element kind nests child elements
func (e *Element) IsContainer() bool {
	switch e.Kind {
	case KindGroup, KindRepetition, KindCheckboxGroup:
		return true
	}
	return false
}

// Declarations returns the element's condition declarations for one effect
func (e *Element) Declarations(effect EffectType) []ConditionDecl {
	if effect == EffectHideIf {
		return e.HideIf
	}
	return e.DisableIf
}

// FormSection groups elements under a named header after the general section
type FormSection struct {
	Name     string    `json:"name"`
	Header   string    `json:"header"`
	Elements []Element `json:"elements"`
}

// FormDefinition is a complete declarative form document
type FormDefinition struct {
	ID       string        `json:"id"`
	Title    string        `json:"title,omitempty"`
	General  []Element     `json:"general"`
	Sections []FormSection `json:"sections,omitempty"`
}

// ParseFormDefinition decodes and validates a form definition document
func ParseFormDefinition(data []byte) (*FormDefinition, error) {
	var def FormDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to decode form definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks element kinds and structural requirements across the
// whole definition
func (d *FormDefinition) Validate() error {
	for i := range d.General {
		if err := validateElement(&d.General[i]); err != nil {
			return err
		}
	}
	for s := range d.Sections {
		if d.Sections[s].Name == "" {
			return fmt.Errorf("section %d is missing a name", s)
		}
		for i := range d.Sections[s].Elements {
			if err := validateElement(&d.Sections[s].Elements[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateElement(e *Element) error {
	switch e.Kind {
	case KindStaticText, KindInput, KindCheckbox, KindCheckboxGroup,
		KindRadioGroup, KindSelect, KindHidden, KindGroup, KindRepetition:
	case "":
		return fmt.Errorf("element %q is missing a kind", e.Name)
	default:
		return fmt.Errorf("element %q has unknown kind %q", e.Name, e.Kind)
	}

	if e.Name == "" && e.Kind != KindCheckboxGroup {
		return fmt.Errorf("element of kind %q is missing a name", e.Kind)
	}
	if e.Kind == KindRepetition {
		if e.InitialRepetitions < 1 {
			return fmt.Errorf("repetition %q needs initial_repetitions >= 1", e.Name)
		}
		if e.Increment < 1 {
			return fmt.Errorf("repetition %q needs increment >= 1", e.Name)
		}
	}

	for i := range e.Elements {
		if err := validateElement(&e.Elements[i]); err != nil {
			return err
		}
	}
	for i := range e.Checkboxes {
		if err := validateElement(&e.Checkboxes[i]); err != nil {
			return err
		}
	}
	return nil
}
