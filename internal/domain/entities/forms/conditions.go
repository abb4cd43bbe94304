package forms

import (
	"encoding/json"
	"fmt"
)

// ConditionKind identifies one of the closed set of condition predicates
type ConditionKind string

const (
	KindIsChecked    ConditionKind = "is_checked"
	KindIsNotChecked ConditionKind = "is_not_checked"
	KindEquals       ConditionKind = "equals"
	KindDoesNotEqual ConditionKind = "does_not_equal"
	KindIn           ConditionKind = "in"
)

// EffectType identifies which effect a condition list controls
type EffectType string

const (
	EffectHideIf    EffectType = "hide_if"
	EffectDisableIf EffectType = "disable_if"
)

// EffectTypes lists the supported effect types in evaluation order
var EffectTypes = []EffectType{EffectHideIf, EffectDisableIf}

// InvalidConditionError reports a malformed or unrecognized condition
// declaration. Construction fails fast; there is no graceful degradation
// for bad declarations.
type InvalidConditionError struct {
	Kind   string
	Reason string
}

func (e *InvalidConditionError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("invalid condition of kind %q: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("invalid condition: %s", e.Reason)
}

// ConditionDecl is a raw condition declaration as carried by a form
// definition, before construction into a Condition.
type ConditionDecl struct {
	Kind  string          `json:"kind"`
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Condition is an immutable predicate over the controls sharing one target
// name. Only the per-kind factories and ParseCondition construct conditions;
// the zero value is not meaningful.
type Condition struct {
	kind       ConditionKind
	targetName string
	value      string
	values     []string
}

// Kind returns the condition's kind
func (c Condition) Kind() ConditionKind { return c.kind }

// TargetName returns the name of the control(s) this condition observes
func (c Condition) TargetName() string { return c.targetName }

// Value returns the expected value for equals / does_not_equal conditions
func (c Condition) Value() string { return c.value }

// Values returns the accepted values for in conditions
func (c Condition) Values() []string { return c.values }

// IsChecked creates a condition that holds when every matched control is checked
func IsChecked(targetName string) Condition {
	return Condition{kind: KindIsChecked, targetName: targetName}
}

// IsNotChecked creates a condition that holds when every matched control is unchecked
func IsNotChecked(targetName string) Condition {
	return Condition{kind: KindIsNotChecked, targetName: targetName}
}

// Equals creates a condition that holds when every matched control has the given value
func Equals(targetName, value string) Condition {
	return Condition{kind: KindEquals, targetName: targetName, value: value}
}

// DoesNotEqual creates a condition that holds when no matched control has the given value
func DoesNotEqual(targetName, value string) Condition {
	return Condition{kind: KindDoesNotEqual, targetName: targetName, value: value}
}

// In creates a condition that holds when every matched control's value is one
// of the given values
func In(targetName string, values []string) Condition {
	vals := make([]string, len(values))
	copy(vals, values)
	return Condition{kind: KindIn, targetName: targetName, values: vals}
}

// conditionConstructors maps kind identifiers to declaration constructors.
// Unknown kinds are rejected at parse time, so the variant stays closed.
var conditionConstructors = map[ConditionKind]func(decl ConditionDecl) (Condition, error){
	KindIsChecked: func(decl ConditionDecl) (Condition, error) {
		return IsChecked(decl.Name), nil
	},
	KindIsNotChecked: func(decl ConditionDecl) (Condition, error) {
		return IsNotChecked(decl.Name), nil
	},
	KindEquals: func(decl ConditionDecl) (Condition, error) {
		value, err := declScalarValue(decl)
		if err != nil {
			return Condition{}, err
		}
		return Equals(decl.Name, value), nil
	},
	KindDoesNotEqual: func(decl ConditionDecl) (Condition, error) {
		value, err := declScalarValue(decl)
		if err != nil {
			return Condition{}, err
		}
		return DoesNotEqual(decl.Name, value), nil
	},
	KindIn: func(decl ConditionDecl) (Condition, error) {
		values, err := declListValue(decl)
		if err != nil {
			return Condition{}, err
		}
		return In(decl.Name, values), nil
	},
}

// ParseCondition constructs a Condition from a raw declaration, dispatching
// through the kind constructor registry. Missing or unknown kinds and
// missing values on value kinds fail with InvalidConditionError.
func ParseCondition(decl ConditionDecl) (Condition, error) {
	if decl.Kind == "" {
		return Condition{}, &InvalidConditionError{Reason: "missing kind"}
	}
	if decl.Name == "" {
		return Condition{}, &InvalidConditionError{Kind: decl.Kind, Reason: "missing target name"}
	}
	construct, ok := conditionConstructors[ConditionKind(decl.Kind)]
	if !ok {
		return Condition{}, &InvalidConditionError{Kind: decl.Kind, Reason: "unknown kind"}
	}
	return construct(decl)
}

// ParseConditions constructs all conditions from a declaration list,
// failing on the first invalid declaration.
func ParseConditions(decls []ConditionDecl) ([]Condition, error) {
	if len(decls) == 0 {
		return nil, nil
	}
	conditions := make([]Condition, 0, len(decls))
	for _, decl := range decls {
		condition, err := ParseCondition(decl)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, condition)
	}
	return conditions, nil
}

func declScalarValue(decl ConditionDecl) (string, error) {
	if len(decl.Value) == 0 {
		return "", &InvalidConditionError{Kind: decl.Kind, Reason: "missing value"}
	}
	var value string
	if err := json.Unmarshal(decl.Value, &value); err != nil {
		return "", &InvalidConditionError{Kind: decl.Kind, Reason: "value must be a string"}
	}
	return value, nil
}

func declListValue(decl ConditionDecl) ([]string, error) {
	if len(decl.Value) == 0 {
		return nil, &InvalidConditionError{Kind: decl.Kind, Reason: "missing value"}
	}
	var values []string
	if err := json.Unmarshal(decl.Value, &values); err != nil {
		// A scalar value is accepted as a one-element list.
		var single string
		if err := json.Unmarshal(decl.Value, &single); err != nil {
			return nil, &InvalidConditionError{Kind: decl.Kind, Reason: "value must be a string list"}
		}
		values = []string{single}
	}
	return values, nil
}

// Holds evaluates the condition against the given controls, all of which
// share the condition's target name. The predicate must hold for every
// matched control; zero matched controls is vacuously true.
func (c Condition) Holds(controls []*ElementNode) bool {
	for _, control := range controls {
		if !c.holdsFor(control) {
			return false
		}
	}
	return true
}

func (c Condition) holdsFor(control *ElementNode) bool {
	switch c.kind {
	case KindIsChecked:
		return control.Checked
	case KindIsNotChecked:
		return !control.Checked
	case KindEquals:
		return control.Value == c.value
	case KindDoesNotEqual:
		return control.Value != c.value
	case KindIn:
		for _, v := range c.values {
			if control.Value == v {
				return true
			}
		}
		return false
	}
	return false
}
