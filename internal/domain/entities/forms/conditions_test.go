package forms

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawValue(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestParseConditionKinds(t *testing.T) {
	checked, err := ParseCondition(ConditionDecl{Kind: "is_checked", Name: "agree"})
	require.NoError(t, err)
	assert.Equal(t, KindIsChecked, checked.Kind())
	assert.Equal(t, "agree", checked.TargetName())

	equals, err := ParseCondition(ConditionDecl{Kind: "equals", Name: "color", Value: rawValue(t, "red")})
	require.NoError(t, err)
	assert.Equal(t, "red", equals.Value())

	in, err := ParseCondition(ConditionDecl{Kind: "in", Name: "color", Value: rawValue(t, []string{"red", "blue"})})
	require.NoError(t, err)
	assert.Equal(t, []string{"red", "blue"}, in.Values())
}

func TestParseConditionScalarAsList(t *testing.T) {
	in, err := ParseCondition(ConditionDecl{Kind: "in", Name: "color", Value: rawValue(t, "red")})
	require.NoError(t, err)
	assert.Equal(t, []string{"red"}, in.Values())
}

func TestParseConditionFailsFast(t *testing.T) {
	cases := map[string]ConditionDecl{
		"missing kind":  {Name: "x"},
		"missing name":  {Kind: "is_checked"},
		"unknown kind":  {Kind: "greater_than", Name: "x", Value: rawValue(t, "1")},
		"missing value": {Kind: "equals", Name: "x"},
		"bad value":     {Kind: "equals", Name: "x", Value: rawValue(t, 7)},
	}
	for label, decl := range cases {
		_, err := ParseCondition(decl)
		require.Error(t, err, label)
		var invalid *InvalidConditionError
		assert.ErrorAs(t, err, &invalid, label)
	}
}

func TestParseConditionsAbortsOnFirstInvalid(t *testing.T) {
	decls := []ConditionDecl{
		{Kind: "is_checked", Name: "a"},
		{Kind: "nope", Name: "b"},
		{Kind: "is_checked", Name: "c"},
	}
	conditions, err := ParseConditions(decls)
	assert.Nil(t, conditions)
	var invalid *InvalidConditionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "nope", invalid.Kind)
}

func checkboxNode(checked bool) *ElementNode {
	return &ElementNode{Kind: KindCheckbox, Checked: checked}
}

func valueNode(value string) *ElementNode {
	return &ElementNode{Kind: KindInput, Value: value}
}

func TestConditionHoldsIsConjunctive(t *testing.T) {
	cond := IsChecked("agree")

	assert.True(t, cond.Holds([]*ElementNode{checkboxNode(true), checkboxNode(true)}))
	assert.False(t, cond.Holds([]*ElementNode{checkboxNode(true), checkboxNode(false)}))
}

func TestConditionHoldsVacuouslyOverZeroControls(t *testing.T) {
	assert.True(t, IsChecked("missing").Holds(nil))
	assert.True(t, Equals("missing", "x").Holds(nil))
}

func TestConditionTruthTable(t *testing.T) {
	assert.True(t, IsNotChecked("x").Holds([]*ElementNode{checkboxNode(false)}))
	assert.False(t, IsNotChecked("x").Holds([]*ElementNode{checkboxNode(true)}))

	assert.True(t, Equals("x", "red").Holds([]*ElementNode{valueNode("red")}))
	assert.False(t, Equals("x", "red").Holds([]*ElementNode{valueNode("blue")}))

	assert.True(t, DoesNotEqual("x", "red").Holds([]*ElementNode{valueNode("blue")}))
	assert.False(t, DoesNotEqual("x", "red").Holds([]*ElementNode{valueNode("red")}))

	in := In("x", []string{"red", "blue"})
	assert.True(t, in.Holds([]*ElementNode{valueNode("blue")}))
	assert.False(t, in.Holds([]*ElementNode{valueNode("green")}))
}

func TestInCopiesValues(t *testing.T) {
	values := []string{"red"}
	cond := In("x", values)
	values[0] = "blue"
	assert.Equal(t, []string{"red"}, cond.Values())
}
