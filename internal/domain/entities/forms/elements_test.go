package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormDefinitionRejectsUnknownKind(t *testing.T) {
	_, err := ParseFormDefinition([]byte(`{
		"id": "bad",
		"general": [{"kind": "slider", "name": "x"}]
	}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestParseFormDefinitionRequiresNames(t *testing.T) {
	_, err := ParseFormDefinition([]byte(`{
		"id": "bad",
		"general": [{"kind": "input"}]
	}`))
	require.Error(t, err)

	// A checkbox group is the one kind that may omit its name.
	_, err = ParseFormDefinition([]byte(`{
		"id": "ok",
		"general": [{"kind": "checkbox_group", "checkboxes": [
			{"kind": "checkbox", "name": "a"}
		]}]
	}`))
	assert.NoError(t, err)
}

func TestParseFormDefinitionRepetitionBounds(t *testing.T) {
	_, err := ParseFormDefinition([]byte(`{
		"id": "bad",
		"general": [{"kind": "repetition", "name": "rows", "increment": 1,
			"elements": [{"kind": "input", "name": "title"}]}]
	}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial_repetitions")

	_, err = ParseFormDefinition([]byte(`{
		"id": "bad",
		"general": [{"kind": "repetition", "name": "rows", "initial_repetitions": 1,
			"elements": [{"kind": "input", "name": "title"}]}]
	}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "increment")
}

func TestParseFormDefinitionValidatesNestedElements(t *testing.T) {
	_, err := ParseFormDefinition([]byte(`{
		"id": "bad",
		"general": [{"kind": "group", "name": "g", "elements": [
			{"kind": "whatever", "name": "x"}
		]}]
	}`))
	require.Error(t, err)
}

func TestParseFormDefinitionSectionNeedsName(t *testing.T) {
	_, err := ParseFormDefinition([]byte(`{
		"id": "bad",
		"general": [],
		"sections": [{"header": "Nameless", "elements": []}]
	}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing a name")
}

func TestElementKindPredicates(t *testing.T) {
	input := Element{Kind: KindInput, Name: "x"}
	assert.True(t, input.IsControl())
	assert.False(t, input.IsContainer())

	group := Element{Kind: KindGroup, Name: "g"}
	assert.False(t, group.IsControl())
	assert.True(t, group.IsContainer())
}
