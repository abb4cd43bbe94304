package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextualizeGeneralAndSections(t *testing.T) {
	def, err := ParseFormDefinition([]byte(`{
		"id": "basic",
		"general": [
			{"kind": "input", "name": "name", "label": "Name"}
		],
		"sections": [
			{"name": "extras", "header": "Extras", "elements": [
				{"kind": "input", "name": "note"}
			]}
		]
	}`))
	require.NoError(t, err)

	registry, _ := Contextualize(def, nil)
	require.Len(t, registry.Roots, 2)

	name, ok := registry.Get("general[name]")
	require.True(t, ok)
	assert.Equal(t, []string{"general", "name"}, name.PathIDs)
	assert.Equal(t, DisplayDefault, name.Display)

	section, ok := registry.Get("extras]")
	require.True(t, ok)
	assert.Equal(t, KindGroup, section.Kind)
	assert.Equal(t, "Extras", section.Label)
	require.Len(t, section.Children, 1)
	assert.Equal(t, "extras[note]", section.Children[0].ID)
}

func TestRegistryControlIndexKeyedByID(t *testing.T) {
	def, err := ParseFormDefinition([]byte(`{
		"id": "index",
		"general": [
			{"kind": "input", "name": "name"},
			{"kind": "group", "name": "wrap", "elements": [
				{"kind": "input", "name": "inner"}
			]}
		]
	}`))
	require.NoError(t, err)

	registry, _ := Contextualize(def, nil)

	controls := registry.Controls("general[name]")
	require.Len(t, controls, 1)
	assert.Equal(t, "general[name]", controls[0].ID)

	// Groups are not controls and the bare name is not an index key.
	assert.Empty(t, registry.Controls("general[wrap]"))
	assert.Empty(t, registry.Controls("name"))
	assert.Len(t, registry.Controls("general[wrap][inner]"), 1)
}

func TestContextualizeSeedsControlDefaults(t *testing.T) {
	def, err := ParseFormDefinition([]byte(`{
		"id": "seed",
		"general": [
			{"kind": "input", "name": "city", "default": "London"},
			{"kind": "checkbox", "name": "agree", "selected": true},
			{"kind": "select", "name": "color", "options": [
				{"label": "Red", "value": "red"},
				{"label": "Blue", "value": "blue", "selected": true}
			]},
			{"kind": "hidden", "name": "token", "value": "abc"}
		]
	}`))
	require.NoError(t, err)

	registry, _ := Contextualize(def, nil)
	assert.Equal(t, "London", registry.ByID["general[city]"].Value)
	assert.True(t, registry.ByID["general[agree]"].Checked)
	assert.Equal(t, "blue", registry.ByID["general[color]"].Value)
	assert.Equal(t, "abc", registry.ByID["general[token]"].Value)
}

func TestContextualizeSeedsFromPriorData(t *testing.T) {
	def, err := ParseFormDefinition([]byte(`{
		"id": "seed",
		"general": [
			{"kind": "input", "name": "city", "default": "London"},
			{"kind": "checkbox", "name": "agree"},
			{"kind": "select", "name": "color", "options": [
				{"label": "Red", "value": "red", "selected": true},
				{"label": "Blue", "value": "blue"}
			]}
		]
	}`))
	require.NoError(t, err)

	data := FormData{"city": "Paris", "agree": "on", "color": "blue"}
	registry, _ := Contextualize(def, data)

	assert.Equal(t, "Paris", registry.ByID["general[city]"].Value)
	assert.True(t, registry.ByID["general[agree]"].Checked)

	color := registry.ByID["general[color]"]
	assert.Equal(t, "blue", color.Value)
	assert.False(t, color.Options[0].Selected)
	assert.True(t, color.Options[1].Selected)
}

func TestContextualizeUnnamedCheckboxGroupFlattens(t *testing.T) {
	def, err := ParseFormDefinition([]byte(`{
		"id": "flat",
		"general": [
			{"kind": "checkbox_group", "checkboxes": [
				{"kind": "checkbox", "name": "a"},
				{"kind": "checkbox", "name": "b"}
			]}
		]
	}`))
	require.NoError(t, err)

	registry, _ := Contextualize(def, nil)
	// The unnamed group contributes no node of its own; its checkboxes live
	// directly in the enclosing scope.
	require.Len(t, registry.Roots, 2)
	assert.Equal(t, "general[a]", registry.Roots[0].ID)
	assert.Equal(t, "general[b]", registry.Roots[1].ID)
}

func TestContextualizeNamedCheckboxGroupNests(t *testing.T) {
	def, err := ParseFormDefinition([]byte(`{
		"id": "nested",
		"general": [
			{"kind": "checkbox_group", "name": "prefs", "checkboxes": [
				{"kind": "checkbox", "name": "a"}
			]}
		]
	}`))
	require.NoError(t, err)

	registry, _ := Contextualize(def, nil)
	require.Len(t, registry.Roots, 1)
	group := registry.Roots[0]
	assert.Equal(t, "general[prefs]", group.ID)
	require.Len(t, group.Children, 1)
	assert.Equal(t, "general[prefs][a]", group.Children[0].ID)
}

func repetitionDefinition(t *testing.T) *FormDefinition {
	t.Helper()
	def, err := ParseFormDefinition([]byte(`{
		"id": "rep",
		"general": [
			{"kind": "repetition", "name": "rows", "initial_repetitions": 3, "increment": 2,
				"elements": [
					{"kind": "input", "name": "title", "label": "Row { fw:repno }", "default": "row {fw:repno}"}
				]}
		]
	}`))
	require.NoError(t, err)
	return def
}

func TestContextualizeExpandsInitialRepetitions(t *testing.T) {
	registry, _ := Contextualize(repetitionDefinition(t), nil)

	rows := registry.ByID["general[rows]"]
	require.NotNil(t, rows)
	require.Len(t, rows.Children, 3)

	first := rows.Children[0]
	assert.Equal(t, "general[rows][1]", first.ID)
	assert.Equal(t, KindGroup, first.Kind)

	// Instances are numbered from one and the placeholder is substituted.
	title := registry.ByID["general[rows][2][title]"]
	require.NotNil(t, title)
	assert.Equal(t, "Row 2", title.Label)
	assert.Equal(t, "row 2", title.Value)
}

func TestContextualizeExpandsFromData(t *testing.T) {
	data := FormData{
		"rows": []any{
			map[string]any{"title": "alpha"},
			map[string]any{"title": "beta"},
			map[string]any{"title": "gamma"},
			map[string]any{"title": "delta"},
		},
	}
	registry, _ := Contextualize(repetitionDefinition(t), data)

	rows := registry.ByID["general[rows]"]
	require.Len(t, rows.Children, 4)
	assert.Equal(t, "delta", registry.ByID["general[rows][4][title]"].Value)
	assert.Equal(t, "alpha", registry.ByID["general[rows][1][title]"].Value)
}

func TestContextualizeRecordsConditionDeclarations(t *testing.T) {
	def, err := ParseFormDefinition([]byte(`{
		"id": "decl",
		"general": [
			{"kind": "checkbox", "name": "toggle"},
			{"kind": "input", "name": "detail",
				"hide_if": [{"kind": "is_not_checked", "name": "toggle"}],
				"disable_if": [{"kind": "is_checked", "name": "toggle"}]}
		]
	}`))
	require.NoError(t, err)

	_, decls := Contextualize(def, nil)
	detail := decls["general[detail]"]
	require.NotNil(t, detail)
	assert.Len(t, detail[EffectHideIf], 1)
	assert.Len(t, detail[EffectDisableIf], 1)
	assert.NotContains(t, decls, "general[toggle]")
}
