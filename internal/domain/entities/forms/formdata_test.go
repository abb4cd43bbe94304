package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollapseEntriesRepeatedKeys(t *testing.T) {
	collapsed := CollapseEntries([]FormEntry{
		{Name: "general[name]", Value: "Ada"},
		{Name: "general[colors]", Value: "red"},
		{Name: "general[colors]", Value: "blue"},
	})

	assert.Equal(t, "Ada", collapsed["general[name]"])
	assert.Equal(t, []string{"red", "blue"}, collapsed["general[colors]"])
}

func TestCollapseEntriesListMarker(t *testing.T) {
	// The list marker forces a list even for a single entry, and both the
	// marker and its separator are stripped from the key.
	collapsed := CollapseEntries([]FormEntry{
		{Name: "general[opt_[]]", Value: "only"},
	})
	assert.Equal(t, []string{"only"}, collapsed["general[opt]"])

	collapsed = CollapseEntries([]FormEntry{
		{Name: "general[opt_[]]", Value: "v1"},
		{Name: "general[opt_[]]", Value: "v2"},
	})
	assert.Equal(t, []string{"v1", "v2"}, collapsed["general[opt]"])
}

func TestUnflattenNestedKeys(t *testing.T) {
	tree := Unflatten(map[string]any{
		"general[name]":          "Ada",
		"general[address][city]": "London",
	})

	general, ok := tree["general"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Ada", general["name"])
	address, ok := general["address"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "London", address["city"])
}

func TestUnflattenNumericMapsBecomeLists(t *testing.T) {
	tree := Unflatten(map[string]any{
		"general[rows][2][title]":  "second",
		"general[rows][1][title]":  "first",
		"general[rows][10][title]": "tenth",
	})

	general := tree["general"].(map[string]any)
	rows, ok := general["rows"].([]any)
	require.True(t, ok)
	require.Len(t, rows, 3)

	// Instances are ordered numerically, not lexically.
	assert.Equal(t, "first", rows[0].(map[string]any)["title"])
	assert.Equal(t, "second", rows[1].(map[string]any)["title"])
	assert.Equal(t, "tenth", rows[2].(map[string]any)["title"])
}

func TestParseFormDataMergesSectionsIntoGeneral(t *testing.T) {
	data := ParseFormData(map[string]any{
		"general[name]":    "Ada",
		"extras[note]":     "hi",
		"extras[priority]": "low",
	})

	assert.Equal(t, "Ada", data["name"])
	extras, ok := data["extras"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "hi", extras["note"])
	assert.Equal(t, "low", extras["priority"])
}

func TestAddRepetitionClonesLastInstance(t *testing.T) {
	data := FormData{
		"rows": []any{
			map[string]any{"title": "a"},
			map[string]any{"title": "b"},
		},
	}

	result, appended := AddRepetition(data, ParseReference("general[rows]"), 2)
	require.True(t, appended)
	rows := result["rows"].([]any)
	require.Len(t, rows, 4)
	assert.Equal(t, "b", rows[2].(map[string]any)["title"])
	assert.Equal(t, "b", rows[3].(map[string]any)["title"])

	// Appended instances must not alias their source.
	rows[3].(map[string]any)["title"] = "changed"
	assert.Equal(t, "b", rows[1].(map[string]any)["title"])
	assert.Equal(t, "b", rows[2].(map[string]any)["title"])
}

func TestAddRepetitionReportsUnshapedData(t *testing.T) {
	data := FormData{"rows": "not a list"}
	result, appended := AddRepetition(data, ParseReference("general[rows]"), 1)
	assert.False(t, appended)
	assert.Equal(t, "not a list", result["rows"])

	_, appended = AddRepetition(FormData{}, ParseReference("general[missing]"), 1)
	assert.False(t, appended)
}

func TestRemoveRepetitionRefusesAtFloor(t *testing.T) {
	data := FormData{
		"rows": []any{
			map[string]any{"title": "a"},
			map[string]any{"title": "b"},
		},
	}
	ref := ParseReference("general[rows]")

	// At the floor the removal is silently refused.
	assert.False(t, RemoveRepetition(data, ref, 0, 2))
	assert.Len(t, data["rows"].([]any), 2)

	assert.True(t, RemoveRepetition(data, ref, 0, 1))
	rows := data["rows"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0].(map[string]any)["title"])

	// Now at the floor again.
	assert.False(t, RemoveRepetition(data, ref, 0, 1))
}

func TestRemoveRepetitionOutOfRangeIndex(t *testing.T) {
	data := FormData{"rows": []any{map[string]any{"title": "a"}, map[string]any{"title": "b"}}}
	ref := ParseReference("general[rows]")
	assert.False(t, RemoveRepetition(data, ref, 5, 1))
	assert.False(t, RemoveRepetition(data, ref, -1, 1))
}

func TestSetValueCreatesIntermediateMaps(t *testing.T) {
	data := FormData{}
	SetValue(data, ParseReference("general[address][city]"), "London")

	address, ok := data["address"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "London", address["city"])
}

func TestSetValueIntoRepetitionInstance(t *testing.T) {
	data := FormData{}
	SetValue(data, ParseReference("general[rows][2][title]"), "second")

	rows, ok := data["rows"].([]any)
	require.True(t, ok)
	require.Len(t, rows, 2)
	assert.Equal(t, "second", rows[1].(map[string]any)["title"])
}

func TestNavigateNestedRepetition(t *testing.T) {
	data := FormData{
		"outer": []any{
			map[string]any{
				"inner": []any{map[string]any{"v": "x"}},
			},
		},
	}

	result, appended := AddRepetition(data, ParseReference("general[outer][1][inner]"), 1)
	require.True(t, appended)
	outer := result["outer"].([]any)
	inner := outer[0].(map[string]any)["inner"].([]any)
	assert.Len(t, inner, 2)
}
