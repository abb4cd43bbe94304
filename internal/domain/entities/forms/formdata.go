package forms

import (
	"sort"
	"strconv"
	"strings"
)

// FormData is the nested form-data tree: values are strings, string lists,
// nested maps, or lists of instance maps for repetitions.
type FormData = map[string]any

// ListMarkerSuffix tags a flat key as list-valued even with a single entry
const ListMarkerSuffix = "[]"

// CollapseEntries turns flat form entries into a flat map: a repeated key
// accumulates its values into a list, and a key carrying the list-marker
// suffix is always a list, with the marker and its separator stripped from
// the final key.
func CollapseEntries(entries []FormEntry) map[string]any {
	collapsed := make(map[string]any)
	for _, entry := range entries {
		key := entry.Name
		forceList := false
		if strings.HasSuffix(key, ListMarkerSuffix) {
			key = strings.TrimSuffix(key, ListMarkerSuffix)
			key = strings.TrimSuffix(key, "_")
			forceList = true
		}

		existing, seen := collapsed[key]
		switch {
		case !seen && forceList:
			collapsed[key] = []string{entry.Value}
		case !seen:
			collapsed[key] = entry.Value
		default:
			switch prior := existing.(type) {
			case []string:
				collapsed[key] = append(prior, entry.Value)
			case string:
				collapsed[key] = []string{prior, entry.Value}
			}
		}
	}
	return collapsed
}

// FormEntry is one flat serialized form entry
type FormEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Unflatten expands flattened reference keys into the nested form-data
// tree, then collapses contiguous numeric-keyed maps into lists of
// repetition instances.
func Unflatten(flat map[string]any) FormData {
	tree := make(map[string]any)
	for key, value := range flat {
		ref := ParseReference(key)
		if len(ref) == 0 {
			continue
		}
		current := tree
		for _, seg := range ref[:len(ref)-1] {
			name := seg.String()
			next, ok := current[name].(map[string]any)
			if !ok {
				next = make(map[string]any)
				current[name] = next
			}
			current = next
		}
		current[ref[len(ref)-1].String()] = value
	}

	converted, _ := convertRepetitionMaps(tree).(map[string]any)
	return converted
}

// convertRepetitionMaps replaces every map whose keys are all numeric with
// the list of its values in numeric key order
func convertRepetitionMaps(value any) any {
	node, ok := value.(map[string]any)
	if !ok {
		return value
	}

	allNumeric := len(node) > 0
	for key := range node {
		if _, err := strconv.Atoi(key); err != nil {
			allNumeric = false
			break
		}
	}

	if allNumeric {
		keys := make([]int, 0, len(node))
		for key := range node {
			n, _ := strconv.Atoi(key)
			keys = append(keys, n)
		}
		sort.Ints(keys)
		list := make([]any, 0, len(keys))
		for _, n := range keys {
			list = append(list, convertRepetitionMaps(node[strconv.Itoa(n)]))
		}
		return list
	}

	for key, child := range node {
		node[key] = convertRepetitionMaps(child)
	}
	return node
}

// ParseFormData unflattens flat entries and merges every named section into
// the general section, producing the canonical form-data tree.
func ParseFormData(flat map[string]any) FormData {
	unflattened := Unflatten(flat)
	general, ok := unflattened["general"].(map[string]any)
	if !ok {
		general = make(map[string]any)
	}
	for sectionName, section := range unflattened {
		if sectionName != "general" {
			general[sectionName] = section
		}
	}
	return general
}

// AddRepetition appends increment copies of the referenced repetition's last
// instance to the form data. A leading "general" segment addresses the main
// section and is skipped. It reports whether instances were appended; data
// not shaped like a repetition list is returned unchanged.
func AddRepetition(data FormData, reference Reference, increment int) (FormData, bool) {
	current, ok := navigateRepetition(data, reference)
	if !ok {
		return data, false
	}
	list, parent, key := current.list, current.parent, current.key
	for i := 0; i < increment; i++ {
		list = append(list, cloneValue(list[len(list)-1]))
	}
	parent[key] = list
	return data, true
}

// cloneValue deep-copies a form-data subtree so appended repetition
// instances don't alias the instance they were copied from
func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[k] = cloneValue(v)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = cloneValue(v)
		}
		return out
	case []string:
		out := make([]string, len(typed))
		copy(out, typed)
		return out
	default:
		return typed
	}
}

// RemoveRepetition removes the instance at index from the referenced
// repetition list, refusing silently when the count is at or below the
// floor. It reports whether an instance was removed.
func RemoveRepetition(data FormData, reference Reference, index, floor int) bool {
	current, ok := navigateRepetition(data, reference)
	if !ok {
		return false
	}
	list := current.list
	if len(list) <= floor {
		return false
	}
	if index < 0 || index >= len(list) {
		return false
	}
	current.parent[current.key] = append(list[:index:index], list[index+1:]...)
	return true
}

// SetValue writes a control value into the nested form-data tree at the
// given absolute reference, creating intermediate maps and extending
// repetition lists as needed. A leading "general" segment is skipped.
func SetValue(data FormData, path Reference, value any) {
	segments := path
	if len(segments) > 0 && !segments[0].IsIndex && segments[0].Name == "general" {
		segments = segments[1:]
	}
	if len(segments) == 0 {
		return
	}

	parent := map[string]any(data)
	i := 0
	for i < len(segments)-1 {
		seg := segments[i]
		if seg.IsIndex {
			return
		}
		if i+1 < len(segments)-1 && segments[i+1].IsIndex {
			list, _ := parent[seg.Name].([]any)
			idx := segments[i+1].Index - 1
			if idx < 0 {
				return
			}
			for len(list) <= idx {
				list = append(list, make(map[string]any))
			}
			parent[seg.Name] = list
			instance, ok := list[idx].(map[string]any)
			if !ok {
				instance = make(map[string]any)
				list[idx] = instance
			}
			parent = instance
			i += 2
			continue
		}
		next, ok := parent[seg.Name].(map[string]any)
		if !ok {
			next = make(map[string]any)
			parent[seg.Name] = next
		}
		parent = next
		i++
	}
	parent[segments[len(segments)-1].String()] = value
}

type repetitionSlot struct {
	list   []any
	parent map[string]any
	key    string
}

func navigateRepetition(data FormData, reference Reference) (repetitionSlot, bool) {
	segments := reference
	if len(segments) > 0 && !segments[0].IsIndex && segments[0].Name == "general" {
		segments = segments[1:]
	}
	if len(segments) == 0 {
		return repetitionSlot{}, false
	}

	parent := map[string]any(data)
	i := 0
	for i < len(segments)-1 {
		seg := segments[i]
		if seg.IsIndex {
			return repetitionSlot{}, false
		}
		switch child := parent[seg.Name].(type) {
		case map[string]any:
			parent = child
			i++
		case []any:
			// A list here is an enclosing repetition; the next segment must
			// be a 1-based instance index.
			if i+1 >= len(segments)-1 || !segments[i+1].IsIndex {
				return repetitionSlot{}, false
			}
			idx := segments[i+1].Index - 1
			if idx < 0 || idx >= len(child) {
				return repetitionSlot{}, false
			}
			instance, ok := child[idx].(map[string]any)
			if !ok {
				return repetitionSlot{}, false
			}
			parent = instance
			i += 2
		default:
			return repetitionSlot{}, false
		}
	}

	key := segments[len(segments)-1].String()
	list, ok := parent[key].([]any)
	if !ok || len(list) == 0 {
		return repetitionSlot{}, false
	}
	return repetitionSlot{list: list, parent: parent, key: key}, true
}
