// Package forms provides domain entities for the conditional form engine.
// It defines the element model, structural references, conditions, the
// condition dependency graph, and contextualized form state.
package forms

import (
	"strconv"
	"strings"
)

// ParentToken is the relative-navigation segment that ascends one structural
// level when merging references.
const ParentToken = ".."

// Segment is one step of a structural path. A segment is either a structural
// name or a repetition index.
type Segment struct {
	Name    string
	Index   int
	IsIndex bool
}

// NameSegment creates a structural name segment
func NameSegment(name string) Segment {
	return Segment{Name: name}
}

// IndexSegment creates a repetition index segment
func IndexSegment(index int) Segment {
	return Segment{Index: index, IsIndex: true}
}

// String returns the serialized form of a single segment
func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Name
}

// Reference is an ordered structural path identifying a form control across
// nested repeatable groups. The last segment of an absolute reference
// identifies the owning control; intermediate segments identify containing
// groups and repetition instances.
type Reference []Segment

// String serializes a reference as name[seg1][seg2]... by joining the
// segments with "][", stripping the first "]" and appending a trailing "]".
// ParseReference inverts this exactly.
func (r Reference) String() string {
	if len(r) == 0 {
		return ""
	}
	parts := make([]string, len(r))
	for i, seg := range r {
		parts[i] = seg.String()
	}
	joined := strings.Join(parts, "][")
	joined = strings.Replace(joined, "]", "", 1)
	return joined + "]"
}

// ParseReference parses a flattened reference string back into a Reference.
// All "]" characters are stripped and the remainder is split on "[";
// purely numeric segments become index segments.
func ParseReference(s string) Reference {
	if s == "" {
		return nil
	}
	stripped := strings.ReplaceAll(s, "]", "")
	parts := strings.Split(stripped, "[")
	ref := make(Reference, 0, len(parts))
	for _, part := range parts {
		if idx, err := strconv.Atoi(part); err == nil && part != "" {
			ref = append(ref, IndexSegment(idx))
			continue
		}
		ref = append(ref, NameSegment(part))
	}
	return ref
}

// Equal reports whether two references have identical segments
func (r Reference) Equal(other Reference) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the reference
func (r Reference) Clone() Reference {
	out := make(Reference, len(r))
	copy(out, r)
	return out
}

// ContainsParentToken reports whether the reference uses relative navigation
func (r Reference) ContainsParentToken() bool {
	for _, seg := range r {
		if !seg.IsIndex && seg.Name == ParentToken {
			return true
		}
	}
	return false
}

// MergeReferences resolves the relative reference to against the absolute
// reference from of the declaring control. The accumulator starts as from
// minus its last segment (the containing scope). Each ".." in to pops one
// segment, and one extra when the popped segment was a repetition index,
// since an index always travels with the group name it indexes. Any other
// segment is appended. The result is the absolute reference of the target.
func MergeReferences(from, to Reference) Reference {
	var acc Reference
	if len(from) > 0 {
		acc = from[:len(from)-1].Clone()
	}
	for _, seg := range to {
		if !seg.IsIndex && seg.Name == ParentToken {
			if len(acc) == 0 {
				continue
			}
			popped := acc[len(acc)-1]
			acc = acc[:len(acc)-1]
			if popped.IsIndex && len(acc) > 0 {
				acc = acc[:len(acc)-1]
			}
			continue
		}
		acc = append(acc, seg)
	}
	return acc
}
