package forms

import (
	"regexp"
	"strconv"
)

// repnoPattern matches the repetition-number placeholder in labels and
// defaults, e.g. "Choice {fw:repno}".
var repnoPattern = regexp.MustCompile(`\{\s?fw:repno\s?\}`)

// ConditionDecls maps element ID -> effect type -> raw declarations,
// collected during contextualization for the graph builder.
type ConditionDecls map[string]map[EffectType][]ConditionDecl

// Contextualize expands a form definition against prior form data into the
// contextualized element tree: repetition instances are expanded (from data
// when present, initial_repetitions otherwise), every element gets an
// absolute reference, repetition-number placeholders are substituted, and
// control values and checked states are seeded from the data.
func Contextualize(def *FormDefinition, data FormData) (*ElementRegistry, ConditionDecls) {
	b := &contextBuilder{
		registry: NewElementRegistry(),
		decls:    make(ConditionDecls),
	}

	path := Reference{NameSegment("general")}
	for i := range def.General {
		node := b.element(&def.General[i], data, path, 0)
		b.registry.Roots = append(b.registry.Roots, node...)
	}
	for s := range def.Sections {
		section := &def.Sections[s]
		sectionPath := Reference{NameSegment(section.Name)}
		sectionData, _ := data[section.Name].(map[string]any)
		root := &ElementNode{
			ID:      sectionPath.String(),
			Kind:    KindGroup,
			Name:    section.Name,
			Label:   section.Header,
			Path:    sectionPath.Clone(),
			PathIDs: pathIDs(sectionPath),
			Display: DisplayDefault,
		}
		b.registry.Register(root)
		for i := range section.Elements {
			for _, child := range b.element(&section.Elements[i], sectionData, sectionPath, 0) {
				root.AddChild(child)
			}
		}
		b.registry.Roots = append(b.registry.Roots, root)
	}
	return b.registry, b.decls
}

type contextBuilder struct {
	registry *ElementRegistry
	decls    ConditionDecls
}

// element contextualizes one definition element under the given path.
// Checkbox groups without a name flatten into their parent scope, which is
// why a single definition element can yield several nodes.
func (b *contextBuilder) element(def *Element, scope map[string]any, path Reference, repno int) []*ElementNode {
	if def.Kind == KindCheckboxGroup && def.Name == "" {
		nodes := make([]*ElementNode, 0, len(def.Checkboxes))
		for i := range def.Checkboxes {
			nodes = append(nodes, b.element(&def.Checkboxes[i], scope, path, repno)...)
		}
		return nodes
	}

	elementPath := append(path.Clone(), NameSegment(def.Name))
	var elementData any
	if scope != nil {
		elementData = scope[def.Name]
	}

	switch def.Kind {
	case KindGroup:
		childScope, _ := elementData.(map[string]any)
		node := b.newNode(def, elementPath, repno)
		for i := range def.Elements {
			for _, child := range b.element(&def.Elements[i], childScope, elementPath, repno) {
				node.AddChild(child)
			}
		}
		return []*ElementNode{node}

	case KindCheckboxGroup:
		childScope, _ := elementData.(map[string]any)
		node := b.newNode(def, elementPath, repno)
		for i := range def.Checkboxes {
			for _, child := range b.element(&def.Checkboxes[i], childScope, elementPath, repno) {
				node.AddChild(child)
			}
		}
		return []*ElementNode{node}

	case KindRepetition:
		node := b.newNode(def, elementPath, repno)
		instances, _ := elementData.([]any)
		count := len(instances)
		if count == 0 {
			count = def.InitialRepetitions
		}
		for i := 1; i <= count; i++ {
			var instanceScope map[string]any
			if i <= len(instances) {
				instanceScope, _ = instances[i-1].(map[string]any)
			}
			instancePath := append(elementPath.Clone(), IndexSegment(i))
			instance := &ElementNode{
				ID:      instancePath.String(),
				Kind:    KindGroup,
				Name:    strconv.Itoa(i),
				Path:    instancePath.Clone(),
				PathIDs: pathIDs(instancePath),
				Display: DisplayDefault,
			}
			b.registry.Register(instance)
			for e := range def.Elements {
				for _, child := range b.element(&def.Elements[e], instanceScope, instancePath, i) {
					instance.AddChild(child)
				}
			}
			node.AddChild(instance)
		}
		return []*ElementNode{node}
	}

	node := b.newNode(def, elementPath, repno)
	b.seedControl(node, def, elementData, repno)
	return []*ElementNode{node}
}

// newNode creates and registers a node for a definition element, applying
// repetition-number substitution and recording condition declarations
func (b *contextBuilder) newNode(def *Element, path Reference, repno int) *ElementNode {
	node := &ElementNode{
		ID:                 path.String(),
		Kind:               def.Kind,
		Name:               def.Name,
		Label:              substituteRepno(def.Label, repno),
		Text:               substituteRepno(def.Text, repno),
		Path:               path.Clone(),
		PathIDs:            pathIDs(path),
		Required:           def.Required,
		Placeholder:        substituteRepno(def.Placeholder, repno),
		Multiple:           def.Multiple,
		Display:            DisplayDefault,
		InitialRepetitions: def.InitialRepetitions,
		Increment:          def.Increment,
	}
	if len(def.Options) > 0 {
		node.Options = make([]Option, len(def.Options))
		copy(node.Options, def.Options)
		for i := range node.Options {
			node.Options[i].Label = substituteRepno(node.Options[i].Label, repno)
		}
	}
	b.registry.Register(node)

	if len(def.HideIf) > 0 || len(def.DisableIf) > 0 {
		decls := make(map[EffectType][]ConditionDecl, 2)
		if len(def.HideIf) > 0 {
			decls[EffectHideIf] = def.HideIf
		}
		if len(def.DisableIf) > 0 {
			decls[EffectDisableIf] = def.DisableIf
		}
		b.decls[node.ID] = decls
	}
	return node
}

// seedControl sets a control node's value or checked state from its
// definition defaults and any prior form data
func (b *contextBuilder) seedControl(node *ElementNode, def *Element, elementData any, repno int) {
	switch def.Kind {
	case KindInput:
		node.Value = substituteRepno(def.Default, repno)
		if s, ok := elementData.(string); ok && s != "" {
			node.Value = s
		}

	case KindCheckbox:
		node.Checked = def.Selected
		if s, ok := elementData.(string); ok && s != "" {
			node.Checked = true
		}

	case KindRadioGroup, KindSelect:
		for i := range node.Options {
			if node.Options[i].Selected && node.Value == "" {
				node.Value = node.Options[i].Value
			}
		}
		switch data := elementData.(type) {
		case string:
			if data != "" {
				node.Value = data
			}
		case []string:
			if len(data) > 0 {
				node.Value = data[0]
			}
		case []any:
			if len(data) > 0 {
				if s, ok := data[0].(string); ok {
					node.Value = s
				}
			}
		}
		for i := range node.Options {
			node.Options[i].Selected = node.Options[i].Value == node.Value
		}

	case KindHidden:
		node.Value = def.Value
		if s, ok := elementData.(string); ok && s != "" {
			node.Value = s
		}
	}
}

func substituteRepno(s string, repno int) string {
	if s == "" || repno < 1 {
		return s
	}
	return repnoPattern.ReplaceAllString(s, strconv.Itoa(repno))
}

func pathIDs(path Reference) []string {
	ids := make([]string, len(path))
	for i, seg := range path {
		ids[i] = seg.String()
	}
	return ids
}
