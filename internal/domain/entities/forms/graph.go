package forms

// ConditionGraph records, per effect type, which elements must be
// re-evaluated when a target control changes. The back-references are
// built once per form-state construction and never patched incrementally;
// any structural change rebuilds state and graph from scratch.
type ConditionGraph struct {
	// Dependents maps effect type -> target control ID -> dependent element IDs
	Dependents map[EffectType]map[string][]string
}

// NewConditionGraph creates an empty graph
func NewConditionGraph() *ConditionGraph {
	dependents := make(map[EffectType]map[string][]string, len(EffectTypes))
	for _, effect := range EffectTypes {
		dependents[effect] = make(map[string][]string)
	}
	return &ConditionGraph{Dependents: dependents}
}

// DependentsOf returns the IDs of elements that must be re-evaluated for an
// effect when the named target control changes
func (g *ConditionGraph) DependentsOf(effect EffectType, targetID string) []string {
	return g.Dependents[effect][targetID]
}

// addDependent records a back-reference from a target control to a dependent
// element, once per pair
func (g *ConditionGraph) addDependent(effect EffectType, targetID, elementID string) {
	for _, existing := range g.Dependents[effect][targetID] {
		if existing == elementID {
			return
		}
	}
	g.Dependents[effect][targetID] = append(g.Dependents[effect][targetID], elementID)
}

// BuildConditionGraph walks the registry, constructs every element's
// conditions from its declarations, resolves target references against the
// element's absolute path, and records the back-references. Elements with no
// conditions for an effect are excluded from that effect's re-evaluation set.
// A malformed declaration anywhere aborts the build.
func BuildConditionGraph(registry *ElementRegistry, decls map[string]map[EffectType][]ConditionDecl) (*ConditionGraph, error) {
	graph := NewConditionGraph()

	var buildErr error
	registry.Walk(func(node *ElementNode) {
		if buildErr != nil {
			return
		}
		nodeDecls := decls[node.ID]
		if len(nodeDecls) == 0 {
			return
		}
		for _, effect := range EffectTypes {
			raw := nodeDecls[effect]
			if len(raw) == 0 {
				continue
			}
			conditions := make([]Condition, 0, len(raw))
			for _, decl := range raw {
				// Resolve the target before construction so the condition
				// never changes afterwards. An empty name passes through
				// for ParseCondition to reject.
				resolved := decl
				if resolved.Name != "" {
					resolved.Name = resolveTarget(registry, node, decl.Name)
				}
				condition, err := ParseCondition(resolved)
				if err != nil {
					buildErr = err
					return
				}
				conditions = append(conditions, condition)
				graph.addDependent(effect, condition.TargetName(), node.ID)
			}
			if node.Conditions == nil {
				node.Conditions = make(map[EffectType][]Condition)
			}
			node.Conditions[effect] = conditions
		}
	})
	if buildErr != nil {
		return nil, buildErr
	}
	return graph, nil
}

// resolveTarget turns a declared target name into the flattened ID of the
// target control. A name that already matches a registered control is
// absolute; anything else, including names using the ".." parent token, is
// resolved against the declaring element's containing scope.
func resolveTarget(registry *ElementRegistry, node *ElementNode, targetName string) string {
	if len(registry.Controls(targetName)) > 0 {
		return targetName
	}
	merged := MergeReferences(node.Path, ParseReference(targetName))
	return merged.String()
}
