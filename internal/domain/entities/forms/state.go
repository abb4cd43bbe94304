package forms

// Display is the computed visibility of a contextualized element
type Display string

const (
	// DisplayDefault inherits visibility from the ancestor chain
	DisplayDefault Display = "default"
	// DisplayHidden removes the element from presentation
	DisplayHidden Display = "hidden"
)

// ElementNode is one contextualized element instance. Repetition instances
// are fully expanded, so every node carries an absolute reference; the
// flattened reference string is the node's stable opaque ID.
type ElementNode struct {
	ID      string      `json:"id"`
	Kind    ElementKind `json:"kind"`
	Name    string      `json:"name,omitempty"`
	Label   string      `json:"label,omitempty"`
	Text    string      `json:"text,omitempty"`
	Path    Reference   `json:"-"`
	PathIDs []string    `json:"path"`

	Required    bool     `json:"required,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Options     []Option `json:"options,omitempty"`
	Multiple    bool     `json:"multiple,omitempty"`

	// Current control state
	Value   string `json:"value,omitempty"`
	Checked bool   `json:"checked,omitempty"`

	// Computed effects
	Display  Display `json:"display"`
	Disabled bool    `json:"disabled"`

	// Repetition bookkeeping
	InitialRepetitions int `json:"initialRepetitions,omitempty"`
	Increment          int `json:"increment,omitempty"`

	Children []*ElementNode `json:"children,omitempty"`
	Parent   *ElementNode   `json:"-"`

	// Constructed conditions keyed by effect type
	Conditions map[EffectType][]Condition `json:"-"`
}

// AddChild appends a child node and sets its parent link
func (n *ElementNode) AddChild(child *ElementNode) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// HasConditions reports whether the node carries conditions for an effect
func (n *ElementNode) HasConditions(effect EffectType) bool {
	return len(n.Conditions[effect]) > 0
}

// Walk visits the node and all descendants depth-first
func (n *ElementNode) Walk(visit func(*ElementNode)) {
	visit(n)
	for _, child := range n.Children {
		child.Walk(visit)
	}
}

// ElementRegistry indexes the contextualized element tree. Elements are
// addressed by their flattened reference ID; control nodes are kept in a
// second index under the same ID so condition evaluation can look up its
// target set without filtering the full tree.
type ElementRegistry struct {
	Roots        []*ElementNode
	ByID         map[string]*ElementNode
	ControlsByID map[string][]*ElementNode
}

// NewElementRegistry creates an empty registry
func NewElementRegistry() *ElementRegistry {
	return &ElementRegistry{
		ByID:         make(map[string]*ElementNode),
		ControlsByID: make(map[string][]*ElementNode),
	}
}

// Register adds a node to the registry indexes
func (r *ElementRegistry) Register(node *ElementNode) {
	r.ByID[node.ID] = node
	if node.IsControl() {
		r.ControlsByID[node.ID] = append(r.ControlsByID[node.ID], node)
	}
}

// IsControl reports whether a node carries a submittable value
func (n *ElementNode) IsControl() bool {
	switch n.Kind {
	case KindInput, KindCheckbox, KindRadioGroup, KindSelect, KindHidden:
		return true
	}
	return false
}

// Controls returns every control registered under a flattened reference ID.
// Conditions hold conjunctively over the returned set.
func (r *ElementRegistry) Controls(id string) []*ElementNode {
	return r.ControlsByID[id]
}

// Get returns the node with the given ID
func (r *ElementRegistry) Get(id string) (*ElementNode, bool) {
	node, ok := r.ByID[id]
	return node, ok
}

// Walk visits every node in the registry depth-first, in document order
func (r *ElementRegistry) Walk(visit func(*ElementNode)) {
	for _, root := range r.Roots {
		root.Walk(visit)
	}
}

// FormState is the engine-owned state of one form for one session: the
// contextualized element tree, its indexes, the condition graph, and the
// form data the tree was contextualized from.
type FormState struct {
	FormID   string
	Registry *ElementRegistry
	Graph    *ConditionGraph
	Data     FormData
}

// Elements returns the contextualized element roots for serialization
func (s *FormState) Elements() []*ElementNode {
	return s.Registry.Roots
}
