package scrollreel

import "fmt"

// ElementSet is a named, fixed-size collection of element references. Slots
// are filled as the layout layer mounts elements; the set never grows.
type ElementSet struct {
	name  string
	nodes []*Node
}

// NewElementSet allocates a set with count empty slots.
func NewElementSet(name string, count int) *ElementSet {
	if count < 0 {
		count = 0
	}
	return &ElementSet{name: name, nodes: make([]*Node, count)}
}

// SetOf builds a fully populated set from nodes.
func SetOf(name string, nodes ...*Node) *ElementSet {
	s := NewElementSet(name, len(nodes))
	copy(s.nodes, nodes)
	return s
}

// Name returns the set name.
func (s *ElementSet) Name() string { return s.name }

// Len returns the declared slot count.
func (s *ElementSet) Len() int { return len(s.nodes) }

// Set stores node in slot i. Panics if i is out of range.
func (s *ElementSet) Set(i int, node *Node) {
	if i < 0 || i >= len(s.nodes) {
		panic(fmt.Sprintf("scrollreel: element index %d out of range for set %q (len %d)", i, s.name, len(s.nodes)))
	}
	s.nodes[i] = node
}

// At returns slot i, which may be nil before the element mounts.
func (s *ElementSet) At(i int) *Node {
	return s.nodes[i]
}

// Resolve checks that every slot holds a live node and returns the slots.
// The returned slice MUST NOT be mutated.
func (s *ElementSet) Resolve() ([]*Node, error) {
	for i, n := range s.nodes {
		if n == nil {
			return nil, fmt.Errorf("set %q slot %d: %w", s.name, i, ErrUnresolvedElement)
		}
		if n.IsDisposed() {
			return nil, fmt.Errorf("set %q slot %d is disposed: %w", s.name, i, ErrUnresolvedElement)
		}
	}
	return s.nodes, nil
}

// Target selects elements of a set: one slot, or all slots when Index is -1.
type Target struct {
	Set   string
	Index int
}

// All targets every element of the named set.
func All(set string) Target { return Target{Set: set, Index: -1} }

// One targets a single element of the named set.
func One(set string, index int) Target { return Target{Set: set, Index: index} }

func (t Target) String() string {
	if t.Index < 0 {
		return t.Set
	}
	return fmt.Sprintf("%s[%d]", t.Set, t.Index)
}

// Elements maps set names to resolved sets.
type Elements map[string]*ElementSet

// NewElements indexes sets by name.
func NewElements(sets ...*ElementSet) Elements {
	e := make(Elements, len(sets))
	for _, s := range sets {
		e[s.name] = s
	}
	return e
}

// resolveTarget returns the nodes a target refers to.
func (e Elements) resolveTarget(t Target) ([]*Node, error) {
	set, ok := e[t.Set]
	if !ok {
		return nil, fmt.Errorf("target %s: %w", t, ErrUnknownSet)
	}
	nodes, err := set.Resolve()
	if err != nil {
		return nil, err
	}
	if t.Index < 0 {
		return nodes, nil
	}
	if t.Index >= len(nodes) {
		return nil, fmt.Errorf("target %s exceeds set size %d: %w", t, len(nodes), ErrCountMismatch)
	}
	return nodes[t.Index : t.Index+1], nil
}
