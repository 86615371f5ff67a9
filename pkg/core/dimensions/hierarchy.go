// Package dimensions records parent/child relationships among dimensional
// members observed while parsing filing presentation structures. The merged
// hierarchy answers ancestor queries during ensemble row alignment; it is
// never consulted for value computation.
package dimensions

import (
	"encoding/json"
	"sort"
	"strings"
)

// Hierarchy is a directed forest over normalized member identifiers.
// It is purely additive: relationships are recorded and merged, never pruned.
type Hierarchy struct {
	parents  map[string]string
	children map[string]map[string]bool
}

// NewHierarchy creates an empty hierarchy.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{
		parents:  make(map[string]string),
		children: make(map[string]map[string]bool),
	}
}

// NormalizeMember strips the namespace prefix and lower-cases a member
// identifier so that "us-gaap:AutomotiveMember" and "custom_automotivemember"
// compare equal across filings.
func NormalizeMember(name string) string {
	if i := strings.LastIndex(name, ":"); i >= 0 {
		name = name[i+1:]
	} else if i := strings.Index(name, "_"); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}

// AddRelationship records a parent->child edge. The first recorded parent for
// a member wins; later conflicting edges are ignored to keep merges stable.
func (h *Hierarchy) AddRelationship(parent, child string) {
	p := NormalizeMember(parent)
	c := NormalizeMember(child)
	if p == "" || c == "" || p == c {
		return
	}
	if _, exists := h.parents[c]; !exists {
		h.parents[c] = p
	}
	if h.children[p] == nil {
		h.children[p] = make(map[string]bool)
	}
	h.children[p][c] = true
}

// Parent returns the recorded parent of a member, if any.
func (h *Hierarchy) Parent(member string) (string, bool) {
	p, ok := h.parents[NormalizeMember(member)]
	return p, ok
}

// Children returns the recorded children of a member, sorted.
func (h *Hierarchy) Children(member string) []string {
	set := h.children[NormalizeMember(member)]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// IsAncestor reports whether ancestor appears on member's parent chain.
// A member is not its own ancestor. Walks are bounded by a visited set so
// malformed cyclic input terminates.
func (h *Hierarchy) IsAncestor(ancestor, member string) bool {
	a := NormalizeMember(ancestor)
	m := NormalizeMember(member)
	if a == "" || m == "" || a == m {
		return false
	}
	visited := make(map[string]bool)
	for cur := m; ; {
		parent, ok := h.parents[cur]
		if !ok || visited[parent] {
			return false
		}
		if parent == a {
			return true
		}
		visited[parent] = true
		cur = parent
	}
}

// Related reports whether two members are equal or in an ancestor/descendant
// relationship in either direction.
func (h *Hierarchy) Related(a, b string) bool {
	if NormalizeMember(a) == NormalizeMember(b) {
		return true
	}
	return h.IsAncestor(a, b) || h.IsAncestor(b, a)
}

// Merge folds another hierarchy's edges into this one.
func (h *Hierarchy) Merge(other *Hierarchy) {
	if other == nil {
		return
	}
	for child, parent := range other.parents {
		h.AddRelationship(parent, child)
	}
}

// Size returns the number of recorded parent edges.
func (h *Hierarchy) Size() int {
	return len(h.parents)
}

// MarshalJSON serializes the hierarchy as a child->parent map so fragments
// survive result storage.
func (h *Hierarchy) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.parents)
}

// UnmarshalJSON restores a hierarchy from its child->parent map form.
func (h *Hierarchy) UnmarshalJSON(data []byte) error {
	parents := make(map[string]string)
	if err := json.Unmarshal(data, &parents); err != nil {
		return err
	}
	h.parents = make(map[string]string)
	h.children = make(map[string]map[string]bool)
	for child, parent := range parents {
		h.AddRelationship(parent, child)
	}
	return nil
}
