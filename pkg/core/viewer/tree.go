package viewer

import (
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/xbrl"
)

// =============================================================================
// PRESENTATION TREE BUILDER
// =============================================================================

// maxTreeDepth bounds recursion so malformed relationship data terminates.
const maxTreeDepth = 64

// TreeBuilder converts flat parent->child relationship maps into ordered,
// typed hierarchies, one per report section.
type TreeBuilder struct {
	// LabelPreference lists label roles tried in order before falling back
	// to a humanized concept name.
	LabelPreference []string
}

// NewTreeBuilder creates a builder with the default label preference.
func NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{
		LabelPreference: []string{"terse", "standard"},
	}
}

// Build constructs the presentation statement for one role. Multiple roots
// occur when a section carries disconnected hierarchies.
func (b *TreeBuilder) Build(role xbrl.PresentationRole, def xbrl.RoleDefinition, concepts map[string]xbrl.Concept) *PresentationStatement {
	stmt := &PresentationStatement{
		RoleID:   role.RoleID,
		RoleURI:  def.URI,
		Name:     def.Name,
		Type:     ClassifyStatement(def.Name),
		Group:    def.Group,
		SubGroup: def.SubGroup,
	}
	if stmt.Name == "" {
		stmt.Name = role.RoleID
	}

	for _, root := range b.rootConcepts(role) {
		path := map[string]bool{}
		node := b.buildNode(root, "", 0, role, concepts, path)
		if node != nil {
			stmt.Roots = append(stmt.Roots, node)
		}
	}
	return stmt
}

// rootConcepts returns the section's root concepts: the declared roots when
// the payload carries them, otherwise every parent never listed as a child.
func (b *TreeBuilder) rootConcepts(role xbrl.PresentationRole) []string {
	if len(role.Roots) > 0 {
		return role.Roots
	}
	isChild := make(map[string]bool)
	for _, children := range role.Relationships {
		for _, rel := range children {
			isChild[rel.Child] = true
		}
	}
	var roots []string
	for parent := range role.Relationships {
		if !isChild[parent] {
			roots = append(roots, parent)
		}
	}
	sort.Strings(roots)
	return roots
}

// buildNode recursively builds the subtree rooted at concept. A concept
// already on the current path is treated as a leaf so cyclic relationship
// data terminates.
func (b *TreeBuilder) buildNode(concept, preferredLabel string, depth int, role xbrl.PresentationRole, concepts map[string]xbrl.Concept, path map[string]bool) *PresentationNode {
	meta := concepts[concept]
	node := &PresentationNode{
		Concept:            concept,
		Label:              b.resolveLabel(concept, preferredLabel, meta),
		Depth:              depth,
		Abstract:           isAbstract(concept, meta),
		PreferredLabelRole: preferredLabel,
	}

	if path[concept] || depth >= maxTreeDepth {
		return node
	}
	path[concept] = true
	defer delete(path, concept)

	children := append([]xbrl.Relationship(nil), role.Relationships[concept]...)
	sort.SliceStable(children, func(i, j int) bool { return children[i].Order < children[j].Order })

	seen := make(map[string]bool)
	for _, rel := range children {
		if seen[rel.Child] {
			// Duplicate concepts within a section are logged, not rejected.
			log.Printf("viewer: duplicate child %s under %s in role %s", rel.Child, concept, role.RoleID)
		}
		seen[rel.Child] = true
		child := b.buildNode(rel.Child, rel.PreferredLabel, depth+1, role, concepts, path)
		if child != nil {
			child.Order = rel.Order
			node.Children = append(node.Children, child)
		}
	}
	return node
}

// resolveLabel picks the display label: the edge's preferred label role first,
// then the configured preference order, then a humanized concept name.
func (b *TreeBuilder) resolveLabel(concept, preferredLabel string, meta xbrl.Concept) string {
	if preferredLabel != "" {
		if text, ok := meta.Labels[preferredLabel]; ok && text != "" {
			return text
		}
	}
	for _, role := range b.LabelPreference {
		if text, ok := meta.Labels[role]; ok && text != "" {
			return text
		}
	}
	return HumanizeConcept(concept)
}

// isAbstract takes abstractness from metadata, or infers it from the reserved
// concept name suffix.
func isAbstract(concept string, meta xbrl.Concept) bool {
	if meta.Abstract {
		return true
	}
	return strings.HasSuffix(xbrl.LocalName(concept), "Abstract")
}

// =============================================================================
// LABEL AND CLASSIFICATION HELPERS
// =============================================================================

var camelBoundaryRe = regexp.MustCompile(`([a-z0-9])([A-Z])|([A-Z])([A-Z][a-z])`)

// HumanizeConcept turns a concept identifier into display text: the namespace
// is stripped and the camel-cased remainder split into words.
func HumanizeConcept(concept string) string {
	name := xbrl.LocalName(concept)
	name = strings.TrimSuffix(name, "Abstract")
	name = strings.ReplaceAll(name, "-", " ")
	name = camelBoundaryRe.ReplaceAllString(name, "$1$3 $2$4")
	return strings.TrimSpace(name)
}

// ClassifyStatement derives a best-effort statement type from keywords in the
// section's display name.
func ClassifyStatement(name string) StatementType {
	n := strings.ToLower(name)
	switch {
	case n == "":
		return TypeOther
	case strings.Contains(n, "comprehensive"):
		return TypeComprehensiveIncome
	case strings.Contains(n, "cash flow"):
		return TypeCashFlow
	case strings.Contains(n, "balance sheet") || strings.Contains(n, "position"):
		return TypeBalanceSheet
	case strings.Contains(n, "equity") || strings.Contains(n, "stockholders") || strings.Contains(n, "shareholders"):
		return TypeEquity
	case strings.Contains(n, "operations") || strings.Contains(n, "income"):
		return TypeIncomeStatement
	default:
		return TypeOther
	}
}

// structuralSuffixes mark concepts that are presentation scaffolding, never rows.
var structuralSuffixes = []string{"Axis", "Domain", "Member", "Table", "LineItems"}

// IsStructuralConcept reports whether a concept is pure structural scaffolding
// (axis, domain, member, table, or line-items container).
func IsStructuralConcept(concept string) bool {
	local := xbrl.LocalName(concept)
	for _, suffix := range structuralSuffixes {
		if strings.HasSuffix(local, suffix) {
			return true
		}
	}
	return false
}
