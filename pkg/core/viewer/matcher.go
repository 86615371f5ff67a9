package viewer

import (
	"sort"
	"strings"

	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/xbrl"
)

// =============================================================================
// FACT MATCHER - Bind reported facts to presentation nodes per period
// =============================================================================

// FactMatcher walks a built presentation statement, locates matching facts per
// node per period, expands dimensional variants, and produces the flat ordered
// row set of a statement table.
type FactMatcher struct {
	formatter *ValueFormatter
	concepts  map[string]xbrl.Concept
}

// NewFactMatcher creates a matcher. concepts is used for dimension row labels.
func NewFactMatcher(formatter *ValueFormatter, concepts map[string]xbrl.Concept) *FactMatcher {
	if formatter == nil {
		formatter = NewValueFormatter()
	}
	return &FactMatcher{formatter: formatter, concepts: concepts}
}

// BuildTable populates a statement table from the fact set for the given
// target periods.
func (m *FactMatcher) BuildTable(stmt *PresentationStatement, facts []xbrl.Fact, periods []Period) *StatementTable {
	table := &StatementTable{
		RoleID:  stmt.RoleID,
		RoleURI: stmt.RoleURI,
		Name:    stmt.Name,
		Type:    stmt.Type,
		Periods: periods,
	}

	byConcept := make(map[string][]xbrl.Fact)
	for _, f := range facts {
		byConcept[f.Concept] = append(byConcept[f.Concept], f)
	}
	memberOrder := collectMemberOrder(stmt)

	for _, root := range stmt.Roots {
		m.walk(root, 0, nil, byConcept, memberOrder, periods, table)
	}
	return table
}

// walk emits rows in presentation order. Structural scaffolding nodes never
// become rows; their depth is propagated so descendants keep stable
// indentation after removal.
func (m *FactMatcher) walk(node *PresentationNode, depth int, parentPath []string, byConcept map[string][]xbrl.Fact, memberOrder map[string]float64, periods []Period, table *StatementTable) {
	if IsStructuralConcept(node.Concept) {
		for _, child := range node.Children {
			m.walk(child, depth, parentPath, byConcept, memberOrder, periods, table)
		}
		return
	}

	order := node.Order
	row := &StatementRow{
		Label:              node.Label,
		Concept:            node.Concept,
		Abstract:           node.Abstract,
		Depth:              depth,
		PreferredLabelRole: node.PreferredLabelRole,
		Order:              &order,
		ParentPath:         append([]string(nil), parentPath...),
		Cells:              make(map[string]Cell),
	}

	conceptFacts := byConcept[node.Concept]
	for _, p := range periods {
		if node.Abstract {
			row.Cells[p.Key()] = PlaceholderCell(p)
			continue
		}
		row.Cells[p.Key()] = m.locateCell(conceptFacts, nil, p)
	}
	table.Rows = append(table.Rows, row)

	if !node.Abstract {
		for _, dimRow := range m.expandDimensions(row, conceptFacts, memberOrder, periods) {
			table.Rows = append(table.Rows, dimRow)
		}
	}

	childPath := append(append([]string(nil), parentPath...), node.Concept)
	for _, child := range node.Children {
		m.walk(child, depth+1, childPath, byConcept, memberOrder, periods, table)
	}
}

// locateCell finds the fact for one period under the given signature (nil =
// consolidated) and formats it. A missing fact yields a placeholder cell.
func (m *FactMatcher) locateCell(facts []xbrl.Fact, sig DimensionSignature, p Period) Cell {
	for _, f := range facts {
		if !NewSignature(f.Dimensions).Equal(sig) {
			continue
		}
		if !MatchesPeriod(f.Period, p) {
			continue
		}
		return m.newCell(f, p)
	}
	return PlaceholderCell(p)
}

func (m *FactMatcher) newCell(f xbrl.Fact, p Period) Cell {
	cell := Cell{
		RawValue: f.Numeric,
		Unit:     f.Unit,
		Decimals: f.Decimals,
		Period:   p,
	}
	if f.Numeric != nil {
		cell.Value = m.formatter.Format(*f.Numeric, f.Decimals)
	} else {
		cell.Value = f.Value
	}
	return cell
}

// PlaceholderCell is the cell emitted when no fact matches a period.
func PlaceholderCell(p Period) Cell {
	return Cell{Value: Placeholder, Period: p}
}

// =============================================================================
// DIMENSIONAL EXPANSION
// =============================================================================

// expandDimensions emits one row per distinct axis+member combination reported
// for the base row's concept, directly beneath it. Rows are ordered by the
// member's own presentation order when known, otherwise by first appearance.
func (m *FactMatcher) expandDimensions(base *StatementRow, facts []xbrl.Fact, memberOrder map[string]float64, periods []Period) []*StatementRow {
	type variant struct {
		sig        DimensionSignature
		firstSeen  int
		order      float64
		orderKnown bool
	}
	var variants []*variant
	seen := make(map[string]*variant)

	for i, f := range facts {
		if len(f.Dimensions) == 0 {
			continue
		}
		sig := NewSignature(f.Dimensions)
		key := sig.Key()
		if seen[key] != nil {
			continue
		}
		v := &variant{sig: sig, firstSeen: i}
		for _, pair := range sig {
			if o, ok := memberOrder[pair.Member]; ok {
				if !v.orderKnown || o < v.order {
					v.order = o
					v.orderKnown = true
				}
			}
		}
		seen[key] = v
		variants = append(variants, v)
	}

	sort.SliceStable(variants, func(i, j int) bool {
		a, b := variants[i], variants[j]
		if a.orderKnown != b.orderKnown {
			return a.orderKnown
		}
		if a.orderKnown && a.order != b.order {
			return a.order < b.order
		}
		return a.firstSeen < b.firstSeen
	})

	rows := make([]*StatementRow, 0, len(variants))
	for _, v := range variants {
		row := &StatementRow{
			Label:      m.signatureLabel(v.sig),
			Concept:    base.Concept,
			Depth:      base.Depth + 1,
			ParentPath: append(append([]string(nil), base.ParentPath...), base.Concept),
			Dimensions: v.sig,
			Cells:      make(map[string]Cell),
		}
		for _, p := range periods {
			row.Cells[p.Key()] = m.locateCell(facts, v.sig, p)
		}
		rows = append(rows, row)
	}
	return rows
}

// signatureLabel builds the display label of a dimensioned row from its
// member labels.
func (m *FactMatcher) signatureLabel(sig DimensionSignature) string {
	parts := make([]string, 0, len(sig))
	for _, pair := range sig {
		parts = append(parts, m.memberLabel(pair.Member))
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += ", " + p
	}
	return out
}

func (m *FactMatcher) memberLabel(member string) string {
	if meta, ok := m.concepts[member]; ok {
		for _, role := range []string{"terse", "standard"} {
			if text := meta.Labels[role]; text != "" {
				return text
			}
		}
	}
	// "Automotive" reads better than "Automotive Member".
	local := strings.TrimSuffix(xbrl.LocalName(member), "Member")
	return HumanizeConcept(local)
}

// collectMemberOrder records the presentation order of member concepts found
// in the statement's own tree, used to sort dimensional variants.
func collectMemberOrder(stmt *PresentationStatement) map[string]float64 {
	orders := make(map[string]float64)
	var visit func(n *PresentationNode)
	visit = func(n *PresentationNode) {
		if IsStructuralConcept(n.Concept) {
			if _, exists := orders[n.Concept]; !exists {
				orders[n.Concept] = n.Order
			}
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	for _, root := range stmt.Roots {
		visit(root)
	}
	return orders
}
