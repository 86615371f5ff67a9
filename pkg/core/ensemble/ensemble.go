// Package ensemble merges statements built from several filings of one
// company into a single multi-period report. The newest filing's row skeleton
// and section set are authoritative; other filings' rows are aligned onto it
// by concept identity, structural position, and the merged dimension
// hierarchy, so that concept renames and granularity drift between periods
// still land on the right rows.
//
// Alignment runs single-threaded over already-computed per-filing results:
// row matching depends on a strict newest-first ordering and on a hierarchy
// that is fully merged before alignment begins.
package ensemble

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/dimensions"
	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/viewer"
)

// FilingStatements tags one filing's processing result with its filing date.
type FilingStatements struct {
	FilingDate string                   `json:"filing_date"` // ISO date
	Result     *viewer.ProcessingResult `json:"result"`
}

// Engine aligns per-filing statement sets.
type Engine struct {
	matchers []RowMatcher
}

// NewEngine creates an engine with the default matcher tiers.
func NewEngine() *Engine {
	return &Engine{matchers: DefaultMatchers()}
}

// Combine merges the filings' statements into one combined result whose
// statement columns are one period per input filing.
func (e *Engine) Combine(filings []FilingStatements) (*viewer.ProcessingResult, error) {
	if len(filings) == 0 {
		return nil, fmt.Errorf("no filings provided to ensemble")
	}

	ordered := make([]FilingStatements, len(filings))
	copy(ordered, filings)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].FilingDate > ordered[j].FilingDate
	})
	anchor := ordered[0]
	if anchor.Result == nil || len(anchor.Result.Statements) == 0 {
		return nil, fmt.Errorf("anchor filing (%s) carries no statements", anchor.FilingDate)
	}

	// The hierarchy must be fully merged before any alignment happens.
	merged := dimensions.NewHierarchy()
	for _, f := range ordered {
		if f.Result != nil {
			merged.Merge(f.Result.Hierarchy)
		}
	}

	combined := &viewer.ProcessingResult{
		ID:          uuid.NewString(),
		Success:     true,
		CompanyName: anchor.Result.CompanyName,
		FormType:    anchor.Result.FormType,
		FilingDate:  anchor.Result.FilingDate,
		Hierarchy:   merged,
	}

	for _, stmt := range anchor.Result.Statements {
		combined.Statements = append(combined.Statements, e.combineStatement(stmt, ordered, merged, combined))
	}

	// Sections present in non-anchor filings but absent from the anchor are
	// reported, not silently dropped or merged in.
	anchorSections := make(map[string]bool)
	for _, stmt := range anchor.Result.Statements {
		anchorSections[normalizeSectionName(stmt.Name)] = true
	}
	for _, f := range ordered[1:] {
		if f.Result == nil {
			continue
		}
		for _, stmt := range f.Result.Statements {
			if !anchorSections[normalizeSectionName(stmt.Name)] {
				combined.Warnings = append(combined.Warnings,
					fmt.Sprintf("section %q from filing dated %s has no counterpart in the anchor filing", stmt.Name, f.FilingDate))
			}
		}
	}

	return combined, nil
}

// combineStatement aligns one anchor section across all filings.
func (e *Engine) combineStatement(anchorStmt *viewer.Statement, ordered []FilingStatements, h *dimensions.Hierarchy, combined *viewer.ProcessingResult) *viewer.Statement {
	out := &viewer.Statement{
		RoleID:    anchorStmt.RoleID,
		RoleURI:   anchorStmt.RoleURI,
		Name:      anchorStmt.Name,
		ShortName: anchorStmt.ShortName,
		Type:      anchorStmt.Type,
	}

	// Column per filing: each filing contributes its primary period.
	columns := len(ordered)
	for _, f := range ordered {
		out.Periods = append(out.Periods, filingColumnPeriod(f, anchorStmt))
	}

	// Anchor skeleton: anchor rows with their primary-period cell in column 0.
	for _, row := range anchorStmt.Rows {
		out.Rows = append(out.Rows, reslicedRow(row, 0, columns, out.Periods))
	}

	for col := 1; col < columns; col++ {
		f := ordered[col]
		cand := findStatement(f, anchorStmt)
		if cand == nil {
			combined.Warnings = append(combined.Warnings,
				fmt.Sprintf("filing dated %s contributes no statements for section %q; column filled with placeholders", f.FilingDate, anchorStmt.Name))
			continue
		}

		used := make(map[int]bool, len(cand.Rows))
		for i := range out.Rows {
			if j, ok := e.alignRow(&out.Rows[i], cand.Rows, used, h); ok {
				used[j] = true
				if len(cand.Rows[j].Cells) > 0 {
					out.Rows[i].Cells[col] = cand.Rows[j].Cells[0]
				}
			}
		}

		// Unmatched candidate rows are appended, visible only from the
		// period columns where they were actually observed.
		for j := range cand.Rows {
			if used[j] {
				continue
			}
			out.Rows = append(out.Rows, reslicedRow(cand.Rows[j], col, columns, out.Periods))
		}
	}
	return out
}

// alignRow finds the candidate row matching an anchor row, trying each
// matcher tier in priority order; within a tier the first unused candidate in
// presentation order wins.
func (e *Engine) alignRow(anchor *viewer.FlatRow, candidates []viewer.FlatRow, used map[int]bool, h *dimensions.Hierarchy) (int, bool) {
	for _, matcher := range e.matchers {
		for j := range candidates {
			if used[j] {
				continue
			}
			if matcher.Match(anchor, &candidates[j], h) {
				return j, true
			}
		}
	}
	return 0, false
}

// reslicedRow copies a row into the combined column layout, placing its
// primary-period cell at the given column and placeholders elsewhere.
func reslicedRow(row viewer.FlatRow, col, columns int, periods []viewer.Period) viewer.FlatRow {
	out := row
	out.ParentPath = append([]string(nil), row.ParentPath...)
	out.Dimensions = append(viewer.DimensionSignature(nil), row.Dimensions...)
	out.Cells = make([]viewer.Cell, columns)
	for i := range out.Cells {
		out.Cells[i] = viewer.PlaceholderCell(periods[i])
	}
	if len(row.Cells) > 0 {
		out.Cells[col] = row.Cells[0]
	}
	return out
}

// findStatement locates a filing's section matching the anchor section by
// normalized name, falling back to statement type.
func findStatement(f FilingStatements, anchorStmt *viewer.Statement) *viewer.Statement {
	if f.Result == nil {
		return nil
	}
	want := normalizeSectionName(anchorStmt.Name)
	for _, stmt := range f.Result.Statements {
		if normalizeSectionName(stmt.Name) == want {
			return stmt
		}
	}
	for _, stmt := range f.Result.Statements {
		if stmt.Type != viewer.TypeOther && stmt.Type == anchorStmt.Type {
			return stmt
		}
	}
	return nil
}

// filingColumnPeriod picks the period column a filing contributes for a
// section: the matching section's primary period, else any statement's
// primary period, else a synthetic column labeled with the filing date.
func filingColumnPeriod(f FilingStatements, anchorStmt *viewer.Statement) viewer.Period {
	if stmt := findStatement(f, anchorStmt); stmt != nil {
		if p, ok := stmt.PrimaryPeriod(); ok {
			return p
		}
	}
	if f.Result != nil {
		for _, stmt := range f.Result.Statements {
			if p, ok := stmt.PrimaryPeriod(); ok {
				return p
			}
		}
	}
	return viewer.Period{Label: f.FilingDate, EndDate: f.FilingDate, Instant: true}
}

func normalizeSectionName(name string) string {
	name = strings.ToLower(name)
	var b strings.Builder
	for _, r := range name {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
