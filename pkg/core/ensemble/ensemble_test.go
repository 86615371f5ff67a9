package ensemble

import (
	"reflect"
	"strings"
	"testing"

	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/dimensions"
	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/viewer"
)

// =============================================================================
// HELPER FUNCTIONS FOR TEST DATA CREATION
// =============================================================================

var (
	fy2024 = viewer.Period{Label: "Dec 31, 2024", EndDate: "2024-12-31"}
	fy2023 = viewer.Period{Label: "Dec 31, 2023", EndDate: "2023-12-31"}
	fy2022 = viewer.Period{Label: "Dec 31, 2022", EndDate: "2022-12-31"}
)

func cell(value string, p viewer.Period) viewer.Cell {
	return viewer.Cell{Value: value, Period: p}
}

func row(concept, label string, depth int, p viewer.Period, value string) viewer.FlatRow {
	return viewer.FlatRow{
		Label:   label,
		Concept: concept,
		Depth:   depth,
		Cells:   []viewer.Cell{cell(value, p)},
	}
}

func stmtOf(name string, typ viewer.StatementType, p viewer.Period, rows ...viewer.FlatRow) *viewer.Statement {
	return &viewer.Statement{
		Name:    name,
		Type:    typ,
		Periods: []viewer.Period{p},
		Rows:    rows,
	}
}

func resultOf(h *dimensions.Hierarchy, stmts ...*viewer.Statement) *viewer.ProcessingResult {
	return &viewer.ProcessingResult{
		Success:     true,
		CompanyName: "Tesla, Inc.",
		Statements:  stmts,
		Hierarchy:   h,
	}
}

func findRow(s *viewer.Statement, label string) *viewer.FlatRow {
	for i := range s.Rows {
		if s.Rows[i].Label == label {
			return &s.Rows[i]
		}
	}
	return nil
}

// =============================================================================
// MULTI-FILING COMBINATION
// =============================================================================

func TestCombine_AnchorSkeletonAndAppendedRows(t *testing.T) {
	newer := FilingStatements{
		FilingDate: "2025-01-29",
		Result: resultOf(nil, stmtOf("INCOME", viewer.TypeIncomeStatement, fy2024,
			row("us-gaap:Revenues", "Revenue", 0, fy2024, "1,000"),
			row("us-gaap:GrossProfit", "Gross Profit", 0, fy2024, "200"),
		)),
	}
	older := FilingStatements{
		FilingDate: "2024-01-26",
		Result: resultOf(nil, stmtOf("INCOME", viewer.TypeIncomeStatement, fy2023,
			row("us-gaap:Revenues", "Revenue", 0, fy2023, "900"),
			row("us-gaap:OtherIncome", "Other Income", 0, fy2023, "50"),
		)),
	}

	combined, err := NewEngine().Combine([]FilingStatements{newer, older})
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	if len(combined.Statements) != 1 {
		t.Fatalf("Expected 1 combined statement, got %d", len(combined.Statements))
	}
	s := combined.Statements[0]

	// One column per filing, newest first.
	if len(s.Periods) != 2 || s.Periods[0].EndDate != "2024-12-31" || s.Periods[1].EndDate != "2023-12-31" {
		t.Fatalf("Wrong period columns: %+v", s.Periods)
	}

	rev := findRow(s, "Revenue")
	if rev == nil {
		t.Fatal("Revenue row missing")
	}
	if rev.Cells[0].Value != "1,000" || rev.Cells[1].Value != "900" {
		t.Errorf("Revenue cells = [%q %q], want [1,000 900]", rev.Cells[0].Value, rev.Cells[1].Value)
	}

	gp := findRow(s, "Gross Profit")
	if gp == nil {
		t.Fatal("Gross Profit row missing")
	}
	if gp.Cells[0].Value != "200" || gp.Cells[1].Value != viewer.Placeholder {
		t.Errorf("Gross Profit cells = [%q %q], want [200 placeholder]", gp.Cells[0].Value, gp.Cells[1].Value)
	}

	// The older filing's unmatched row is appended with values only in its
	// own column.
	oi := findRow(s, "Other Income")
	if oi == nil {
		t.Fatal("Other Income row not appended")
	}
	if oi.Cells[0].Value != viewer.Placeholder || oi.Cells[1].Value != "50" {
		t.Errorf("Other Income cells = [%q %q], want [placeholder 50]", oi.Cells[0].Value, oi.Cells[1].Value)
	}

	// All rows cover all columns.
	for _, r := range s.Rows {
		if len(r.Cells) != len(s.Periods) {
			t.Errorf("Row %s has %d cells, want %d", r.Label, len(r.Cells), len(s.Periods))
		}
	}
}

func TestCombine_OrderIndependent(t *testing.T) {
	build := func() (FilingStatements, FilingStatements) {
		a := FilingStatements{
			FilingDate: "2025-01-29",
			Result: resultOf(nil, stmtOf("INCOME", viewer.TypeIncomeStatement, fy2024,
				row("us-gaap:Revenues", "Revenue", 0, fy2024, "1,000"),
			)),
		}
		b := FilingStatements{
			FilingDate: "2024-01-26",
			Result: resultOf(nil, stmtOf("INCOME", viewer.TypeIncomeStatement, fy2023,
				row("us-gaap:Revenues", "Revenue", 0, fy2023, "900"),
			)),
		}
		return a, b
	}

	a1, b1 := build()
	first, err := NewEngine().Combine([]FilingStatements{a1, b1})
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	a2, b2 := build()
	second, err := NewEngine().Combine([]FilingStatements{b2, a2})
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}

	if !reflect.DeepEqual(first.Statements, second.Statements) {
		t.Error("Input order changed the combined statements")
	}
}

func TestCombine_MissingSectionColumnStaysPlaceholder(t *testing.T) {
	newer := FilingStatements{
		FilingDate: "2025-01-29",
		Result: resultOf(nil,
			stmtOf("INCOME", viewer.TypeIncomeStatement, fy2024,
				row("us-gaap:Revenues", "Revenue", 0, fy2024, "1,000")),
			stmtOf("CASH FLOWS", viewer.TypeCashFlow, fy2024,
				row("us-gaap:NetCashProvidedByUsedInOperatingActivities", "Operating cash", 0, fy2024, "300")),
		),
	}
	older := FilingStatements{
		FilingDate: "2024-01-26",
		Result: resultOf(nil, stmtOf("INCOME", viewer.TypeIncomeStatement, fy2023,
			row("us-gaap:Revenues", "Revenue", 0, fy2023, "900"))),
	}

	combined, err := NewEngine().Combine([]FilingStatements{newer, older})
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}

	var cash *viewer.Statement
	for _, s := range combined.Statements {
		if s.Type == viewer.TypeCashFlow {
			cash = s
		}
	}
	if cash == nil {
		t.Fatal("Cash flow section missing from combined result")
	}
	r := findRow(cash, "Operating cash")
	if r.Cells[1].Value != viewer.Placeholder {
		t.Errorf("Column for the filing without the section should be placeholder, got %q", r.Cells[1].Value)
	}

	warned := false
	for _, w := range combined.Warnings {
		if strings.Contains(w, "contributes no statements") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("Expected a missing-section warning, got %v", combined.Warnings)
	}
}

func TestCombine_AnchorAbsentSectionWarned(t *testing.T) {
	newer := FilingStatements{
		FilingDate: "2025-01-29",
		Result: resultOf(nil, stmtOf("INCOME", viewer.TypeIncomeStatement, fy2024,
			row("us-gaap:Revenues", "Revenue", 0, fy2024, "1,000"))),
	}
	older := FilingStatements{
		FilingDate: "2024-01-26",
		Result: resultOf(nil,
			stmtOf("INCOME", viewer.TypeIncomeStatement, fy2023,
				row("us-gaap:Revenues", "Revenue", 0, fy2023, "900")),
			stmtOf("DISCONTINUED OPERATIONS", viewer.TypeOther, fy2023,
				row("custom:Gone", "Gone", 0, fy2023, "5")),
		),
	}

	combined, err := NewEngine().Combine([]FilingStatements{newer, older})
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	if len(combined.Statements) != 1 {
		t.Errorf("Anchor-absent section should not be merged in, got %d statements", len(combined.Statements))
	}
	warned := false
	for _, w := range combined.Warnings {
		if strings.Contains(w, "no counterpart in the anchor filing") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("Expected anchor-absent warning, got %v", combined.Warnings)
	}
}

func TestCombine_ErrorCases(t *testing.T) {
	e := NewEngine()

	if _, err := e.Combine(nil); err == nil {
		t.Error("Empty input should fail")
	}

	noStmts := FilingStatements{FilingDate: "2025-01-29", Result: resultOf(nil)}
	if _, err := e.Combine([]FilingStatements{noStmts}); err == nil {
		t.Error("Anchor without statements should fail")
	}
}

func TestCombine_ThreeFilingsAppendOnceEach(t *testing.T) {
	mk := func(date string, p viewer.Period, value string) FilingStatements {
		return FilingStatements{
			FilingDate: date,
			Result: resultOf(nil, stmtOf("INCOME", viewer.TypeIncomeStatement, p,
				row("us-gaap:Revenues", "Revenue", 0, p, value),
				row("us-gaap:OtherIncome", "Other Income", 0, p, value),
			)),
		}
	}
	newest := FilingStatements{
		FilingDate: "2025-01-29",
		Result: resultOf(nil, stmtOf("INCOME", viewer.TypeIncomeStatement, fy2024,
			row("us-gaap:Revenues", "Revenue", 0, fy2024, "1,000"))),
	}

	combined, err := NewEngine().Combine([]FilingStatements{
		mk("2023-01-31", fy2022, "800"),
		newest,
		mk("2024-01-26", fy2023, "900"),
	})
	if err != nil {
		t.Fatalf("Combine failed: %v", err)
	}
	s := combined.Statements[0]

	// Other Income is absent from the anchor; the first older filing appends
	// it and the second aligns onto the appended row instead of duplicating.
	count := 0
	for _, r := range s.Rows {
		if r.Label == "Other Income" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("Expected one appended Other Income row, got %d", count)
	}
	oi := findRow(s, "Other Income")
	if oi.Cells[0].Value != viewer.Placeholder || oi.Cells[1].Value != "900" || oi.Cells[2].Value != "800" {
		t.Errorf("Other Income cells = [%q %q %q]", oi.Cells[0].Value, oi.Cells[1].Value, oi.Cells[2].Value)
	}
}
