// Package viewer reconstructs a filing's intended statement layout from flat
// presentation relationship data and populates it with facts located by
// multi-dimensional context matching.
package viewer

import (
	"sort"
	"strings"

	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/dimensions"
)

// StatementType classifies a report section by the statement it renders.
type StatementType string

const (
	TypeBalanceSheet        StatementType = "balance_sheet"
	TypeIncomeStatement     StatementType = "income_statement"
	TypeCashFlow            StatementType = "cash_flow"
	TypeComprehensiveIncome StatementType = "comprehensive_income"
	TypeEquity              StatementType = "equity"
	TypeOther               StatementType = "other"
)

// PrimaryStatementTypes are the five statement kinds kept by default when a
// section carries no companion classification metadata.
var PrimaryStatementTypes = map[StatementType]bool{
	TypeBalanceSheet:        true,
	TypeIncomeStatement:     true,
	TypeCashFlow:            true,
	TypeComprehensiveIncome: true,
	TypeEquity:              true,
}

// PresentationNode is one line item in a built presentation tree. Each tree
// owns its nodes; trees never share mutable state.
type PresentationNode struct {
	Concept            string              `json:"concept"`
	Label              string              `json:"label"`
	Order              float64             `json:"order"`
	Depth              int                 `json:"depth"`
	Abstract           bool                `json:"abstract"`
	PreferredLabelRole string              `json:"preferred_label_role,omitempty"`
	Children           []*PresentationNode `json:"children,omitempty"`
}

// PresentationStatement is one built report section. It is immutable once the
// tree builder returns it.
type PresentationStatement struct {
	RoleID   string              `json:"role_id"`
	RoleURI  string              `json:"role_uri,omitempty"`
	Name     string              `json:"name"`
	Type     StatementType       `json:"type"`
	Group    string              `json:"group,omitempty"`
	SubGroup string              `json:"sub_group,omitempty"`
	Roots    []*PresentationNode `json:"roots"`
}

// Period is one reporting period column.
type Period struct {
	Label   string `json:"label"`
	EndDate string `json:"end_date"` // ISO date
	Instant bool   `json:"instant"`  // true = point in time, false = duration
}

// Key identifies a period for deduplication: end date plus instant/duration kind.
func (p Period) Key() string {
	if p.Instant {
		return p.EndDate + ":i"
	}
	return p.EndDate + ":d"
}

// Cell is one fact value at a row/period intersection.
type Cell struct {
	Value    string   `json:"value"` // formatted display value
	RawValue *float64 `json:"raw_value"`
	Unit     string   `json:"unit,omitempty"`
	Decimals *int     `json:"decimals,omitempty"`
	Period   Period   `json:"period"`
}

// DimensionPair is one qualifier on a dimensioned row.
type DimensionPair struct {
	Axis   string `json:"axis"`
	Member string `json:"member"`
}

// DimensionSignature identifies which dimensional slice of a concept a row
// represents. Pairs are kept sorted by axis; an empty signature is the
// consolidated value.
type DimensionSignature []DimensionPair

// NewSignature builds a sorted signature from an axis->member map.
func NewSignature(dims map[string]string) DimensionSignature {
	if len(dims) == 0 {
		return nil
	}
	sig := make(DimensionSignature, 0, len(dims))
	for axis, member := range dims {
		sig = append(sig, DimensionPair{Axis: axis, Member: member})
	}
	sort.Slice(sig, func(i, j int) bool { return sig[i].Axis < sig[j].Axis })
	return sig
}

// Key renders the signature as a canonical comparison string.
func (s DimensionSignature) Key() string {
	if len(s) == 0 {
		return ""
	}
	parts := make([]string, len(s))
	for i, p := range s {
		parts[i] = p.Axis + "=" + p.Member
	}
	return strings.Join(parts, "|")
}

// Equal reports exact signature equality.
func (s DimensionSignature) Equal(o DimensionSignature) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Axes returns the sorted axis names of the signature.
func (s DimensionSignature) Axes() []string {
	axes := make([]string, len(s))
	for i, p := range s {
		axes[i] = p.Axis
	}
	return axes
}

// Member returns the member reported on the given axis, if present.
func (s DimensionSignature) Member(axis string) (string, bool) {
	for _, p := range s {
		if p.Axis == axis {
			return p.Member, true
		}
	}
	return "", false
}

// StatementRow is one presentation node bound to its cells across periods.
type StatementRow struct {
	Label              string             `json:"label"`
	Concept            string             `json:"concept"`
	Abstract           bool               `json:"abstract"`
	Depth              int                `json:"depth"`
	PreferredLabelRole string             `json:"preferred_label_role,omitempty"`
	Order              *float64           `json:"order,omitempty"`       // presentation order, nil when unknown
	ParentPath         []string           `json:"parent_path,omitempty"` // ancestor concepts, root first
	Dimensions         DimensionSignature `json:"dimensions,omitempty"`
	Cells              map[string]Cell    `json:"cells"` // keyed by Period.Key()
}

// StatementTable is the final artifact one report section produces for one
// filing: the built statement plus its periods and ordered rows.
type StatementTable struct {
	RoleID    string          `json:"role_id"`
	RoleURI   string          `json:"role_uri,omitempty"`
	Name      string          `json:"name"`
	ShortName string          `json:"short_name,omitempty"`
	Type      StatementType   `json:"type"`
	Periods   []Period        `json:"periods"`
	Rows      []*StatementRow `json:"rows"`
}

// Statement is the legacy flattened form of StatementTable consumed by the
// renderer and ensemble layers: cells are a slice parallel to Periods.
type Statement struct {
	RoleID    string        `json:"role_id"`
	RoleURI   string        `json:"role_uri,omitempty"`
	Name      string        `json:"name"`
	ShortName string        `json:"short_name,omitempty"`
	Type      StatementType `json:"type"`
	Periods   []Period      `json:"periods"`
	Rows      []FlatRow     `json:"rows"`
}

// FlatRow is one StatementRow with its cells ordered by the statement's periods.
type FlatRow struct {
	Label              string             `json:"label"`
	Concept            string             `json:"concept"`
	Abstract           bool               `json:"abstract"`
	Depth              int                `json:"depth"`
	PreferredLabelRole string             `json:"preferred_label_role,omitempty"`
	Order              *float64           `json:"order,omitempty"`
	ParentPath         []string           `json:"parent_path,omitempty"`
	Dimensions         DimensionSignature `json:"dimensions,omitempty"`
	Cells              []Cell             `json:"cells"`
}

// ProcessingResult is the per-filing output of the orchestrator.
type ProcessingResult struct {
	ID          string                `json:"id"`
	Success     bool                  `json:"success"`
	Error       string                `json:"error,omitempty"`
	CompanyName string                `json:"company_name,omitempty"`
	FormType    string                `json:"form_type,omitempty"`
	FilingDate  string                `json:"filing_date,omitempty"`
	Statements  []*Statement          `json:"statements"`
	Warnings    []string              `json:"warnings,omitempty"`
	Hierarchy   *dimensions.Hierarchy `json:"hierarchy,omitempty"` // dimension fragment observed in this filing
}

// PrimaryPeriod returns the statement's first period, the column an ensemble
// run takes from this filing.
func (s *Statement) PrimaryPeriod() (Period, bool) {
	if len(s.Periods) == 0 {
		return Period{}, false
	}
	return s.Periods[0], true
}
