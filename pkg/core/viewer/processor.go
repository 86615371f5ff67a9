package viewer

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/dimensions"
	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/xbrl"
)

// =============================================================================
// STATEMENT ORCHESTRATOR - Drive tree building and fact matching per filing
// =============================================================================

// Options configures a processing run.
type Options struct {
	// IncludeDisclosures keeps sections classified as non-statement
	// disclosures instead of filtering them out.
	IncludeDisclosures bool
	// UseScaleHints applies negative decimals metadata during formatting.
	UseScaleHints bool
}

// DefaultOptions returns the standard viewer configuration.
func DefaultOptions() Options {
	return Options{UseScaleHints: true}
}

// Processor assembles the per-filing statement list from a normalized payload.
type Processor struct {
	opts    Options
	builder *TreeBuilder
}

// NewProcessor creates a processor with the given options.
func NewProcessor(opts Options) *Processor {
	return &Processor{
		opts:    opts,
		builder: NewTreeBuilder(),
	}
}

// Process builds one ProcessingResult from a filing payload. Structural
// absence (no facts, no periods, no statements) yields a failed result with a
// descriptive error; individual section failures are logged and skipped.
func (p *Processor) Process(payload *xbrl.FilingPayload) *ProcessingResult {
	result := &ProcessingResult{
		ID:        uuid.NewString(),
		Hierarchy: dimensions.NewHierarchy(),
	}
	if payload == nil {
		return failResult(result, "no payload provided")
	}

	p.extractMetadata(payload, result)

	if len(payload.Facts) == 0 {
		return failResult(result, "no facts found in filing payload")
	}
	periods := ExtractPeriods(payload.Facts)
	if len(periods) == 0 {
		return failResult(result, "no reporting periods could be derived from facts")
	}

	formatter := &ValueFormatter{UseScaleHints: p.opts.UseScaleHints}
	matcher := NewFactMatcher(formatter, payload.Concepts)

	roleIDs := make([]string, 0, len(payload.Presentation))
	for id := range payload.Presentation {
		roleIDs = append(roleIDs, id)
	}
	sort.Strings(roleIDs)

	for _, roleID := range roleIDs {
		role := payload.Presentation[roleID]
		def := payload.Roles[roleID]

		stmt, err := p.buildSection(role, def, payload.Concepts)
		if err != nil {
			log.Printf("viewer: section %s failed: %v", roleID, err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("section %s skipped: %v", roleID, err))
			continue
		}
		collectHierarchyFragment(role, result.Hierarchy)

		if !p.includeSection(stmt) {
			continue
		}

		table := matcher.BuildTable(stmt, payload.Facts, periods)
		table.ShortName = shortSectionName(stmt.Name)
		if table.IsEmpty() {
			log.Printf("viewer: section %s produced no populated rows, dropping", roleID)
			continue
		}
		result.Statements = append(result.Statements, table.Flatten())
	}

	if len(result.Statements) == 0 {
		return failResult(result, "no statements could be built from filing payload")
	}
	result.Success = true
	return result
}

// buildSection builds one section's presentation tree, converting panics from
// malformed relationship data into section-level errors.
func (p *Processor) buildSection(role xbrl.PresentationRole, def xbrl.RoleDefinition, concepts map[string]xbrl.Concept) (stmt *PresentationStatement, err error) {
	defer func() {
		if r := recover(); r != nil {
			stmt = nil
			err = fmt.Errorf("malformed relationship data: %v", r)
		}
	}()
	if len(role.Relationships) == 0 && len(role.Roots) == 0 {
		return nil, fmt.Errorf("section has no presentation relationships")
	}
	return p.builder.Build(role, def, concepts), nil
}

// includeSection applies the filing-wide section filter: companion metadata
// classification when present, otherwise the inferred statement type.
func (p *Processor) includeSection(stmt *PresentationStatement) bool {
	if p.opts.IncludeDisclosures {
		return true
	}
	if strings.Contains(strings.ToLower(stmt.SubGroup), "parenthetical") {
		return false
	}
	if stmt.Group != "" {
		return strings.Contains(strings.ToLower(stmt.Group), "statement")
	}
	return PrimaryStatementTypes[stmt.Type]
}

// extractMetadata pulls company name, form type, and filing date from the
// well-known dei concepts, falling back to the payload's legacy fields.
func (p *Processor) extractMetadata(payload *xbrl.FilingPayload, result *ProcessingResult) {
	result.CompanyName = payload.CompanyName
	result.FormType = payload.FormType
	result.FilingDate = payload.FilingDate

	for _, f := range payload.Facts {
		switch xbrl.LocalName(f.Concept) {
		case "EntityRegistrantName":
			if f.Value != "" {
				result.CompanyName = f.Value
			}
		case "DocumentType":
			if f.Value != "" {
				result.FormType = f.Value
			}
		case "DocumentPeriodEndDate":
			if f.Value != "" {
				result.FilingDate = f.Value
			}
		}
	}
}

// collectHierarchyFragment records member parent/child edges discovered in a
// section's presentation relationships. Only edges where both endpoints are
// members or domains contribute to the dimension hierarchy.
func collectHierarchyFragment(role xbrl.PresentationRole, h *dimensions.Hierarchy) {
	for parent, children := range role.Relationships {
		if !isMemberConcept(parent) {
			continue
		}
		for _, rel := range children {
			if isMemberConcept(rel.Child) {
				h.AddRelationship(parent, rel.Child)
			}
		}
	}
}

func isMemberConcept(concept string) bool {
	local := xbrl.LocalName(concept)
	return strings.HasSuffix(local, "Member") || strings.HasSuffix(local, "Domain")
}

// shortSectionName trims the numbering and category prefix from role display
// names like "0000003 - Statement - CONSOLIDATED BALANCE SHEETS".
func shortSectionName(name string) string {
	parts := strings.Split(name, " - ")
	return strings.TrimSpace(parts[len(parts)-1])
}

func failResult(result *ProcessingResult, msg string) *ProcessingResult {
	result.Success = false
	result.Error = msg
	return result
}
