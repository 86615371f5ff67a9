package ensemble

import (
	"log"
	"strings"

	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/dimensions"
	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/viewer"
	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/xbrl"
)

// =============================================================================
// ROW ALIGNMENT - Ordered matcher tiers, first match wins
// =============================================================================

// RowMatcher is one alignment predicate. Matchers are evaluated in priority
// order; each either matches a candidate row onto an anchor row or passes.
type RowMatcher struct {
	Name  string
	Match func(anchor, cand *viewer.FlatRow, h *dimensions.Hierarchy) bool
}

// DefaultMatchers returns the alignment tiers in priority order:
// exact concept+signature, semantic dimension compatibility, structural
// position under namespace drift, and a label-tolerant structural fallback.
func DefaultMatchers() []RowMatcher {
	return []RowMatcher{
		{Name: "exact", Match: matchExact},
		{Name: "semantic-dimensions", Match: matchSemanticDimensions},
		{Name: "structural", Match: matchStructural},
		{Name: "label-tolerant", Match: matchLabelTolerant},
	}
}

// matchExact: identical concept and identical dimension signature.
func matchExact(anchor, cand *viewer.FlatRow, _ *dimensions.Hierarchy) bool {
	return anchor.Concept == cand.Concept && anchor.Dimensions.Equal(cand.Dimensions)
}

// matchSemanticDimensions: identical concept at the same depth whose
// signatures are semantically compatible per the merged hierarchy.
func matchSemanticDimensions(anchor, cand *viewer.FlatRow, h *dimensions.Hierarchy) bool {
	if anchor.Concept != cand.Concept || anchor.Depth != cand.Depth {
		return false
	}
	return signaturesCompatible(anchor.Dimensions, cand.Dimensions, h)
}

// matchStructural: concept namespaces drifted but the normalized name, label,
// and structural position all agree.
func matchStructural(anchor, cand *viewer.FlatRow, _ *dimensions.Hierarchy) bool {
	if !structurallyEqual(anchor, cand) {
		return false
	}
	if anchor.Label != cand.Label {
		return false
	}
	if anchor.Order != nil && cand.Order != nil && *anchor.Order != *cand.Order {
		return false
	}
	return true
}

// matchLabelTolerant: accepts a label mismatch provided normalized concept,
// depth, abstractness, and parent path all agree. The drift is logged.
func matchLabelTolerant(anchor, cand *viewer.FlatRow, _ *dimensions.Hierarchy) bool {
	if !structurallyEqual(anchor, cand) {
		return false
	}
	if anchor.Label != cand.Label {
		log.Printf("ensemble: label drift on %s: %q vs %q", anchor.Concept, anchor.Label, cand.Label)
	}
	return true
}

// structurallyEqual checks the shared requirements of the two fallback tiers:
// normalized concept name, depth, abstractness, parent path, and signature.
func structurallyEqual(a, b *viewer.FlatRow) bool {
	if xbrl.LocalName(a.Concept) != xbrl.LocalName(b.Concept) {
		return false
	}
	if a.Depth != b.Depth || a.Abstract != b.Abstract {
		return false
	}
	if !parentPathsEqual(a.ParentPath, b.ParentPath) {
		return false
	}
	return normalizedSignatureEqual(a.Dimensions, b.Dimensions)
}

func parentPathsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if xbrl.LocalName(a[i]) != xbrl.LocalName(b[i]) {
			return false
		}
	}
	return true
}

// signaturesCompatible reports whether two signatures describe the same or a
// transitively related dimensional slice: the qualifier axes must agree, and
// on every shared axis the members must be equal or ancestor/descendant in
// the merged hierarchy.
func signaturesCompatible(a, b viewer.DimensionSignature, h *dimensions.Hierarchy) bool {
	if len(a) != len(b) {
		return false
	}
	bm := signatureByAxis(b)
	for axis, memberA := range signatureByAxis(a) {
		memberB, ok := bm[axis]
		if !ok {
			return false
		}
		if h == nil {
			if dimensions.NormalizeMember(memberA) != dimensions.NormalizeMember(memberB) {
				return false
			}
			continue
		}
		if !h.Related(memberA, memberB) {
			return false
		}
	}
	return true
}

// normalizedSignatureEqual compares signatures member-by-member after
// namespace stripping, with no hierarchy tolerance.
func normalizedSignatureEqual(a, b viewer.DimensionSignature) bool {
	return signaturesCompatible(a, b, nil)
}

func signatureByAxis(sig viewer.DimensionSignature) map[string]string {
	m := make(map[string]string, len(sig))
	for _, pair := range sig {
		m[normalizeAxis(pair.Axis)] = pair.Member
	}
	return m
}

func normalizeAxis(axis string) string {
	return strings.ToLower(xbrl.LocalName(axis))
}
