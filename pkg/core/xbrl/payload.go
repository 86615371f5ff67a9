// Package xbrl normalizes the loosely-typed filing payload produced by the
// external XBRL processor into the strongly-typed entities the viewer core
// consumes. Nothing past this boundary probes for alternate key names.
package xbrl

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// =============================================================================
// NORMALIZED ENTITIES
// =============================================================================

// Fact is one reported value under one context.
type Fact struct {
	ID         string            `json:"id"`
	Concept    string            `json:"concept"`
	Entity     string            `json:"entity,omitempty"`
	Period     string            `json:"period"` // "2024-09-28" or "2023-10-01/2024-09-28"
	Value      string            `json:"value"`
	Numeric    *float64          `json:"numeric,omitempty"`
	Unit       string            `json:"unit,omitempty"`
	Decimals   *int              `json:"decimals,omitempty"`
	Dimensions map[string]string `json:"dimensions,omitempty"` // axis -> member
}

// Concept holds the metadata reported for one concept identifier.
type Concept struct {
	Name     string            `json:"name"`
	Labels   map[string]string `json:"labels,omitempty"` // label role -> text ("standard", "terse", "total", ...)
	Abstract bool              `json:"abstract,omitempty"`
	DataType string            `json:"data_type,omitempty"`
	Balance  string            `json:"balance,omitempty"` // "debit" / "credit"
}

// Relationship is one parent->child display edge within a role.
type Relationship struct {
	Child          string  `json:"child"`
	Order          float64 `json:"order"`
	PreferredLabel string  `json:"preferred_label,omitempty"`
}

// PresentationRole is the flat relationship map for one report section.
type PresentationRole struct {
	RoleID        string                    `json:"role_id"`
	Roots         []string                  `json:"roots,omitempty"`
	Relationships map[string][]Relationship `json:"relationships"` // parent -> ordered children
}

// RoleDefinition carries the display name and companion classification for a role.
type RoleDefinition struct {
	ID       string `json:"id"`
	URI      string `json:"uri,omitempty"`
	Name     string `json:"name"`
	Group    string `json:"group,omitempty"`     // e.g. "Statements", "Notes"
	SubGroup string `json:"sub_group,omitempty"` // e.g. "Parenthetical"
}

// FilingPayload is the normalized form of one filing's dump.
type FilingPayload struct {
	Facts        []Fact                      `json:"facts"`
	Concepts     map[string]Concept          `json:"concepts"`
	Presentation map[string]PresentationRole `json:"presentation"` // role id -> section
	Roles        map[string]RoleDefinition   `json:"roles"`

	// Legacy metadata fields. The orchestrator prefers the dei facts and
	// falls back to these when the facts are missing.
	CompanyName string `json:"company_name,omitempty"`
	FormType    string `json:"form_type,omitempty"`
	FilingDate  string `json:"filing_date,omitempty"`
}

// =============================================================================
// RAW PAYLOAD NORMALIZATION
// =============================================================================

// Reserved keys of a raw fact context record. Any other key is a dimensional
// qualifier (axis -> member).
var reservedFactKeys = map[string]bool{
	"c": true, "e": true, "p": true, "v": true, "d": true, "u": true,
	"contexts": true,
}

// ParsePayload decodes raw payload bytes and normalizes them.
func ParsePayload(data []byte) (*FilingPayload, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return NormalizePayload(raw)
}

// NormalizePayload converts the dynamic payload map into a FilingPayload.
func NormalizePayload(raw map[string]interface{}) (*FilingPayload, error) {
	if raw == nil {
		return nil, fmt.Errorf("empty payload")
	}

	payload := &FilingPayload{
		Concepts:     make(map[string]Concept),
		Presentation: make(map[string]PresentationRole),
		Roles:        make(map[string]RoleDefinition),
	}

	if facts, ok := raw["facts"].(map[string]interface{}); ok {
		payload.Facts = normalizeFacts(facts)
	}
	if concepts, ok := raw["concepts"].(map[string]interface{}); ok {
		for id, entry := range concepts {
			payload.Concepts[id] = normalizeConcept(id, entry)
		}
	}
	if pres, ok := raw["presentation"].(map[string]interface{}); ok {
		for roleID, entry := range pres {
			payload.Presentation[roleID] = normalizeRole(roleID, entry)
		}
	}
	if roles, ok := raw["roleDefs"].(map[string]interface{}); ok {
		for roleID, entry := range roles {
			payload.Roles[roleID] = normalizeRoleDef(roleID, entry)
		}
	}

	payload.CompanyName = stringField(raw, "companyName")
	payload.FormType = stringField(raw, "formType")
	payload.FilingDate = stringField(raw, "filingDate")

	if len(payload.Facts) == 0 && len(payload.Presentation) == 0 {
		return nil, fmt.Errorf("payload contains no facts and no presentation relationships")
	}
	return payload, nil
}

// normalizeFacts flattens the fact map into one Fact per context record.
// A fact entry is either a single context record or a root object carrying
// shared v/d/u values plus a "contexts" array of per-context records.
func normalizeFacts(raw map[string]interface{}) []Fact {
	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var facts []Fact
	for _, id := range ids {
		entry, ok := raw[id].(map[string]interface{})
		if !ok {
			continue
		}
		contexts, hasContexts := entry["contexts"].([]interface{})
		if !hasContexts {
			if f, ok := normalizeFactContext(id, entry, nil); ok {
				facts = append(facts, f)
			}
			continue
		}
		for _, c := range contexts {
			record, ok := c.(map[string]interface{})
			if !ok {
				continue
			}
			if f, ok := normalizeFactContext(id, record, entry); ok {
				facts = append(facts, f)
			}
		}
	}
	return facts
}

// normalizeFactContext builds a Fact from one context record, filling v/d/u
// from the fact root when the record omits them.
func normalizeFactContext(id string, record, root map[string]interface{}) (Fact, bool) {
	lookup := func(key string) (interface{}, bool) {
		if v, ok := record[key]; ok {
			return v, true
		}
		if root != nil {
			if v, ok := root[key]; ok {
				return v, true
			}
		}
		return nil, false
	}

	concept, _ := lookup("c")
	period, _ := lookup("p")
	conceptStr, _ := concept.(string)
	periodStr, _ := period.(string)
	if conceptStr == "" || periodStr == "" {
		return Fact{}, false
	}

	f := Fact{
		ID:      id,
		Concept: conceptStr,
		Period:  periodStr,
	}
	if v, ok := lookup("e"); ok {
		f.Entity, _ = v.(string)
	}
	if v, ok := lookup("u"); ok {
		f.Unit, _ = v.(string)
	}
	if v, ok := lookup("v"); ok {
		f.Value = rawValueString(v)
		if num, ok := numericValue(v); ok {
			f.Numeric = &num
		}
	}
	if v, ok := lookup("d"); ok {
		if num, ok := numericValue(v); ok {
			d := int(num)
			f.Decimals = &d
		}
	}

	// Remaining keys on the context record are dimensional qualifiers.
	for key, val := range record {
		if reservedFactKeys[key] {
			continue
		}
		member, ok := val.(string)
		if !ok {
			continue
		}
		if f.Dimensions == nil {
			f.Dimensions = make(map[string]string)
		}
		f.Dimensions[key] = member
	}
	return f, true
}

func normalizeConcept(id string, entry interface{}) Concept {
	c := Concept{Name: id}
	m, ok := entry.(map[string]interface{})
	if !ok {
		return c
	}
	if labels, ok := m["labels"].(map[string]interface{}); ok {
		c.Labels = make(map[string]string, len(labels))
		for role, text := range labels {
			if s, ok := text.(string); ok {
				c.Labels[role] = s
			}
		}
	}
	if abstract, ok := m["abstract"].(bool); ok {
		c.Abstract = abstract
	}
	c.DataType = stringField(m, "type")
	c.Balance = stringField(m, "balance")
	return c
}

func normalizeRole(roleID string, entry interface{}) PresentationRole {
	role := PresentationRole{
		RoleID:        roleID,
		Relationships: make(map[string][]Relationship),
	}
	m, ok := entry.(map[string]interface{})
	if !ok {
		return role
	}
	if roots, ok := m["roots"].([]interface{}); ok {
		for _, r := range roots {
			if s, ok := r.(string); ok {
				role.Roots = append(role.Roots, s)
			}
		}
	}
	rels, ok := m["relationships"].(map[string]interface{})
	if !ok {
		return role
	}
	for parent, children := range rels {
		list, ok := children.([]interface{})
		if !ok {
			continue
		}
		for _, c := range list {
			record, ok := c.(map[string]interface{})
			if !ok {
				continue
			}
			rel := Relationship{Child: stringField(record, "c")}
			if rel.Child == "" {
				continue
			}
			if v, ok := record["o"]; ok {
				if num, ok := numericValue(v); ok {
					rel.Order = num
				}
			}
			rel.PreferredLabel = stringField(record, "pl")
			role.Relationships[parent] = append(role.Relationships[parent], rel)
		}
	}
	return role
}

func normalizeRoleDef(roleID string, entry interface{}) RoleDefinition {
	def := RoleDefinition{ID: roleID}
	m, ok := entry.(map[string]interface{})
	if !ok {
		return def
	}
	def.Name = stringField(m, "name")
	def.URI = stringField(m, "uri")
	def.Group = stringField(m, "group")
	def.SubGroup = stringField(m, "subGroup")
	return def
}

// =============================================================================
// VALUE COERCION HELPERS
// =============================================================================

func stringField(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func rawValueString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}

func numericValue(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(val, ",", ""))
		if s == "" {
			return 0, false
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return num, true
	default:
		return 0, false
	}
}

// LocalName strips the namespace prefix from a concept identifier.
// Both "us-gaap:Assets" and "us-gaap_Assets" reduce to "Assets".
func LocalName(concept string) string {
	if i := strings.LastIndex(concept, ":"); i >= 0 {
		return concept[i+1:]
	}
	if i := strings.Index(concept, "_"); i >= 0 {
		return concept[i+1:]
	}
	return concept
}
