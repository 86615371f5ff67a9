package xbrl

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// =============================================================================
// PAYLOAD LOCATION - Find the embedded payload inside rendered viewer output
// =============================================================================

// The processor embeds its payload in the rendered output as a script-level
// assignment. Both historical spellings are accepted.
var payloadAssignRe = regexp.MustCompile(`(?s)(?:var|const|window\.)\s*(?:financialData|filingData)\s*=\s*(\{.*?\})\s*;`)

// LocatePayload extracts the raw payload text from rendered filing HTML.
// It first walks script tags with goquery, then falls back to a regex scan
// over the whole document.
func LocatePayload(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		var found string
		doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if id, ok := s.Attr("id"); ok && id == "financialData" {
				found = strings.TrimSpace(s.Text())
				return false
			}
			if m := payloadAssignRe.FindStringSubmatch(s.Text()); m != nil {
				found = m[1]
				return false
			}
			return true
		})
		if found != "" {
			return found, nil
		}
	}

	if m := payloadAssignRe.FindStringSubmatch(html); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("no embedded payload found in rendered output")
}

// =============================================================================
// PAYLOAD DECODING - Tolerant decode of JSON-like payload text
// =============================================================================

// DecodePayload decodes payload text into a normalized FilingPayload.
// Decode chain: strict JSON, then repaired JSON (script extraction often
// clips trailing braces or leaves trailing commas), then HJSON for payloads
// written with unquoted keys.
func DecodePayload(text string) (*FilingPayload, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(text), &raw); err == nil {
		return NormalizePayload(raw)
	}

	if repaired, err := jsonrepair.RepairJSON(text); err == nil {
		if err := json.Unmarshal([]byte(repaired), &raw); err == nil {
			return NormalizePayload(raw)
		}
	}

	if err := hjson.Unmarshal([]byte(text), &raw); err == nil {
		return NormalizePayload(raw)
	}
	return nil, fmt.Errorf("payload text is not decodable as JSON, repaired JSON, or HJSON")
}

// ExtractPayload locates and decodes the payload from rendered filing HTML.
func ExtractPayload(html string) (*FilingPayload, error) {
	text, err := LocatePayload(html)
	if err != nil {
		return nil, err
	}
	payload, err := DecodePayload(text)
	if err != nil {
		return nil, fmt.Errorf("located payload could not be decoded: %w", err)
	}
	return payload, nil
}
