package xbrl

import (
	"strings"
	"testing"
)

// =============================================================================
// PAYLOAD LOCATION
// =============================================================================

const renderedDoc = `<!DOCTYPE html>
<html>
<head><title>Financial Report</title></head>
<body>
<script src="report.js"></script>
<script id="financialData" type="application/json">
{"facts": {"f1": {"c": "us-gaap:Assets", "p": "2024-12-31", "v": 100}}}
</script>
</body>
</html>`

func TestLocatePayload_ScriptByID(t *testing.T) {
	text, err := LocatePayload(renderedDoc)
	if err != nil {
		t.Fatalf("LocatePayload failed: %v", err)
	}
	if !strings.Contains(text, "us-gaap:Assets") {
		t.Errorf("Wrong payload text: %q", text)
	}
}

func TestLocatePayload_AssignmentFallback(t *testing.T) {
	doc := `<html><body><script>
var financialData = {"facts": "inline"};
</script></body></html>`

	text, err := LocatePayload(doc)
	if err != nil {
		t.Fatalf("LocatePayload failed: %v", err)
	}
	if text != `{"facts": "inline"}` {
		t.Errorf("Wrong extracted text: %q", text)
	}
}

func TestLocatePayload_Missing(t *testing.T) {
	if _, err := LocatePayload("<html><body><p>nothing here</p></body></html>"); err == nil {
		t.Error("Document without a payload should fail")
	}
}

// =============================================================================
// TOLERANT DECODING
// =============================================================================

func TestDecodePayload_StrictJSON(t *testing.T) {
	payload, err := DecodePayload(`{"facts": {"f1": {"c": "us-gaap:Assets", "p": "2024-12-31", "v": 100}}}`)
	if err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	if len(payload.Facts) != 1 || payload.Facts[0].Concept != "us-gaap:Assets" {
		t.Errorf("Wrong facts: %+v", payload.Facts)
	}
}

func TestDecodePayload_RepairsTrailingComma(t *testing.T) {
	payload, err := DecodePayload(`{"facts": {"f1": {"c": "us-gaap:Assets", "p": "2024-12-31", "v": 100,}},}`)
	if err != nil {
		t.Fatalf("DecodePayload should repair trailing commas: %v", err)
	}
	if len(payload.Facts) != 1 {
		t.Errorf("Expected 1 fact after repair, got %d", len(payload.Facts))
	}
}

func TestDecodePayload_UnquotedKeys(t *testing.T) {
	payload, err := DecodePayload(`{facts: {f1: {c: "us-gaap:Assets", p: "2024-12-31", v: 100}}}`)
	if err != nil {
		t.Fatalf("DecodePayload should accept relaxed syntax: %v", err)
	}
	if len(payload.Facts) != 1 || payload.Facts[0].Concept != "us-gaap:Assets" {
		t.Errorf("Wrong facts: %+v", payload.Facts)
	}
}

func TestDecodePayload_Undecodable(t *testing.T) {
	if _, err := DecodePayload("<<<not a payload>>>"); err == nil {
		t.Error("Garbage text should fail to decode")
	}
}

func TestExtractPayload_EndToEnd(t *testing.T) {
	payload, err := ExtractPayload(renderedDoc)
	if err != nil {
		t.Fatalf("ExtractPayload failed: %v", err)
	}
	if len(payload.Facts) != 1 {
		t.Fatalf("Expected 1 fact, got %d", len(payload.Facts))
	}
	f := payload.Facts[0]
	if f.Concept != "us-gaap:Assets" || f.Period != "2024-12-31" {
		t.Errorf("Wrong fact: %+v", f)
	}
	if f.Numeric == nil || *f.Numeric != 100 {
		t.Errorf("Numeric value not decoded: %+v", f.Numeric)
	}
}
