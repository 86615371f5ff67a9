package viewer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testFilingPayload = `{
	"companyName": "Tesla, Inc.",
	"formType": "10-K",
	"filingDate": "2025-01-29",
	"facts": {
		"f1": {"c": "us-gaap:Assets", "p": "2024-12-31", "v": 122070000000, "d": -6, "u": "USD"}
	},
	"presentation": {
		"r1": {
			"relationships": {
				"us-gaap:StatementOfFinancialPositionAbstract": [{"c": "us-gaap:Assets", "o": 1}]
			}
		}
	},
	"roleDefs": {
		"r1": {"name": "CONSOLIDATED BALANCE SHEETS", "group": "Statements"}
	}
}`

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

// =============================================================================
// PROCESS ENDPOINT
// =============================================================================

func TestHandleProcessFiling(t *testing.T) {
	rec := postJSON(t, HandleProcessFiling, `{"payload": `+testFilingPayload+`}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp ProcessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Response not decodable: %v", err)
	}
	if !resp.Result.Success {
		t.Fatalf("Processing failed: %s", resp.Result.Error)
	}
	if resp.Result.CompanyName != "Tesla, Inc." {
		t.Errorf("Wrong company name: %q", resp.Result.CompanyName)
	}
	if len(resp.Result.Statements) != 1 {
		t.Errorf("Expected 1 statement, got %d", len(resp.Result.Statements))
	}
	if !strings.Contains(resp.HTMLPreview, "<table>") {
		t.Error("HTML preview missing rendered table")
	}
}

func TestHandleProcessFiling_BadRequests(t *testing.T) {
	if rec := postJSON(t, HandleProcessFiling, "not json"); rec.Code != http.StatusBadRequest {
		t.Errorf("Invalid body status = %d", rec.Code)
	}
	if rec := postJSON(t, HandleProcessFiling, `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("Empty request status = %d", rec.Code)
	}

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	HandleProcessFiling(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d", rec.Code)
	}
}

func TestHandleProcessFiling_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest("OPTIONS", "/", nil)
	rec := httptest.NewRecorder()
	HandleProcessFiling(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Preflight status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS header missing")
	}
}

// =============================================================================
// ENSEMBLE ENDPOINT
// =============================================================================

func TestHandleEnsemble(t *testing.T) {
	body := `{"filings": [
		{"filing_date": "2025-01-29", "payload": ` + testFilingPayload + `},
		{"filing_date": "2024-01-26", "payload": ` + testFilingPayload + `}
	]}`
	rec := postJSON(t, HandleEnsemble, body)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp ProcessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Response not decodable: %v", err)
	}
	if !resp.Result.Success {
		t.Fatal("Combined result not successful")
	}
	if got := len(resp.Result.Statements[0].Periods); got != 2 {
		t.Errorf("Expected one column per filing, got %d", got)
	}
}

func TestHandleEnsemble_NoFilings(t *testing.T) {
	if rec := postJSON(t, HandleEnsemble, `{"filings": []}`); rec.Code != http.StatusBadRequest {
		t.Errorf("Empty filings status = %d", rec.Code)
	}
}

func TestHandleEnsemble_UnprocessableAnchor(t *testing.T) {
	// A decodable payload with no usable facts produces a failed per-filing
	// result, so the ensemble has no anchor statements.
	body := `{"filings": [
		{"filing_date": "2025-01-29", "payload": {"presentation": {"r1": {"relationships": {"a": [{"c": "b", "o": 1}]}}}}}
	]}`
	if rec := postJSON(t, HandleEnsemble, body); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Anchor without statements status = %d", rec.Code)
	}
}
