// Package viewer provides HTTP API handlers for processing filing payloads
// into statement tables and ensembling filings into multi-period reports.
package viewer

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/ensemble"
	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/render"
	core "github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/viewer"
	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/xbrl"
)

// =============================================================================
// PROCESS FILING HANDLER
// =============================================================================

// ProcessRequest carries one filing payload. Payload is the raw payload
// object; RenderedHTML may be sent instead when the caller holds the rendered
// report and wants the payload located server-side.
type ProcessRequest struct {
	Payload            json.RawMessage `json:"payload,omitempty"`
	RenderedHTML       string          `json:"rendered_html,omitempty"`
	IncludeDisclosures bool            `json:"include_disclosures,omitempty"`
}

// ProcessResponse wraps the processing result with an optional HTML preview.
type ProcessResponse struct {
	Result      *core.ProcessingResult `json:"result"`
	HTMLPreview string                 `json:"html_preview,omitempty"`
}

// HandleProcessFiling handles POST /api/viewer/process.
func HandleProcessFiling(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	payload, err := decodeRequestPayload(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := core.DefaultOptions()
	opts.IncludeDisclosures = req.IncludeDisclosures
	result := core.NewProcessor(opts).Process(payload)

	resp := ProcessResponse{Result: result}
	if result.Success {
		if html, err := render.ReportHTML(result); err == nil {
			resp.HTMLPreview = html
		}
	}
	writeJSON(w, resp)
}

// =============================================================================
// ENSEMBLE HANDLER
// =============================================================================

// EnsembleRequest carries several filings of one company.
type EnsembleRequest struct {
	Filings []struct {
		FilingDate   string          `json:"filing_date"`
		Payload      json.RawMessage `json:"payload,omitempty"`
		RenderedHTML string          `json:"rendered_html,omitempty"`
	} `json:"filings"`
	IncludeDisclosures bool `json:"include_disclosures,omitempty"`
}

// HandleEnsemble handles POST /api/viewer/ensemble.
func HandleEnsemble(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req EnsembleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Filings) == 0 {
		http.Error(w, "No filings provided", http.StatusBadRequest)
		return
	}

	opts := core.DefaultOptions()
	opts.IncludeDisclosures = req.IncludeDisclosures
	processor := core.NewProcessor(opts)

	var inputs []ensemble.FilingStatements
	for _, f := range req.Filings {
		pr := ProcessRequest{Payload: f.Payload, RenderedHTML: f.RenderedHTML}
		payload, err := decodeRequestPayload(&pr)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		inputs = append(inputs, ensemble.FilingStatements{
			FilingDate: f.FilingDate,
			Result:     processor.Process(payload),
		})
	}

	combined, err := ensemble.NewEngine().Combine(inputs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	resp := ProcessResponse{Result: combined}
	if html, err := render.ReportHTML(combined); err == nil {
		resp.HTMLPreview = html
	}
	writeJSON(w, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeRequestPayload(req *ProcessRequest) (*xbrl.FilingPayload, error) {
	if len(req.Payload) > 0 {
		return xbrl.DecodePayload(string(req.Payload))
	}
	if req.RenderedHTML != "" {
		return xbrl.ExtractPayload(req.RenderedHTML)
	}
	return nil, fmt.Errorf("request carries neither payload nor rendered_html")
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
