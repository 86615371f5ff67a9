package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/viewer"
	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/xbrl"
)

// =============================================================================
// IN-MEMORY FAKES
// =============================================================================

type fakeFetcher struct {
	payloads map[string]*xbrl.FilingPayload
	calls    int
}

func (f *fakeFetcher) FetchPayload(_ context.Context, _ string, accession string) (*xbrl.FilingPayload, error) {
	f.calls++
	p, ok := f.payloads[accession]
	if !ok {
		return nil, fmt.Errorf("document not found: %s", accession)
	}
	return p, nil
}

type fakeStore struct {
	saved map[string]*viewer.ProcessingResult
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string]*viewer.ProcessingResult)}
}

func (s *fakeStore) Save(_ context.Context, cik, accession string, result *viewer.ProcessingResult) error {
	s.saved[cik+"/"+accession] = result
	return nil
}

func (s *fakeStore) Load(_ context.Context, cik, accession string) (*viewer.ProcessingResult, error) {
	return s.saved[cik+"/"+accession], nil
}

func testPayload(year string) *xbrl.FilingPayload {
	instant := year + "-12-31"
	v := 122.07e9
	d := -6
	return &xbrl.FilingPayload{
		CompanyName: "Tesla, Inc.",
		FormType:    "10-K",
		FilingDate:  instant,
		Facts: []xbrl.Fact{
			{Concept: "us-gaap:Assets", Period: instant, Numeric: &v, Decimals: &d, Unit: "USD"},
		},
		Presentation: map[string]xbrl.PresentationRole{
			"r1": {
				RoleID: "r1",
				Relationships: map[string][]xbrl.Relationship{
					"us-gaap:StatementOfFinancialPositionAbstract": {{Child: "us-gaap:Assets", Order: 1}},
				},
			},
		},
		Roles: map[string]xbrl.RoleDefinition{
			"r1": {ID: "r1", Name: "CONSOLIDATED BALANCE SHEETS", Group: "Statements"},
		},
	}
}

// =============================================================================
// COMPANY RUNS
// =============================================================================

func TestRunForCompany_CombinesFilings(t *testing.T) {
	fetcher := &fakeFetcher{payloads: map[string]*xbrl.FilingPayload{
		"acc-2024": testPayload("2024"),
		"acc-2023": testPayload("2023"),
	}}
	p := NewPipeline(fetcher)

	combined, err := p.RunForCompany(context.Background(), "0001318605", []FilingRef{
		{AccessionNumber: "acc-2024", FilingDate: "2025-01-29"},
		{AccessionNumber: "acc-2023", FilingDate: "2024-01-26"},
	})
	if err != nil {
		t.Fatalf("RunForCompany failed: %v", err)
	}
	if !combined.Success || len(combined.Statements) != 1 {
		t.Fatalf("Unexpected combined result: success=%v statements=%d", combined.Success, len(combined.Statements))
	}
	if got := len(combined.Statements[0].Periods); got != 2 {
		t.Errorf("Expected one column per filing, got %d", got)
	}
}

func TestRunForCompany_SkipsFailedFilings(t *testing.T) {
	fetcher := &fakeFetcher{payloads: map[string]*xbrl.FilingPayload{
		"acc-2024": testPayload("2024"),
	}}
	p := NewPipeline(fetcher)

	combined, err := p.RunForCompany(context.Background(), "0001318605", []FilingRef{
		{AccessionNumber: "acc-2024", FilingDate: "2025-01-29"},
		{AccessionNumber: "acc-missing", FilingDate: "2024-01-26"},
	})
	if err != nil {
		t.Fatalf("RunForCompany failed: %v", err)
	}
	found := false
	for _, w := range combined.Warnings {
		if w == `filing acc-missing skipped: fetch failed: document not found: acc-missing` {
			found = true
		}
	}
	if !found {
		t.Errorf("Skipped filing not reported in warnings: %v", combined.Warnings)
	}
}

func TestRunForCompany_AllFailed(t *testing.T) {
	p := NewPipeline(&fakeFetcher{})
	_, err := p.RunForCompany(context.Background(), "0001318605", []FilingRef{
		{AccessionNumber: "acc-missing", FilingDate: "2025-01-29"},
	})
	if err == nil {
		t.Error("Run should fail when no filing can be processed")
	}
}

func TestRunForCompany_StoreReusedOnRerun(t *testing.T) {
	fetcher := &fakeFetcher{payloads: map[string]*xbrl.FilingPayload{
		"acc-2024": testPayload("2024"),
	}}
	p := NewPipeline(fetcher)
	store := newFakeStore()
	p.SetStore(store)

	refs := []FilingRef{{AccessionNumber: "acc-2024", FilingDate: "2025-01-29"}}
	if _, err := p.RunForCompany(context.Background(), "0001318605", refs); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	if len(store.saved) != 1 {
		t.Fatalf("Result not persisted, store has %d entries", len(store.saved))
	}
	if fetcher.calls != 1 {
		t.Fatalf("Expected 1 fetch, got %d", fetcher.calls)
	}

	if _, err := p.RunForCompany(context.Background(), "0001318605", refs); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("Rerun should reuse the stored result, fetch count = %d", fetcher.calls)
	}
}
