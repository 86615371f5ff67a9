// Package pipeline drives the end-to-end flow for one company:
// fetch payload -> process filing -> store result -> ensemble across filings.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/ensemble"
	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/viewer"
	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/xbrl"
)

// PayloadFetcher retrieves the normalized payload for a given filing.
// Implementations may fetch from live SEC EDGAR, a local cache, or a fixture
// directory.
type PayloadFetcher interface {
	FetchPayload(ctx context.Context, cik string, accessionNumber string) (*xbrl.FilingPayload, error)
}

// ResultStore persists and recalls per-filing results so reruns skip
// already-processed filings.
type ResultStore interface {
	Save(ctx context.Context, cik, accession string, result *viewer.ProcessingResult) error
	Load(ctx context.Context, cik, accession string) (*viewer.ProcessingResult, error)
}

// FilingRef identifies one filing to process.
type FilingRef struct {
	AccessionNumber string `json:"accession_number" yaml:"accession_number"`
	FilingDate      string `json:"filing_date" yaml:"filing_date"` // ISO date
}

// Pipeline manages the per-company data flow.
type Pipeline struct {
	fetcher   PayloadFetcher
	processor *viewer.Processor
	engine    *ensemble.Engine
	store     ResultStore // optional
}

// NewPipeline creates a pipeline with the given fetcher and default processing
// options.
func NewPipeline(fetcher PayloadFetcher) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		processor: viewer.NewProcessor(viewer.DefaultOptions()),
		engine:    ensemble.NewEngine(),
	}
}

// SetStore injects a result store (e.g. the Postgres repository, or a fake
// for testing).
func (p *Pipeline) SetStore(store ResultStore) {
	p.store = store
}

// SetOptions replaces the processing options.
func (p *Pipeline) SetOptions(opts viewer.Options) {
	p.processor = viewer.NewProcessor(opts)
}

// RunForCompany processes every filing and combines the results into one
// multi-period report. Individual filing failures are reported as warnings on
// the combined result; the run fails only when nothing could be processed.
func (p *Pipeline) RunForCompany(ctx context.Context, cik string, filings []FilingRef) (*viewer.ProcessingResult, error) {
	if len(filings) == 0 {
		return nil, fmt.Errorf("no filings provided for CIK %s", cik)
	}
	fmt.Printf("Starting statement pipeline for CIK %s (%d filings)...\n", cik, len(filings))
	start := time.Now()

	var inputs []ensemble.FilingStatements
	var skipped []string
	for _, filing := range filings {
		result, err := p.resultFor(ctx, cik, filing)
		if err != nil {
			fmt.Printf("Warning: filing %s failed: %v. Skipping.\n", filing.AccessionNumber, err)
			skipped = append(skipped, fmt.Sprintf("filing %s skipped: %v", filing.AccessionNumber, err))
			continue
		}
		if !result.Success {
			fmt.Printf("Warning: filing %s produced no statements: %s. Skipping.\n", filing.AccessionNumber, result.Error)
			skipped = append(skipped, fmt.Sprintf("filing %s skipped: %s", filing.AccessionNumber, result.Error))
			continue
		}
		inputs = append(inputs, ensemble.FilingStatements{
			FilingDate: filing.FilingDate,
			Result:     result,
		})
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("no filings could be processed for CIK %s", cik)
	}

	combined, err := p.engine.Combine(inputs)
	if err != nil {
		return nil, fmt.Errorf("ensemble failed: %w", err)
	}
	combined.Warnings = append(combined.Warnings, skipped...)

	fmt.Printf("Pipeline completed for CIK %s in %v: %d statements, %d warnings\n",
		cik, time.Since(start), len(combined.Statements), len(combined.Warnings))
	return combined, nil
}

// resultFor returns the processing result for one filing, recalling a stored
// result when available.
func (p *Pipeline) resultFor(ctx context.Context, cik string, filing FilingRef) (*viewer.ProcessingResult, error) {
	if p.store != nil {
		stored, err := p.store.Load(ctx, cik, filing.AccessionNumber)
		if err == nil && stored != nil {
			fmt.Printf("Filing %s already processed, reusing stored result.\n", filing.AccessionNumber)
			return stored, nil
		}
	}

	payload, err := p.fetcher.FetchPayload(ctx, cik, filing.AccessionNumber)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	result := p.processor.Process(payload)
	if result.FilingDate == "" {
		result.FilingDate = filing.FilingDate
	}

	if p.store != nil && result.Success {
		if err := p.store.Save(ctx, cik, filing.AccessionNumber, result); err != nil {
			fmt.Printf("Warning: failed to store result for %s: %v\n", filing.AccessionNumber, err)
		}
	}
	return result, nil
}
