package ingest

import (
	"context"
	"fmt"

	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/xbrl"
)

// FinancialReportDocument is the conventional name of the rendered financial
// report document inside a filing's archive directory.
const FinancialReportDocument = "Financial_Report.htm"

// SECPayloadFetcher fetches a filing's rendered report from SEC EDGAR,
// locates the embedded payload, and caches the payload text locally.
// It implements pipeline.PayloadFetcher.
type SECPayloadFetcher struct {
	client *EDGARClient
	cache  *PayloadCache
}

// NewSECPayloadFetcher creates a fetcher. cacheDir may be empty to use the
// default cache location.
func NewSECPayloadFetcher(cacheDir string) *SECPayloadFetcher {
	cache := NewPayloadCache()
	if cacheDir != "" {
		cache = NewPayloadCacheWithDir(cacheDir)
	}
	return &SECPayloadFetcher{
		client: NewEDGARClient(),
		cache:  cache,
	}
}

// FetchPayload returns the normalized filing payload for one filing.
func (f *SECPayloadFetcher) FetchPayload(ctx context.Context, cik, accession string) (*xbrl.FilingPayload, error) {
	if data := f.cache.Get(cik, accession); data != nil {
		payload, err := xbrl.DecodePayload(string(data))
		if err == nil {
			return payload, nil
		}
		// A corrupt cache entry falls through to a fresh fetch.
	}

	html, err := f.client.FetchDocument(ctx, cik, accession, FinancialReportDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rendered report: %w", err)
	}
	text, err := xbrl.LocatePayload(html)
	if err != nil {
		return nil, err
	}
	payload, err := xbrl.DecodePayload(text)
	if err != nil {
		return nil, err
	}

	f.cache.Set(cik, accession, []byte(text))
	return payload, nil
}
