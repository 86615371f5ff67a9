// Package ingest fetches rendered filing documents from SEC EDGAR and caches
// extracted payloads locally. The viewer core never performs I/O; this layer
// feeds it.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// SECFilingURL is the archive location of one filing document.
	SECFilingURL = "https://www.sec.gov/Archives/edgar/data/%s/%s/%s"

	// Required User-Agent per SEC guidelines.
	UserAgent = "SECDataExtractor/3.0 (contact@example.com)"
)

// EDGARClient downloads rendered filing documents.
type EDGARClient struct {
	httpClient *http.Client
}

// NewEDGARClient creates a client with the standard timeout.
func NewEDGARClient() *EDGARClient {
	return &EDGARClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchDocument downloads one document of a filing.
// CIK is the unpadded company number; the accession number may carry dashes.
func (c *EDGARClient) FetchDocument(ctx context.Context, cik, accession, document string) (string, error) {
	url := fmt.Sprintf(SECFilingURL, strings.TrimLeft(cik, "0"), strings.ReplaceAll(accession, "-", ""), document)
	return c.fetch(ctx, url)
}

func (c *EDGARClient) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/html,application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("SEC returned status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}
