package ingest

import (
	"os"
	"path/filepath"
	"strings"
)

// PayloadCache provides file-based caching for extracted filing payloads,
// keyed by CIK and accession number.
type PayloadCache struct {
	cacheDir string
}

// NewPayloadCache creates a cache under .cache/edgar/payloads in the current
// working directory.
func NewPayloadCache() *PayloadCache {
	cacheDir := filepath.Join(".cache", "edgar", "payloads")
	os.MkdirAll(cacheDir, 0755)
	return &PayloadCache{cacheDir: cacheDir}
}

// NewPayloadCacheWithDir creates a cache with a custom directory.
func NewPayloadCacheWithDir(dir string) *PayloadCache {
	os.MkdirAll(dir, 0755)
	return &PayloadCache{cacheDir: dir}
}

func (c *PayloadCache) cacheKey(cik, accession string) string {
	accession = strings.ReplaceAll(accession, "-", "")
	return cik + "_" + accession
}

func (c *PayloadCache) filePath(key string) string {
	return filepath.Join(c.cacheDir, key+".json")
}

// Get retrieves cached payload bytes for a filing.
// Returns nil if not cached.
func (c *PayloadCache) Get(cik, accession string) []byte {
	data, err := os.ReadFile(c.filePath(c.cacheKey(cik, accession)))
	if err != nil {
		return nil
	}
	return data
}

// Set stores payload bytes in the cache.
func (c *PayloadCache) Set(cik, accession string, payload []byte) error {
	return os.WriteFile(c.filePath(c.cacheKey(cik, accession)), payload, 0644)
}

// Has checks whether a filing's payload is cached.
func (c *PayloadCache) Has(cik, accession string) bool {
	_, err := os.Stat(c.filePath(c.cacheKey(cik, accession)))
	return err == nil
}
