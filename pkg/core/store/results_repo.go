package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/viewer"
)

// ResultsRepo stores per-filing processing results keyed by CIK and accession
// number.
type ResultsRepo struct{}

// NewResultsRepo creates a new repository instance.
func NewResultsRepo() *ResultsRepo {
	return &ResultsRepo{}
}

// Save upserts one filing's processing result.
//
// Schema assumption (managed by migrations elsewhere):
//
//	CREATE TABLE IF NOT EXISTS filing_results (
//	  cik TEXT NOT NULL,
//	  accession_number TEXT NOT NULL,
//	  filing_date TEXT,
//	  result_json JSONB,
//	  updated_at TIMESTAMPTZ,
//	  PRIMARY KEY (cik, accession_number)
//	);
func (r *ResultsRepo) Save(ctx context.Context, cik, accession string, result *viewer.ProcessingResult) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	query := `
		INSERT INTO filing_results (cik, accession_number, filing_date, result_json, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cik, accession_number)
		DO UPDATE SET
			filing_date = EXCLUDED.filing_date,
			result_json = EXCLUDED.result_json,
			updated_at = EXCLUDED.updated_at;
	`
	_, err = pool.Exec(ctx, query, cik, accession, result.FilingDate, jsonData, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

// Load retrieves one filing's stored result. Returns (nil, nil) when the
// filing has not been processed yet.
func (r *ResultsRepo) Load(ctx context.Context, cik, accession string) (*viewer.ProcessingResult, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var jsonData []byte
	query := `SELECT result_json FROM filing_results WHERE cik = $1 AND accession_number = $2`
	err := pool.QueryRow(ctx, query, cik, accession).Scan(&jsonData)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load result: %w", err)
	}

	var result viewer.ProcessingResult
	if err := json.Unmarshal(jsonData, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored result: %w", err)
	}
	return &result, nil
}

// LoadCompany retrieves all stored results for a company, newest filing first.
func (r *ResultsRepo) LoadCompany(ctx context.Context, cik string) ([]*viewer.ProcessingResult, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT result_json FROM filing_results WHERE cik = $1 ORDER BY filing_date DESC`
	rows, err := pool.Query(ctx, query, cik)
	if err != nil {
		return nil, fmt.Errorf("failed to query company results: %w", err)
	}
	defer rows.Close()

	var results []*viewer.ProcessingResult
	for rows.Next() {
		var jsonData []byte
		if err := rows.Scan(&jsonData); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		var result viewer.ProcessingResult
		if err := json.Unmarshal(jsonData, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stored result: %w", err)
		}
		results = append(results, &result)
	}
	return results, rows.Err()
}
