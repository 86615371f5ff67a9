package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v2"

	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/ingest"
	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/pipeline"
	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/render"
	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/store"
	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/viewer"
)

// CompanyJob lists the filings to fetch and combine for one company.
type CompanyJob struct {
	CIK                string               `yaml:"cik"`
	Output             string               `yaml:"output"` // markdown report path, "-" = stdout
	CacheDir           string               `yaml:"cache_dir"`
	IncludeDisclosures bool                 `yaml:"include_disclosures"`
	Filings            []pipeline.FilingRef `yaml:"filings"`
}

func main() {
	godotenv.Load()

	jobPath := flag.String("job", "company.yaml", "path to the YAML company job file")
	flag.Parse()

	cfg, err := loadJob(*jobPath)
	if err != nil {
		log.Fatalf("Failed to load job file: %v", err)
	}
	if cfg.CIK == "" {
		log.Fatal("Job file names no CIK")
	}

	ctx := context.Background()

	p := pipeline.NewPipeline(ingest.NewSECPayloadFetcher(cfg.CacheDir))
	opts := viewer.DefaultOptions()
	opts.IncludeDisclosures = cfg.IncludeDisclosures
	p.SetOptions(opts)

	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			fmt.Printf("[WARNING] Failed to initialize database: %v\n", err)
		} else {
			defer store.Close()
			p.SetStore(store.NewResultsRepo())
			fmt.Println("[STORE] Database connection pool initialized")
		}
	}

	report, err := p.RunForCompany(ctx, cfg.CIK, cfg.Filings)
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	markdown := render.ReportMarkdown(report)
	if cfg.Output == "" || cfg.Output == "-" {
		fmt.Println(markdown)
		return
	}
	if err := os.WriteFile(cfg.Output, []byte(markdown), 0644); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}
	fmt.Printf("Report written to %s\n", cfg.Output)
}

func loadJob(path string) (*CompanyJob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg CompanyJob
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid job YAML: %w", err)
	}
	return &cfg, nil
}
