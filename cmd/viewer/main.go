package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v2"

	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/ensemble"
	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/render"
	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/viewer"
	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/xbrl"
)

// JobConfig describes one processing job: a set of local filing payloads (or
// rendered report documents) for one company, newest last or in any order.
type JobConfig struct {
	Output             string      `yaml:"output"` // markdown report path, "-" = stdout
	IncludeDisclosures bool        `yaml:"include_disclosures"`
	Filings            []JobFiling `yaml:"filings"`
}

// JobFiling points at one filing's payload on disk.
type JobFiling struct {
	FilingDate string `yaml:"filing_date"`
	Path       string `yaml:"path"`
	Rendered   bool   `yaml:"rendered"` // true = HTML document, payload located inside
}

func main() {
	godotenv.Load()

	jobPath := flag.String("job", "job.yaml", "path to the YAML job file")
	flag.Parse()

	cfg, err := loadJob(*jobPath)
	if err != nil {
		log.Fatalf("Failed to load job file: %v", err)
	}
	if len(cfg.Filings) == 0 {
		log.Fatal("Job file lists no filings")
	}

	opts := viewer.DefaultOptions()
	opts.IncludeDisclosures = cfg.IncludeDisclosures
	processor := viewer.NewProcessor(opts)

	var inputs []ensemble.FilingStatements
	for _, filing := range cfg.Filings {
		fmt.Printf("Processing %s (%s)...\n", filing.Path, filing.FilingDate)
		payload, err := loadPayload(filing)
		if err != nil {
			fmt.Printf("Warning: %s failed: %v. Skipping.\n", filing.Path, err)
			continue
		}
		result := processor.Process(payload)
		if !result.Success {
			fmt.Printf("Warning: %s produced no statements: %s. Skipping.\n", filing.Path, result.Error)
			continue
		}
		fmt.Printf("  %d statements, %d warnings\n", len(result.Statements), len(result.Warnings))
		inputs = append(inputs, ensemble.FilingStatements{
			FilingDate: filing.FilingDate,
			Result:     result,
		})
	}
	if len(inputs) == 0 {
		log.Fatal("No filings could be processed")
	}

	var report *viewer.ProcessingResult
	if len(inputs) == 1 {
		report = inputs[0].Result
	} else {
		report, err = ensemble.NewEngine().Combine(inputs)
		if err != nil {
			log.Fatalf("Ensemble failed: %v", err)
		}
		fmt.Printf("Combined %d filings into one report\n", len(inputs))
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

func loadJob(path string) (*JobConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg JobConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid job YAML: %w", err)
	}
	return &cfg, nil
}

func loadPayload(filing JobFiling) (*xbrl.FilingPayload, error) {
	data, err := os.ReadFile(filing.Path)
	if err != nil {
		return nil, err
	}
	if filing.Rendered {
		return xbrl.ExtractPayload(string(data))
	}
	return xbrl.DecodePayload(string(data))
}
