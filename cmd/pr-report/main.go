// pr-report - daily GHI/PR reconciliation and performance report
//
// Scans two directory trees of per-day CSV files (GHI irradiance and PR
// performance ratio), merges the dates present in both, writes the combined
// series CSV, and renders the PR evolution chart with the 30-day moving
// average, the annual budget target curve, and recent-window averages.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/pr-report ./cmd/pr-report

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gridsol/solar-pr-lab/internal/analysis"
	"github.com/gridsol/solar-pr-lab/internal/common"
	"github.com/gridsol/solar-pr-lab/internal/daily"
	"github.com/gridsol/solar-pr-lab/internal/report"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

func main() {
	defaults := common.DefaultConfig()

	configPath := flag.String("config", "", "Optional YAML config file")
	ghiDir := flag.String("ghi-dir", defaults.GHIDir, "Path to GHI data directory")
	prDir := flag.String("pr-dir", defaults.PRDir, "Path to PR data directory")
	outputCSV := flag.String("output-csv", defaults.OutputCSV, "Output CSV file path")
	outputChart := flag.String("output-chart", defaults.OutputChart, "Output chart HTML path")
	startDate := flag.String("start-date", defaults.StartDate, "Start date (YYYY-MM-DD)")
	endDate := flag.String("end-date", defaults.EndDate, "End date (YYYY-MM-DD)")
	workers := flag.Int("workers", defaults.Workers, "Parallel file parsers per source")
	silent := flag.Bool("silent", false, "Suppress progress output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pr-report v%s - GHI/PR Reconciliation and Report\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Merges daily GHI and PR measurement files by date and renders the\n")
		fmt.Fprintf(os.Stderr, "performance ratio evolution chart against the budget target curve.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	cfg := defaults
	if *configPath != "" {
		loaded, err := common.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Config error: %v", err)
		}
		cfg = loaded
	}

	// Explicit flags override the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ghi-dir":
			cfg.GHIDir = *ghiDir
		case "pr-dir":
			cfg.PRDir = *prDir
		case "output-csv":
			cfg.OutputCSV = *outputCSV
		case "output-chart":
			cfg.OutputChart = *outputChart
		case "start-date":
			cfg.StartDate = *startDate
		case "end-date":
			cfg.EndDate = *endDate
		case "workers":
			cfg.Workers = *workers
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	start, end, err := cfg.DateRange()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	log.Println("=========================================================")
	log.Printf("PR Report v%s", Version)
	log.Println("=========================================================")
	log.Printf("GHI source: %s", cfg.GHIDir)
	log.Printf("PR source:  %s", cfg.PRDir)
	log.Printf("Range:      %s to %s", cfg.StartDate, cfg.EndDate)
	log.Printf("Workers:    %d", cfg.Workers)

	startTime := time.Now()

	ghiIndex := extractSource("GHI", cfg.GHIDir, "Ghi", cfg.Workers, *silent)
	prIndex := extractSource("PR", cfg.PRDir, "Pr", cfg.Workers, *silent)

	rows := daily.Reconcile(ghiIndex, prIndex)
	log.Printf("Reconciled %d common dates (GHI: %d, PR: %d)", len(rows), len(ghiIndex), len(prIndex))

	curve := analysis.NewBudgetCurve(cfg.Budget)
	analyzed, summaries, err := analysis.Analyze(rows, start, end, curve)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	// Nothing is persisted before the analysis window is known to be valid.
	if err := report.WriteCSV(cfg.OutputCSV, rows); err != nil {
		log.Fatalf("Cannot write series CSV: %v", err)
	}
	log.Printf("Combined CSV saved to %s with %d rows", cfg.OutputCSV, len(rows))

	if err := report.RenderChartFile(cfg.OutputChart, analyzed, summaries); err != nil {
		log.Fatalf("Cannot render chart: %v", err)
	}
	log.Printf("Chart saved to %s (%d rows in range)", cfg.OutputChart, len(analyzed))

	for _, s := range summaries {
		log.Printf("Avg PR (last %d days): %.2f", s.WindowDays, s.AveragePR)
	}

	elapsed := time.Since(startTime)

	log.Println("=========================================================")
	log.Println("Final Statistics")
	log.Println("=========================================================")
	log.Printf("Reconciled Rows: %d", len(rows))
	log.Printf("Rows In Range:   %d", len(analyzed))
	log.Printf("Elapsed:         %v", elapsed.Round(time.Millisecond))
	log.Println("=========================================================")
}

// extractSource runs the extractor over one directory tree and folds the
// result into a date index.
func extractSource(name, dir, column string, workers int, silent bool) daily.SourceIndex {
	stats := common.NewExtractStats(log.Printf)
	stats.SetSilent(silent)
	stats.StartReporter()
	defer stats.StopReporter()

	records, err := daily.Extract(dir, column, workers, stats)
	if err != nil {
		log.Fatalf("[%s] Extraction failed: %v", name, err)
	}
	stats.LogSummary(name)

	return daily.BuildIndex(records)
}
