// pr-export - archival export of the merged GHI/PR series
//
// Converts the combined series CSV produced by pr-report into columnar or
// compressed archival formats:
//   - parquet: Parquet file (native Go writer)
//   - csv.gz:  gzip-compressed CSV
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/pr-export ./cmd/pr-export

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/parquet-go/parquet-go"

	"github.com/gridsol/solar-pr-lab/internal/common"
	"github.com/gridsol/solar-pr-lab/internal/daily"
	"github.com/gridsol/solar-pr-lab/internal/report"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

// SeriesRow matches the Parquet schema
type SeriesRow struct {
	Date string  `parquet:"date"`
	GHI  float64 `parquet:"ghi"`
	PR   float64 `parquet:"pr"`
}

func exportParquet(path string, rows []daily.ReconciledRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	out := make([]SeriesRow, len(rows))
	for i, r := range rows {
		out[i] = SeriesRow{
			Date: r.Date.Format(common.DateLayout),
			GHI:  r.GHI,
			PR:   r.PR,
		}
	}

	w := parquet.NewGenericWriter[SeriesRow](f)
	if _, err := w.Write(out); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func exportCSVGz(path string, rows []daily.ReconciledRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	if err := report.WriteCSVTo(gz, rows); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

func main() {
	defaults := common.DefaultConfig()

	seriesCSV := flag.String("series-csv", defaults.OutputCSV, "Combined series CSV path")
	format := flag.String("format", "parquet", "Export format: parquet or csv.gz")
	output := flag.String("output", "", "Output file path (default: derived from input)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pr-export v%s - Series Archival Exporter\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Exports the merged daily series to archival formats.\n\n")
		fmt.Fprintf(os.Stderr, "Supported formats:\n")
		fmt.Fprintf(os.Stderr, "  - parquet: columnar Parquet file\n")
		fmt.Fprintf(os.Stderr, "  - csv.gz:  gzip-compressed CSV\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	outPath := *output
	if outPath == "" {
		base := (*seriesCSV)[:len(*seriesCSV)-len(filepath.Ext(*seriesCSV))]
		switch *format {
		case "parquet":
			outPath = base + ".parquet"
		case "csv.gz":
			outPath = base + ".csv.gz"
		}
	}

	log.Println("=========================================================")
	log.Printf("PR Export v%s", Version)
	log.Println("=========================================================")
	log.Printf("Input:  %s", *seriesCSV)
	log.Printf("Format: %s", *format)
	log.Printf("Output: %s", outPath)

	rows, err := report.ReadCSV(*seriesCSV)
	if err != nil {
		log.Fatalf("Cannot load series: %v", err)
	}
	log.Printf("Loaded %d rows", len(rows))

	startTime := time.Now()

	switch *format {
	case "parquet":
		err = exportParquet(outPath, rows)
	case "csv.gz":
		err = exportCSVGz(outPath, rows)
	default:
		log.Fatalf("Unknown format: %s", *format)
	}
	if err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	info, _ := os.Stat(outPath)
	var size int64
	if info != nil {
		size = info.Size()
	}

	elapsed := time.Since(startTime)

	log.Println("=========================================================")
	log.Println("Final Statistics")
	log.Println("=========================================================")
	log.Printf("Exported Rows: %d", len(rows))
	log.Printf("Output Size:   %d bytes", size)
	log.Printf("Elapsed:       %v", elapsed.Round(time.Millisecond))
	log.Println("=========================================================")
}
