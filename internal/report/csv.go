// Package report writes the pipeline's output artifacts: the merged CSV
// series and the rendered evolution chart. Thin wrappers, no domain logic.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gridsol/solar-pr-lab/internal/common"
	"github.com/gridsol/solar-pr-lab/internal/daily"
)

var csvHeader = []string{"Date", "GHI", "PR"}

// WriteCSV persists the reconciled series with a header row. Parent
// directories are created as needed.
func WriteCSV(path string, rows []daily.ReconciledRow) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteCSVTo(f, rows)
}

// WriteCSVTo writes the series to any destination, e.g. a gzip writer.
func WriteCSVTo(dst io.Writer, rows []daily.ReconciledRow) error {
	w := csv.NewWriter(dst)
	defer w.Flush()
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Date.Format(common.DateLayout),
			strconv.FormatFloat(r.GHI, 'g', -1, 64),
			strconv.FormatFloat(r.PR, 'g', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}

// ReadCSV loads a series previously written by WriteCSV. The merged CSV is
// the hand-off artifact between pr-report and the downstream binaries.
func ReadCSV(path string) ([]daily.ReconciledRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot read series from %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("series file %s is empty", path)
	}

	header := records[0]
	if len(header) < 3 || daily.NormalizeColumn(header[0]) != "Date" {
		return nil, fmt.Errorf("series file %s has unexpected header %v", path, header)
	}

	rows := make([]daily.ReconciledRow, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < 3 {
			return nil, fmt.Errorf("series file %s: short row %d", path, i+2)
		}
		date, err := time.Parse(common.DateLayout, record[0])
		if err != nil {
			return nil, fmt.Errorf("series file %s row %d: bad date '%s': %w", path, i+2, record[0], err)
		}
		ghi, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("series file %s row %d: bad GHI '%s': %w", path, i+2, record[1], err)
		}
		pr, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("series file %s row %d: bad PR '%s': %w", path, i+2, record[2], err)
		}
		rows = append(rows, daily.ReconciledRow{Date: date.UTC(), GHI: ghi, PR: pr})
	}
	return rows, nil
}
