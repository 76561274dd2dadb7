// Extraction: recursive discovery and parsing of per-day CSV files.
// File names encode the expected date (YYYY-MM-DD.csv, optionally .csv.gz);
// anything that fails validation is skipped, never fatal.

package daily

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/klauspost/pgzip"

	"github.com/gridsol/solar-pr-lab/internal/common"
)

// Error throttling: don't spam logs with per-file skip reasons
const maxSkipsToLog = 10

// errNoObservation marks a file that parsed cleanly but yielded nothing:
// wrong columns, or no row matching the file-name date.
var errNoObservation = errors.New("no observation in file")

// Extract walks dir recursively and parses every candidate file into at most
// one observation. column is the required value column after normalization
// ("Ghi" or "Pr"). Files fan out over a fixed worker pool; result order is
// scheduling order and carries no meaning (BuildIndex re-sorts by path).
func Extract(dir, column string, workers int, stats *common.ExtractStats) ([]Record, error) {
	paths, err := discover(dir, stats)
	if err != nil {
		return nil, fmt.Errorf("cannot scan source directory %s: %w", dir, err)
	}

	if workers < 1 {
		workers = 1
	}

	var (
		mu      sync.Mutex
		records []Record
		skips   common.Counter
	)

	pathCh := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range pathCh {
				stats.FilesScanned.Add(1)
				obs, err := parseFile(path, column)
				if err != nil {
					stats.FilesSkipped.Add(1)
					skips.Add(1)
					if skips.Get() <= maxSkipsToLog {
						log.Printf("[%s] Skipping: %v", filepath.Base(path), err)
					}
					continue
				}
				stats.Observations.Add(1)
				mu.Lock()
				records = append(records, Record{Path: path, Obs: obs})
				mu.Unlock()
			}
		}()
	}

	for _, p := range paths {
		pathCh <- p
	}
	close(pathCh)
	wg.Wait()

	if n := skips.Get(); n > maxSkipsToLog {
		log.Printf("... and %d more skipped files (suppressed)", n-maxSkipsToLog)
	}

	return records, nil
}

// discover collects candidate file paths: .csv or .csv.gz whose base name
// parses as a calendar date. Everything else in the tree is ignored without
// counting it as skipped.
func discover(dir string, stats *common.ExtractStats) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !isCandidate(path) {
			return nil
		}
		if _, ok := fileDate(path); !ok {
			stats.FilesSkipped.Add(1)
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func isCandidate(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".csv") || strings.HasSuffix(lower, ".csv.gz")
}

// fileDate parses the date encoded in the file base name.
func fileDate(path string) (time.Time, bool) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".gz")
	base = strings.TrimSuffix(base, filepath.Ext(base))
	d, err := time.Parse(common.DateLayout, base)
	if err != nil {
		return time.Time{}, false
	}
	return Day(d.Year(), d.Month(), d.Day()), true
}

// parseFile extracts the single observation from one daily file: the first
// row whose Date cell equals the file-name date, taking its value from the
// required column. Returns errNoObservation-wrapped reasons for clean skips.
func parseFile(path, column string) (Observation, error) {
	expected, ok := fileDate(path)
	if !ok {
		return Observation{}, fmt.Errorf("%w: file name is not a date", errNoObservation)
	}

	f, err := os.Open(path)
	if err != nil {
		return Observation{}, err
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return Observation{}, fmt.Errorf("gzip open failed: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	csvReader := csv.NewReader(reader)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1 // tolerate ragged rows

	header, err := csvReader.Read()
	if err != nil {
		return Observation{}, fmt.Errorf("cannot read header: %w", err)
	}

	dateIdx, valueIdx := -1, -1
	for i, name := range header {
		switch NormalizeColumn(name) {
		case "Date":
			if dateIdx < 0 {
				dateIdx = i
			}
		case column:
			if valueIdx < 0 {
				valueIdx = i
			}
		}
	}
	if dateIdx < 0 || valueIdx < 0 {
		return Observation{}, fmt.Errorf("%w: missing Date or %s column", errNoObservation, column)
	}

	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if len(record) <= dateIdx || len(record) <= valueIdx {
			continue
		}
		// Malformed date cells never match; they are not an error.
		d, ok := parseDateCell(record[dateIdx])
		if !ok || !d.Equal(expected) {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(record[valueIdx]), 64)
		if err != nil {
			continue
		}
		// First matching row wins.
		return Observation{Date: expected, Value: value}, nil
	}

	return Observation{}, fmt.Errorf("%w: no row matching date %s", errNoObservation, expected.Format(common.DateLayout))
}

// dateCellLayouts are the cell formats accepted for the Date column. Anything
// else parses to the invalid marker and is excluded from matching.
var dateCellLayouts = []string{
	common.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func parseDateCell(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateCellLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return Day(d.Year(), d.Month(), d.Day()), true
		}
	}
	return time.Time{}, false
}

// NormalizeColumn canonicalizes a header cell for comparison: trimmed, first
// rune upper-cased, the rest lower-cased (" ghi " -> "Ghi").
func NormalizeColumn(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	r, size := utf8.DecodeRuneInString(lower)
	return string(unicode.ToUpper(r)) + lower[size:]
}
