// Package daily provides daily measurement extraction and date alignment.
// Two directory trees of per-day CSV files (GHI irradiance and PR performance
// ratio) are parsed into one observation per calendar date per source, then
// reconciled into a single merged series covering the dates both sources agree
// on. The merged series is the input for all derived analytics.
package daily

import (
	"sort"
	"time"

	"github.com/samber/lo"
)

// =============================================================================
// Core Types
// =============================================================================

// Observation is a single daily measurement. Date is always UTC midnight.
type Observation struct {
	Date  time.Time
	Value float64
}

// Record pairs an observation with the file path it was extracted from.
// The path is the tie-break key when two files carry the same date.
type Record struct {
	Path string
	Obs  Observation
}

// SourceIndex maps calendar date to the single observation retained for that
// date within one source. At most one observation per date.
type SourceIndex map[time.Time]Observation

// ReconciledRow is a date for which both sources have an observation.
type ReconciledRow struct {
	Date time.Time
	GHI  float64
	PR   float64
}

// Day normalizes a timestamp to UTC midnight, the canonical date key used
// throughout the pipeline.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// Source Index Builder
// =============================================================================

// BuildIndex folds extracted records into a date-keyed index.
//
// Duplicate dates are resolved by ascending lexicographic path order, so the
// lexicographically last file wins. Extraction runs on a worker pool and
// returns records in scheduling order; sorting here keeps the winner
// reproducible across runs and platforms.
func BuildIndex(records []Record) SourceIndex {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	idx := make(SourceIndex, len(sorted))
	for _, r := range sorted {
		idx[r.Obs.Date] = r.Obs
	}
	return idx
}

// =============================================================================
// Reconciler
// =============================================================================

// Reconcile intersects the two indices by date and returns one row per common
// date, sorted ascending. Dates present in only one source are dropped; the
// merged series never carries partial rows. An empty intersection yields an
// empty table, which is not an error at this stage.
func Reconcile(ghi, pr SourceIndex) []ReconciledRow {
	dates := lo.Filter(lo.Keys(ghi), func(d time.Time, _ int) bool {
		_, ok := pr[d]
		return ok
	})
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	rows := make([]ReconciledRow, 0, len(dates))
	for _, d := range dates {
		rows = append(rows, ReconciledRow{
			Date: d,
			GHI:  ghi[d].Value,
			PR:   pr[d].Value,
		})
	}
	return rows
}
