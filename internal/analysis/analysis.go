// Package analysis computes the derived series over the reconciled daily
// table: trailing rolling PR mean, stepped annual budget curve, GHI color
// buckets, and recent-window PR averages. Pure computation, no I/O.
package analysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/gridsol/solar-pr-lab/internal/common"
	"github.com/gridsol/solar-pr-lab/internal/daily"
)

// ErrEmptyRange reports that no reconciled row falls inside the requested
// date window. The caller must abort before rendering or persisting anything.
var ErrEmptyRange = errors.New("no data available in the specified date range")

// RollingWindow is the trailing row count for the PR moving average.
const RollingWindow = 30

// RecentWindows are the day spans summarized relative to the latest in-range
// date.
var RecentWindows = []int{7, 30, 60}

// ColorBucket classifies a day's GHI into one of four ordered bins.
type ColorBucket int

const (
	Navy ColorBucket = iota
	LightBlue
	Orange
	Brown
)

// String returns the lowercase chart color name for the bucket.
func (b ColorBucket) String() string {
	switch b {
	case Navy:
		return "navy"
	case LightBlue:
		return "lightblue"
	case Orange:
		return "orange"
	case Brown:
		return "brown"
	}
	return "unknown"
}

// BucketFor bins GHI with exact boundaries: <2 navy, [2,4) lightblue,
// [4,6) orange, >=6 brown.
func BucketFor(ghi float64) ColorBucket {
	switch {
	case ghi < 2:
		return Navy
	case ghi < 4:
		return LightBlue
	case ghi < 6:
		return Orange
	default:
		return Brown
	}
}

// Row is a reconciled row extended with the derived series.
type Row struct {
	daily.ReconciledRow
	RollingPR float64
	BudgetPR  float64
	Bucket    ColorBucket
}

// WindowSummary is the average PR over rows dated strictly later than
// (max in-range date - WindowDays). An empty window averages to 0 by policy.
type WindowSummary struct {
	WindowDays int
	AveragePR  float64
}

// Analyze filters rows to the inclusive [start, end] window and computes the
// derived series. Input rows must be sorted ascending by date (the reconciler
// guarantees this). Returns ErrEmptyRange when the window holds no rows.
func Analyze(rows []daily.ReconciledRow, start, end time.Time, curve BudgetCurve) ([]Row, []WindowSummary, error) {
	var filtered []daily.ReconciledRow
	for _, r := range rows {
		if r.Date.Before(start) || r.Date.After(end) {
			continue
		}
		filtered = append(filtered, r)
	}
	if len(filtered) == 0 {
		return nil, nil, fmt.Errorf("%w (%s to %s)", ErrEmptyRange,
			start.Format(common.DateLayout), end.Format(common.DateLayout))
	}

	out := make([]Row, len(filtered))
	var windowSum float64
	for i, r := range filtered {
		// Trailing mean over up to RollingWindow in-range rows, minimum one.
		windowSum += r.PR
		if i >= RollingWindow {
			windowSum -= filtered[i-RollingWindow].PR
		}
		n := i + 1
		if n > RollingWindow {
			n = RollingWindow
		}

		out[i] = Row{
			ReconciledRow: r,
			RollingPR:     windowSum / float64(n),
			BudgetPR:      curve.ValueAt(r.Date),
			Bucket:        BucketFor(r.GHI),
		}
	}

	return out, summarize(filtered, filtered[len(filtered)-1].Date), nil
}

// summarize computes the recent-window PR averages anchored at maxDate, the
// latest in-range date.
func summarize(rows []daily.ReconciledRow, maxDate time.Time) []WindowSummary {
	summaries := make([]WindowSummary, 0, len(RecentWindows))
	for _, days := range RecentWindows {
		cutoff := maxDate.AddDate(0, 0, -days)
		var sum float64
		var count int
		for _, r := range rows {
			if r.Date.After(cutoff) {
				sum += r.PR
				count++
			}
		}
		avg := 0.0 // documented degenerate value for an empty window
		if count > 0 {
			avg = sum / float64(count)
		}
		summaries = append(summaries, WindowSummary{WindowDays: days, AveragePR: avg})
	}
	return summaries
}
