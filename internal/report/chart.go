package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/gridsol/solar-pr-lab/internal/analysis"
	"github.com/gridsol/solar-pr-lab/internal/common"
)

// RenderChart writes the PR evolution chart as a standalone HTML page: the
// daily PR scatter colored by GHI bucket, the 30-day moving average, the
// budget target line, and the recent-window averages in the subtitle.
func RenderChart(w io.Writer, rows []analysis.Row, summaries []analysis.WindowSummary) error {
	dates := make([]string, len(rows))
	rolling := make([]opts.LineData, len(rows))
	budget := make([]opts.LineData, len(rows))
	for i, r := range rows {
		dates[i] = r.Date.Format(common.DateLayout)
		rolling[i] = opts.LineData{Value: r.RollingPR}
		budget[i] = opts.LineData{Value: r.BudgetPR}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Performance Ratio Evolution",
			Width:     "1200px",
			Height:    "700px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Performance Ratio Evolution",
			Subtitle: summaryText(summaries),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Performance Ratio (%)"}),
	)
	line.SetXAxis(dates)
	line.AddSeries("30-day Moving Average", rolling,
		charts.WithLineStyleOpts(opts.LineStyle{Color: "red"}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "red"}),
	)
	line.AddSeries("Budget PR", budget,
		charts.WithLineStyleOpts(opts.LineStyle{Color: "darkgreen"}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "darkgreen"}),
	)

	scatter := charts.NewScatter()
	scatter.SetXAxis(dates)
	buckets := []analysis.ColorBucket{analysis.Navy, analysis.LightBlue, analysis.Orange, analysis.Brown}
	for _, bucket := range buckets {
		var data []opts.ScatterData
		for _, r := range rows {
			if r.Bucket != bucket {
				continue
			}
			data = append(data, opts.ScatterData{
				Value:      []interface{}{r.Date.Format(common.DateLayout), r.PR},
				SymbolSize: 6,
			})
		}
		if len(data) == 0 {
			continue
		}
		scatter.AddSeries(seriesName(bucket), data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: bucket.String()}),
		)
	}

	line.Overlap(scatter)
	return line.Render(w)
}

// RenderChartFile renders the chart to an HTML file, creating parent
// directories as needed.
func RenderChartFile(path string, rows []analysis.Row, summaries []analysis.WindowSummary) error {
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
	return RenderChart(f, rows, summaries)
}

func summaryText(summaries []analysis.WindowSummary) string {
	parts := make([]string, 0, len(summaries))
	for _, s := range summaries {
		parts = append(parts, fmt.Sprintf("Avg PR (last %d days): %.2f", s.WindowDays, s.AveragePR))
	}
	return strings.Join(parts, " | ")
}

func seriesName(b analysis.ColorBucket) string {
	switch b {
	case analysis.Navy:
		return "GHI < 2"
	case analysis.LightBlue:
		return "GHI 2-4"
	case analysis.Orange:
		return "GHI 4-6"
	default:
		return "GHI >= 6"
	}
}
