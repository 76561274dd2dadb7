package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsol/solar-pr-lab/internal/analysis"
	"github.com/gridsol/solar-pr-lab/internal/daily"
)

func chartFixture(t *testing.T) ([]analysis.Row, []analysis.WindowSummary) {
	t.Helper()
	rows := []daily.ReconciledRow{
		{Date: daily.Day(2021, 1, 3), GHI: 1.0, PR: 71.5},
		{Date: daily.Day(2021, 1, 4), GHI: 3.0, PR: 70.2},
		{Date: daily.Day(2021, 1, 5), GHI: 5.0, PR: 69.8},
		{Date: daily.Day(2021, 1, 6), GHI: 7.0, PR: 72.1},
	}
	analyzed, summaries, err := analysis.Analyze(rows, daily.Day(2021, 1, 1), daily.Day(2021, 1, 31), analysis.DefaultBudgetCurve())
	require.NoError(t, err)
	return analyzed, summaries
}

func TestRenderChart(t *testing.T) {
	analyzed, summaries := chartFixture(t)

	var buf bytes.Buffer
	require.NoError(t, RenderChart(&buf, analyzed, summaries))

	html := buf.String()
	assert.Contains(t, html, "Performance Ratio Evolution")
	assert.Contains(t, html, "30-day Moving Average")
	assert.Contains(t, html, "Budget PR")
	assert.Contains(t, html, "Avg PR (last 7 days)")
}

func TestRenderChartFile(t *testing.T) {
	analyzed, summaries := chartFixture(t)

	path := filepath.Join(t.TempDir(), "charts", "pr_evolution.html")
	require.NoError(t, RenderChartFile(path, analyzed, summaries))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
