package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsol/solar-pr-lab/internal/daily"
)

func sampleSeries() []daily.ReconciledRow {
	return []daily.ReconciledRow{
		{Date: daily.Day(2021, 1, 3), GHI: 3.25, PR: 71.5},
		{Date: daily.Day(2021, 1, 4), GHI: 5.0, PR: 70.25},
		{Date: daily.Day(2021, 1, 5), GHI: 1.5, PR: 69},
	}
}

func TestWriteAndReadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "combined.csv")
	rows := sampleSeries()

	require.NoError(t, WriteCSV(path, rows))

	got, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestWriteCSVHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "combined.csv")
	require.NoError(t, WriteCSV(path, sampleSeries()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Date,GHI,PR", lines[0])
	assert.Equal(t, "2021-01-03,3.25,71.5", lines[1])
}

func TestReadCSVRejectsBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("foo,bar\n1,2\n"), 0o644))

	_, err := ReadCSV(path)
	assert.Error(t, err)
}

func TestReadCSVRejectsBadCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,GHI,PR\n2021-01-03,oops,71.5\n"), 0o644))

	_, err := ReadCSV(path)
	assert.Error(t, err)
}

func TestWriteCSVEmptySeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, WriteCSV(path, nil))

	got, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}
