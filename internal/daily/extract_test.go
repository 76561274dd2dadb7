package daily

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsol/solar-pr-lab/internal/common"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeGzFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return path
}

func extractAll(t *testing.T, dir, column string) []Record {
	t.Helper()
	stats := common.NewExtractStats(log.Printf)
	stats.SetSilent(true)
	records, err := Extract(dir, column, 4, stats)
	require.NoError(t, err)
	return records
}

func TestExtractSingleObservation(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2021-01-03.csv", "Date,GHI\n2021-01-03,4.5\n")

	records := extractAll(t, dir, "Ghi")
	require.Len(t, records, 1)
	assert.Equal(t, Day(2021, 1, 3), records[0].Obs.Date)
	assert.Equal(t, 4.5, records[0].Obs.Value)
}

func TestExtractSkipsNonDateFileNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.csv", "Date,GHI\n2021-01-03,4.5\n")
	writeFile(t, dir, "2021-13-99.csv", "Date,GHI\n2021-01-03,4.5\n")
	writeFile(t, dir, "notes.txt", "not a table")

	records := extractAll(t, dir, "Ghi")
	assert.Empty(t, records)
}

func TestExtractSkipsMissingColumns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2021-01-03.csv", "Date,Temperature\n2021-01-03,20.1\n")
	writeFile(t, dir, "2021-01-04.csv", "Timestamp,GHI\n2021-01-04,4.5\n")

	records := extractAll(t, dir, "Ghi")
	assert.Empty(t, records)
}

func TestExtractNoMatchingRow(t *testing.T) {
	dir := t.TempDir()
	// Rows exist but none carries the file-name date.
	writeFile(t, dir, "2021-01-03.csv", "Date,GHI\n2021-01-02,4.5\n2021-01-04,5.0\n")

	records := extractAll(t, dir, "Ghi")
	assert.Empty(t, records)
}

func TestExtractFirstMatchingRowWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2021-01-03.csv", "Date,GHI\n2021-01-03,1.0\n2021-01-03,9.0\n")

	records := extractAll(t, dir, "Ghi")
	require.Len(t, records, 1)
	assert.Equal(t, 1.0, records[0].Obs.Value)
}

func TestExtractIgnoresMalformedDateCells(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2021-01-03.csv", "Date,GHI\nnot-a-date,1.0\n2021-01-03,4.5\n")

	records := extractAll(t, dir, "Ghi")
	require.Len(t, records, 1)
	assert.Equal(t, 4.5, records[0].Obs.Value)
}

func TestExtractNormalizesHeaders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2021-01-03.csv", " DATE , ghi \n2021-01-03,4.5\n")

	records := extractAll(t, dir, "Ghi")
	require.Len(t, records, 1)
	assert.Equal(t, 4.5, records[0].Obs.Value)
}

func TestExtractWalksNestedDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, filepath.Join("2021", "01", "2021-01-03.csv"), "Date,PR\n2021-01-03,70.2\n")
	writeFile(t, dir, filepath.Join("2021", "02", "2021-02-01.csv"), "Date,PR\n2021-02-01,71.8\n")

	records := extractAll(t, dir, "Pr")
	assert.Len(t, records, 2)
}

func TestExtractReadsGzipFiles(t *testing.T) {
	dir := t.TempDir()
	writeGzFile(t, dir, "2021-01-03.csv.gz", "Date,GHI\n2021-01-03,3.3\n")

	records := extractAll(t, dir, "Ghi")
	require.Len(t, records, 1)
	assert.Equal(t, Day(2021, 1, 3), records[0].Obs.Date)
	assert.Equal(t, 3.3, records[0].Obs.Value)
}

func TestExtractAcceptsDateTimeCells(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2021-01-03.csv", "Date,GHI\n2021-01-03 00:00:00,2.2\n")

	records := extractAll(t, dir, "Ghi")
	require.Len(t, records, 1)
	assert.Equal(t, 2.2, records[0].Obs.Value)
}

func TestExtractStatsCounters(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2021-01-03.csv", "Date,GHI\n2021-01-03,4.5\n")
	writeFile(t, dir, "2021-01-04.csv", "Date,Temperature\n2021-01-04,20.0\n")
	writeFile(t, dir, "junk.csv", "Date,GHI\n2021-01-03,4.5\n")

	stats := common.NewExtractStats(nil)
	records, err := Extract(dir, "Ghi", 2, stats)
	require.NoError(t, err)

	assert.Len(t, records, 1)
	assert.Equal(t, uint64(2), stats.FilesScanned.Get())
	assert.Equal(t, uint64(2), stats.FilesSkipped.Get()) // bad name + bad columns
	assert.Equal(t, uint64(1), stats.Observations.Get())
}

func TestExtractMissingDirectory(t *testing.T) {
	stats := common.NewExtractStats(nil)
	_, err := Extract(filepath.Join(t.TempDir(), "nope"), "Ghi", 1, stats)
	assert.Error(t, err)
}

func TestNormalizeColumn(t *testing.T) {
	cases := map[string]string{
		" ghi ": "Ghi",
		"GHI":   "Ghi",
		"date":  "Date",
		"Pr":    "Pr",
		"  ":    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeColumn(in), "input %q", in)
	}
}
