package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	start, end, err := cfg.DateRange()
	require.NoError(t, err)
	assert.True(t, start.Before(end))
	assert.Equal(t, 73.9, cfg.Budget.Base)
	assert.Equal(t, 0.992, cfg.Budget.Decay)
}

func TestLoadConfigOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
ghi_dir: /data/ghi
pr_dir: /data/pr
start_date: "2020-01-01"
end_date: "2020-12-31"
workers: 2
budget:
  base: 80.0
  decay: 0.99
  first_year: 2020
  last_year: 2023
clickhouse:
  host: ch.example.com:9000
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/ghi", cfg.GHIDir)
	assert.Equal(t, "/data/pr", cfg.PRDir)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 80.0, cfg.Budget.Base)
	assert.Equal(t, "ch.example.com:9000", cfg.ClickHouse.Host)
	// Values not in the file keep their defaults.
	assert.Equal(t, "output/combined_data.csv", cfg.OutputCSV)
	assert.Equal(t, "solarpr.daily_series", cfg.ClickHouse.TableFQN())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"empty ghi_dir":   func(c *Config) { c.GHIDir = "" },
		"empty pr_dir":    func(c *Config) { c.PRDir = "" },
		"zero workers":    func(c *Config) { c.Workers = 0 },
		"bad start date":  func(c *Config) { c.StartDate = "01/02/2021" },
		"inverted range":  func(c *Config) { c.StartDate = "2022-01-01"; c.EndDate = "2021-01-01" },
		"zero decay":      func(c *Config) { c.Budget.Decay = 0 },
		"decay above one": func(c *Config) { c.Budget.Decay = 1.5 },
		"inverted years":  func(c *Config) { c.Budget.FirstYear = 2022; c.Budget.LastYear = 2019 },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}
