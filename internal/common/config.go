// Package common provides shared configuration and telemetry for the
// solar-pr-lab applications.
package common

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the calendar date format used for file names, CSV cells,
// flags, and config values.
const DateLayout = "2006-01-02"

// BudgetConfig describes the declining annual PR target curve. The curve
// steps down by Decay once per year, anchored on July 1 of each year from
// FirstYear through LastYear.
type BudgetConfig struct {
	Base      float64 `yaml:"base"`
	Decay     float64 `yaml:"decay"`
	FirstYear int     `yaml:"first_year"`
	LastYear  int     `yaml:"last_year"`
}

// ClickHouseConfig holds warehouse connection settings for pr-ingest and
// the pr-serve ClickHouse source.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Database string `yaml:"database"`
	Table    string `yaml:"table"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Config holds common configuration for all applications.
type Config struct {
	GHIDir      string `yaml:"ghi_dir"`
	PRDir       string `yaml:"pr_dir"`
	OutputCSV   string `yaml:"output_csv"`
	OutputChart string `yaml:"output_chart"`
	StartDate   string `yaml:"start_date"`
	EndDate     string `yaml:"end_date"`
	Workers     int    `yaml:"workers"`
	ListenAddr  string `yaml:"listen_addr"`

	Budget     BudgetConfig     `yaml:"budget"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		GHIDir:      getEnv("SOLARPR_GHI_DIR", "GHI"),
		PRDir:       getEnv("SOLARPR_PR_DIR", "PR"),
		OutputCSV:   getEnv("SOLARPR_OUTPUT_CSV", "output/combined_data.csv"),
		OutputChart: getEnv("SOLARPR_OUTPUT_CHART", "output/pr_evolution.html"),
		StartDate:   "2019-07-01",
		EndDate:     "2022-03-24",
		Workers:     getEnvInt("SOLARPR_WORKERS", runtime.NumCPU()),
		ListenAddr:  getEnv("SOLARPR_LISTEN_ADDR", ":8080"),
		Budget: BudgetConfig{
			Base:      73.9,
			Decay:     0.992,
			FirstYear: 2019,
			LastYear:  2022,
		},
		ClickHouse: ClickHouseConfig{
			Host:     getEnv("CLICKHOUSE_HOST", "127.0.0.1:9000"),
			Database: getEnv("CLICKHOUSE_DATABASE", "solarpr"),
			Table:    getEnv("CLICKHOUSE_TABLE", "daily_series"),
			User:     getEnv("CLICKHOUSE_USER", "default"),
			Password: getEnv("CLICKHOUSE_PASSWORD", ""),
		},
	}
}

// LoadConfig returns the defaults overlaid with values from a YAML file.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate performs basic configuration validation.
func (c *Config) Validate() error {
	if c.GHIDir == "" {
		return fmt.Errorf("ghi_dir cannot be empty")
	}
	if c.PRDir == "" {
		return fmt.Errorf("pr_dir cannot be empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	start, end, err := c.DateRange()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("end_date %s is before start_date %s", c.EndDate, c.StartDate)
	}
	if c.Budget.Decay <= 0 || c.Budget.Decay > 1 {
		return fmt.Errorf("budget decay must be in (0, 1], got %g", c.Budget.Decay)
	}
	if c.Budget.LastYear < c.Budget.FirstYear {
		return fmt.Errorf("budget last_year %d is before first_year %d", c.Budget.LastYear, c.Budget.FirstYear)
	}
	return nil
}

// DateRange parses the configured inclusive analysis window.
func (c *Config) DateRange() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, c.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date '%s': %w", c.StartDate, err)
	}
	end, err := time.Parse(DateLayout, c.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date '%s': %w", c.EndDate, err)
	}
	return start, end, nil
}

// TableFQN returns the fully qualified warehouse table name.
func (c *ClickHouseConfig) TableFQN() string {
	return fmt.Sprintf("%s.%s", c.Database, c.Table)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
