// pr-serve - HTTP viewer for the merged GHI/PR series
//
// Serves the reconciled daily series and its derived analytics over HTTP:
//
//	GET /api/series            merged (date, ghi, pr) rows
//	GET /api/analysis          derived rows + recent-window summaries
//	GET /chart                 rendered evolution chart (HTML)
//
// /api/analysis and /chart accept optional start/end query parameters
// (YYYY-MM-DD) overriding the configured range.
//
// The series comes from the combined CSV written by pr-report, or from
// ClickHouse (-source clickhouse) when the series was ingested by pr-ingest.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/pr-serve ./cmd/pr-serve

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/gridsol/solar-pr-lab/internal/analysis"
	"github.com/gridsol/solar-pr-lab/internal/common"
	"github.com/gridsol/solar-pr-lab/internal/daily"
	"github.com/gridsol/solar-pr-lab/internal/report"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

type server struct {
	rows  []daily.ReconciledRow
	curve analysis.BudgetCurve
	start time.Time
	end   time.Time
}

type apiRow struct {
	Date      string  `json:"date"`
	GHI       float64 `json:"ghi"`
	PR        float64 `json:"pr"`
	RollingPR float64 `json:"pr_rolling_mean,omitempty"`
	BudgetPR  float64 `json:"budget_pr,omitempty"`
	Color     string  `json:"color,omitempty"`
}

type analysisResponse struct {
	Rows      []apiRow            `json:"rows"`
	Summaries []windowSummaryJSON `json:"recent_windows"`
}

type windowSummaryJSON struct {
	WindowDays int     `json:"window_days"`
	AveragePR  float64 `json:"average_pr"`
}

func (s *server) handleSeries(c echo.Context) error {
	out := make([]apiRow, len(s.rows))
	for i, r := range s.rows {
		out[i] = apiRow{Date: r.Date.Format(common.DateLayout), GHI: r.GHI, PR: r.PR}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *server) analyzeRange(c echo.Context) ([]analysis.Row, []analysis.WindowSummary, error) {
	start, end := s.start, s.end
	if v := c.QueryParam("start"); v != "" {
		d, err := time.Parse(common.DateLayout, v)
		if err != nil {
			return nil, nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid start date '%s'", v))
		}
		start = d
	}
	if v := c.QueryParam("end"); v != "" {
		d, err := time.Parse(common.DateLayout, v)
		if err != nil {
			return nil, nil, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid end date '%s'", v))
		}
		end = d
	}

	rows, summaries, err := analysis.Analyze(s.rows, start, end, s.curve)
	if errors.Is(err, analysis.ErrEmptyRange) {
		return nil, nil, echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return nil, nil, err
	}
	return rows, summaries, nil
}

func (s *server) handleAnalysis(c echo.Context) error {
	rows, summaries, err := s.analyzeRange(c)
	if err != nil {
		return err
	}

	resp := analysisResponse{
		Rows:      make([]apiRow, len(rows)),
		Summaries: make([]windowSummaryJSON, len(summaries)),
	}
	for i, r := range rows {
		resp.Rows[i] = apiRow{
			Date:      r.Date.Format(common.DateLayout),
			GHI:       r.GHI,
			PR:        r.PR,
			RollingPR: r.RollingPR,
			BudgetPR:  r.BudgetPR,
			Color:     r.Bucket.String(),
		}
	}
	for i, w := range summaries {
		resp.Summaries[i] = windowSummaryJSON{WindowDays: w.WindowDays, AveragePR: w.AveragePR}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *server) handleChart(c echo.Context) error {
	rows, summaries, err := s.analyzeRange(c)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return report.RenderChart(c.Response(), rows, summaries)
}

// loadFromClickHouse reads the ingested series back from the warehouse.
func loadFromClickHouse(ctx context.Context, cfg common.ClickHouseConfig) ([]daily.ReconciledRow, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Host},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse connection failed: %w", err)
	}
	defer conn.Close()

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse ping failed: %w", err)
	}

	query := fmt.Sprintf("SELECT date, ghi, pr FROM %s FINAL ORDER BY date", cfg.TableFQN())
	result, err := conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	var rows []daily.ReconciledRow
	for result.Next() {
		var (
			d      time.Time
			ghi, p float64
		)
		if err := result.Scan(&d, &ghi, &p); err != nil {
			return nil, err
		}
		rows = append(rows, daily.ReconciledRow{
			Date: daily.Day(d.Year(), d.Month(), d.Day()),
			GHI:  ghi,
			PR:   p,
		})
	}
	return rows, result.Err()
}

func main() {
	defaults := common.DefaultConfig()

	configPath := flag.String("config", "", "Optional YAML config file")
	listenAddr := flag.String("listen", defaults.ListenAddr, "HTTP listen address")
	source := flag.String("source", "csv", "Series source: csv or clickhouse")
	seriesCSV := flag.String("series-csv", defaults.OutputCSV, "Combined series CSV path")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pr-serve v%s - GHI/PR Series Viewer\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Serves the merged series, analytics, and evolution chart over HTTP.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	cfg := defaults
	if *configPath != "" {
		loaded, err := common.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Config error: %v", err)
		}
		cfg = loaded
	}
	start, end, err := cfg.DateRange()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	log.Println("=========================================================")
	log.Printf("PR Serve v%s", Version)
	log.Println("=========================================================")
	log.Printf("Source: %s", *source)

	var rows []daily.ReconciledRow
	switch *source {
	case "csv":
		rows, err = report.ReadCSV(*seriesCSV)
	case "clickhouse":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		rows, err = loadFromClickHouse(ctx, cfg.ClickHouse)
		cancel()
	default:
		log.Fatalf("Unknown source: %s", *source)
	}
	if err != nil {
		log.Fatalf("Cannot load series: %v", err)
	}
	log.Printf("Loaded %d rows", len(rows))

	srv := &server{
		rows:  rows,
		curve: analysis.NewBudgetCurve(cfg.Budget),
		start: start,
		end:   end,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/api/series", srv.handleSeries)
	e.GET("/api/analysis", srv.handleAnalysis)
	e.GET("/chart", srv.handleChart)

	log.Printf("Listening on %s", *listenAddr)
	log.Fatal(e.Start(*listenAddr))
}
