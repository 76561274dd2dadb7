// pr-ingest - merged GHI/PR series ingestion into ClickHouse
//
// Loads the combined series CSV produced by pr-report and inserts it into
// ClickHouse over the native protocol. ReplacingMergeTree on date keeps
// re-ingestion idempotent.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/pr-ingest ./cmd/pr-ingest

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ClickHouse/ch-go"
	"github.com/ClickHouse/ch-go/proto"

	"github.com/gridsol/solar-pr-lab/internal/common"
	"github.com/gridsol/solar-pr-lab/internal/daily"
	"github.com/gridsol/solar-pr-lab/internal/report"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

// SeriesBatch holds column data for native insert
type SeriesBatch struct {
	Date *proto.ColDate32
	GHI  *proto.ColFloat64
	PR   *proto.ColFloat64
}

func NewSeriesBatch() *SeriesBatch {
	return &SeriesBatch{
		Date: new(proto.ColDate32),
		GHI:  new(proto.ColFloat64),
		PR:   new(proto.ColFloat64),
	}
}

func (b *SeriesBatch) Reset() {
	b.Date.Reset()
	b.GHI.Reset()
	b.PR.Reset()
}

func (b *SeriesBatch) Len() int {
	return b.Date.Rows()
}

func (b *SeriesBatch) Input() proto.Input {
	return proto.Input{
		{Name: "date", Data: b.Date},
		{Name: "ghi", Data: b.GHI},
		{Name: "pr", Data: b.PR},
	}
}

func (b *SeriesBatch) AddRow(row daily.ReconciledRow) {
	b.Date.Append(row.Date)
	b.GHI.Append(row.GHI)
	b.PR.Append(row.PR)
}

func flushBatch(ctx context.Context, conn *ch.Client, tableFQN string, batch *SeriesBatch) error {
	if batch.Len() == 0 {
		return nil
	}

	query := fmt.Sprintf("INSERT INTO %s (date, ghi, pr) VALUES", tableFQN)
	return conn.Do(ctx, ch.Query{
		Body:  query,
		Input: batch.Input(),
	})
}

func createTable(ctx context.Context, conn *ch.Client, tableFQN string) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		date Date32,
		ghi  Float64,
		pr   Float64
	) ENGINE = ReplacingMergeTree ORDER BY date`, tableFQN)
	return conn.Do(ctx, ch.Query{Body: ddl})
}

func main() {
	defaults := common.DefaultConfig()

	chHost := flag.String("ch-host", defaults.ClickHouse.Host, "ClickHouse address")
	chDB := flag.String("ch-db", defaults.ClickHouse.Database, "ClickHouse database")
	chTable := flag.String("ch-table", defaults.ClickHouse.Table, "ClickHouse table")
	seriesCSV := flag.String("series-csv", defaults.OutputCSV, "Combined series CSV path")
	create := flag.Bool("create", false, "Create the table if it does not exist")
	truncate := flag.Bool("truncate", false, "Truncate table before insert")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pr-ingest v%s - GHI/PR Series Warehouse Ingester\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Ingests the merged daily series into ClickHouse.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	log.Println("=========================================================")
	log.Printf("PR Ingest v%s", Version)
	log.Println("=========================================================")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nShutdown requested...")
		cancel()
	}()

	rows, err := report.ReadCSV(*seriesCSV)
	if err != nil {
		log.Fatalf("Cannot load series: %v", err)
	}
	log.Printf("Loaded %d rows from %s", len(rows), *seriesCSV)

	log.Printf("Connecting to ClickHouse at %s...", *chHost)
	conn, err := ch.Dial(ctx, ch.Options{
		Address:     *chHost,
		Database:    *chDB,
		User:        defaults.ClickHouse.User,
		Password:    defaults.ClickHouse.Password,
		Compression: ch.CompressionLZ4,
	})
	if err != nil {
		log.Fatalf("ClickHouse connection failed: %v", err)
	}
	defer conn.Close()

	tableFQN := fmt.Sprintf("%s.%s", *chDB, *chTable)
	log.Printf("Table: %s", tableFQN)

	if *create {
		if err := createTable(ctx, conn, tableFQN); err != nil {
			log.Fatalf("Create table failed: %v", err)
		}
	}

	if *truncate {
		log.Printf("Truncating table %s...", tableFQN)
		if err := conn.Do(ctx, ch.Query{Body: fmt.Sprintf("TRUNCATE TABLE %s", tableFQN)}); err != nil {
			log.Printf("Truncate warning: %v", err)
		}
	}

	startTime := time.Now()

	batch := NewSeriesBatch()
	for _, row := range rows {
		batch.AddRow(row)
	}

	if err := flushBatch(ctx, conn, tableFQN, batch); err != nil {
		log.Fatalf("Insert error: %v", err)
	}

	elapsed := time.Since(startTime)

	log.Println("=========================================================")
	log.Println("Final Statistics")
	log.Println("=========================================================")
	log.Printf("Inserted Rows: %d", batch.Len())
	log.Printf("Elapsed:       %v", elapsed.Round(time.Millisecond))
	log.Println("=========================================================")
}
