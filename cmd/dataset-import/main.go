package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chrissnell/autosales/internal/dataset"
	"github.com/chrissnell/autosales/internal/log"
)

func main() {
	var (
		csvSource  = flag.String("csv", "", "Path or http(s) URL of the sales CSV (required)")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite database file (required)")
		force      = flag.Bool("force", false, "Overwrite existing SQLite database")
		dryRun     = flag.Bool("dry-run", false, "Parse the CSV and report what would be imported")
		debug      = flag.Bool("debug", false, "Turn on debugging output")
	)
	flag.Parse()

	if *csvSource == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -csv <historical_automobile_sales.csv> -sqlite <sales.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Check if SQLite file already exists
	if _, err := os.Stat(*sqliteFile); err == nil && !*force && !*dryRun {
		fmt.Fprintf(os.Stderr, "Error: SQLite file already exists: %s\n", *sqliteFile)
		fmt.Fprintf(os.Stderr, "Use -force to overwrite or choose a different filename\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fmt.Printf("Importing automobile sales into SQLite...\n")
	fmt.Printf("  Source: %s\n", *csvSource)
	fmt.Printf("  Target: %s\n", *sqliteFile)

	records, err := dataset.LoadCSV(ctx, *csvSource)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading CSV: %v\n", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Fprintf(os.Stderr, "Error: %v\n", dataset.ErrEmptyDataset)
		os.Exit(1)
	}

	store := dataset.NewStore(records, *csvSource)
	recessionRows := len(store.Filter(dataset.RecessionOnly))
	fmt.Printf("  Parsed %d records (%d in recession periods)\n", store.Len(), recessionRows)

	if *dryRun {
		fmt.Println("DRY RUN complete - no database created")
		return
	}

	if *force {
		if err := os.Remove(*sqliteFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error removing existing SQLite file: %v\n", err)
			os.Exit(1)
		}
	}
	if err := os.MkdirAll(filepath.Dir(*sqliteFile), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
		os.Exit(1)
	}

	n, err := dataset.ImportSQLite(ctx, *sqliteFile, records, log.GetSugaredLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing records: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Import completed successfully! %d records written.\n", n)
	fmt.Printf("Serve it with dataset.source: sqlite and dataset.path: %s\n", *sqliteFile)
}
