package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/collectiones/api/internal/config"
	"github.com/collectiones/api/internal/csvio"
	"github.com/collectiones/api/internal/database"
	"github.com/collectiones/api/internal/store"
	"github.com/collectiones/api/internal/txn"
)

func main() {
	// Parse command line flags
	filePath := flag.String("file", "data/collectiones.csv", "Path to CSV export to seed from")
	editor := flag.String("editor", "seed", "Editor name recorded in the edit history")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migration
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	file, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("Failed to open seed file: %v", err)
	}
	defer file.Close()

	// Seeding always persists, even when the server runs in demo mode.
	recordStore := store.New(db, txn.New(db, false))
	importer := csvio.NewImporter(recordStore)

	log.Printf("Seeding entries from %s", *filePath)
	report, err := importer.Import(context.Background(), file, *editor)
	if err != nil {
		log.Fatalf("Seed import failed: %v", err)
	}

	for _, rowErr := range report.RowErrors {
		log.Printf("Row %d: %s", rowErr.Row, rowErr.Reason)
	}
	if report.AbortReason != "" {
		log.Printf("Import aborted: %s", report.AbortReason)
	}
	log.Printf("Seeding complete. Created: %d, Updated: %d, Failed: %d",
		report.Created, report.Updated, report.Failed)
}
