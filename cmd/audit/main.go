package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/collectiones/api/internal/config"
	"github.com/collectiones/api/internal/greek"
	"github.com/collectiones/api/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Issue is one consistency problem found in a stored entry.
type Issue struct {
	EntryID uint   `json:"entry_id"`
	Ref     string `json:"ref"`
	Type    string `json:"type"`
	Details string `json:"details"`
}

func main() {
	fix := flag.Bool("fix", false, "Repair word counts and URNs in place")
	outputFile := flag.String("output", "audit_results.json", "Output file for results")
	flag.Parse()

	cfg := config.Load()
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var total int64
	db.Model(&model.Entry{}).Count(&total)
	fmt.Printf("Auditing %d entries...\n", total)

	var issues []Issue
	fixed := 0

	// Fetch entries in batches
	batchSize := 500
	offset := 0
	for {
		var entries []model.Entry
		result := db.Order("id ASC").Limit(batchSize).Offset(offset).Find(&entries)
		if result.Error != nil {
			log.Fatalf("Failed to fetch entries: %v", result.Error)
		}
		if len(entries) == 0 {
			break
		}

		for _, entry := range entries {
			entryIssues := auditEntry(entry)
			issues = append(issues, entryIssues...)
			if *fix && len(entryIssues) > 0 {
				if repairEntry(db, entry) {
					fixed++
				}
			}
		}
		offset += batchSize
	}

	fmt.Printf("Audit complete. Issues found: %d\n", len(issues))
	if *fix {
		fmt.Printf("Entries repaired: %d\n", fixed)
	}

	data, err := json.MarshalIndent(issues, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal results: %v", err)
	}
	if err := os.WriteFile(*outputFile, data, 0644); err != nil {
		log.Fatalf("Failed to write results: %v", err)
	}
	fmt.Printf("Results written to %s\n", *outputFile)
}

func auditEntry(entry model.Entry) []Issue {
	var issues []Issue

	if entry.Book < 0 || entry.Chapter < 0 {
		issues = append(issues, Issue{
			EntryID: entry.ID,
			Ref:     entry.Reference(),
			Type:    "negative_reference",
			Details: fmt.Sprintf("book=%d chapter=%d", entry.Book, entry.Chapter),
		})
	}

	if counted := greek.WordCount(entry.BodyGreek); counted != entry.WordCount {
		issues = append(issues, Issue{
			EntryID: entry.ID,
			Ref:     entry.Reference(),
			Type:    "word_count_drift",
			Details: fmt.Sprintf("stored=%d counted=%d", entry.WordCount, counted),
		})
	}

	expected := entry
	expected.URNCTS = ""
	expected.GenerateURN()
	if entry.URNCTS != expected.URNCTS {
		issues = append(issues, Issue{
			EntryID: entry.ID,
			Ref:     entry.Reference(),
			Type:    "urn_drift",
			Details: fmt.Sprintf("stored=%q expected=%q", entry.URNCTS, expected.URNCTS),
		})
	}

	return issues
}

// repairEntry rewrites derived fields directly; the edit history only
// tracks editorial changes, not maintenance.
func repairEntry(db *gorm.DB, entry model.Entry) bool {
	entry.WordCount = greek.WordCount(entry.BodyGreek)
	entry.URNCTS = ""
	entry.GenerateURN()

	err := db.Model(&model.Entry{}).Where("id = ?", entry.ID).Updates(map[string]any{
		"word_count": entry.WordCount,
		"urn_cts":    entry.URNCTS,
	}).Error
	if err != nil {
		log.Printf("Failed to repair entry %d: %v", entry.ID, err)
		return false
	}
	return true
}
