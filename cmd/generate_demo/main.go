// Command generate_demo creates a demo database with a small manga shelf.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/mrlokans/mangashelf/internal/catalog"
	"github.com/mrlokans/mangashelf/internal/config"
	"github.com/mrlokans/mangashelf/internal/database"
	"github.com/mrlokans/mangashelf/internal/entities"
	"github.com/mrlokans/mangashelf/internal/loans"
	"github.com/mrlokans/mangashelf/internal/logging"
)

const defaultDemoDatabasePath = "./demo/demo.db"

const demoUserID uint = config.DefaultUserID

type demoSeries struct {
	Title     string
	Authors   []string
	Status    entities.SeriesStatus
	Total     int
	Publisher string
	Owned     []int
	Wanted    []int
	Lent      map[string][]int // borrower -> volume numbers
}

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
		log.Fatalf("Failed to create demo directory: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	logger := logging.Discard()
	// Demo volumes are local, so no provider is ever consulted.
	catalogService := catalog.NewService(database.NewCatalogStore(db.DB), nil, nil, logger, catalog.Options{})
	loanEngine := loans.NewEngine(database.NewLoanStore(db.DB), logger)

	if err := db.DB.Create(&entities.User{ID: demoUserID, Username: "demo"}).Error; err != nil {
		log.Fatalf("Failed to create demo user: %v", err)
	}

	var volumeCount, loanCount int
	for _, s := range demoShelf() {
		total := s.Total
		series := &entities.Series{Title: s.Title, Authors: s.Authors, Status: s.Status, TotalVolumes: &total}
		if err := db.DB.Create(series).Error; err != nil {
			log.Fatalf("Failed to create series %q: %v", s.Title, err)
		}
		edition := &entities.Edition{SeriesID: series.ID, Name: "Standard", Publisher: s.Publisher, Language: "fr"}
		if err := db.DB.Create(edition).Error; err != nil {
			log.Fatalf("Failed to create edition for %q: %v", s.Title, err)
		}

		owned, err := catalogService.AddLocalVolumesToEdition(ctx, edition.ID, s.Owned, demoUserID)
		if err != nil {
			log.Fatalf("Failed to add volumes of %q: %v", s.Title, err)
		}
		volumeCount += len(owned)

		byNumber := make(map[int]uint, len(owned))
		for _, v := range owned {
			if v.Number != nil {
				byNumber[*v.Number] = v.ID
			}
		}

		for borrower, numbers := range s.Lent {
			ids := make([]uint, 0, len(numbers))
			for _, n := range numbers {
				ids = append(ids, byNumber[n])
			}
			lent, err := loanEngine.BulkLoan(ctx, demoUserID, ids, borrower, "demo loan")
			if err != nil {
				log.Fatalf("Failed to lend %q volumes to %s: %v", s.Title, borrower, err)
			}
			loanCount += len(lent)
		}

		for _, n := range s.Wanted {
			number := n
			wanted := &entities.Volume{EditionID: edition.ID, Number: &number, Title: s.Title, Authors: s.Authors}
			if err := db.DB.Create(wanted).Error; err != nil {
				log.Fatalf("Failed to create wanted volume: %v", err)
			}
			if err := catalogService.AddToWishlist(ctx, demoUserID, wanted.ID); err != nil {
				log.Fatalf("Failed to wishlist volume: %v", err)
			}
		}
	}

	log.Printf("Demo database created: %d volumes owned, %d on loan", volumeCount, loanCount)
}

func demoShelf() []demoSeries {
	return []demoSeries{
		{
			Title:     "Naruto",
			Authors:   []string{"Masashi Kishimoto"},
			Status:    entities.SeriesStatusCompleted,
			Total:     72,
			Publisher: "Kana",
			Owned:     []int{1, 2, 3, 4, 5, 6},
			Wanted:    []int{7, 8},
			Lent:      map[string][]int{"Alice": {1, 2}},
		},
		{
			Title:     "One Piece",
			Authors:   []string{"Eiichiro Oda"},
			Status:    entities.SeriesStatusOngoing,
			Total:     108,
			Publisher: "Glénat",
			Owned:     []int{1, 2, 3},
			Lent:      map[string][]int{"Bob": {3}},
		},
		{
			Title:     "Berserk",
			Authors:   []string{"Kentaro Miura"},
			Status:    entities.SeriesStatusHiatus,
			Total:     42,
			Publisher: "Glénat",
			Owned:     []int{1},
			Wanted:    []int{2, 3},
		},
	}
}
