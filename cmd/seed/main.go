// Package main provides a tool to seed the database with sample catalog data.
//
// This creates a handful of documents with extracted text, runs keyword
// tagging over them, and optionally files a few tag suggestions so the
// voting endpoints have something to show during development.
//
// Usage:
//
//	DB_PATH=~/jumpchain/catalog.db go run ./cmd/seed
//	DB_PATH=~/jumpchain/catalog.db go run ./cmd/seed --suggestions  # Also file sample suggestions
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jumpchainsearch/jumpchain-server/internal/domain"
	"github.com/jumpchainsearch/jumpchain-server/internal/id"
	"github.com/jumpchainsearch/jumpchain-server/internal/keywords"
	"github.com/jumpchainsearch/jumpchain-server/internal/logger"
	"github.com/jumpchainsearch/jumpchain-server/internal/service"
	"github.com/jumpchainsearch/jumpchain-server/internal/store"
	"github.com/jumpchainsearch/jumpchain-server/internal/store/sqlite"
	"github.com/jumpchainsearch/jumpchain-server/internal/validation"
)

var (
	withSuggestions = flag.Bool("suggestions", false, "Also file sample tag suggestions for voting")
	keywordsPath    = flag.String("keywords", "", "Path to a keyword definitions file (optional)")
)

type sample struct {
	name   string
	folder string
	drive  string
	text   string
}

var samples = []sample{
	{
		name:   "Skyrim Jumpchain",
		folder: "/Fantasy/Elder Scrolls",
		drive:  "Drive A",
		text: `Welcome to Skyrim, dragonborn. This jump drops you into a land of
dragons, magic and civil war.

Perks
Iron Will (100 CP)
Dragon Shout (400 CP)
Thu'um Mastery (600 CP)

Drawbacks
Arrow to the Knee (+100 CP)`,
	},
	{
		name:   "Generic Space Opera",
		folder: "/Sci-Fi/Generic",
		drive:  "Drive A",
		text: `A generic science fiction setting with starships, lasers and alien
empires. Build your fleet and conquer the galaxy.

Perks
Ace Pilot (200 CP)
Shield Engineer (400 CP)`,
	},
	{
		name:   "Pokemon Trainer Jump",
		folder: "/Anime/Pokemon",
		drive:  "Drive B",
		text: `Catch them all. You arrive in Kanto with a starter of your choice
and ten years to become champion.

Perks
Friend to All (100 CP)
Type Specialist (300 CP)`,
	},
	{
		name:   "Cosmic Warehouse Supplement",
		folder: "/Supplements",
		drive:  "Drive B",
		text: `The classic warehouse supplement. Spend WP on shelving, utilities
and portals between your properties.`,
	},
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/jumpchain/catalog.db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	nop := logger.NewNop()
	st, err := sqlite.Open(dbPath, nop.Logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	created := 0

	for _, s := range samples {
		driveFileID := "seed-" + id.MustGenerate(id.PrefixDrive)
		doc := &domain.Document{
			ID:            id.MustGenerate(id.PrefixDocument),
			DriveFileID:   driveFileID,
			Name:          s.name,
			FolderPath:    s.folder,
			SourceDrive:   s.drive,
			ExtractedText: s.text,
			SizeBytes:     int64(len(s.text)),
			FileFormat:    "pdf",
		}
		if err := st.CreateDocument(ctx, doc); err != nil {
			log.Printf("Failed to create %q: %v", s.name, err)
			continue
		}
		created++
		fmt.Printf("Created document: %s (%s)\n", doc.Name, doc.ID)
	}

	fmt.Printf("\nCreated %d documents\n", created)

	// Run keyword tagging so the documents carry tags out of the box.
	kw, err := keywords.NewStore(*keywordsPath, nop)
	if err != nil {
		log.Fatalf("Failed to load keyword tables: %v", err)
	}
	defer kw.Close()

	rules := service.NewTagRuleService(st, nop.Logger)
	tags := service.NewTagService(st, kw, rules, nop.Logger)

	report, err := tags.RegenerateAll(ctx)
	if err != nil {
		log.Fatalf("Failed to regenerate tags: %v", err)
	}
	fmt.Printf("Tagged %d documents, %d tags added\n", report.Documents, report.TagsAdded)

	if *withSuggestions {
		fileSuggestions(ctx, st, nop)
	}
}

// fileSuggestions creates a couple of pending tag suggestions from
// fictional users so the voting surface is populated.
func fileSuggestions(ctx context.Context, st *sqlite.Store, nop *logger.Logger) {
	voting := service.NewVotingService(st, validation.New(), nop.Logger)

	page, err := st.ListDocuments(ctx, store.PageParams{Page: 1, PageSize: 2})
	if err != nil || len(page.Items) == 0 {
		log.Printf("No documents to suggest tags for: %v", err)
		return
	}

	suggestions := []struct {
		tag      string
		category domain.TagCategory
		reason   string
	}{
		{"Dragons", domain.CategoryGenre, "Central to the setting"},
		{"Long", domain.CategorySize, "Over a hundred pages"},
	}

	for i, doc := range page.Items {
		sug := suggestions[i%len(suggestions)]
		created, err := voting.SuggestTag(ctx, service.SuggestTagInput{
			DocumentID:  doc.ID,
			TagName:     sug.tag,
			TagCategory: sug.category,
			Reason:      sug.reason,
			UserID:      fmt.Sprintf("seed-user-%d", i+1),
		})
		if err != nil {
			log.Printf("Failed to suggest %q on %s: %v", sug.tag, doc.Name, err)
			continue
		}
		fmt.Printf("Filed suggestion %s: %q on %s\n", created.ID, sug.tag, doc.Name)
	}
}
