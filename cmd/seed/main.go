// Package main provides a tool to seed the database with a sample catalog.
//
// Usage:
//
//	DATA_PATH=~/Inkshelf/db ASSET_PATH=~/Inkshelf/assets go run ./cmd/seed
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"os"

	"github.com/inkshelfapp/inkshelf-server/internal/assets"
	"github.com/inkshelfapp/inkshelf-server/internal/service"
	"github.com/inkshelfapp/inkshelf-server/internal/store"
)

var baseURL = flag.String("base-url", "http://localhost:8080", "Public base URL for asset links")

type seedBook struct {
	title    string
	author   string
	category string
	price    float64
	discount float64
}

var catalog = []seedBook{
	{"The Paper Harbor", "Mara Ellison", "Literary Fiction", 18.99, 0},
	{"Saltwater Letters", "Mara Ellison", "Literary Fiction", 14.50, 20},
	{"Signals From the Deep", "Tomas Reyes", "Science Fiction", 22.00, 0},
	{"The Orbital Garden", "Tomas Reyes", "Science Fiction", 19.99, 35},
	{"Knife of the Northern Court", "Ida Brandt", "Fantasy", 24.99, 10},
	{"A Field Guide to Vanishing", "Ida Brandt", "Fantasy", 12.00, 0},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Inkshelf/db")
	}
	assetPath := os.Getenv("ASSET_PATH")
	if assetPath == "" {
		assetPath = os.ExpandEnv("$HOME/Inkshelf/assets")
	}

	fmt.Printf("Opening database at: %s\n", dataPath)

	s, err := store.New(dataPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	blobs, err := assets.NewDiskStore(assetPath, *baseURL)
	if err != nil {
		log.Fatalf("Failed to open asset store: %v", err)
	}

	logger := slog.Default()
	cascade := service.NewCascader(s, blobs, logger)
	books := service.NewBookService(s, blobs, cascade, logger, 0)
	authors := service.NewAuthorService(s, blobs, cascade, logger)
	categories := service.NewCategoryService(s, logger)

	ctx := context.Background()

	authorIDs := map[string]string{}
	categoryIDs := map[string]string{}

	for i, entry := range catalog {
		if _, ok := authorIDs[entry.author]; !ok {
			author, err := authors.CreateAuthor(ctx, service.CreateAuthorInput{
				Name: entry.author,
				Bio:  "Sample author seeded for local development.",
			}, nil)
			if err != nil {
				log.Fatalf("Failed to create author %q: %v", entry.author, err)
			}
			authorIDs[entry.author] = author.ID
			fmt.Printf("Created author %s (%s)\n", author.Name, author.ID)
		}

		if _, ok := categoryIDs[entry.category]; !ok {
			category, err := categories.CreateCategory(ctx, service.CreateCategoryInput{
				Title: entry.category,
			})
			if err != nil {
				log.Fatalf("Failed to create category %q: %v", entry.category, err)
			}
			categoryIDs[entry.category] = category.ID
			fmt.Printf("Created category %s (%s)\n", category.Title, category.ID)
		}

		book, err := books.CreateBook(ctx, service.CreateBookInput{
			Title:           entry.title,
			Description:     "Seeded sample book.",
			Author:          authorIDs[entry.author],
			Category:        categoryIDs[entry.category],
			ListPrice:       entry.price,
			DiscountPercent: entry.discount,
		}, service.BookFiles{
			Source: &service.Upload{Filename: "book.epub", ContentType: "application/epub+zip", Data: []byte("seeded source for " + entry.title)},
			Cover:  &service.Upload{Filename: "cover.png", ContentType: "image/png", Data: seedCover(i)},
			Sample: &service.Upload{Filename: "sample.pdf", ContentType: "application/pdf", Data: []byte("seeded sample for " + entry.title)},
		})
		if err != nil {
			log.Fatalf("Failed to create book %q: %v", entry.title, err)
		}
		fmt.Printf("Created book %s (%s) at %.2f\n", book.Title, book.ID, book.SalePrice)
	}

	fmt.Printf("\nSeeded %d books, %d authors, %d categories\n", len(catalog), len(authorIDs), len(categoryIDs))
}

// seedCover renders a small flat-color PNG so every book gets a
// distinct cover and blur hash.
func seedCover(i int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 48, 64))
	base := color.RGBA{R: uint8(40 * (i + 1)), G: uint8(90 + 20*i), B: uint8(200 - 25*i), A: 255}
	for x := 0; x < 48; x++ {
		for y := 0; y < 64; y++ {
			img.Set(x, y, base)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
