package service_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkshelfapp/inkshelf-server/internal/assets"
	"github.com/inkshelfapp/inkshelf-server/internal/domain"
	"github.com/inkshelfapp/inkshelf-server/internal/dto"
	"github.com/inkshelfapp/inkshelf-server/internal/service"
	"github.com/inkshelfapp/inkshelf-server/internal/store"
)

// env bundles a full service stack over temp-dir storage.
type env struct {
	store     *store.Store
	blobs     *assets.DiskStore
	books     *service.BookService
	authors   *service.AuthorService
	categorys *service.CategoryService
	shopping  *service.ShoppingService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	tmp := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := store.New(filepath.Join(tmp, "db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	blobs, err := assets.NewDiskStore(filepath.Join(tmp, "assets"), "http://localhost:8080")
	require.NoError(t, err)

	cascade := service.NewCascader(s, blobs, logger)
	return &env{
		store:     s,
		blobs:     blobs,
		books:     service.NewBookService(s, blobs, cascade, logger, 0),
		authors:   service.NewAuthorService(s, blobs, cascade, logger),
		categorys: service.NewCategoryService(s, logger),
		shopping:  service.NewShoppingService(s, logger),
	}
}

// coverPNG renders a small valid PNG for cover uploads.
func coverPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 12), G: uint8(y * 8), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func bookFiles(t *testing.T) service.BookFiles {
	t.Helper()
	return service.BookFiles{
		Source: &service.Upload{Filename: "source.epub", ContentType: "application/epub+zip", Data: []byte("epub bytes")},
		Cover:  &service.Upload{Filename: "cover.png", ContentType: "image/png", Data: coverPNG(t)},
		Sample: &service.Upload{Filename: "sample.pdf", ContentType: "application/pdf", Data: []byte("pdf bytes")},
	}
}

func (e *env) createAuthor(t *testing.T, name string) *domain.Author {
	t.Helper()
	author, err := e.authors.CreateAuthor(context.Background(), service.CreateAuthorInput{Name: name}, nil)
	require.NoError(t, err)
	return author
}

func (e *env) createCategory(t *testing.T, title string) *domain.Category {
	t.Helper()
	category, err := e.categorys.CreateCategory(context.Background(), service.CreateCategoryInput{Title: title})
	require.NoError(t, err)
	return category
}

func (e *env) createBook(t *testing.T, title, author, category string, listPrice, discount float64) *dto.Book {
	t.Helper()
	book, err := e.books.CreateBook(context.Background(), service.CreateBookInput{
		Title:           title,
		Author:          author,
		Category:        category,
		ListPrice:       listPrice,
		DiscountPercent: discount,
	}, bookFiles(t))
	require.NoError(t, err)
	return book
}

// urlRetrievable checks a blob through the store's own read path.
func (e *env) urlRetrievable(url string) bool {
	rest, ok := strings.CutPrefix(url, "http://localhost:8080/assets/")
	if !ok {
		return false
	}
	namespace, key, ok := strings.Cut(rest, "/")
	if !ok {
		return false
	}
	_, _, err := e.blobs.Open(context.Background(), namespace, key)
	return err == nil
}
