package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/inkshelfapp/inkshelf-server/internal/errors"
	"github.com/inkshelfapp/inkshelf-server/internal/service"
)

func TestListBooks_OnSaleAndPriceSorts(t *testing.T) {
	e := newEnv(t)
	e.createAuthor(t, "A")
	e.createCategory(t, "C")
	ctx := context.Background()

	// A: price 10, no discount. B: price 20, 50% off -> sale 10.
	bookA := e.createBook(t, "Alpha", "A", "C", 10, 0)
	bookB := e.createBook(t, "Beta", "A", "C", 20, 50)

	onSale, err := e.books.ListBooks(ctx, service.ListBooksInput{SortBy: service.SortOnSale})
	require.NoError(t, err)
	require.Len(t, onSale.Items, 1)
	assert.Equal(t, bookB.ID, onSale.Items[0].ID)

	lowToHigh, err := e.books.ListBooks(ctx, service.ListBooksInput{SortBy: service.SortPriceLowToHigh})
	require.NoError(t, err)
	require.Len(t, lowToHigh.Items, 2)
	// Tie on sale price 10: both present, order follows the store.
	ids := []string{lowToHigh.Items[0].ID, lowToHigh.Items[1].ID}
	assert.ElementsMatch(t, []string{bookA.ID, bookB.ID}, ids)

	highToLow, err := e.books.ListBooks(ctx, service.ListBooksInput{SortBy: service.SortPriceHighToLow})
	require.NoError(t, err)
	require.Len(t, highToLow.Items, 2)
	assert.GreaterOrEqual(t, highToLow.Items[0].SalePrice, highToLow.Items[1].SalePrice)
}

func TestListBooks_PriceBoundsUseExactSalePrice(t *testing.T) {
	e := newEnv(t)
	e.createAuthor(t, "A")
	e.createCategory(t, "C")
	ctx := context.Background()

	// 9.99 at 33% off sells at exactly 9.99 * 0.67, not a cent-rounded 6.69.
	book := e.createBook(t, "Fraction", "A", "C", 9.99, 33)
	assert.InDelta(t, 9.99*(1-33.0/100), book.SalePrice, 1e-9)

	rounded := 6.69
	excluded, err := e.books.ListBooks(ctx, service.ListBooksInput{MaxPrice: &rounded})
	require.NoError(t, err)
	assert.Empty(t, excluded.Items)

	exact := 9.99 * (1 - 33.0/100)
	included, err := e.books.ListBooks(ctx, service.ListBooksInput{MinPrice: &exact, MaxPrice: &exact})
	require.NoError(t, err)
	assert.Len(t, included.Items, 1)
}

func TestListBooks_CreationTimeSorts(t *testing.T) {
	e := newEnv(t)
	e.createAuthor(t, "A")
	e.createCategory(t, "C")
	ctx := context.Background()

	first := e.createBook(t, "First", "A", "C", 5, 0)
	second := e.createBook(t, "Second", "A", "C", 5, 0)

	oldest, err := e.books.ListBooks(ctx, service.ListBooksInput{SortBy: service.SortOldest})
	require.NoError(t, err)
	require.Len(t, oldest.Items, 2)
	assert.Equal(t, first.ID, oldest.Items[0].ID)

	newest, err := e.books.ListBooks(ctx, service.ListBooksInput{SortBy: service.SortNewest})
	require.NoError(t, err)
	assert.Equal(t, second.ID, newest.Items[0].ID)
}

func TestListBooks_Filters(t *testing.T) {
	e := newEnv(t)
	e.createAuthor(t, "Jane Austen")
	e.createAuthor(t, "Mary Shelley")
	e.createCategory(t, "Classics")
	e.createCategory(t, "Horror")
	ctx := context.Background()

	e.createBook(t, "Persuasion", "Jane Austen", "Classics", 12, 0)
	e.createBook(t, "Frankenstein", "Mary Shelley", "Horror", 15, 20)

	byAuthor, err := e.books.ListBooks(ctx, service.ListBooksInput{Author: "Jane Austen"})
	require.NoError(t, err)
	require.Len(t, byAuthor.Items, 1)
	assert.Equal(t, "Persuasion", byAuthor.Items[0].Title)

	byCategory, err := e.books.ListBooks(ctx, service.ListBooksInput{Category: "Horror"})
	require.NoError(t, err)
	require.Len(t, byCategory.Items, 1)
	assert.Equal(t, "Frankenstein", byCategory.Items[0].Title)

	// Case-insensitive substring search on title.
	bySearch, err := e.books.ListBooks(ctx, service.ListBooksInput{Search: "FRANK"})
	require.NoError(t, err)
	require.Len(t, bySearch.Items, 1)

	// Inclusive sale-price bounds: Frankenstein sells at 12.
	minPrice, maxPrice := 12.0, 12.0
	byPrice, err := e.books.ListBooks(ctx, service.ListBooksInput{MinPrice: &minPrice, MaxPrice: &maxPrice})
	require.NoError(t, err)
	assert.Len(t, byPrice.Items, 2)

	// Unknown author matches nothing.
	empty, err := e.books.ListBooks(ctx, service.ListBooksInput{Author: "Nobody"})
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.Zero(t, empty.TotalPages)
}

func TestListBooks_NeverIncludesSource(t *testing.T) {
	e := newEnv(t)
	e.createAuthor(t, "A")
	e.createCategory(t, "C")
	ctx := context.Background()
	book := e.createBook(t, "Hidden Source", "A", "C", 10, 0)

	// Even a buyer's listing view is redacted.
	_, err := e.shopping.AddToCart(ctx, "buyer", book.ID)
	require.NoError(t, err)
	_, err = e.shopping.Checkout(ctx, "buyer")
	require.NoError(t, err)

	page, err := e.books.ListBooks(ctx, service.ListBooksInput{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Nil(t, page.Items[0].SourceAsset)
}

func TestListBooks_Pagination(t *testing.T) {
	e := newEnv(t)
	e.createAuthor(t, "A")
	e.createCategory(t, "C")
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		e.createBook(t, fmt.Sprintf("Book %02d", i), "A", "C", 10, 0)
	}

	page1, err := e.books.ListBooks(ctx, service.ListBooksInput{Page: 1})
	require.NoError(t, err)
	assert.Len(t, page1.Items, 12) // default limit
	assert.Equal(t, 3, page1.TotalPages)
	assert.Equal(t, 1, page1.CurrentPage)

	page3, err := e.books.ListBooks(ctx, service.ListBooksInput{Page: 3})
	require.NoError(t, err)
	assert.Len(t, page3.Items, 1)
	assert.Equal(t, 3, page3.CurrentPage)
}

func TestListBooks_UnknownSortRejected(t *testing.T) {
	e := newEnv(t)
	_, err := e.books.ListBooks(context.Background(), service.ListBooksInput{SortBy: "alphabetical"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}
