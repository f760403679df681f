package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/inkshelfapp/inkshelf-server/internal/errors"
	"github.com/inkshelfapp/inkshelf-server/internal/service"
)

func TestCreateBook_FullFlow(t *testing.T) {
	e := newEnv(t)
	e.createAuthor(t, "Ursula K. Le Guin")
	e.createCategory(t, "Science Fiction")

	book := e.createBook(t, "The Dispossessed", "Ursula K. Le Guin", "Science Fiction", 20, 50)

	assert.True(t, book.AssetsComplete())
	assert.InDelta(t, 10.0, book.SalePrice, 1e-9)
	assert.Equal(t, "Ursula K. Le Guin", book.AuthorName)
	assert.Equal(t, "Science Fiction", book.CategoryTitle)
	assert.NotEmpty(t, book.CoverBlurHash)
	require.NotNil(t, book.SourceAsset) // creator sees the source slot

	// All three blobs are retrievable under id-derived keys.
	assert.True(t, e.urlRetrievable(book.SourceAsset.URL))
	assert.True(t, e.urlRetrievable(book.CoverAsset.URL))
	assert.True(t, e.urlRetrievable(book.SampleAsset.URL))
	assert.Contains(t, book.CoverAsset.URL, "/assets/covers/"+book.ID+"/cover-")
}

func TestCreateBook_MissingFileLeavesNoRecord(t *testing.T) {
	e := newEnv(t)
	e.createAuthor(t, "A")
	e.createCategory(t, "C")
	ctx := context.Background()

	files := bookFiles(t)
	files.Sample = nil

	_, err := e.books.CreateBook(ctx, service.CreateBookInput{
		Title: "Partial", Author: "A", Category: "C", ListPrice: 5,
	}, files)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	// Zero persisted records.
	page, err := e.books.ListBooks(ctx, service.ListBooksInput{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestCreateBook_UnknownAuthorOrCategory(t *testing.T) {
	e := newEnv(t)
	e.createAuthor(t, "Known Author")
	e.createCategory(t, "Known Category")
	ctx := context.Background()

	_, err := e.books.CreateBook(ctx, service.CreateBookInput{
		Title: "X", Author: "Nobody", Category: "Known Category", ListPrice: 5,
	}, bookFiles(t))
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	_, err = e.books.CreateBook(ctx, service.CreateBookInput{
		Title: "X", Author: "Known Author", Category: "Nowhere", ListPrice: 5,
	}, bookFiles(t))
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestCreateBook_CoverMustBeImage(t *testing.T) {
	e := newEnv(t)
	e.createAuthor(t, "A")
	e.createCategory(t, "C")

	files := bookFiles(t)
	files.Cover = &service.Upload{Filename: "cover.png", ContentType: "image/png", Data: []byte("not an image")}

	_, err := e.books.CreateBook(context.Background(), service.CreateBookInput{
		Title: "X", Author: "A", Category: "C", ListPrice: 5,
	}, files)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestGetBook_AccessProjection(t *testing.T) {
	e := newEnv(t)
	e.createAuthor(t, "A")
	e.createCategory(t, "C")
	book := e.createBook(t, "Gated", "A", "C", 10, 0)
	ctx := context.Background()

	// No requester: source redacted.
	view, err := e.books.GetBook(ctx, book.ID, "")
	require.NoError(t, err)
	assert.Nil(t, view.SourceAsset)

	// Requester without a qualifying order: still redacted.
	view, err = e.books.GetBook(ctx, book.ID, "user-1")
	require.NoError(t, err)
	assert.Nil(t, view.SourceAsset)

	// Purchase the book, then the source appears.
	_, err = e.shopping.AddToCart(ctx, "user-1", book.ID)
	require.NoError(t, err)
	_, err = e.shopping.Checkout(ctx, "user-1")
	require.NoError(t, err)

	view, err = e.books.GetBook(ctx, book.ID, "user-1")
	require.NoError(t, err)
	require.NotNil(t, view.SourceAsset)

	// A different user remains redacted.
	view, err = e.books.GetBook(ctx, book.ID, "user-2")
	require.NoError(t, err)
	assert.Nil(t, view.SourceAsset)
}

func TestGetBook_NotFound(t *testing.T) {
	e := newEnv(t)
	_, err := e.books.GetBook(context.Background(), "book-missing", "")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestUpdateBook_PriceRecomputedFromPersistedField(t *testing.T) {
	e := newEnv(t)
	e.createAuthor(t, "A")
	e.createCategory(t, "C")
	book := e.createBook(t, "Priced", "A", "C", 20, 0)
	ctx := context.Background()

	// Only the discount changes; the list price is read from the record.
	discount := 25.0
	updated, err := e.books.UpdateBook(ctx, book.ID, service.UpdateBookInput{DiscountPercent: &discount}, service.BookFiles{})
	require.NoError(t, err)
	assert.InDelta(t, 15.0, updated.SalePrice, 1e-9)

	// Only the list price changes; the discount persists.
	price := 40.0
	updated, err = e.books.UpdateBook(ctx, book.ID, service.UpdateBookInput{ListPrice: &price}, service.BookFiles{})
	require.NoError(t, err)
	assert.InDelta(t, 30.0, updated.SalePrice, 1e-9)
}

func TestUpdateBook_CoverReplacementDeletesOldBlob(t *testing.T) {
	e := newEnv(t)
	e.createAuthor(t, "A")
	e.createCategory(t, "C")
	book := e.createBook(t, "Recovered", "A", "C", 10, 0)
	ctx := context.Background()

	oldCoverURL := book.CoverAsset.URL
	oldSourceURL := book.SourceAsset.URL
	oldSampleURL := book.SampleAsset.URL

	newCover := append(coverPNG(t), 0) // trailing byte changes the content hash
	updated, err := e.books.UpdateBook(ctx, book.ID, service.UpdateBookInput{}, service.BookFiles{
		Cover: &service.Upload{Filename: "new cover.png", ContentType: "image/png", Data: newCover},
	})
	require.NoError(t, err)

	// New URL differs, old blob is gone, the new one is retrievable.
	assert.NotEqual(t, oldCoverURL, updated.CoverAsset.URL)
	assert.False(t, e.urlRetrievable(oldCoverURL))
	assert.True(t, e.urlRetrievable(updated.CoverAsset.URL))

	// Untouched slots keep their URLs.
	assert.Equal(t, oldSampleURL, updated.SampleAsset.URL)
	require.NotNil(t, updated.SourceAsset)
	assert.Equal(t, oldSourceURL, updated.SourceAsset.URL)
}

func TestUpdateBook_NotFound(t *testing.T) {
	e := newEnv(t)
	_, err := e.books.UpdateBook(context.Background(), "book-missing", service.UpdateBookInput{}, service.BookFiles{})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestDeleteBook_Cascade(t *testing.T) {
	e := newEnv(t)
	e.createAuthor(t, "A")
	e.createCategory(t, "C")
	book := e.createBook(t, "Doomed", "A", "C", 10, 0)
	keeper := e.createBook(t, "Keeper", "A", "C", 10, 0)
	ctx := context.Background()

	// Reference the book from a cart, a favorites list, and an order.
	_, err := e.shopping.AddToCart(ctx, "buyer", book.ID)
	require.NoError(t, err)
	_, err = e.shopping.Checkout(ctx, "buyer")
	require.NoError(t, err)

	_, err = e.shopping.AddToCart(ctx, "shopper", book.ID)
	require.NoError(t, err)
	_, err = e.shopping.AddFavorite(ctx, "fan", book.ID)
	require.NoError(t, err)

	sourceURL := book.SourceAsset.URL
	coverURL := book.CoverAsset.URL
	sampleURL := book.SampleAsset.URL

	require.NoError(t, e.books.DeleteBook(ctx, book.ID))

	// Record gone.
	_, err = e.books.GetBook(ctx, book.ID, "")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	// Blobs unretrievable.
	assert.False(t, e.urlRetrievable(sourceURL))
	assert.False(t, e.urlRetrievable(coverURL))
	assert.False(t, e.urlRetrievable(sampleURL))

	// Cart and favorites no longer reference it.
	cart, _, err := e.shopping.GetCart(ctx, "shopper")
	require.NoError(t, err)
	assert.NotContains(t, cart.BookIDs, book.ID)
	fav, _, err := e.shopping.GetFavorites(ctx, "fan")
	require.NoError(t, err)
	assert.NotContains(t, fav.BookIDs, book.ID)

	// Order history keeps its snapshot line.
	orders, err := e.shopping.ListOrders(ctx, "buyer")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Lines, 1)
	assert.Equal(t, "Doomed", orders[0].Lines[0].Title)
	assert.Equal(t, book.ID, orders[0].Lines[0].BookID)

	// Deleting is scoped: the other book is untouched.
	_, err = e.books.GetBook(ctx, keeper.ID, "")
	assert.NoError(t, err)

	// Re-running the delete reports not found, not a crash.
	err = e.books.DeleteBook(ctx, book.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}
