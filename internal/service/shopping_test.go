package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/inkshelfapp/inkshelf-server/internal/errors"
	"github.com/inkshelfapp/inkshelf-server/internal/service"
)

func TestCart_AddRemove(t *testing.T) {
	e := newEnv(t)
	e.createAuthor(t, "A")
	e.createCategory(t, "C")
	book := e.createBook(t, "Carted", "A", "C", 10, 0)
	ctx := context.Background()

	cart, err := e.shopping.AddToCart(ctx, "u1", book.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{book.ID}, cart.BookIDs)

	// Adding twice is a no-op.
	cart, err = e.shopping.AddToCart(ctx, "u1", book.ID)
	require.NoError(t, err)
	assert.Len(t, cart.BookIDs, 1)

	cart, err = e.shopping.RemoveFromCart(ctx, "u1", book.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.BookIDs)

	// Removing again is still fine.
	_, err = e.shopping.RemoveFromCart(ctx, "u1", book.ID)
	assert.NoError(t, err)
}

func TestCart_UnknownBookRejected(t *testing.T) {
	e := newEnv(t)
	_, err := e.shopping.AddToCart(context.Background(), "u1", "book-missing")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestFavorites_AddRemove(t *testing.T) {
	e := newEnv(t)
	e.createAuthor(t, "A")
	e.createCategory(t, "C")
	book := e.createBook(t, "Loved", "A", "C", 10, 0)
	ctx := context.Background()

	fav, err := e.shopping.AddFavorite(ctx, "u1", book.ID)
	require.NoError(t, err)
	assert.True(t, fav.Contains(book.ID))

	fav, _, err = e.shopping.GetFavorites(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, fav.BookIDs, 1)

	fav, err = e.shopping.RemoveFavorite(ctx, "u1", book.ID)
	require.NoError(t, err)
	assert.Empty(t, fav.BookIDs)
}

func TestCheckout_SnapshotsLineItems(t *testing.T) {
	e := newEnv(t)
	e.createAuthor(t, "Snapshot Author")
	e.createCategory(t, "C")
	book := e.createBook(t, "Snapshot Title", "Snapshot Author", "C", 20, 50)
	ctx := context.Background()

	_, err := e.shopping.AddToCart(ctx, "u1", book.ID)
	require.NoError(t, err)

	order, err := e.shopping.Checkout(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, order.Lines, 1)

	line := order.Lines[0]
	assert.Equal(t, book.ID, line.BookID)
	assert.Equal(t, "Snapshot Title", line.Title)
	assert.Equal(t, "Snapshot Author", line.AuthorName)
	assert.InDelta(t, 10.0, line.UnitPrice, 1e-9) // sale price at purchase time
	assert.InDelta(t, 10.0, order.Total, 1e-9)

	// Cart is empty afterwards.
	cart, _, err := e.shopping.GetCart(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cart.BookIDs)

	// Later price changes don't rewrite history.
	newPrice := 99.0
	_, err = e.books.UpdateBook(ctx, book.ID, service.UpdateBookInput{ListPrice: &newPrice}, service.BookFiles{})
	require.NoError(t, err)

	orders, err := e.shopping.ListOrders(ctx, "u1")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, orders[0].Lines[0].UnitPrice, 1e-9)
}

func TestCheckout_EmptyCart(t *testing.T) {
	e := newEnv(t)
	_, err := e.shopping.Checkout(context.Background(), "u1")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}

func TestListOrders_NewestFirst(t *testing.T) {
	e := newEnv(t)
	e.createAuthor(t, "A")
	e.createCategory(t, "C")
	ctx := context.Background()

	first := e.createBook(t, "First Buy", "A", "C", 5, 0)
	second := e.createBook(t, "Second Buy", "A", "C", 7, 0)

	_, err := e.shopping.AddToCart(ctx, "u1", first.ID)
	require.NoError(t, err)
	_, err = e.shopping.Checkout(ctx, "u1")
	require.NoError(t, err)

	_, err = e.shopping.AddToCart(ctx, "u1", second.ID)
	require.NoError(t, err)
	_, err = e.shopping.Checkout(ctx, "u1")
	require.NoError(t, err)

	orders, err := e.shopping.ListOrders(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "Second Buy", orders[0].Lines[0].Title)
}
