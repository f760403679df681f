package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/inkshelfapp/inkshelf-server/internal/domain"
	"github.com/inkshelfapp/inkshelf-server/internal/dto"
	domainerrors "github.com/inkshelfapp/inkshelf-server/internal/errors"
	"github.com/inkshelfapp/inkshelf-server/internal/id"
	"github.com/inkshelfapp/inkshelf-server/internal/store"
)

// ShoppingService manages carts, favorites, and checkout. Orders are
// written once with snapshot line items (title, author, unit price at
// purchase time) and never mutated afterwards, so purchase history and
// the entitlement check survive catalog deletes.
type ShoppingService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewShoppingService creates a new shopping service.
func NewShoppingService(s *store.Store, logger *slog.Logger) *ShoppingService {
	return &ShoppingService{
		store:  s,
		logger: logger,
	}
}

// AddToCart puts a book in the user's cart, creating the cart on first
// use. Adding a book twice is a no-op.
func (s *ShoppingService) AddToCart(ctx context.Context, userID, bookID string) (*domain.Cart, error) {
	if err := s.checkBookExists(ctx, bookID); err != nil {
		return nil, err
	}

	cart, err := s.cartForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !cart.Contains(bookID) {
		cart.BookIDs = append(cart.BookIDs, bookID)
		cart.Touch()
		if err := s.store.Carts.Update(ctx, cart.ID, cart); err != nil {
			return nil, domainerrors.Persistence(err, "failed to update cart")
		}
	}
	return cart, nil
}

// RemoveFromCart takes a book out of the user's cart. Removing a book
// that isn't there is a no-op.
func (s *ShoppingService) RemoveFromCart(ctx context.Context, userID, bookID string) (*domain.Cart, error) {
	cart, err := s.cartForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids, removed := domain.RemoveID(cart.BookIDs, bookID)
	if removed {
		cart.BookIDs = ids
		cart.Touch()
		if err := s.store.Carts.Update(ctx, cart.ID, cart); err != nil {
			return nil, domainerrors.Persistence(err, "failed to update cart")
		}
	}
	return cart, nil
}

// GetCart returns the user's cart with its books resolved and redacted.
func (s *ShoppingService) GetCart(ctx context.Context, userID string) (*domain.Cart, []*dto.Book, error) {
	cart, err := s.cartForUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	books, err := s.resolveBooks(ctx, cart.BookIDs)
	if err != nil {
		return nil, nil, err
	}
	return cart, books, nil
}

// AddFavorite puts a book on the user's favorites list.
func (s *ShoppingService) AddFavorite(ctx context.Context, userID, bookID string) (*domain.Favorites, error) {
	if err := s.checkBookExists(ctx, bookID); err != nil {
		return nil, err
	}

	fav, err := s.favoritesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !fav.Contains(bookID) {
		fav.BookIDs = append(fav.BookIDs, bookID)
		fav.Touch()
		if err := s.store.Favorites.Update(ctx, fav.ID, fav); err != nil {
			return nil, domainerrors.Persistence(err, "failed to update favorites")
		}
	}
	return fav, nil
}

// RemoveFavorite takes a book off the user's favorites list.
func (s *ShoppingService) RemoveFavorite(ctx context.Context, userID, bookID string) (*domain.Favorites, error) {
	fav, err := s.favoritesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids, removed := domain.RemoveID(fav.BookIDs, bookID)
	if removed {
		fav.BookIDs = ids
		fav.Touch()
		if err := s.store.Favorites.Update(ctx, fav.ID, fav); err != nil {
			return nil, domainerrors.Persistence(err, "failed to update favorites")
		}
	}
	return fav, nil
}

// GetFavorites returns the user's favorites with books resolved.
func (s *ShoppingService) GetFavorites(ctx context.Context, userID string) (*domain.Favorites, []*dto.Book, error) {
	fav, err := s.favoritesForUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	books, err := s.resolveBooks(ctx, fav.BookIDs)
	if err != nil {
		return nil, nil, err
	}
	return fav, books, nil
}

// Checkout turns the user's cart into an order. Each line snapshots the
// book's title, author name, and sale price as of right now; the order
// then references the catalog only historically. The cart is emptied on
// success.
func (s *ShoppingService) Checkout(ctx context.Context, userID string) (*domain.Order, error) {
	cart, err := s.cartForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart.BookIDs) == 0 {
		return nil, domainerrors.Validation("cart is empty")
	}

	lines := make([]domain.OrderLine, 0, len(cart.BookIDs))
	total := 0.0
	for _, bookID := range cart.BookIDs {
		book, err := s.store.Books.Get(ctx, bookID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// The book vanished between carting and checkout; a
				// cascade sweep will pull it from the cart shortly.
				continue
			}
			return nil, domainerrors.Persistence(err, "failed to load cart item")
		}

		authorName := ""
		if author, err := s.store.Authors.Get(ctx, book.AuthorID); err == nil {
			authorName = author.Name
		}

		unitPrice := book.SalePrice()
		lines = append(lines, domain.OrderLine{
			BookID:     book.ID,
			Title:      book.Title,
			AuthorName: authorName,
			UnitPrice:  unitPrice,
		})
		total += unitPrice
	}
	if len(lines) == 0 {
		return nil, domainerrors.Validation("cart holds no purchasable books")
	}

	orderID, err := id.Generate("ord")
	if err != nil {
		return nil, domainerrors.Internal("failed to generate order id").WithCause(err)
	}

	order := &domain.Order{
		UserID:   userID,
		Lines:    lines,
		Total:    total,
		PlacedAt: time.Now(),
	}
	order.ID = orderID
	order.InitTimestamps()

	if err := s.store.Orders.Create(ctx, orderID, order); err != nil {
		return nil, domainerrors.Persistence(err, "failed to create order record")
	}

	cart.BookIDs = nil
	cart.Touch()
	if err := s.store.Carts.Update(ctx, cart.ID, cart); err != nil {
		// The order exists; an unemptied cart is an annoyance, not a
		// double charge. Surface it so the client can retry.
		return nil, domainerrors.Persistence(err, "order placed but cart not cleared")
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "order placed",
		slog.String("id", orderID),
		slog.String("user_id", userID),
		slog.Int("lines", len(lines)),
		slog.Float64("total", order.Total),
	)
	return order, nil
}

// ListOrders returns the user's order history, newest first.
func (s *ShoppingService) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	orders, err := s.store.OrdersByUser(ctx, userID)
	if err != nil {
		return nil, domainerrors.Persistence(err, "failed to list orders")
	}
	for i, j := 0, len(orders)-1; i < j; i, j = i+1, j-1 {
		orders[i], orders[j] = orders[j], orders[i]
	}
	return orders, nil
}

// cartForUser returns the user's cart, creating an empty one on first
// touch.
func (s *ShoppingService) cartForUser(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, domainerrors.Validation("requester id is required")
	}

	cart, err := s.store.CartByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Persistence(err, "failed to load cart")
	}

	cartID, err := id.Generate("cart")
	if err != nil {
		return nil, domainerrors.Internal("failed to generate cart id").WithCause(err)
	}
	cart = &domain.Cart{UserID: userID, BookIDs: []string{}}
	cart.ID = cartID
	cart.InitTimestamps()

	if err := s.store.Carts.Create(ctx, cartID, cart); err != nil {
		// Lost a race with another request for the same user; use theirs.
		if errors.Is(err, store.ErrAlreadyExists) {
			return s.store.CartByUser(ctx, userID)
		}
		return nil, domainerrors.Persistence(err, "failed to create cart")
	}
	return cart, nil
}

// favoritesForUser returns the user's favorites list, creating an empty
// one on first touch.
func (s *ShoppingService) favoritesForUser(ctx context.Context, userID string) (*domain.Favorites, error) {
	if userID == "" {
		return nil, domainerrors.Validation("requester id is required")
	}

	fav, err := s.store.FavoritesByUser(ctx, userID)
	if err == nil {
		return fav, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Persistence(err, "failed to load favorites")
	}

	favID, err := id.Generate("fav")
	if err != nil {
		return nil, domainerrors.Internal("failed to generate favorites id").WithCause(err)
	}
	fav = &domain.Favorites{UserID: userID, BookIDs: []string{}}
	fav.ID = favID
	fav.InitTimestamps()

	if err := s.store.Favorites.Create(ctx, favID, fav); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return s.store.FavoritesByUser(ctx, userID)
		}
		return nil, domainerrors.Persistence(err, "failed to create favorites")
	}
	return fav, nil
}

// checkBookExists verifies the book before referencing it in a list.
func (s *ShoppingService) checkBookExists(ctx context.Context, bookID string) error {
	_, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFoundf("book %s not found", bookID)
		}
		return domainerrors.Persistence(err, "failed to load book")
	}
	return nil
}

// resolveBooks loads and redacts the referenced books, skipping any
// that a cascade has already removed.
func (s *ShoppingService) resolveBooks(ctx context.Context, bookIDs []string) ([]*dto.Book, error) {
	views := make([]*dto.Book, 0, len(bookIDs))
	for _, bookID := range bookIDs {
		book, err := s.store.Books.Get(ctx, bookID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, domainerrors.Persistence(err, "failed to load book")
		}

		authorName := ""
		if author, err := s.store.Authors.Get(ctx, book.AuthorID); err == nil {
			authorName = author.Name
		}
		categoryTitle := ""
		if category, err := s.store.Categories.Get(ctx, book.CategoryID); err == nil {
			categoryTitle = category.Title
		}
		views = append(views, dto.NewBook(book, authorName, categoryTitle, false))
	}
	return views, nil
}
