package store

import (
	"context"
	"log/slog"

	"github.com/inkshelfapp/inkshelf-server/internal/domain"
)

// CartByUser returns the user's cart, or ErrNotFound if none exists yet.
func (s *Store) CartByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	return s.Carts.GetByIndex(ctx, "user", userID)
}

// FavoritesByUser returns the user's favorites list, or ErrNotFound.
func (s *Store) FavoritesByUser(ctx context.Context, userID string) (*domain.Favorites, error) {
	return s.Favorites.GetByIndex(ctx, "user", userID)
}

// OrdersByUser returns every order the user has placed.
func (s *Store) OrdersByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.Orders.ListByIndex(ctx, "user", userID)
}

// UserHasPurchased reports whether any of the user's orders contains the
// book. Linear scan over the user's order lines, short-circuiting on the
// first match; fine at catalog scale.
func (s *Store) UserHasPurchased(ctx context.Context, userID, bookID string) (bool, error) {
	orders, err := s.OrdersByUser(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, order := range orders {
		if order.Contains(bookID) {
			return true, nil
		}
	}
	return false, nil
}

// RemoveBookFromCarts pulls the book out of every cart system-wide.
// Carts that don't hold the book are untouched, which keeps the sweep
// idempotent for cascade retries. Returns the number of carts changed.
func (s *Store) RemoveBookFromCarts(ctx context.Context, bookID string) (int, error) {
	changed := 0
	for cart, err := range s.Carts.List(ctx) {
		if err != nil {
			return changed, err
		}
		ids, removed := domain.RemoveID(cart.BookIDs, bookID)
		if !removed {
			continue
		}
		cart.BookIDs = ids
		cart.Touch()
		if err := s.Carts.Update(ctx, cart.ID, cart); err != nil {
			return changed, err
		}
		changed++
	}

	if s.logger != nil && changed > 0 {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "book removed from carts",
			slog.String("book_id", bookID),
			slog.Int("carts", changed),
		)
	}
	return changed, nil
}

// RemoveBookFromFavorites pulls the book out of every favorites list
// system-wide. Same idempotency contract as RemoveBookFromCarts.
func (s *Store) RemoveBookFromFavorites(ctx context.Context, bookID string) (int, error) {
	changed := 0
	for fav, err := range s.Favorites.List(ctx) {
		if err != nil {
			return changed, err
		}
		ids, removed := domain.RemoveID(fav.BookIDs, bookID)
		if !removed {
			continue
		}
		fav.BookIDs = ids
		fav.Touch()
		if err := s.Favorites.Update(ctx, fav.ID, fav); err != nil {
			return changed, err
		}
		changed++
	}

	if s.logger != nil && changed > 0 {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "book removed from favorites",
			slog.String("book_id", bookID),
			slog.Int("lists", changed),
		)
	}
	return changed, nil
}
