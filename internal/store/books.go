package store

import (
	"context"

	"github.com/inkshelfapp/inkshelf-server/internal/domain"
)

// BooksByAuthor returns every book owned by the author, via the derived
// author index.
func (s *Store) BooksByAuthor(ctx context.Context, authorID string) ([]*domain.Book, error) {
	return s.Books.ListByIndex(ctx, "author", authorID)
}

// BooksByCategory returns every book shelved in the category.
func (s *Store) BooksByCategory(ctx context.Context, categoryID string) ([]*domain.Book, error) {
	return s.Books.ListByIndex(ctx, "category", categoryID)
}

// AuthorByName resolves an author by display name, case-insensitively.
func (s *Store) AuthorByName(ctx context.Context, name string) (*domain.Author, error) {
	return s.Authors.GetByIndex(ctx, "name", name)
}

// CategoryByTitle resolves a category by title, case-insensitively.
func (s *Store) CategoryByTitle(ctx context.Context, title string) (*domain.Category, error) {
	return s.Categories.GetByIndex(ctx, "title", title)
}
