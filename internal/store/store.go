// Package store persists catalog records in a Badger key-value database.
// Each collection is a generic Entity with secondary indexes; reverse
// lookups (books by author, orders by user) are derived indexes, not
// back-reference lists on the records themselves.
package store

import (
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/inkshelfapp/inkshelf-server/internal/domain"
)

// Collection key prefixes.
const (
	bookPrefix      = "book:"
	authorPrefix    = "author:"
	categoryPrefix  = "category:"
	cartPrefix      = "cart:"
	favoritesPrefix = "favorites:"
	orderPrefix     = "order:"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	Books      *Entity[domain.Book]
	Authors    *Entity[domain.Author]
	Categories *Entity[domain.Category]
	Carts      *Entity[domain.Cart]
	Favorites  *Entity[domain.Favorites]
	Orders     *Entity[domain.Order]
}

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:     db,
		logger: logger,
	}

	store.initBooks()
	store.initAuthors()
	store.initCategories()
	store.initShopping()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Ping verifies the database is accessible by opening a read
// transaction. Used by the health endpoint.
func (s *Store) Ping() error {
	return s.db.View(func(_ *badger.Txn) error { return nil })
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// initBooks initializes the Books entity on the store.
// Author and category membership are multi indexes derived from the
// book's own foreign keys, so no other record needs editing on writes.
func (s *Store) initBooks() {
	s.Books = NewEntity[domain.Book](s, bookPrefix).
		WithMultiIndex("author", func(b *domain.Book) []string {
			return []string{b.AuthorID}
		}).
		WithMultiIndex("category", func(b *domain.Book) []string {
			return []string{b.CategoryID}
		})
}

// initAuthors initializes the Authors entity on the store.
// Uses case-insensitive name indexing so "jane austen" and "Jane Austen"
// resolve to the same author.
func (s *Store) initAuthors() {
	s.Authors = NewEntity[domain.Author](s, authorPrefix).
		WithIndexTransform("name",
			func(a *domain.Author) []string {
				return []string{domain.NormalizeAuthorName(a.Name)}
			},
			domain.NormalizeAuthorName,
		)
}

// initCategories initializes the Categories entity on the store.
func (s *Store) initCategories() {
	s.Categories = NewEntity[domain.Category](s, categoryPrefix).
		WithIndexTransform("title",
			func(c *domain.Category) []string {
				return []string{domain.NormalizeCategoryTitle(c.Title)}
			},
			domain.NormalizeCategoryTitle,
		)
}

// initShopping initializes the Carts, Favorites, and Orders entities.
// One cart and one favorites list per user (unique index); a user can
// hold any number of orders (multi index).
func (s *Store) initShopping() {
	s.Carts = NewEntity[domain.Cart](s, cartPrefix).
		WithIndex("user", func(c *domain.Cart) []string {
			return []string{c.UserID}
		})

	s.Favorites = NewEntity[domain.Favorites](s, favoritesPrefix).
		WithIndex("user", func(f *domain.Favorites) []string {
			return []string{f.UserID}
		})

	s.Orders = NewEntity[domain.Order](s, orderPrefix).
		WithMultiIndex("user", func(o *domain.Order) []string {
			return []string{o.UserID}
		})
}
