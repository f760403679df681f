package service

import (
	"context"
	"log/slog"

	"github.com/inkshelfapp/inkshelf-server/internal/assets"
	"github.com/inkshelfapp/inkshelf-server/internal/domain"
	domainerrors "github.com/inkshelfapp/inkshelf-server/internal/errors"
	"github.com/inkshelfapp/inkshelf-server/internal/store"
)

// Cascader propagates a book deletion into every collection that
// references it, plus the blob store. There is no transaction spanning
// those stores, so each step is idempotent: re-running a cascade after
// a partial failure completes the remaining steps instead of erroring
// on the ones already done.
//
// Orders are deliberately left alone. They carry point-in-time
// snapshots of purchased books, so purchase history survives catalog
// deletes intact.
type Cascader struct {
	store  *store.Store
	assets assets.Store
	logger *slog.Logger
}

// NewCascader creates a new Cascader.
func NewCascader(store *store.Store, assets assets.Store, logger *slog.Logger) *Cascader {
	return &Cascader{
		store:  store,
		assets: assets,
		logger: logger,
	}
}

// DeleteBook removes one book and everything it owns, in order:
// cart references, favorites references, the three blobs, the record.
// A failed step aborts the cascade with the error; the steps already
// applied stay applied and a retry picks up where this one stopped.
func (c *Cascader) DeleteBook(ctx context.Context, book *domain.Book) error {
	if _, err := c.store.RemoveBookFromCarts(ctx, book.ID); err != nil {
		return domainerrors.Persistence(err, "failed to remove book from carts")
	}
	if _, err := c.store.RemoveBookFromFavorites(ctx, book.ID); err != nil {
		return domainerrors.Persistence(err, "failed to remove book from favorites")
	}

	// Blob deletes tolerate already-absent blobs, so a retried cascade
	// sails through slots cleaned up by an earlier attempt.
	for _, slot := range domain.Slots {
		ref := book.Asset(slot)
		if ref.IsZero() {
			continue
		}
		if err := c.assets.Delete(ctx, ref.URL); err != nil {
			return err
		}
	}

	if err := c.store.Books.Delete(ctx, book.ID); err != nil {
		return domainerrors.Persistence(err, "failed to delete book record")
	}

	c.logger.LogAttrs(ctx, slog.LevelInfo, "book deleted",
		slog.String("id", book.ID),
		slog.String("title", book.Title),
	)
	return nil
}

// DeleteAuthor removes an author and every book they own. Each book
// goes through the full DeleteBook cascade so its blobs and shopping
// references are cleaned up, then the author's own image and record go.
func (c *Cascader) DeleteAuthor(ctx context.Context, author *domain.Author) error {
	books, err := c.store.BooksByAuthor(ctx, author.ID)
	if err != nil {
		return domainerrors.Persistence(err, "failed to enumerate author's books")
	}

	for _, book := range books {
		if err := c.DeleteBook(ctx, book); err != nil {
			return err
		}
	}

	if !author.ImageAsset.IsZero() {
		if err := c.assets.Delete(ctx, author.ImageAsset.URL); err != nil {
			return err
		}
	}

	if err := c.store.Authors.Delete(ctx, author.ID); err != nil {
		return domainerrors.Persistence(err, "failed to delete author record")
	}

	c.logger.LogAttrs(ctx, slog.LevelInfo, "author deleted",
		slog.String("id", author.ID),
		slog.String("name", author.Name),
		slog.Int("books_removed", len(books)),
	)
	return nil
}

// CleanupBlobs deletes the given asset URLs best-effort, logging
// failures instead of returning them. Used to compensate after a
// partially-completed multi-slot upload.
func (c *Cascader) CleanupBlobs(ctx context.Context, urls []string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := c.assets.Delete(ctx, url); err != nil {
			c.logger.Warn("orphaned blob left behind after failed operation",
				"url", url,
				"error", err,
			)
		}
	}
}
