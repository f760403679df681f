package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/inkshelfapp/inkshelf-server/internal/assets"
	"github.com/inkshelfapp/inkshelf-server/internal/domain"
	"github.com/inkshelfapp/inkshelf-server/internal/dto"
	domainerrors "github.com/inkshelfapp/inkshelf-server/internal/errors"
	"github.com/inkshelfapp/inkshelf-server/internal/id"
	"github.com/inkshelfapp/inkshelf-server/internal/media/images"
	"github.com/inkshelfapp/inkshelf-server/internal/store"
	"github.com/inkshelfapp/inkshelf-server/internal/validation"
)

// AuthorService manages the author lifecycle. Deleting an author is the
// heaviest cascade in the system: every book they own goes through the
// full book cascade first.
type AuthorService struct {
	store     *store.Store
	assets    assets.Store
	cascade   *Cascader
	logger    *slog.Logger
	validator *validation.Validator
}

// NewAuthorService creates a new author service.
func NewAuthorService(s *store.Store, blobs assets.Store, cascade *Cascader, logger *slog.Logger) *AuthorService {
	return &AuthorService{
		store:     s,
		assets:    blobs,
		cascade:   cascade,
		logger:    logger,
		validator: validation.New(),
	}
}

// CreateAuthorInput carries the caller-editable fields of an author.
type CreateAuthorInput struct {
	Name string `json:"name" validate:"required,max=200"`
	Bio  string `json:"bio" validate:"max=5000"`
}

// UpdateAuthorInput is the allow-list for author edits.
type UpdateAuthorInput struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=200"`
	Bio  *string `json:"bio" validate:"omitempty,max=5000"`
}

// CreateAuthor registers an author, optionally with a portrait image.
// Names are unique case-insensitively.
func (s *AuthorService) CreateAuthor(ctx context.Context, input CreateAuthorInput, image *Upload) (*domain.Author, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}
	if !image.IsZero() && !images.IsImage(image.Data) {
		return nil, domainerrors.Validation("author image must be an image file")
	}

	authorID, err := id.Generate("auth")
	if err != nil {
		return nil, domainerrors.Internal("failed to generate author id").WithCause(err)
	}

	author := &domain.Author{
		Name: input.Name,
		Bio:  input.Bio,
	}
	author.ID = authorID
	author.InitTimestamps()

	if !image.IsZero() {
		key := assets.SlotKey(authorID, "image", image.Filename, image.Data)
		url, err := s.assets.Put(ctx, assets.NamespaceAuthors, key, image.Data, image.ContentType)
		if err != nil {
			return nil, err
		}
		author.ImageAsset = domain.AssetRef{
			URL:      url,
			Filename: assets.SanitizeFilename(image.Filename),
		}
	}

	if err := s.store.Authors.Create(ctx, authorID, author); err != nil {
		s.cascade.CleanupBlobs(ctx, []string{author.ImageAsset.URL})
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExistsf("author %q already exists", input.Name)
		}
		return nil, domainerrors.Persistence(err, "failed to create author record")
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "author created",
		slog.String("id", authorID),
		slog.String("name", author.Name),
	)
	return author, nil
}

// GetAuthor returns an author with their books resolved through the
// reverse index. Books come back redacted; the detail endpoint is where
// entitlement matters.
func (s *AuthorService) GetAuthor(ctx context.Context, authorID string) (*dto.Author, error) {
	author, err := s.getAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	books, err := s.store.BooksByAuthor(ctx, authorID)
	if err != nil {
		return nil, domainerrors.Persistence(err, "failed to resolve author's books")
	}

	views := make([]*dto.Book, 0, len(books))
	for _, book := range books {
		categoryTitle := ""
		if category, err := s.store.Categories.Get(ctx, book.CategoryID); err == nil {
			categoryTitle = category.Title
		}
		views = append(views, dto.NewBook(book, author.Name, categoryTitle, false))
	}

	return &dto.Author{Author: author, Books: views}, nil
}

// ListAuthors returns every author in the catalog.
func (s *AuthorService) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	authors, err := s.store.Authors.Collect(ctx)
	if err != nil {
		return nil, domainerrors.Persistence(err, "failed to list authors")
	}
	return authors, nil
}

// UpdateAuthor applies allow-listed edits and optionally replaces the
// portrait image (old blob deleted, new one uploaded).
func (s *AuthorService) UpdateAuthor(ctx context.Context, authorID string, input UpdateAuthorInput, image *Upload) (*domain.Author, error) {
	author, err := s.getAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}
	if !image.IsZero() && !images.IsImage(image.Data) {
		return nil, domainerrors.Validation("author image must be an image file")
	}

	if !image.IsZero() {
		if !author.ImageAsset.IsZero() {
			if err := s.assets.Delete(ctx, author.ImageAsset.URL); err != nil {
				return nil, err
			}
		}
		key := assets.SlotKey(authorID, "image", image.Filename, image.Data)
		url, err := s.assets.Put(ctx, assets.NamespaceAuthors, key, image.Data, image.ContentType)
		if err != nil {
			return nil, err
		}
		author.ImageAsset = domain.AssetRef{
			URL:      url,
			Filename: assets.SanitizeFilename(image.Filename),
		}
	}

	if input.Name != nil {
		author.Name = *input.Name
	}
	if input.Bio != nil {
		author.Bio = *input.Bio
	}
	author.Touch()

	if err := s.store.Authors.Update(ctx, authorID, author); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExistsf("author %q already exists", author.Name)
		}
		return nil, domainerrors.Persistence(err, "failed to update author record")
	}

	return author, nil
}

// DeleteAuthor runs the bulk cascade: every owned book (with its blobs
// and shopping references), then the author's image and record.
func (s *AuthorService) DeleteAuthor(ctx context.Context, authorID string) error {
	author, err := s.getAuthor(ctx, authorID)
	if err != nil {
		return err
	}
	return s.cascade.DeleteAuthor(ctx, author)
}

func (s *AuthorService) getAuthor(ctx context.Context, authorID string) (*domain.Author, error) {
	author, err := s.store.Authors.Get(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("author %s not found", authorID)
		}
		return nil, domainerrors.Persistence(err, "failed to load author")
	}
	return author, nil
}
