package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/inkshelfapp/inkshelf-server/internal/domain"
	"github.com/inkshelfapp/inkshelf-server/internal/dto"
	domainerrors "github.com/inkshelfapp/inkshelf-server/internal/errors"
	"github.com/inkshelfapp/inkshelf-server/internal/id"
	"github.com/inkshelfapp/inkshelf-server/internal/store"
	"github.com/inkshelfapp/inkshelf-server/internal/validation"
)

// CategoryService manages the browsing shelves. Categories own no
// blobs, so their lifecycle is plain CRUD; the one rule is that a
// category still holding books cannot be deleted.
type CategoryService struct {
	store     *store.Store
	logger    *slog.Logger
	validator *validation.Validator
}

// NewCategoryService creates a new category service.
func NewCategoryService(s *store.Store, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		store:     s,
		logger:    logger,
		validator: validation.New(),
	}
}

// CreateCategoryInput carries the caller-editable fields of a category.
type CreateCategoryInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateCategoryInput is the allow-list for category edits.
type UpdateCategoryInput struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// CreateCategory registers a category. Titles are unique
// case-insensitively.
func (s *CategoryService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	categoryID, err := id.Generate("cat")
	if err != nil {
		return nil, domainerrors.Internal("failed to generate category id").WithCause(err)
	}

	category := &domain.Category{
		Title:       input.Title,
		Description: input.Description,
	}
	category.ID = categoryID
	category.InitTimestamps()

	if err := s.store.Categories.Create(ctx, categoryID, category); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExistsf("category %q already exists", input.Title)
		}
		return nil, domainerrors.Persistence(err, "failed to create category record")
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "category created",
		slog.String("id", categoryID),
		slog.String("title", category.Title),
	)
	return category, nil
}

// GetCategory returns a category with its books resolved through the
// reverse index, redacted for listing.
func (s *CategoryService) GetCategory(ctx context.Context, categoryID string) (*dto.Category, error) {
	category, err := s.getCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	books, err := s.store.BooksByCategory(ctx, categoryID)
	if err != nil {
		return nil, domainerrors.Persistence(err, "failed to resolve category's books")
	}

	views := make([]*dto.Book, 0, len(books))
	for _, book := range books {
		authorName := ""
		if author, err := s.store.Authors.Get(ctx, book.AuthorID); err == nil {
			authorName = author.Name
		}
		views = append(views, dto.NewBook(book, authorName, category.Title, false))
	}

	return &dto.Category{Category: category, Books: views}, nil
}

// ListCategories returns every category in the catalog.
func (s *CategoryService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.store.Categories.Collect(ctx)
	if err != nil {
		return nil, domainerrors.Persistence(err, "failed to list categories")
	}
	return categories, nil
}

// UpdateCategory applies allow-listed edits.
func (s *CategoryService) UpdateCategory(ctx context.Context, categoryID string, input UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.getCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	if input.Title != nil {
		category.Title = *input.Title
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	category.Touch()

	if err := s.store.Categories.Update(ctx, categoryID, category); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExistsf("category %q already exists", category.Title)
		}
		return nil, domainerrors.Persistence(err, "failed to update category record")
	}

	return category, nil
}

// DeleteCategory removes an empty category. A category with books still
// shelved in it is a conflict; move or delete the books first.
func (s *CategoryService) DeleteCategory(ctx context.Context, categoryID string) error {
	category, err := s.getCategory(ctx, categoryID)
	if err != nil {
		return err
	}

	books, err := s.store.BooksByCategory(ctx, categoryID)
	if err != nil {
		return domainerrors.Persistence(err, "failed to check category membership")
	}
	if len(books) > 0 {
		return domainerrors.Conflict("category still contains books")
	}

	if err := s.store.Categories.Delete(ctx, categoryID); err != nil {
		return domainerrors.Persistence(err, "failed to delete category record")
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "category deleted",
		slog.String("id", categoryID),
		slog.String("title", category.Title),
	)
	return nil
}

func (s *CategoryService) getCategory(ctx context.Context, categoryID string) (*domain.Category, error) {
	category, err := s.store.Categories.Get(ctx, categoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("category %s not found", categoryID)
		}
		return nil, domainerrors.Persistence(err, "failed to load category")
	}
	return category, nil
}
