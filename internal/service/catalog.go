package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/inkshelfapp/inkshelf-server/internal/assets"
	"github.com/inkshelfapp/inkshelf-server/internal/domain"
	"github.com/inkshelfapp/inkshelf-server/internal/dto"
	domainerrors "github.com/inkshelfapp/inkshelf-server/internal/errors"
	"github.com/inkshelfapp/inkshelf-server/internal/id"
	"github.com/inkshelfapp/inkshelf-server/internal/media/images"
	"github.com/inkshelfapp/inkshelf-server/internal/store"
	"github.com/inkshelfapp/inkshelf-server/internal/validation"
)

// BookService orchestrates the book lifecycle: all-or-nothing creation
// across three asset slots, allow-listed updates with slot replacement,
// cascading deletes, and purchase-gated reads.
type BookService struct {
	store     *store.Store
	assets    assets.Store
	cascade   *Cascader
	logger    *slog.Logger
	validator *validation.Validator
	pageLimit int
}

// NewBookService creates a new book service. pageLimit is the default
// listing page size; zero falls back to the store default.
func NewBookService(s *store.Store, blobs assets.Store, cascade *Cascader, logger *slog.Logger, pageLimit int) *BookService {
	if pageLimit <= 0 {
		pageLimit = store.DefaultPageLimit
	}
	return &BookService{
		store:     s,
		assets:    blobs,
		cascade:   cascade,
		logger:    logger,
		validator: validation.New(),
		pageLimit: pageLimit,
	}
}

// CreateBookInput carries the caller-editable fields of a new book.
// Author and Category accept either a record ID or the exact name/title.
type CreateBookInput struct {
	Title           string  `json:"title" validate:"required,max=500"`
	Description     string  `json:"description" validate:"max=5000"`
	Author          string  `json:"author" validate:"required"`
	Category        string  `json:"category" validate:"required"`
	ListPrice       float64 `json:"list_price" validate:"gte=0"`
	DiscountPercent float64 `json:"discount_percent" validate:"gte=0,lte=100"`
}

// BookFiles holds the uploads for a book's three slots. On create all
// three are required; on update nil slots are left untouched.
type BookFiles struct {
	Source *Upload
	Cover  *Upload
	Sample *Upload
}

func (f *BookFiles) upload(slot domain.AssetSlot) *Upload {
	switch slot {
	case domain.SlotSource:
		return f.Source
	case domain.SlotCover:
		return f.Cover
	case domain.SlotSample:
		return f.Sample
	}
	return nil
}

// slotNamespace maps an asset slot to its blob namespace.
func slotNamespace(slot domain.AssetSlot) string {
	switch slot {
	case domain.SlotSource:
		return assets.NamespaceBooks
	case domain.SlotCover:
		return assets.NamespaceCovers
	default:
		return assets.NamespaceSamples
	}
}

// UpdateBookInput is the allow-list of fields a caller may change.
// Derived values (sale price) and asset URLs are not here on purpose;
// nothing a client submits can overwrite them.
type UpdateBookInput struct {
	Title           *string  `json:"title" validate:"omitempty,max=500"`
	Description     *string  `json:"description" validate:"omitempty,max=5000"`
	Author          *string  `json:"author"`
	Category        *string  `json:"category"`
	ListPrice       *float64 `json:"list_price" validate:"omitempty,gte=0"`
	DiscountPercent *float64 `json:"discount_percent" validate:"omitempty,gte=0,lte=100"`
}

// CreateBook uploads all three asset slots concurrently and only then
// writes the record; if any upload fails, no record is created and the
// slots that did land are deleted best-effort. The book only becomes
// visible once it is complete.
func (s *BookService) CreateBook(ctx context.Context, input CreateBookInput, files BookFiles) (*dto.Book, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	for _, slot := range domain.Slots {
		if err := files.upload(slot).validate(string(slot)); err != nil {
			return nil, err
		}
	}
	if !images.IsImage(files.Cover.Data) {
		return nil, domainerrors.Validation("cover file must be an image")
	}

	author, err := s.resolveAuthor(ctx, input.Author)
	if err != nil {
		return nil, err
	}
	category, err := s.resolveCategory(ctx, input.Category)
	if err != nil {
		return nil, err
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, domainerrors.Internal("failed to generate book id").WithCause(err)
	}

	refs, blurHash, err := s.uploadSlots(ctx, bookID, files, domain.Slots)
	if err != nil {
		return nil, err
	}

	book := &domain.Book{
		Title:           input.Title,
		Description:     input.Description,
		AuthorID:        author.ID,
		CategoryID:      category.ID,
		ListPrice:       input.ListPrice,
		DiscountPercent: input.DiscountPercent,
		CoverBlurHash:   blurHash,
	}
	book.ID = bookID
	book.InitTimestamps()
	for slot, ref := range refs {
		book.SetAsset(slot, ref)
	}

	if err := s.store.Books.Create(ctx, bookID, book); err != nil {
		// The record never existed, so the fresh blobs are orphans.
		s.cascade.CleanupBlobs(ctx, refURLs(refs))
		return nil, domainerrors.Persistence(err, "failed to create book record")
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "book created",
		slog.String("id", bookID),
		slog.String("title", book.Title),
		slog.String("author_id", author.ID),
	)
	return dto.NewBook(book, author.Name, category.Title, true), nil
}

// GetBook returns a book projected for the requester. The source asset
// appears only when the requester holds an order containing this book;
// an empty requesterID always gets the redacted view.
func (s *BookService) GetBook(ctx context.Context, bookID, requesterID string) (*dto.Book, error) {
	book, err := s.getBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	entitled := false
	if requesterID != "" {
		entitled, err = s.store.UserHasPurchased(ctx, requesterID, bookID)
		if err != nil {
			return nil, domainerrors.Persistence(err, "failed to check purchase history")
		}
	}

	authorName, categoryTitle := s.displayNames(ctx, book)
	return dto.NewBook(book, authorName, categoryTitle, entitled), nil
}

// ListBooksInput mirrors the listing query surface. Author and Category
// accept a record ID or the exact name/title, matched exactly.
type ListBooksInput struct {
	Author   string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Search   string
	SortBy   string
	Page     int
	Limit    int
}

// ListBooks filters, sorts, and paginates the catalog. Every item is
// redacted as if there were no requester: listings never carry the
// source asset.
func (s *BookService) ListBooks(ctx context.Context, input ListBooksInput) (*store.PagedResult[*dto.Book], error) {
	query := BookQuery{
		MinPrice: input.MinPrice,
		MaxPrice: input.MaxPrice,
		Search:   input.Search,
		SortBy:   input.SortBy,
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	params := store.PageParams{Page: input.Page, Limit: input.Limit}
	if params.Limit <= 0 {
		params.Limit = s.pageLimit
	}
	params.Validate()

	// An unknown author/category filter matches nothing; that is an
	// empty page, not an error.
	if input.Author != "" {
		author, err := s.resolveAuthor(ctx, input.Author)
		if err != nil {
			if domainerrors.Is(err, domainerrors.ErrValidation) {
				return emptyPage(params), nil
			}
			return nil, err
		}
		query.AuthorID = author.ID
	}
	if input.Category != "" {
		category, err := s.resolveCategory(ctx, input.Category)
		if err != nil {
			if domainerrors.Is(err, domainerrors.ErrValidation) {
				return emptyPage(params), nil
			}
			return nil, err
		}
		query.CategoryID = category.ID
	}

	books, err := s.store.Books.Collect(ctx)
	if err != nil {
		return nil, domainerrors.Persistence(err, "failed to list books")
	}

	matched := query.Apply(books)
	page := store.Paginate(matched, params)

	authorNames, categoryTitles, err := s.nameLookups(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.Book, 0, len(page.Items))
	for _, book := range page.Items {
		items = append(items, dto.NewBook(book, authorNames[book.AuthorID], categoryTitles[book.CategoryID], false))
	}

	return &store.PagedResult[*dto.Book]{
		Items:       items,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
		Total:       page.Total,
	}, nil
}

// UpdateBook applies allow-listed field edits and replaces any slots
// with new files. Per replaced slot the old blob is deleted and the new
// one uploaded; distinct slots run concurrently, and the record is only
// persisted once every deletion and upload has finished.
func (s *BookService) UpdateBook(ctx context.Context, bookID string, input UpdateBookInput, files BookFiles) (*dto.Book, error) {
	book, err := s.getBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	if input.Author != nil {
		author, err := s.resolveAuthor(ctx, *input.Author)
		if err != nil {
			return nil, err
		}
		book.AuthorID = author.ID
	}
	if input.Category != nil {
		category, err := s.resolveCategory(ctx, *input.Category)
		if err != nil {
			return nil, err
		}
		book.CategoryID = category.ID
	}

	var changed []domain.AssetSlot
	for _, slot := range domain.Slots {
		upload := files.upload(slot)
		if upload.IsZero() {
			continue
		}
		if err := upload.validate(string(slot)); err != nil {
			return nil, err
		}
		if slot == domain.SlotCover && !images.IsImage(upload.Data) {
			return nil, domainerrors.Validation("cover file must be an image")
		}
		changed = append(changed, slot)
	}

	if len(changed) > 0 {
		if err := s.replaceSlots(ctx, book, files, changed); err != nil {
			return nil, err
		}
	}

	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Description != nil {
		book.Description = *input.Description
	}
	if input.ListPrice != nil {
		book.ListPrice = *input.ListPrice
	}
	if input.DiscountPercent != nil {
		book.DiscountPercent = *input.DiscountPercent
	}
	book.Touch()

	if err := s.store.Books.Update(ctx, bookID, book); err != nil {
		return nil, domainerrors.Persistence(err, "failed to update book record")
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "book updated",
		slog.String("id", bookID),
		slog.Int("slots_replaced", len(changed)),
	)

	authorName, categoryTitle := s.displayNames(ctx, book)
	return dto.NewBook(book, authorName, categoryTitle, true), nil
}

// DeleteBook runs the full cascade for one book.
func (s *BookService) DeleteBook(ctx context.Context, bookID string) error {
	book, err := s.getBook(ctx, bookID)
	if err != nil {
		return err
	}
	return s.cascade.DeleteBook(ctx, book)
}

// uploadSlots pushes the given slots to the blob store concurrently.
// On any failure the slots that made it are deleted best-effort and the
// first error comes back; nothing is persisted.
func (s *BookService) uploadSlots(ctx context.Context, bookID string, files BookFiles, slots []domain.AssetSlot) (map[domain.AssetSlot]domain.AssetRef, string, error) {
	refs := make(map[domain.AssetSlot]domain.AssetRef, len(slots))
	uploaded := make([]string, len(slots))
	var blurHash string

	g, gctx := errgroup.WithContext(ctx)
	for i, slot := range slots {
		g.Go(func() error {
			upload := files.upload(slot)
			key := assets.SlotKey(bookID, string(slot), upload.Filename, upload.Data)
			url, err := s.assets.Put(gctx, slotNamespace(slot), key, upload.Data, upload.ContentType)
			if err != nil {
				return err
			}
			uploaded[i] = url

			if slot == domain.SlotCover {
				hash, err := images.ComputeBlurHash(upload.Data)
				if err != nil {
					// A cover without a placeholder is still a cover.
					s.logger.Warn("failed to compute cover blurhash", "book_id", bookID, "error", err)
				}
				blurHash = hash
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.cascade.CleanupBlobs(context.WithoutCancel(ctx), uploaded)
		return nil, "", err
	}

	for i, slot := range slots {
		refs[slot] = domain.AssetRef{
			URL:      uploaded[i],
			Filename: assets.SanitizeFilename(files.upload(slot).Filename),
		}
	}
	return refs, blurHash, nil
}

// replaceSlots swaps the blobs behind the changed slots and writes the
// new references onto the book. Old-blob deletion tolerates blobs that
// are already gone.
func (s *BookService) replaceSlots(ctx context.Context, book *domain.Book, files BookFiles, changed []domain.AssetSlot) error {
	type result struct {
		ref      domain.AssetRef
		blurHash string
	}
	results := make([]result, len(changed))

	g, gctx := errgroup.WithContext(ctx)
	for i, slot := range changed {
		g.Go(func() error {
			old := book.Asset(slot)
			if !old.IsZero() {
				if err := s.assets.Delete(gctx, old.URL); err != nil {
					return err
				}
			}

			upload := files.upload(slot)
			key := assets.SlotKey(book.ID, string(slot), upload.Filename, upload.Data)
			url, err := s.assets.Put(gctx, slotNamespace(slot), key, upload.Data, upload.ContentType)
			if err != nil {
				return err
			}
			results[i].ref = domain.AssetRef{
				URL:      url,
				Filename: assets.SanitizeFilename(upload.Filename),
			}

			if slot == domain.SlotCover {
				hash, err := images.ComputeBlurHash(upload.Data)
				if err != nil {
					s.logger.Warn("failed to compute cover blurhash", "book_id", book.ID, "error", err)
				}
				results[i].blurHash = hash
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, slot := range changed {
		book.SetAsset(slot, results[i].ref)
		if slot == domain.SlotCover {
			book.CoverBlurHash = results[i].blurHash
		}
	}
	return nil
}

// getBook fetches a book, translating the store's not-found.
func (s *BookService) getBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.Books.Get(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("book %s not found", bookID)
		}
		return nil, domainerrors.Persistence(err, "failed to load book")
	}
	return book, nil
}

// resolveAuthor accepts an author ID or exact name and returns the
// record, or a validation error naming the missing reference.
func (s *BookService) resolveAuthor(ctx context.Context, ref string) (*domain.Author, error) {
	author, err := s.store.Authors.Get(ctx, ref)
	if err == nil {
		return author, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Persistence(err, "failed to resolve author")
	}

	author, err = s.store.AuthorByName(ctx, ref)
	if err == nil {
		return author, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Validationf("unknown author %q", ref)
	}
	return nil, domainerrors.Persistence(err, "failed to resolve author")
}

// resolveCategory accepts a category ID or exact title.
func (s *BookService) resolveCategory(ctx context.Context, ref string) (*domain.Category, error) {
	category, err := s.store.Categories.Get(ctx, ref)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Persistence(err, "failed to resolve category")
	}

	category, err = s.store.CategoryByTitle(ctx, ref)
	if err == nil {
		return category, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Validationf("unknown category %q", ref)
	}
	return nil, domainerrors.Persistence(err, "failed to resolve category")
}

// displayNames resolves the denormalized display fields for one book.
// Missing references come back blank rather than failing a read against
// partially-cascaded state.
func (s *BookService) displayNames(ctx context.Context, book *domain.Book) (authorName, categoryTitle string) {
	if author, err := s.store.Authors.Get(ctx, book.AuthorID); err == nil {
		authorName = author.Name
	}
	if category, err := s.store.Categories.Get(ctx, book.CategoryID); err == nil {
		categoryTitle = category.Title
	}
	return authorName, categoryTitle
}

// nameLookups builds display-name maps for listing projection.
func (s *BookService) nameLookups(ctx context.Context) (map[string]string, map[string]string, error) {
	authors, err := s.store.Authors.Collect(ctx)
	if err != nil {
		return nil, nil, domainerrors.Persistence(err, "failed to list authors")
	}
	categories, err := s.store.Categories.Collect(ctx)
	if err != nil {
		return nil, nil, domainerrors.Persistence(err, "failed to list categories")
	}

	authorNames := make(map[string]string, len(authors))
	for _, author := range authors {
		authorNames[author.ID] = author.Name
	}
	categoryTitles := make(map[string]string, len(categories))
	for _, category := range categories {
		categoryTitles[category.ID] = category.Title
	}
	return authorNames, categoryTitles, nil
}

// refURLs flattens a slot map into its URLs for cleanup.
func refURLs(refs map[domain.AssetSlot]domain.AssetRef) []string {
	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		urls = append(urls, ref.URL)
	}
	return urls
}

// emptyPage is the zero-match listing result.
func emptyPage(params store.PageParams) *store.PagedResult[*dto.Book] {
	return &store.PagedResult[*dto.Book]{
		Items:       []*dto.Book{},
		TotalPages:  0,
		CurrentPage: params.Page,
		Total:       0,
	}
}
