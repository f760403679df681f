package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/inkshelfapp/inkshelf-server/internal/dto"
	"github.com/inkshelfapp/inkshelf-server/internal/http/response"
	"github.com/inkshelfapp/inkshelf-server/internal/service"
	"github.com/inkshelfapp/inkshelf-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a filtered, sorted, paginated catalog listing",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book by ID, with the source asset visible only to purchasers",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Deletes a book, its blobs, and all cart and favorites references",
		Tags:        []string{"Books"},
	}, s.handleDeleteBook)

	// Create and update carry file uploads, so they use chi multipart
	// handlers instead of huma JSON bodies.
	s.router.Post("/api/v1/books", s.handleCreateBookMultipart)
	s.router.Patch("/api/v1/books/{id}", s.handleUpdateBookMultipart)
}

// === DTOs ===

// AssetRefResponse is a stored file reference in API responses.
type AssetRefResponse struct {
	URL      string `json:"url" doc:"Public asset URL"`
	Filename string `json:"filename" doc:"Original filename"`
}

// BookResponse is the client-facing book shape. SourceAsset is only
// present when the requester has purchased the book.
type BookResponse struct {
	ID              string            `json:"id" doc:"Book ID"`
	Title           string            `json:"title" doc:"Title"`
	Description     string            `json:"description,omitempty" doc:"Description"`
	AuthorID        string            `json:"author_id" doc:"Author ID"`
	AuthorName      string            `json:"author_name,omitempty" doc:"Author display name"`
	CategoryID      string            `json:"category_id" doc:"Category ID"`
	CategoryTitle   string            `json:"category_title,omitempty" doc:"Category display title"`
	ListPrice       float64           `json:"list_price" doc:"List price"`
	DiscountPercent float64           `json:"discount_percent" doc:"Discount percentage (0-100)"`
	SalePrice       float64           `json:"sale_price" doc:"Effective price, derived on read"`
	OnSale          bool              `json:"on_sale" doc:"Whether a discount is active"`
	SourceAsset     *AssetRefResponse `json:"source_asset,omitempty" doc:"Full book file, purchasers only"`
	CoverAsset      AssetRefResponse  `json:"cover_asset" doc:"Cover image"`
	SampleAsset     AssetRefResponse  `json:"sample_asset" doc:"Free sample"`
	CoverBlurHash   string            `json:"cover_blur_hash,omitempty" doc:"BlurHash placeholder for the cover"`
	CreatedAt       time.Time         `json:"created_at" doc:"Creation time"`
	UpdatedAt       time.Time         `json:"updated_at" doc:"Last update time"`
}

// BookListResponse is a paginated book listing.
type BookListResponse struct {
	Items       []BookResponse `json:"items" doc:"Books on this page"`
	Total       int            `json:"total" doc:"Total matches across all pages"`
	TotalPages  int            `json:"total_pages" doc:"Total page count"`
	CurrentPage int            `json:"current_page" doc:"Current page number"`
}

type ListBooksInput struct {
	Author   string `query:"author" doc:"Filter by author ID or exact name"`
	Category string `query:"category" doc:"Filter by category ID or exact title"`
	MinPrice string `query:"min_price" doc:"Minimum sale price, inclusive"`
	MaxPrice string `query:"max_price" doc:"Maximum sale price, inclusive"`
	Search   string `query:"search" doc:"Case-insensitive title substring"`
	SortBy   string `query:"sort_by" doc:"Sort order: oldest, newest, on-sale, price-low-to-high, price-high-to-low"`
	Page     int    `query:"page" doc:"Page number, 1-based"`
	Limit    int    `query:"limit" doc:"Page size"`
}

type ListBooksOutput struct {
	Body BookListResponse
}

type GetBookInput struct {
	RequesterID string `header:"X-Requester-ID" doc:"Requesting user ID"`
	ID          string `path:"id" doc:"Book ID"`
}

type BookOutput struct {
	Body BookResponse
}

type DeleteBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	listInput := service.ListBooksInput{
		Author:   input.Author,
		Category: input.Category,
		Search:   input.Search,
		SortBy:   input.SortBy,
		Page:     input.Page,
		Limit:    input.Limit,
	}

	var err error
	if listInput.MinPrice, err = parsePriceBound(input.MinPrice); err != nil {
		return nil, huma.Error400BadRequest("invalid min_price")
	}
	if listInput.MaxPrice, err = parsePriceBound(input.MaxPrice); err != nil {
		return nil, huma.Error400BadRequest("invalid max_price")
	}

	page, err := s.services.Book.ListBooks(ctx, listInput)
	if err != nil {
		return nil, err
	}

	return &ListBooksOutput{Body: mapBookListResponse(page)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	book, err := s.services.Book.GetBook(ctx, input.ID, input.RequesterID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: mapBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *DeleteBookInput) (*MessageOutput, error) {
	if err := s.services.Book.DeleteBook(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book deleted"}}, nil
}

func (s *Server) handleCreateBookMultipart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		response.BadRequest(w, "invalid multipart form", s.logger)
		return
	}

	input := service.CreateBookInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Author:      r.FormValue("author"),
		Category:    r.FormValue("category"),
	}

	var err error
	if input.ListPrice, err = parseFormPrice(r, "list_price"); err != nil {
		response.BadRequest(w, "invalid list_price", s.logger)
		return
	}
	if input.DiscountPercent, err = parseFormPrice(r, "discount_percent"); err != nil {
		response.BadRequest(w, "invalid discount_percent", s.logger)
		return
	}

	files, err := bookFilesFromForm(r)
	if err != nil {
		response.BadRequest(w, "unreadable file upload", s.logger)
		return
	}

	book, err := s.services.Book.CreateBook(ctx, input, files)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, mapBookResponse(book), s.logger)
}

func (s *Server) handleUpdateBookMultipart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bookID := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		response.BadRequest(w, "invalid multipart form", s.logger)
		return
	}

	var input service.UpdateBookInput
	if v, ok := formValue(r, "title"); ok {
		input.Title = &v
	}
	if v, ok := formValue(r, "description"); ok {
		input.Description = &v
	}
	if v, ok := formValue(r, "author"); ok {
		input.Author = &v
	}
	if v, ok := formValue(r, "category"); ok {
		input.Category = &v
	}
	if v, ok, err := formFloat(r, "list_price"); err != nil {
		response.BadRequest(w, "invalid list_price", s.logger)
		return
	} else if ok {
		input.ListPrice = &v
	}
	if v, ok, err := formFloat(r, "discount_percent"); err != nil {
		response.BadRequest(w, "invalid discount_percent", s.logger)
		return
	} else if ok {
		input.DiscountPercent = &v
	}

	files, err := bookFilesFromForm(r)
	if err != nil {
		response.BadRequest(w, "unreadable file upload", s.logger)
		return
	}

	book, err := s.services.Book.UpdateBook(ctx, bookID, input, files)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, mapBookResponse(book), s.logger)
}

// === Mappers ===

func bookFilesFromForm(r *http.Request) (service.BookFiles, error) {
	var files service.BookFiles
	var err error

	if files.Source, err = formUpload(r, "source"); err != nil {
		return files, err
	}
	if files.Cover, err = formUpload(r, "cover"); err != nil {
		return files, err
	}
	if files.Sample, err = formUpload(r, "sample"); err != nil {
		return files, err
	}
	return files, nil
}

func parsePriceBound(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseFormPrice(r *http.Request, field string) (float64, error) {
	raw := r.FormValue(field)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func mapBookResponse(b *dto.Book) BookResponse {
	resp := BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Description:     b.Description,
		AuthorID:        b.AuthorID,
		AuthorName:      b.AuthorName,
		CategoryID:      b.CategoryID,
		CategoryTitle:   b.CategoryTitle,
		ListPrice:       b.ListPrice,
		DiscountPercent: b.DiscountPercent,
		SalePrice:       b.SalePrice,
		OnSale:          b.OnSale,
		CoverAsset:      AssetRefResponse{URL: b.CoverAsset.URL, Filename: b.CoverAsset.Filename},
		SampleAsset:     AssetRefResponse{URL: b.SampleAsset.URL, Filename: b.SampleAsset.Filename},
		CoverBlurHash:   b.CoverBlurHash,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.SourceAsset != nil {
		resp.SourceAsset = &AssetRefResponse{URL: b.SourceAsset.URL, Filename: b.SourceAsset.Filename}
	}
	return resp
}

func mapBookListResponse(page *store.PagedResult[*dto.Book]) BookListResponse {
	items := make([]BookResponse, len(page.Items))
	for i, b := range page.Items {
		items[i] = mapBookResponse(b)
	}
	return BookListResponse{
		Items:       items,
		Total:       page.Total,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
	}
}
