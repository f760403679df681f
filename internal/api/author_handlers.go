package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/inkshelfapp/inkshelf-server/internal/domain"
	"github.com/inkshelfapp/inkshelf-server/internal/http/response"
	"github.com/inkshelfapp/inkshelf-server/internal/service"
)

func (s *Server) registerAuthorRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listAuthors",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors",
		Summary:     "List authors",
		Description: "Returns all authors",
		Tags:        []string{"Authors"},
	}, s.handleListAuthors)

	huma.Register(s.api, huma.Operation{
		OperationID: "getAuthor",
		Method:      http.MethodGet,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Get author",
		Description: "Returns an author with their books",
		Tags:        []string{"Authors"},
	}, s.handleGetAuthor)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAuthor",
		Method:      http.MethodDelete,
		Path:        "/api/v1/authors/{id}",
		Summary:     "Delete author",
		Description: "Deletes an author and fully cascades through their books",
		Tags:        []string{"Authors"},
	}, s.handleDeleteAuthor)

	// Create and update accept an optional portrait upload.
	s.router.Post("/api/v1/authors", s.handleCreateAuthorMultipart)
	s.router.Patch("/api/v1/authors/{id}", s.handleUpdateAuthorMultipart)
}

// === DTOs ===

// AuthorResponse is the client-facing author shape.
type AuthorResponse struct {
	ID         string            `json:"id" doc:"Author ID"`
	Name       string            `json:"name" doc:"Display name"`
	Bio        string            `json:"bio,omitempty" doc:"Biography"`
	ImageAsset *AssetRefResponse `json:"image_asset,omitempty" doc:"Portrait image"`
	CreatedAt  time.Time         `json:"created_at" doc:"Creation time"`
	UpdatedAt  time.Time         `json:"updated_at" doc:"Last update time"`
}

// AuthorDetailResponse is an author with their books resolved.
type AuthorDetailResponse struct {
	AuthorResponse
	Books []BookResponse `json:"books" doc:"Books by this author"`
}

type ListAuthorsResponse struct {
	Authors []AuthorResponse `json:"authors" doc:"List of authors"`
}

type ListAuthorsOutput struct {
	Body ListAuthorsResponse
}

type GetAuthorInput struct {
	ID string `path:"id" doc:"Author ID"`
}

type AuthorDetailOutput struct {
	Body AuthorDetailResponse
}

type DeleteAuthorInput struct {
	ID string `path:"id" doc:"Author ID"`
}

// === Handlers ===

func (s *Server) handleListAuthors(ctx context.Context, _ *struct{}) (*ListAuthorsOutput, error) {
	authors, err := s.services.Author.ListAuthors(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]AuthorResponse, len(authors))
	for i, a := range authors {
		resp[i] = mapAuthorResponse(a)
	}

	return &ListAuthorsOutput{Body: ListAuthorsResponse{Authors: resp}}, nil
}

func (s *Server) handleGetAuthor(ctx context.Context, input *GetAuthorInput) (*AuthorDetailOutput, error) {
	author, err := s.services.Author.GetAuthor(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	books := make([]BookResponse, len(author.Books))
	for i, b := range author.Books {
		books[i] = mapBookResponse(b)
	}

	return &AuthorDetailOutput{Body: AuthorDetailResponse{
		AuthorResponse: mapAuthorResponse(author.Author),
		Books:          books,
	}}, nil
}

func (s *Server) handleDeleteAuthor(ctx context.Context, input *DeleteAuthorInput) (*MessageOutput, error) {
	if err := s.services.Author.DeleteAuthor(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Author deleted"}}, nil
}

func (s *Server) handleCreateAuthorMultipart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		response.BadRequest(w, "invalid multipart form", s.logger)
		return
	}

	input := service.CreateAuthorInput{
		Name: r.FormValue("name"),
		Bio:  r.FormValue("bio"),
	}

	image, err := formUpload(r, "image")
	if err != nil {
		response.BadRequest(w, "unreadable image upload", s.logger)
		return
	}

	author, err := s.services.Author.CreateAuthor(ctx, input, image)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, mapAuthorResponse(author), s.logger)
}

func (s *Server) handleUpdateAuthorMultipart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	authorID := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		response.BadRequest(w, "invalid multipart form", s.logger)
		return
	}

	var input service.UpdateAuthorInput
	if v, ok := formValue(r, "name"); ok {
		input.Name = &v
	}
	if v, ok := formValue(r, "bio"); ok {
		input.Bio = &v
	}

	image, err := formUpload(r, "image")
	if err != nil {
		response.BadRequest(w, "unreadable image upload", s.logger)
		return
	}

	author, err := s.services.Author.UpdateAuthor(ctx, authorID, input, image)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, mapAuthorResponse(author), s.logger)
}

// === Mappers ===

func mapAuthorResponse(a *domain.Author) AuthorResponse {
	resp := AuthorResponse{
		ID:        a.ID,
		Name:      a.Name,
		Bio:       a.Bio,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if !a.ImageAsset.IsZero() {
		resp.ImageAsset = &AssetRefResponse{URL: a.ImageAsset.URL, Filename: a.ImageAsset.Filename}
	}
	return resp
}
