package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkshelfapp/inkshelf-server/internal/domain"
	"github.com/inkshelfapp/inkshelf-server/internal/service"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "List categories",
		Description: "Returns all categories",
		Tags:        []string{"Categories"},
	}, s.handleListCategories)

	huma.Register(s.api, huma.Operation{
		OperationID: "createCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories",
		Summary:     "Create category",
		Description: "Creates a new category",
		Tags:        []string{"Categories"},
	}, s.handleCreateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCategory",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Get category",
		Description: "Returns a category with its books",
		Tags:        []string{"Categories"},
	}, s.handleGetCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCategory",
		Method:      http.MethodPatch,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Update category",
		Description: "Updates a category",
		Tags:        []string{"Categories"},
	}, s.handleUpdateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCategory",
		Method:      http.MethodDelete,
		Path:        "/api/v1/categories/{id}",
		Summary:     "Delete category",
		Description: "Deletes an empty category; refuses while books remain",
		Tags:        []string{"Categories"},
	}, s.handleDeleteCategory)
}

// === DTOs ===

// CategoryResponse is the client-facing category shape.
type CategoryResponse struct {
	ID          string    `json:"id" doc:"Category ID"`
	Title       string    `json:"title" doc:"Title"`
	Description string    `json:"description,omitempty" doc:"Description"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update time"`
}

// CategoryDetailResponse is a category with its books resolved.
type CategoryDetailResponse struct {
	CategoryResponse
	Books []BookResponse `json:"books" doc:"Books in this category"`
}

type ListCategoriesResponse struct {
	Categories []CategoryResponse `json:"categories" doc:"List of categories"`
}

type ListCategoriesOutput struct {
	Body ListCategoriesResponse
}

type CreateCategoryRequest struct {
	Title       string `json:"title" doc:"Title"`
	Description string `json:"description,omitempty" doc:"Description"`
}

type CreateCategoryInput struct {
	Body CreateCategoryRequest
}

type CategoryOutput struct {
	Body CategoryResponse
}

type GetCategoryInput struct {
	ID string `path:"id" doc:"Category ID"`
}

type CategoryDetailOutput struct {
	Body CategoryDetailResponse
}

type UpdateCategoryRequest struct {
	Title       *string `json:"title,omitempty" doc:"Title"`
	Description *string `json:"description,omitempty" doc:"Description"`
}

type UpdateCategoryInput struct {
	ID   string `path:"id" doc:"Category ID"`
	Body UpdateCategoryRequest
}

type DeleteCategoryInput struct {
	ID string `path:"id" doc:"Category ID"`
}

// === Handlers ===

func (s *Server) handleListCategories(ctx context.Context, _ *struct{}) (*ListCategoriesOutput, error) {
	categories, err := s.services.Category.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = mapCategoryResponse(c)
	}

	return &ListCategoriesOutput{Body: ListCategoriesResponse{Categories: resp}}, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	category, err := s.services.Category.CreateCategory(ctx, service.CreateCategoryInput{
		Title:       input.Body.Title,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategoryResponse(category)}, nil
}

func (s *Server) handleGetCategory(ctx context.Context, input *GetCategoryInput) (*CategoryDetailOutput, error) {
	category, err := s.services.Category.GetCategory(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	books := make([]BookResponse, len(category.Books))
	for i, b := range category.Books {
		books[i] = mapBookResponse(b)
	}

	return &CategoryDetailOutput{Body: CategoryDetailResponse{
		CategoryResponse: mapCategoryResponse(category.Category),
		Books:            books,
	}}, nil
}

func (s *Server) handleUpdateCategory(ctx context.Context, input *UpdateCategoryInput) (*CategoryOutput, error) {
	category, err := s.services.Category.UpdateCategory(ctx, input.ID, service.UpdateCategoryInput{
		Title:       input.Body.Title,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}

	return &CategoryOutput{Body: mapCategoryResponse(category)}, nil
}

func (s *Server) handleDeleteCategory(ctx context.Context, input *DeleteCategoryInput) (*MessageOutput, error) {
	if err := s.services.Category.DeleteCategory(ctx, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Category deleted"}}, nil
}

// === Mappers ===

func mapCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
