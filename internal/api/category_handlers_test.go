package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryCRUD(t *testing.T) {
	ts := setupTestServer(t)

	// Create.
	resp := ts.api.Post("/api/v1/categories", map[string]any{
		"title":       "Science Fiction",
		"description": "Spaceships and speculation",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	created := decodeData[CategoryResponse](t, resp.Body.Bytes())
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Science Fiction", created.Title)

	// Duplicate title conflicts, case-insensitively.
	resp = ts.api.Post("/api/v1/categories", map[string]any{"title": "science fiction"})
	assert.Equal(t, http.StatusConflict, resp.Code)

	// Get.
	resp = ts.api.Get("/api/v1/categories/" + created.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	detail := decodeData[CategoryDetailResponse](t, resp.Body.Bytes())
	assert.Equal(t, "Science Fiction", detail.Title)
	assert.Empty(t, detail.Books)

	// Update.
	resp = ts.api.Patch("/api/v1/categories/"+created.ID, map[string]any{"description": "Updated"})
	require.Equal(t, http.StatusOK, resp.Code)
	updated := decodeData[CategoryResponse](t, resp.Body.Bytes())
	assert.Equal(t, "Updated", updated.Description)

	// List.
	resp = ts.api.Get("/api/v1/categories")
	listing := decodeData[ListCategoriesResponse](t, resp.Body.Bytes())
	assert.Len(t, listing.Categories, 1)

	// Delete.
	resp = ts.api.Delete("/api/v1/categories/" + created.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, http.StatusNotFound, ts.api.Get("/api/v1/categories/"+created.ID).Code)
}

func TestDeleteCategory_RefusedWhileBooksRemain(t *testing.T) {
	ts := setupTestServer(t)

	authorID := ts.createAuthor(t, "Category Holder")
	categoryID := ts.createCategory(t, "Occupied")
	book := ts.createBook(t, "Occupant", authorID, categoryID, "10", "0")

	resp := ts.api.Delete("/api/v1/categories/" + categoryID)
	assert.Equal(t, http.StatusConflict, resp.Code)

	// After the book goes away the category can be deleted.
	require.Equal(t, http.StatusOK, ts.api.Delete("/api/v1/books/"+book.ID).Code)
	assert.Equal(t, http.StatusOK, ts.api.Delete("/api/v1/categories/"+categoryID).Code)
}

func TestCreateCategory_BlankTitle(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/categories", map[string]any{"title": "", "description": "no title"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
