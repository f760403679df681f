package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	health := decodeData[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["database"].Status)
	assert.Equal(t, "healthy", health.Components["blobs"].Status)
}

func TestServeAsset(t *testing.T) {
	ts := setupTestServer(t)

	authorID := ts.createAuthor(t, "Asset Author")
	categoryID := ts.createCategory(t, "Asset Category")
	book := ts.createBook(t, "Asset Book", authorID, categoryID, "10", "0")

	rec := ts.fetchAsset(t, book.CoverAsset.URL)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, CacheOneWeek, rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestServeAsset_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/assets/covers/book-x/cover-deadbeef.png", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
