package api

import (
	"bytes"
	"encoding/json/v2"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/inkshelfapp/inkshelf-server/internal/assets"
	"github.com/inkshelfapp/inkshelf-server/internal/service"
	"github.com/inkshelfapp/inkshelf-server/internal/store"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// testServer wraps the API server for handler testing.
type testServer struct {
	*Server
	api humatest.TestAPI
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()

	st, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	blobs, err := assets.NewDiskStore(filepath.Join(tmpDir, "assets"), "http://localhost:8080")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cascade := service.NewCascader(st, blobs, logger)

	services := &Services{
		Book:     service.NewBookService(st, blobs, cascade, logger, 0),
		Author:   service.NewAuthorService(st, blobs, cascade, logger),
		Category: service.NewCategoryService(st, logger),
		Shopping: service.NewShoppingService(st, logger),
	}

	srv := NewServer(st, services, blobs, logger)

	return &testServer{
		Server: srv,
		api:    humatest.Wrap(t, srv.api),
	}
}

func decodeData[T any](t *testing.T, body []byte) T {
	t.Helper()
	var envelope testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.True(t, envelope.Success, "expected success envelope, got: %s", string(body))
	return envelope.Data
}

// coverPNG renders a small valid PNG for cover uploads.
func coverPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// multipartBody builds a multipart request body from form fields and files.
func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	for name, data := range files {
		ext := fileExt(name)
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, name+ext))
		header.Set("Content-Type", mimeFor(ext))
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func fileExt(field string) string {
	switch field {
	case "cover", "image":
		return ".png"
	case "sample":
		return ".pdf"
	default:
		return ".epub"
	}
}

func mimeFor(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/epub+zip"
	}
}

// do runs a raw HTTP request through the full router (used for the
// multipart and asset routes that bypass the OpenAPI layer).
func (ts *testServer) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

// fetchAsset requests an asset URL through the router.
func (ts *testServer) fetchAsset(t *testing.T, url string) *httptest.ResponseRecorder {
	t.Helper()
	return ts.do(t, http.MethodGet, strings.TrimPrefix(url, "http://localhost:8080"), nil, "")
}

// createAuthor registers an author through the API and returns its ID.
func (ts *testServer) createAuthor(t *testing.T, name string) string {
	t.Helper()
	body, ctype := multipartBody(t, map[string]string{"name": name}, nil)
	rec := ts.do(t, http.MethodPost, "/api/v1/authors", body, ctype)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeData[AuthorResponse](t, rec.Body.Bytes()).ID
}

// createCategory registers a category through the API and returns its ID.
func (ts *testServer) createCategory(t *testing.T, title string) string {
	t.Helper()
	resp := ts.api.Post("/api/v1/categories", map[string]any{"title": title})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return decodeData[CategoryResponse](t, resp.Body.Bytes()).ID
}

// createBook uploads a complete book through the API and returns it.
func (ts *testServer) createBook(t *testing.T, title, authorID, categoryID string, listPrice, discount string) BookResponse {
	t.Helper()
	body, ctype := multipartBody(t,
		map[string]string{
			"title":            title,
			"author":           authorID,
			"category":         categoryID,
			"list_price":       listPrice,
			"discount_percent": discount,
		},
		map[string][]byte{
			"source": []byte("book body"),
			"cover":  coverPNG(t),
			"sample": []byte("sample body"),
		})
	rec := ts.do(t, http.MethodPost, "/api/v1/books", body, ctype)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeData[BookResponse](t, rec.Body.Bytes())
}
