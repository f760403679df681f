package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/inkshelfapp/inkshelf-server/internal/http/response"
)

func (s *Server) registerAssetRoutes() {
	// Blob streaming stays on chi; huma buys nothing for raw bytes.
	s.router.Get("/assets/{namespace}/*", s.handleServeAsset)
}

// handleServeAsset streams a stored blob. Keys embed a content hash, so
// a URL always names one exact payload and can be cached hard.
func (s *Server) handleServeAsset(w http.ResponseWriter, r *http.Request) {
	namespace := chi.URLParam(r, "namespace")
	key := chi.URLParam(r, "*")
	if namespace == "" || key == "" {
		response.BadRequest(w, "asset path required", s.logger)
		return
	}

	data, contentType, err := s.blobs.Open(r.Context(), namespace, key)
	if err != nil {
		response.NotFound(w, "asset not found", s.logger)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", CacheOneWeek)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("asset write aborted", "namespace", namespace, "key", key, "error", err)
	}
}
