package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/inkshelfapp/inkshelf-server/internal/service"
)

// requireRequester validates the X-Requester-ID header value. Identity
// is asserted by the gateway in front of this service; an empty value
// means the request never passed through it.
func requireRequester(requesterID string) (string, error) {
	if requesterID == "" {
		return "", huma.Error401Unauthorized("Missing X-Requester-ID header")
	}
	return requesterID, nil
}

// formUpload reads a multipart file field into an Upload. Returns nil
// when the field was not submitted.
func formUpload(r *http.Request, field string) (*service.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// formValue returns a multipart form field and whether it was submitted.
// Distinguishing absent from empty matters for PATCH semantics.
func formValue(r *http.Request, field string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	vals, ok := r.MultipartForm.Value[field]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// formFloat parses a float form field. A missing field returns ok=false
// with no error.
func formFloat(r *http.Request, field string) (float64, bool, error) {
	raw, ok := formValue(r, field)
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}
