// Package service provides the business logic layer for the Inkshelf
// catalog: book and author lifecycles, cascading deletes, purchase-gated
// reads, and shopping flows.
package service

import domainerrors "github.com/inkshelfapp/inkshelf-server/internal/errors"

// Upload is a file received from a client, held in memory until the
// blob store accepts it. Catalog uploads are book-sized, not video-sized,
// so buffering is fine.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// IsZero returns true when no file was submitted.
func (u *Upload) IsZero() bool {
	return u == nil || len(u.Data) == 0
}

// validate rejects empty or nameless uploads before they reach storage.
func (u *Upload) validate(field string) error {
	if u.IsZero() {
		return domainerrors.Validationf("%s file is required", field)
	}
	if u.Filename == "" {
		return domainerrors.Validationf("%s file needs a filename", field)
	}
	return nil
}
