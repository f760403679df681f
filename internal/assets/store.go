// Package assets provides blob storage for book files, covers, samples,
// and author images. Blobs live under a namespace and a key derived from
// the owning record's ID, and resolve to durable retrieval URLs.
package assets

import "context"

// Namespaces used by the catalog. Each record type owns its slots
// exclusively; deleting the record deletes the blobs.
const (
	NamespaceBooks   = "books"
	NamespaceCovers  = "covers"
	NamespaceSamples = "samples"
	NamespaceAuthors = "authors"
)

// Store is an opaque key to URL blob store. Put overwrites silently if
// the key already exists; keys are derived from record IDs so collisions
// only happen on purpose (slot replacement).
type Store interface {
	// Put writes data under namespace/key and returns the retrieval URL.
	Put(ctx context.Context, namespace, key string, data []byte, contentType string) (string, error)
	// Delete removes the blob a previously issued URL points at.
	// A missing blob is not an error; cleanup callers retry.
	Delete(ctx context.Context, url string) error
	// Open returns the blob contents and stored content type for a
	// namespace/key pair.
	Open(ctx context.Context, namespace, key string) ([]byte, string, error)
}
