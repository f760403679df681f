package assets

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	domainerrors "github.com/inkshelfapp/inkshelf-server/internal/errors"
)

// urlPrefix is the path segment under which blobs are served.
const urlPrefix = "/assets/"

// DiskStore stores blobs on the local filesystem, one directory per
// namespace. Thread-safe for concurrent slot uploads within a single
// lifecycle operation.
type DiskStore struct {
	basePath string
	baseURL  string
	mu       sync.RWMutex // Protects file operations
}

// NewDiskStore creates a DiskStore rooted at basePath. Retrieval URLs
// are baseURL + "/assets/{namespace}/{key}". Namespace directories are
// created up front so a misconfigured path fails at startup, not on the
// first upload.
func NewDiskStore(basePath, baseURL string) (*DiskStore, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if baseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}

	for _, ns := range []string{NamespaceBooks, NamespaceCovers, NamespaceSamples, NamespaceAuthors} {
		if err := os.MkdirAll(filepath.Join(basePath, ns), 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", ns, err)
		}
	}

	return &DiskStore{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// Put writes data under namespace/key and returns the retrieval URL.
// An existing blob at the same key is overwritten; id-derived keys make
// that the slot-replacement path, not an accident.
func (s *DiskStore) Put(ctx context.Context, namespace, key string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domainerrors.StorageWrite(err, "upload canceled")
	}
	path, err := s.resolve(namespace, key)
	if err != nil {
		return "", domainerrors.StorageWrite(err, "invalid storage key")
	}
	if len(data) == 0 {
		return "", domainerrors.StorageWrite(nil, "blob data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Keys contain a record ID segment; make sure its directory exists.
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", domainerrors.StorageWrite(err, "failed to create blob directory")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", domainerrors.StorageWrite(err, "failed to write blob")
	}
	if contentType != "" {
		if err := os.WriteFile(path+".ctype", []byte(contentType), 0644); err != nil {
			return "", domainerrors.StorageWrite(err, "failed to write blob metadata")
		}
	}

	return s.baseURL + urlPrefix + namespace + "/" + key, nil
}

// Delete removes the blob a previously issued URL points at. A blob
// that is already gone is treated as deleted so cascade retries stay
// idempotent.
func (s *DiskStore) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return domainerrors.StorageDelete(err, "delete canceled")
	}
	namespace, key, err := s.parseURL(url)
	if err != nil {
		return domainerrors.StorageDelete(err, "unrecognized asset URL")
	}
	path, err := s.resolve(namespace, key)
	if err != nil {
		return domainerrors.StorageDelete(err, "invalid storage key")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return domainerrors.StorageDelete(err, "failed to delete blob")
	}
	if err := os.Remove(path + ".ctype"); err != nil && !os.IsNotExist(err) {
		return domainerrors.StorageDelete(err, "failed to delete blob metadata")
	}
	return nil
}

// Open returns the blob contents and content type for a namespace/key
// pair. The content type falls back to the key's extension, then to
// application/octet-stream.
func (s *DiskStore) Open(ctx context.Context, namespace, key string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", domainerrors.Internal("read canceled").WithCause(err)
	}
	path, err := s.resolve(namespace, key)
	if err != nil {
		return nil, "", domainerrors.NotFound("asset not found")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", domainerrors.NotFound("asset not found")
		}
		return nil, "", domainerrors.Internal("failed to read blob").WithCause(err)
	}

	contentType := "application/octet-stream"
	if meta, err := os.ReadFile(path + ".ctype"); err == nil && len(meta) > 0 {
		contentType = string(meta)
	} else if byExt := mime.TypeByExtension(filepath.Ext(key)); byExt != "" {
		contentType = byExt
	}

	return data, contentType, nil
}

// URL returns the retrieval URL for a namespace/key pair without
// touching the filesystem.
func (s *DiskStore) URL(namespace, key string) string {
	return s.baseURL + urlPrefix + namespace + "/" + key
}

// resolve maps a namespace/key pair onto the filesystem, rejecting
// anything that would escape the base path.
func (s *DiskStore) resolve(namespace, key string) (string, error) {
	if namespace == "" || key == "" {
		return "", fmt.Errorf("namespace and key are required")
	}
	path := filepath.Join(s.basePath, namespace, filepath.FromSlash(key))
	if !strings.HasPrefix(path, filepath.Clean(s.basePath)+string(os.PathSeparator)) {
		return "", fmt.Errorf("key escapes storage root: %s", key)
	}
	return path, nil
}

// parseURL splits a retrieval URL issued by this store back into its
// namespace and key.
func (s *DiskStore) parseURL(url string) (namespace, key string, err error) {
	rest, ok := strings.CutPrefix(url, s.baseURL+urlPrefix)
	if !ok {
		// Tolerate bare paths so callers can pass "/assets/ns/key".
		rest, ok = strings.CutPrefix(url, urlPrefix)
		if !ok {
			return "", "", fmt.Errorf("URL %q was not issued by this store", url)
		}
	}
	namespace, key, ok = strings.Cut(rest, "/")
	if !ok || namespace == "" || key == "" {
		return "", "", fmt.Errorf("URL %q is missing a namespace or key", url)
	}
	return namespace, key, nil
}
