package api

// API limits and constants.
const (
	// MaxUploadSize is the maximum allowed size for a multipart upload
	// across all files in the request (64 MB; source files are books).
	MaxUploadSize = 64 << 20
)

// Cache-Control header values.
const (
	CacheOneWeek = "public, max-age=604800"
	CacheNoStore = "no-cache"
)
