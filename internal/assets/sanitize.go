package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

// SanitizeFilename collapses runs of whitespace to a single underscore
// and strips any path components, so an upload name is safe to use in a
// storage key or a Content-Disposition header.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	return whitespaceRuns.ReplaceAllString(name, "_")
}

// SlotKey builds the storage key for a record's asset slot:
// {recordID}/{slot}-{hash}{ext}, where hash is a short digest of the
// blob contents and ext comes from the uploaded filename. Keys are id-
// and content-derived, so distinct records can never collide and
// replacing a slot's file always issues a fresh URL.
func SlotKey(recordID, slot, filename string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(SanitizeFilename(filename)))
	sum := sha256.Sum256(data)
	return recordID + "/" + slot + "-" + hex.EncodeToString(sum[:4]) + ext
}
