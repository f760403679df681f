package domain

import "strings"

// Author groups books by their writer. Name is unique within the catalog;
// books point here by ID and the store keeps a reverse index, so there is
// no back-reference list to maintain.
type Author struct {
	Record
	Name       string   `json:"name"`
	Bio        string   `json:"bio,omitempty"`
	ImageAsset AssetRef `json:"image_asset,omitempty"`
}

// NormalizeAuthorName produces the uniqueness key for an author name:
// lowercased with surrounding and internal whitespace collapsed.
func NormalizeAuthorName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
