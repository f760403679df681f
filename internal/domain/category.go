package domain

import "strings"

// Category is a browsing shelf for books. Title is unique within the
// catalog; membership is derived from Book.CategoryID via a store index.
type Category struct {
	Record
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// NormalizeCategoryTitle produces the uniqueness key for a category title.
func NormalizeCategoryTitle(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), " "))
}
