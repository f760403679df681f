// Package dto provides Data Transfer Objects for API responses.
//
// DTOs carry denormalized display fields (author name, category title)
// and derived values (sale price) alongside the stored record, so
// clients can render a result without extra lookups. Privileged fields
// are projected out here based on the requester's entitlement.
package dto

import "github.com/inkshelfapp/inkshelf-server/internal/domain"

// Book is the client-facing representation of a book.
//
// SourceAsset shadows the embedded record's field: it is only populated
// when the requester has purchased the book, so an unentitled reader
// never sees the full-book URL. Cover and sample stay public.
type Book struct {
	*domain.Book

	// Access-projected override of the embedded source_asset.
	SourceAsset *domain.AssetRef `json:"source_asset,omitempty"`

	// Derived pricing, recomputed on every read.
	SalePrice float64 `json:"sale_price"`
	OnSale    bool    `json:"on_sale"`

	// Denormalized display fields.
	AuthorName    string `json:"author_name,omitempty"`
	CategoryTitle string `json:"category_title,omitempty"`
}

// NewBook projects a stored book for a requester. entitled is true only
// when the requester holds an order containing this book; listing
// endpoints always pass false.
func NewBook(book *domain.Book, authorName, categoryTitle string, entitled bool) *Book {
	view := &Book{
		Book:          book,
		SalePrice:     book.SalePrice(),
		OnSale:        book.OnSale(),
		AuthorName:    authorName,
		CategoryTitle: categoryTitle,
	}
	if entitled && !book.SourceAsset.IsZero() {
		ref := book.SourceAsset
		view.SourceAsset = &ref
	}
	return view
}

// Author is the client-facing representation of an author, with its
// books resolved through the reverse index.
type Author struct {
	*domain.Author
	Books []*Book `json:"books"`
}

// Category is the client-facing representation of a category, with its
// books resolved through the reverse index.
type Category struct {
	*domain.Category
	Books []*Book `json:"books"`
}

// OrderLine mirrors the stored snapshot line; it needs no projection
// because snapshots only ever contain public fields.
type Order struct {
	*domain.Order
}
