package service

import (
	"sort"
	"strings"

	"github.com/inkshelfapp/inkshelf-server/internal/domain"
	domainerrors "github.com/inkshelfapp/inkshelf-server/internal/errors"
)

// Sort orders accepted by the book listing.
const (
	SortDefault        = "default"
	SortOldest         = "oldest"
	SortNewest         = "newest"
	SortOnSale         = "on-sale"
	SortPriceLowToHigh = "price-low-to-high"
	SortPriceHighToLow = "price-high-to-low"
)

// BookQuery filters and orders the book collection. Author and Category
// are resolved IDs; zero values mean "don't filter". Price bounds are
// inclusive and apply to the derived sale price.
type BookQuery struct {
	AuthorID   string
	CategoryID string
	MinPrice   *float64
	MaxPrice   *float64
	Search     string // case-insensitive substring match on title
	SortBy     string
}

// validSorts guards the sortBy input.
var validSorts = map[string]bool{
	"":                 true,
	SortDefault:        true,
	SortOldest:         true,
	SortNewest:         true,
	SortOnSale:         true,
	SortPriceLowToHigh: true,
	SortPriceHighToLow: true,
}

// Validate rejects unknown sort orders and inverted price ranges.
func (q *BookQuery) Validate() error {
	if !validSorts[q.SortBy] {
		return domainerrors.Validationf("unknown sort order %q", q.SortBy)
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		return domainerrors.Validation("min_price cannot exceed max_price")
	}
	return nil
}

// Apply filters and sorts books in place of the store, which has no
// query planner. The input slice is in natural store order; sorts are
// stable so ties keep that order.
func (q *BookQuery) Apply(books []*domain.Book) []*domain.Book {
	matched := make([]*domain.Book, 0, len(books))
	search := strings.ToLower(q.Search)

	for _, book := range books {
		if q.AuthorID != "" && book.AuthorID != q.AuthorID {
			continue
		}
		if q.CategoryID != "" && book.CategoryID != q.CategoryID {
			continue
		}
		salePrice := book.SalePrice()
		if q.MinPrice != nil && salePrice < *q.MinPrice {
			continue
		}
		if q.MaxPrice != nil && salePrice > *q.MaxPrice {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(book.Title), search) {
			continue
		}
		// on-sale doubles as a filter: full-price books drop out.
		if q.SortBy == SortOnSale && !book.OnSale() {
			continue
		}
		matched = append(matched, book)
	}

	switch q.SortBy {
	case SortOldest:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		})
	case SortNewest:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	case SortOnSale, SortPriceLowToHigh:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].SalePrice() < matched[j].SalePrice()
		})
	case SortPriceHighToLow:
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].SalePrice() > matched[j].SalePrice()
		})
	}
	// default: natural store order, no explicit sort.

	return matched
}
