package domain

import "time"

// Cart holds the books a user intends to purchase. One cart per user.
// Deleting a book pulls it from every cart; carts never reference
// nonexistent books for longer than a cascade takes to run.
type Cart struct {
	Record
	UserID  string   `json:"user_id"`
	BookIDs []string `json:"book_ids"`
}

// Favorites is a user's wishlist. Same membership rules as Cart.
type Favorites struct {
	Record
	UserID  string   `json:"user_id"`
	BookIDs []string `json:"book_ids"`
}

// Contains reports whether the cart holds the given book.
func (c *Cart) Contains(bookID string) bool {
	return containsID(c.BookIDs, bookID)
}

// Contains reports whether the favorites list holds the given book.
func (f *Favorites) Contains(bookID string) bool {
	return containsID(f.BookIDs, bookID)
}

// OrderLine is a point-in-time snapshot of a purchased book. Title,
// author and price are copied at checkout so order history survives
// catalog deletes.
type OrderLine struct {
	BookID     string  `json:"book_id"`
	Title      string  `json:"title"`
	AuthorName string  `json:"author_name"`
	UnitPrice  float64 `json:"unit_price"`
}

// Order is a historical record of a completed purchase. Orders are
// immutable after placement and are never touched by catalog cascades.
type Order struct {
	Record
	UserID   string      `json:"user_id"`
	Lines    []OrderLine `json:"lines"`
	Total    float64     `json:"total"`
	PlacedAt time.Time   `json:"placed_at"`
}

// Contains reports whether the order includes the given book.
func (o *Order) Contains(bookID string) bool {
	for _, line := range o.Lines {
		if line.BookID == bookID {
			return true
		}
	}
	return false
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// RemoveID returns ids with every occurrence of id removed, and whether
// anything was removed. The input slice is not modified.
func RemoveID(ids []string, id string) ([]string, bool) {
	removed := false
	out := make([]string, 0, len(ids))
	for _, candidate := range ids {
		if candidate == id {
			removed = true
			continue
		}
		out = append(out, candidate)
	}
	return out, removed
}
