package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSalePrice(t *testing.T) {
	tests := []struct {
		name     string
		list     float64
		discount float64
		want     float64
	}{
		{"no discount", 10.00, 0, 10.00},
		{"half off", 20.00, 50, 10.00},
		{"full discount", 15.99, 100, 0},
		{"quarter off", 19.99, 25, 14.9925},
		{"fractional cents preserved", 9.99, 33, 9.99 * (1 - 33.0/100)},
		{"zero list price", 0, 50, 0},
		{"small discount", 100.00, 1, 99.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SalePrice(tt.list, tt.discount), 1e-9)
		})
	}
}

func TestBook_SalePrice(t *testing.T) {
	book := &Book{ListPrice: 20.00, DiscountPercent: 50}
	assert.InDelta(t, 10.00, book.SalePrice(), 1e-9)
	assert.True(t, book.OnSale())

	book.DiscountPercent = 0
	assert.InDelta(t, 20.00, book.SalePrice(), 1e-9)
	assert.False(t, book.OnSale())
}

func TestBook_AssetSlots(t *testing.T) {
	book := &Book{}
	assert.False(t, book.AssetsComplete())

	book.SetAsset(SlotSource, AssetRef{URL: "http://localhost/assets/books/b-1/source.epub"})
	book.SetAsset(SlotCover, AssetRef{URL: "http://localhost/assets/covers/b-1/cover.jpg"})
	assert.False(t, book.AssetsComplete())

	book.SetAsset(SlotSample, AssetRef{URL: "http://localhost/assets/samples/b-1/sample.pdf"})
	assert.True(t, book.AssetsComplete())

	assert.Equal(t, "http://localhost/assets/covers/b-1/cover.jpg", book.Asset(SlotCover).URL)
	assert.True(t, book.Asset("bogus").IsZero())
}

func TestRemoveID(t *testing.T) {
	ids := []string{"a", "b", "c", "b"}

	out, removed := RemoveID(ids, "b")
	assert.True(t, removed)
	assert.Equal(t, []string{"a", "c"}, out)
	assert.Equal(t, []string{"a", "b", "c", "b"}, ids)

	out, removed = RemoveID(ids, "z")
	assert.False(t, removed)
	assert.Equal(t, []string{"a", "b", "c"}, out[:3])
}

func TestNormalizeAuthorName(t *testing.T) {
	assert.Equal(t, "ursula k. le guin", NormalizeAuthorName("  Ursula K.   Le Guin "))
	assert.Equal(t, NormalizeAuthorName("JANE AUSTEN"), NormalizeAuthorName("jane austen"))
}
