package domain

// AssetSlot names one of a book's binary asset slots.
type AssetSlot string

const (
	SlotSource AssetSlot = "source" // Full book file, purchase-gated
	SlotCover  AssetSlot = "cover"  // Cover image, public
	SlotSample AssetSlot = "sample" // Sample excerpt, public
)

// Slots lists every book asset slot in upload order.
var Slots = []AssetSlot{SlotSource, SlotCover, SlotSample}

// AssetRef points at a stored blob. The URL is durable and non-expiring;
// Filename preserves the original upload name for display and downloads.
type AssetRef struct {
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
}

// IsZero returns true if no blob is referenced.
func (a AssetRef) IsZero() bool {
	return a.URL == ""
}

// Book is a catalog product. AuthorID and CategoryID are the single
// source of truth for grouping; reverse lookups go through store indexes,
// not back-reference lists on Author/Category.
type Book struct {
	Record
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	AuthorID        string   `json:"author_id"`
	CategoryID      string   `json:"category_id"`
	ListPrice       float64  `json:"list_price"`
	DiscountPercent float64  `json:"discount_percent"` // 0-100, 0 means no sale
	SourceAsset     AssetRef `json:"source_asset"`
	CoverAsset      AssetRef `json:"cover_asset"`
	SampleAsset     AssetRef `json:"sample_asset"`
	CoverBlurHash   string   `json:"cover_blurhash,omitempty"` // Placeholder hash computed from the cover image
}

// SalePrice returns the effective price derived from ListPrice and
// DiscountPercent. It is never stored; recompute on every read.
func (b *Book) SalePrice() float64 {
	return SalePrice(b.ListPrice, b.DiscountPercent)
}

// OnSale returns true if the book carries an active discount.
func (b *Book) OnSale() bool {
	return b.DiscountPercent > 0
}

// Asset returns the reference held in the named slot.
func (b *Book) Asset(slot AssetSlot) AssetRef {
	switch slot {
	case SlotSource:
		return b.SourceAsset
	case SlotCover:
		return b.CoverAsset
	case SlotSample:
		return b.SampleAsset
	}
	return AssetRef{}
}

// SetAsset stores a reference into the named slot.
func (b *Book) SetAsset(slot AssetSlot, ref AssetRef) {
	switch slot {
	case SlotSource:
		b.SourceAsset = ref
	case SlotCover:
		b.CoverAsset = ref
	case SlotSample:
		b.SampleAsset = ref
	}
}

// AssetsComplete returns true once all three slots reference a blob.
// A fully created book always satisfies this.
func (b *Book) AssetsComplete() bool {
	return !b.SourceAsset.IsZero() && !b.CoverAsset.IsZero() && !b.SampleAsset.IsZero()
}
