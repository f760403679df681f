package store

// PageParams contains offset pagination request parameters.
type PageParams struct {
	Page  int // 1-based page number
	Limit int // Items per page (defaults to 12, maximum 100)
}

// PagedResult contains one page of data and its metadata.
type PagedResult[T any] struct {
	Items       []T `json:"items"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	Total       int `json:"total"`
}

// DefaultPageLimit is the catalog's standard page size.
const DefaultPageLimit = 12

// maxPageLimit caps how much a single listing request can pull.
const maxPageLimit = 100

// Validate checks and corrects pagination parameters.
func (p *PageParams) Validate() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
}

// Paginate slices items into the requested page.
// totalPages = ceil(len(items) / limit); a page past the end is empty,
// not an error.
func Paginate[T any](items []T, params PageParams) PagedResult[T] {
	params.Validate()

	total := len(items)
	totalPages := (total + params.Limit - 1) / params.Limit

	skip := (params.Page - 1) * params.Limit
	if skip > total {
		skip = total
	}
	end := skip + params.Limit
	if end > total {
		end = total
	}

	return PagedResult[T]{
		Items:       items[skip:end],
		TotalPages:  totalPages,
		CurrentPage: params.Page,
		Total:       total,
	}
}
