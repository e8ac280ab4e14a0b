package domain

// Page is the pagination envelope returned by all list operations.
type Page[T any] struct {
	Items       []T
	CurrentPage int
	TotalPages  int
	TotalItems  int64
	HasNextPage bool
	HasPrevPage bool
}

// NewPage assembles a page from a result slice and the matching total count.
func NewPage[T any](items []T, page, limit int, total int64) Page[T] {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Page[T]{
		Items:       items,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}
