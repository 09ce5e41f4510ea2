package domain

import "maps"

// PageRequest holds pagination, sorting, and filtering parameters.
// It is the only pagination request shape used inside the console; legacy
// backend parameter names are produced at the API boundary.
type PageRequest struct {
	Page     int
	PageSize int
	Sort     string
	Filter   map[string]string
}

// Page is the canonical paginated envelope.
type Page[T any] struct {
	Items      []T   `json:"items"`
	PageNumber int   `json:"page_number"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
}

// Equal reports whether r and o ask for the same page.
func (r PageRequest) Equal(o PageRequest) bool {
	return r.Page == o.Page && r.PageSize == o.PageSize && r.Sort == o.Sort && maps.Equal(r.Filter, o.Filter)
}

// TotalPagesFor computes the page count for total records at the given page size.
func TotalPagesFor(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
