package view

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/simp-lee/pagination"

	"github.com/simp-lee/shopadmin/internal/domain"
)

const pageWindow = 7

// Pagination drives the pagination partial: the page window and prev/next
// links come from the paginator, Path and Query build the links.
type Pagination[T any] struct {
	*pagination.Pagination[T]
	Path  string
	Query url.Values
}

// NewPagination builds the controls for path from a page the backend
// already returned. The query keeps the request's filters, sort and page
// size so page links preserve them.
func NewPagination[T any](ctx context.Context, path string, req domain.PageRequest, page domain.Page[T]) Pagination[T] {
	q := url.Values{}
	for k, v := range req.Filter {
		q.Set(k, v)
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	if req.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(req.PageSize))
	}

	size := page.PageSize
	if size <= 0 {
		size = req.PageSize
	}
	if size <= 0 {
		size = max(len(page.Items), 1)
	}
	number := max(page.PageNumber, 1)

	p, err := pagination.NewPaginator(
		pagination.WithItemsPerPage[T](size),
		pagination.WithPagesInRange[T](pageWindow),
		pagination.WithKnownTotal[T](max(page.TotalCount, 0)),
		pagination.WithSliceCallback(func(context.Context, int, int) ([]T, error) {
			return page.Items, nil
		}),
	).Paginate(ctx, number)
	if err != nil {
		slog.DebugContext(ctx, "pagination fallback", slog.String("path", path), slog.Any("error", err))
		p = singlePage(page.Items, size, page.TotalCount)
	}
	return Pagination[T]{Pagination: p, Path: path, Query: q}
}

func singlePage[T any](items []T, size int, total int64) *pagination.Pagination[T] {
	return &pagination.Pagination[T]{
		Items:            items,
		Pages:            []int{1},
		TotalPages:       1,
		CurrentPage:      1,
		FirstPage:        1,
		LastPage:         1,
		ItemsPerPage:     size,
		TotalItems:       total,
		FirstPageInRange: 1,
		LastPageInRange:  1,
	}
}

// URL returns the link to page n.
func (p Pagination[T]) URL(n int) string {
	q := url.Values{}
	for k, v := range p.Query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(n))
	return p.Path + "?" + q.Encode()
}
