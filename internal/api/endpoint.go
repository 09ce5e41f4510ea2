package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/simp-lee/shopadmin/internal/domain"
)

// PageStyle selects the query parameter names a list endpoint understands.
type PageStyle int

const (
	// PagingPage sends Page and PageSize.
	PagingPage PageStyle = iota
	// PagingPageNumber sends pageNumber and pageSize.
	PagingPageNumber
)

// String returns the style name used in configuration and CLI output.
func (s PageStyle) String() string {
	switch s {
	case PagingPage:
		return "page"
	case PagingPageNumber:
		return "pageNumber"
	default:
		return "unknown"
	}
}

// EnvelopeShape selects the list response layout an endpoint returns.
type EnvelopeShape int

const (
	// ShapeItems is {items, totalCount, pageNumber, pageSize, totalPages}.
	ShapeItems EnvelopeShape = iota
	// ShapeResults is {results, currentPage, pageCount, pageSize, rowCount, ...}.
	ShapeResults
)

// String returns the shape name used in CLI output.
func (s EnvelopeShape) String() string {
	switch s {
	case ShapeItems:
		return "items"
	case ShapeResults:
		return "results"
	default:
		return "unknown"
	}
}

// Endpoint describes how one resource is exposed by the backend.
type Endpoint struct {
	Name   string
	Path   string
	Paging PageStyle
	Shape  EnvelopeShape
}

// listQuery translates a canonical page request into the endpoint's query
// parameters. Filters pass through unchanged; they must not collide with the
// pagination names.
func (e Endpoint) listQuery(req domain.PageRequest) url.Values {
	q := url.Values{}
	for k, v := range req.Filter {
		if strings.TrimSpace(v) == "" {
			continue
		}
		q.Set(k, v)
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}

	page := strconv.Itoa(max(req.Page, 1))
	switch e.Paging {
	case PagingPageNumber:
		q.Set("pageNumber", page)
		if req.PageSize > 0 {
			q.Set("pageSize", strconv.Itoa(req.PageSize))
		}
	default:
		q.Set("Page", page)
		if req.PageSize > 0 {
			q.Set("PageSize", strconv.Itoa(req.PageSize))
		}
	}
	return q
}

func (e Endpoint) itemPath(id string) string {
	return e.Path + "/" + url.PathEscape(id)
}
