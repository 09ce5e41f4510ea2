package api

import (
	"encoding/json"
	"fmt"

	"github.com/simp-lee/shopadmin/internal/domain"
)

// itemsEnvelope is the list layout of the newer backend modules.
type itemsEnvelope[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	PageNumber int   `json:"pageNumber"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// resultsEnvelope is the list layout of the older backend modules.
type resultsEnvelope[T any] struct {
	Results        []T   `json:"results"`
	CurrentPage    int   `json:"currentPage"`
	PageCount      int   `json:"pageCount"`
	PageSize       int   `json:"pageSize"`
	RowCount       int64 `json:"rowCount"`
	FirstRowOnPage int   `json:"firstRowOnPage"`
	LastRowOnPage  int   `json:"lastRowOnPage"`
}

// decodeEnvelope converts a list payload of the given shape to the canonical
// page. req supplies the page number and size when the backend omits them.
func decodeEnvelope[T any](shape EnvelopeShape, payload json.RawMessage, req domain.PageRequest) (*domain.Page[T], error) {
	var page domain.Page[T]

	switch shape {
	case ShapeItems:
		var env itemsEnvelope[T]
		if err := json.Unmarshal(payload, &env); err != nil {
			return nil, fmt.Errorf("decode items envelope: %w", err)
		}
		page = domain.Page[T]{
			Items:      env.Items,
			PageNumber: env.PageNumber,
			PageSize:   env.PageSize,
			TotalCount: env.TotalCount,
			TotalPages: env.TotalPages,
		}
	case ShapeResults:
		var env resultsEnvelope[T]
		if err := json.Unmarshal(payload, &env); err != nil {
			return nil, fmt.Errorf("decode results envelope: %w", err)
		}
		page = domain.Page[T]{
			Items:      env.Results,
			PageNumber: env.CurrentPage,
			PageSize:   env.PageSize,
			TotalCount: env.RowCount,
			TotalPages: env.PageCount,
		}
	default:
		return nil, fmt.Errorf("unknown envelope shape %d", shape)
	}

	if page.Items == nil {
		page.Items = []T{}
	}
	if page.PageNumber <= 0 {
		page.PageNumber = max(req.Page, 1)
	}
	if page.PageSize <= 0 {
		page.PageSize = req.PageSize
	}
	if page.TotalPages <= 0 {
		page.TotalPages = domain.TotalPagesFor(page.TotalCount, page.PageSize)
	}
	return &page, nil
}
