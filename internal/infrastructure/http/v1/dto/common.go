// Package dto provides the request and response bodies of the HTTP API.
package dto

import (
	"backoffice/internal/domain"
)

// IDResponse is returned by endpoints that create a record.
type IDResponse struct {
	ID string `json:"id"`
}

// PageQuery holds paging query parameters.
type PageQuery struct {
	Search string `form:"search"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

// ToListFilter converts the query into a normalized domain filter.
func (q PageQuery) ToListFilter() domain.ListFilter {
	return domain.ListFilter{Search: q.Search, Limit: q.Limit, Offset: q.Offset}.Normalize()
}

// ListResponse wraps one page of items.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// MapList converts a domain page with fn.
func MapList[E, T any](res domain.ListResult[E], fn func(E) T) ListResponse[T] {
	items := make([]T, 0, len(res.Items))
	for _, e := range res.Items {
		items = append(items, fn(e))
	}
	return ListResponse[T]{
		Items:      items,
		TotalCount: res.TotalCount,
		Limit:      res.Limit,
		Offset:     res.Offset,
	}
}
