package server

import (
	"fmt"
	"net/http"
	"strconv"
)

// Params selects a page. A PageSize of 0 returns everything.
type Params struct {
	Page     int
	PageSize int
}

type Meta struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

type Page[T any] struct {
	Items []T `json:"items"`
	Meta  Meta `json:"meta"`
}

// ParsePaginationParams extracts and validates pagination params from request
func ParsePaginationParams(r *http.Request) (Params, error) {
	params := Params{
		Page:     1,
		PageSize: 0,
	}

	qp := r.URL.Query()

	if pageStr := qp.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return params, fmt.Errorf("invalid page parameter: must be positive integer")
		}
		params.Page = page
	}

	if pageSizeStr := qp.Get("pageSize"); pageSizeStr != "" {
		pageSize, err := strconv.Atoi(pageSizeStr)
		if err != nil || pageSize < 0 {
			return params, fmt.Errorf("invalid pageSize parameter: must be non-negative integer")
		}
		params.PageSize = pageSize
	}

	return params, nil
}

func paginate[T any](items []T, p Params) Page[T] {
	meta := Meta{
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: len(items),
	}

	if items == nil {
		items = []T{}
	}
	if p.PageSize == 0 {
		if len(items) > 0 {
			meta.TotalPages = 1
		}
		return Page[T]{Items: items, Meta: meta}
	}

	meta.TotalPages = (len(items) + p.PageSize - 1) / p.PageSize

	offset := (p.Page - 1) * p.PageSize
	if offset >= len(items) {
		return Page[T]{Items: []T{}, Meta: meta}
	}
	end := min(offset+p.PageSize, len(items))
	return Page[T]{Items: items[offset:end], Meta: meta}
}
