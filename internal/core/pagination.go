// AngelaMos | 2026
// pagination.go

package core

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PageParams struct {
	Page     int
	PageSize int
}

func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (p PageParams) Limit() int {
	return p.PageSize
}

// ParsePage reads page and page_size from the query string, clamped to
// sane bounds.
func ParsePage(r *http.Request) PageParams {
	p := PageParams{
		Page:     QueryInt(r, "page", 1),
		PageSize: QueryInt(r, "page_size", DefaultPageSize),
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func QueryInt(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}

func QueryBool(r *http.Request, key string) bool {
	parsed, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && parsed
}
