// AngelaMos | 2026
// pagination_test.go

package core

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		query string
		want  PageParams
	}{
		{query: "", want: PageParams{Page: 1, PageSize: DefaultPageSize}},
		{query: "page=3&page_size=10", want: PageParams{Page: 3, PageSize: 10}},
		{query: "page=0&page_size=-5", want: PageParams{Page: 1, PageSize: DefaultPageSize}},
		{query: "page=abc", want: PageParams{Page: 1, PageSize: DefaultPageSize}},
		{query: "page_size=5000", want: PageParams{Page: 1, PageSize: MaxPageSize}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			assert.Equal(t, tt.want, ParsePage(r))
		})
	}
}

func TestPageParams_Offset(t *testing.T) {
	p := PageParams{Page: 3, PageSize: 25}
	assert.Equal(t, 50, p.Offset())
	assert.Equal(t, 25, p.Limit())
}

func TestQueryBool(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?force=true&archived=nah", nil)
	assert.True(t, QueryBool(r, "force"))
	assert.False(t, QueryBool(r, "archived"))
	assert.False(t, QueryBool(r, "missing"))
}
