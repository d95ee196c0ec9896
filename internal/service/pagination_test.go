package service

import (
	"testing"

	"github.com/stemsi/course-registry/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestPaging_Normalize(t *testing.T) {
	paging := Paging{DefaultLimit: 10, MaxLimit: 100}

	tests := []struct {
		name string
		in   model.ListQuery
		want model.ListParams
	}{
		{
			name: "empty query uses defaults",
			in:   model.ListQuery{},
			want: model.ListParams{Page: 1, Limit: 10, SortBy: "createdAt", Order: model.SortDesc},
		},
		{
			name: "negative page and limit are coerced",
			in:   model.ListQuery{Page: -4, Limit: -1},
			want: model.ListParams{Page: 1, Limit: 10, SortBy: "createdAt", Order: model.SortDesc},
		},
		{
			name: "limit above maximum is clamped",
			in:   model.ListQuery{Page: 3, Limit: 1000},
			want: model.ListParams{Page: 3, Limit: 100, SortBy: "createdAt", Order: model.SortDesc},
		},
		{
			name: "allowed sort field and order are kept",
			in:   model.ListQuery{Page: 2, Limit: 5, SortBy: "duration", Order: "asc"},
			want: model.ListParams{Page: 2, Limit: 5, SortBy: "duration", Order: model.SortAsc},
		},
		{
			name: "unknown sort field and order fall back",
			in:   model.ListQuery{SortBy: "password", Order: "sideways"},
			want: model.ListParams{Page: 1, Limit: 10, SortBy: "createdAt", Order: model.SortDesc},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paging.normalize(tt.in, model.CourseSortFields))
		})
	}
}
