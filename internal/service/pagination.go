package service

import "github.com/stemsi/course-registry/internal/model"

// Paging holds the configured page sizes shared by every list endpoint.
type Paging struct {
	DefaultLimit int
	MaxLimit     int
}

// normalize coerces a raw list query into valid parameters. Nothing is
// rejected: out of range values fall back to defaults.
func (p Paging) normalize(q model.ListQuery, sortFields map[string]string) model.ListParams {
	page := q.Page
	if page < 1 {
		page = 1
	}

	limit := q.Limit
	if limit < 1 {
		limit = p.DefaultLimit
	}
	if limit > p.MaxLimit {
		limit = p.MaxLimit
	}

	sortBy := q.SortBy
	if _, ok := sortFields[sortBy]; !ok {
		sortBy = model.DefaultSortField
	}

	order := model.SortOrder(q.Order)
	if order != model.SortAsc && order != model.SortDesc {
		order = model.SortDesc
	}

	return model.ListParams{Page: page, Limit: limit, SortBy: sortBy, Order: order}
}
