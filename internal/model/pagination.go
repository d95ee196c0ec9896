package model

// SortOrder is the direction of a listing.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// DefaultSortField is used whenever the requested sort field is not allowed.
const DefaultSortField = "createdAt"

// ListQuery holds the paging and ordering part of a list request. Out of
// range values are accepted here and normalized by the service layer.
type ListQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	SortBy string `form:"sortBy"`
	Order  string `form:"order"`
}

// ListParams is a normalized ListQuery: page and limit are in range and
// SortBy is a key of the resource's sort allow-list.
type ListParams struct {
	Page   int
	Limit  int
	SortBy string
	Order  SortOrder
}

// Offset is the number of rows to skip for the current page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
