package models

// DefaultPageSize is the fixed page size for all list endpoints.
const DefaultPageSize = 10

// ListQuery describes a collection request: exact-match filters, an
// ordering field (with optional descending marker) and a 1-based page.
// Filter and ordering fields outside the collection's allow-list are
// ignored silently rather than failing the request.
type ListQuery struct {
	Filters  map[string]string
	OrderBy  string
	Desc     bool
	Page     int
	PageSize int
}

// Normalize fills in defaults for zero values.
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
}

// Offset returns the number of records to skip for the requested page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Page is the pagination envelope returned by list endpoints. Next and
// Previous hold page numbers, or null at the edges.
type Page struct {
	Count    int64 `json:"count"`
	Next     *int  `json:"next"`
	Previous *int  `json:"previous"`
	Results  any   `json:"results"`
}

// NewPage builds the envelope for one page of results.
func NewPage(results any, count int64, q ListQuery) *Page {
	page := &Page{Count: count, Results: results}
	if q.Page > 1 {
		prev := q.Page - 1
		page.Previous = &prev
	}
	if int64(q.Page*q.PageSize) < count {
		next := q.Page + 1
		page.Next = &next
	}
	return page
}
