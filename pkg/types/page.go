package types

// DefaultPerPage is the page size applied when a request does not
// specify one.
const DefaultPerPage = 10

// PageRequest selects a window of a listing. Page is 1-indexed. A zero
// PerPage requests the whole listing unpaginated.
type PageRequest struct {
	Page    int
	PerPage int
}

// Normalize clamps Page to at least 1 and leaves PerPage as-is so the
// unpaginated sentinel (PerPage <= 0) survives.
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	return r
}

// Paginated reports whether the request asks for a window rather than
// the whole listing.
func (r PageRequest) Paginated() bool {
	return r.PerPage > 0
}

// Offset returns the number of records to skip for this window.
func (r PageRequest) Offset() int {
	r = r.Normalize()
	return (r.Page - 1) * r.PerPage
}

// Page is one window of a listing. Pages is ceil(Total/PerPage);
// concatenating every page's Items in order reproduces the full
// unpaginated listing.
type Page[T any] struct {
	Items   []T `json:"items"`
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Pages   int `json:"pages"`
}

// NewPage windows all (already ordered) into the requested page. With
// an unpaginated request the whole slice is returned as page 1 of 1.
// Items is never nil so listings marshal as [] rather than null.
func NewPage[T any](all []T, req PageRequest) Page[T] {
	req = req.Normalize()
	total := len(all)

	if !req.Paginated() {
		items := all
		if items == nil {
			items = []T{}
		}
		pages := 0
		if total > 0 {
			pages = 1
		}
		return Page[T]{Items: items, Total: total, Page: 1, PerPage: total, Pages: pages}
	}

	start := req.Offset()
	if start > total {
		start = total
	}
	end := start + req.PerPage
	if end > total {
		end = total
	}

	items := all[start:end]
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:   items,
		Total:   total,
		Page:    req.Page,
		PerPage: req.PerPage,
		Pages:   PageCount(total, req.PerPage),
	}
}

// PageCount returns ceil(total/perPage), or 0 when perPage is not
// positive.
func PageCount(total, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
