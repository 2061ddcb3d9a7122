package core

const (
	DefaultLimit = 10
	MaxLimit     = 100
	DefaultDepth = 2
	MaxDepth     = 2
)

// ListOptions controls pagination and relation expansion of list reads.
// Zero values select the defaults.
type ListOptions struct {
	Limit int
	Page  int
	Depth *int
}

// Normalize clamps the options into their valid ranges.
func (o ListOptions) Normalize() ListOptions {
	switch {
	case o.Limit <= 0:
		o.Limit = DefaultLimit
	case o.Limit > MaxLimit:
		o.Limit = MaxLimit
	}
	if o.Page <= 0 {
		o.Page = 1
	}
	depth := ClampDepth(o.Depth)
	o.Depth = &depth
	return o
}

// Offset is the number of records skipped before the current page.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// ExpandDepth returns the normalized depth.
func (o ListOptions) ExpandDepth() int {
	return ClampDepth(o.Depth)
}

// ClampDepth resolves an optional depth into [0, MaxDepth].
func ClampDepth(depth *int) int {
	if depth == nil {
		return DefaultDepth
	}
	switch d := *depth; {
	case d < 0:
		return 0
	case d > MaxDepth:
		return MaxDepth
	default:
		return d
	}
}

// Page is one page of a collection listing.
type Page[T any] struct {
	Docs        []T  `json:"docs"`
	TotalDocs   int  `json:"totalDocs"`
	Limit       int  `json:"limit"`
	Page        int  `json:"page"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewPage builds the page envelope for docs out of total records.
func NewPage[T any](docs []T, total int, opts ListOptions) *Page[T] {
	if docs == nil {
		docs = []T{}
	}
	pages := 0
	if opts.Limit > 0 {
		pages = (total + opts.Limit - 1) / opts.Limit
	}
	return &Page[T]{
		Docs:        docs,
		TotalDocs:   total,
		Limit:       opts.Limit,
		Page:        opts.Page,
		TotalPages:  pages,
		HasNextPage: opts.Page < pages,
		HasPrevPage: opts.Page > 1,
	}
}
