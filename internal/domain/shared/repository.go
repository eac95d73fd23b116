package shared

// Filter narrows and orders list queries. Lists are paged by offset and
// limit; a zero Limit returns every row.
type Filter struct {
	Offset   int
	Limit    int
	OrderBy  string
	OrderDir string
	Search   string
	// Filters holds repository specific equality filters, e.g. experiment_id
	Filters map[string]any
}

// DefaultFilter returns the first 20 rows, newest first
func DefaultFilter() Filter {
	return Filter{
		Limit:    20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]any),
	}
}

// Paginated is one page of a list together with the total row count
type Paginated[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
}

// NewPaginated wraps items taken at offset with the given limit
func NewPaginated[T any](items []T, total int64, offset, limit int) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	return Paginated[T]{Items: items, Total: total, Offset: offset, Limit: limit}
}

// HasMore reports whether rows follow this page
func (p Paginated[T]) HasMore() bool {
	return int64(p.Offset+len(p.Items)) < p.Total
}
