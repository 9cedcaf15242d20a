package repository

// Page request bounds. Values outside are rejected by the service layer before a query is built.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 10000
	DefaultRange = 30
	MaxRange     = 366
)

// PageOptions is a validated page request: 1-based page, page size and a window in days.
type PageOptions struct {
	Page  int
	Limit int
	Range int
}

// Skip is the row offset of the page.
func (o PageOptions) Skip() int {
	if o.Page < 1 {
		return 0
	}
	return (o.Page - 1) * o.Limit
}

// PageMeta describes where a page sits in the full filtered result.
type PageMeta struct {
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	ItemCount       int64 `json:"itemCount"`
	PageCount       int   `json:"pageCount"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	HasNextPage     bool  `json:"hasNextPage"`
}

// NewPageMeta derives page metadata from the total item count of the filtered set.
func NewPageMeta(itemCount int64, opts PageOptions) PageMeta {
	meta := PageMeta{Page: opts.Page, Limit: opts.Limit, ItemCount: itemCount}
	if opts.Limit > 0 {
		meta.PageCount = int((itemCount + int64(opts.Limit) - 1) / int64(opts.Limit))
	}
	meta.HasPreviousPage = opts.Page > 1
	meta.HasNextPage = opts.Page < meta.PageCount
	return meta
}

// Page carries one page of rows and its metadata. Data is never nil so it encodes as [].
type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

// NewPage assembles a page from fetched rows and the independent total count.
func NewPage[T any](data []T, itemCount int64, opts PageOptions) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{Data: data, Meta: NewPageMeta(itemCount, opts)}
}
