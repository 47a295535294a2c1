package query

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Filter is one predicate against one named field, in untyped form.
// Between uses Value and ValueTo, In and NotIn use Values, the null and
// empty checks use neither.
type Filter struct {
	Field    string   `json:"columnName" validate:"required,max=100"`
	Operator Operator `json:"operator" validate:"required"`
	Value    string   `json:"value,omitempty" validate:"max=500"`
	ValueTo  string   `json:"valueTo,omitempty" validate:"max=500"`
	Values   []string `json:"values,omitempty" validate:"max=100,dive,max=500"`
}

type Sort struct {
	Field     string    `json:"columnName" validate:"required,max=100"`
	Direction Direction `json:"direction"`
}

// Request is a client query: paging, free-text search, filters and an
// ordered list of sort keys.
type Request struct {
	PageNumber int      `json:"pageNumber" validate:"gte=1"`
	PageSize   int      `json:"pageSize" validate:"gte=1,lte=100"`
	SearchTerm string   `json:"searchTerm,omitempty" validate:"max=200"`
	Filters    []Filter `json:"filters,omitempty" validate:"max=50,dive"`
	Sorts      []Sort   `json:"sortColumns,omitempty" validate:"max=10,dive"`
}

// WithDefaults fills an omitted page number or size. Negative values are
// left for validation to reject.
func (r Request) WithDefaults() Request {
	if r.PageNumber == 0 {
		r.PageNumber = 1
	}
	if r.PageSize == 0 {
		r.PageSize = DefaultPageSize
	}
	return r
}

// PagedResult is one page of a query plus the total number of matches.
type PagedResult[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

func NewPagedResult[T any](items []T, totalCount, pageNumber, pageSize int) PagedResult[T] {
	if items == nil {
		items = []T{}
	}
	return PagedResult[T]{
		Items:      items,
		TotalCount: totalCount,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalPages: totalPages(totalCount, pageSize),
	}
}

func totalPages(total, size int) int {
	if size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// MapPage projects the items of a page, keeping its counters.
func MapPage[T, R any](page PagedResult[T], project func(T) R) PagedResult[R] {
	items := make([]R, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, project(item))
	}
	return PagedResult[R]{
		Items:      items,
		TotalCount: page.TotalCount,
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}
}
