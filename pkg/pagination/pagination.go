package pagination

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// SortDirection is either ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Params holds pagination and sort parameters extracted from a request.
type Params struct {
	Page    int
	Limit   int
	Offset  int
	SortBy  string
	SortDir SortDirection
}

// Sorting lists the sort keys a resource accepts, mapped to column names,
// plus the fallback used when the caller asks for something else.
type Sorting struct {
	Allowed    map[string]string
	DefaultKey string
	DefaultDir SortDirection
}

// FromQuery reads page/limit/offset and sortBy/sortOrder from a query string.
// An explicit offset wins over page. Unknown sort keys fall back to the default.
func FromQuery(q url.Values, sorting Sorting) Params {
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	page, _ := strconv.Atoi(q.Get("page"))
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	if raw := q.Get("offset"); raw != "" {
		if o, err := strconv.Atoi(raw); err == nil && o >= 0 {
			offset = o
			page = o/limit + 1
		}
	}

	return Params{
		Page:    page,
		Limit:   limit,
		Offset:  offset,
		SortBy:  sorting.column(q.Get("sortBy")),
		SortDir: sorting.direction(q.Get("sortOrder")),
	}
}

func (s Sorting) column(key string) string {
	if col, ok := s.Allowed[key]; ok {
		return col
	}
	return s.Allowed[s.DefaultKey]
}

func (s Sorting) direction(raw string) SortDirection {
	switch SortDirection(strings.ToLower(raw)) {
	case SortAsc:
		return SortAsc
	case SortDesc:
		return SortDesc
	}
	if s.DefaultDir == "" {
		return SortDesc
	}
	return s.DefaultDir
}

// Page wraps one page of results.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPage builds a page from the items returned for params and the total row count.
func NewPage[T any](items []T, total int, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
	}
}
