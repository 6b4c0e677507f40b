package paging

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PabloPavan/pharmaerp_api/internal/apperrors"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	maxSearchLen    = 200

	// MaxPageNumber keeps (PageNumber-1)*PageSize well inside int range.
	MaxPageNumber = 10_000_000
)

// Filter is the pagination, search and sort part of a list request.
type Filter struct {
	PageNumber     int
	PageSize       int
	Search         string
	SortBy         string
	SortDescending bool
	// DirectionSet records that the client chose a direction; without it
	// the list's default direction applies when SortBy is empty.
	DirectionSet bool
}

// Result is one page of a filtered, ordered result set.
type Result[T any] struct {
	Items      []T   `json:"items"`
	TotalItems int64 `json:"totalItems"`
	PageNumber int   `json:"pageNumber"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// Normalized fills defaults and clamps the page size. Page numbers below one
// become one; page numbers above MaxPageNumber are clamped to it.
func (f Filter) Normalized() Filter {
	if f.PageNumber < 1 {
		f.PageNumber = 1
	}
	f.PageNumber = min(f.PageNumber, MaxPageNumber)
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	f.PageSize = min(f.PageSize, MaxPageSize)
	f.Search = strings.TrimSpace(f.Search)
	f.SortBy = strings.TrimSpace(f.SortBy)
	return f
}

func (f Filter) Offset() int {
	f = f.Normalized()
	return (f.PageNumber - 1) * f.PageSize
}

// Window returns the half-open row range [start, end) the page covers within
// total rows. start == end means the page is empty.
func (f Filter) Window(total int64) (start, end int64) {
	f = f.Normalized()
	start = int64(f.Offset())
	if start >= total {
		return total, total
	}
	end = min(start+int64(f.PageSize), total)
	return start, end
}

func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

func NewResult[T any](items []T, total int64, f Filter) Result[T] {
	f = f.Normalized()
	if items == nil {
		items = []T{}
	}
	return Result[T]{
		Items:      items,
		TotalItems: total,
		PageNumber: f.PageNumber,
		PageSize:   f.PageSize,
		TotalPages: TotalPages(total, f.PageSize),
	}
}

// FromQuery parses pageNumber, pageSize, search, sortBy and sortDescending
// (or sortOrder=asc|desc). Absent values take defaults; malformed ones are
// invalid input.
func FromQuery(v url.Values) (Filter, error) {
	f := Filter{
		Search: strings.TrimSpace(v.Get("search")),
		SortBy: strings.TrimSpace(v.Get("sortBy")),
	}

	if raw := strings.TrimSpace(v.Get("pageNumber")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Filter{}, apperrors.New(apperrors.KindInvalidInput, "pageNumber must be a positive integer")
		}
		f.PageNumber = n
	}
	if raw := strings.TrimSpace(v.Get("pageSize")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Filter{}, apperrors.New(apperrors.KindInvalidInput, "pageSize must be a positive integer")
		}
		f.PageSize = n
	}

	if len(f.Search) > maxSearchLen {
		return Filter{}, apperrors.New(apperrors.KindInvalidInput, "search is too long")
	}

	if raw := strings.TrimSpace(v.Get("sortDescending")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Filter{}, apperrors.New(apperrors.KindInvalidInput, "sortDescending must be a boolean")
		}
		f.SortDescending = b
		f.DirectionSet = true
	} else if raw := strings.ToLower(strings.TrimSpace(v.Get("sortOrder"))); raw != "" {
		switch raw {
		case "asc":
			f.SortDescending = false
		case "desc":
			f.SortDescending = true
		default:
			return Filter{}, apperrors.New(apperrors.KindInvalidInput, "sortOrder must be asc or desc")
		}
		f.DirectionSet = true
	}

	return f.Normalized(), nil
}

// Values renders the filter back to query parameters in canonical form.
func (f Filter) Values() url.Values {
	f = f.Normalized()
	v := url.Values{}
	v.Set("pageNumber", strconv.Itoa(f.PageNumber))
	v.Set("pageSize", strconv.Itoa(f.PageSize))
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.SortBy != "" {
		v.Set("sortBy", f.SortBy)
	}
	if f.DirectionSet || f.SortDescending {
		v.Set("sortDescending", strconv.FormatBool(f.SortDescending))
	}
	return v
}
