// Package listing implements the list-filter-paginate pattern shared by every
// admin list: a free-text search over named fields, an equality filter on a
// status, a field-driven sort with direction, and page slicing.
//
// The same Query runs two ways. Filter, Sort, Paginate and Apply transform a
// slice in memory. Columns renders the Query as SQL so Postgres repositories
// push the work to the database with identical semantics.
package listing

import (
	"cmp"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps Offset within an int32 for any page size.
	MaxPage = math.MaxInt32 / MaxPageSize
)

// Query holds the user-controlled list parameters.
type Query struct {
	Search   string `json:"search"`
	Status   string `json:"status"`
	Sort     string `json:"sort"`
	Desc     bool   `json:"desc"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	// Unbounded disables pagination (exports).
	Unbounded bool `json:"-"`
}

// FromRequest parses ?search=&status=&sort=&order=&page=&page_size=.
func FromRequest(r *http.Request) Query {
	v := r.URL.Query()
	page, _ := strconv.Atoi(v.Get("page"))
	size, _ := strconv.Atoi(v.Get("page_size"))
	if size == 0 {
		size, _ = strconv.Atoi(v.Get("limit"))
	}
	return Query{
		Search:   v.Get("search"),
		Status:   v.Get("status"),
		Sort:     v.Get("sort"),
		Desc:     strings.EqualFold(v.Get("order"), "desc"),
		Page:     page,
		PageSize: size,
	}.Normalize()
}

// Normalize trims the search text and clamps page and page size.
func (q Query) Normalize() Query {
	q.Search = strings.TrimSpace(q.Search)
	q.Status = strings.TrimSpace(q.Status)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Page > MaxPage {
		q.Page = MaxPage
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

// All returns q with pagination disabled and the first page selected.
func (q Query) All() Query {
	q = q.Normalize()
	q.Page = 1
	q.Unbounded = true
	return q
}

// StatusActive reports whether the status predicate applies. Empty and
// "all" disable it.
func (q Query) StatusActive() bool {
	return q.Status != "" && !strings.EqualFold(q.Status, "all")
}

// Offset is the zero-based index of the first row on the page.
func (q Query) Offset() int {
	q = q.Normalize()
	return (q.Page - 1) * q.PageSize
}

// Fields tells the in-memory path how to read a T.
type Fields[T any] struct {
	// Search accessors; a row matches when any of them contains the text.
	Search []func(T) string
	// Status accessor compared for equality with Query.Status.
	Status func(T) string
	// Sort comparators keyed by the public sort key.
	Sort map[string]func(a, b T) int
}

// Filter returns the rows that satisfy every active predicate, in their
// original order. The search is a case-insensitive substring match.
func Filter[T any](items []T, q Query, f Fields[T]) []T {
	q = q.Normalize()
	needle := strings.ToLower(q.Search)
	checkStatus := q.StatusActive() && f.Status != nil

	out := make([]T, 0, len(items))
	for _, it := range items {
		if checkStatus && !strings.EqualFold(f.Status(it), q.Status) {
			continue
		}
		if needle != "" && !matchesAny(it, needle, f.Search) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func matchesAny[T any](it T, needle string, fields []func(T) string) bool {
	for _, get := range fields {
		if strings.Contains(strings.ToLower(get(it)), needle) {
			return true
		}
	}
	return false
}

// Sort orders items in place by the comparator registered for key. Equal
// keys keep their relative order. An unknown key leaves items untouched.
func Sort[T any](items []T, key string, desc bool, f Fields[T]) {
	less, ok := f.Sort[key]
	if !ok || less == nil {
		return
	}
	slices.SortStableFunc(items, func(a, b T) int {
		if desc {
			return less(b, a)
		}
		return less(a, b)
	})
}

// Paginate returns the page of items selected by page and size. Pages past
// the end are empty.
func Paginate[T any](items []T, page, size int) []T {
	q := Query{Page: page, PageSize: size}.Normalize()
	start := q.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + q.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Apply runs filter, sort and paginate and wraps the result in a Page.
// Total counts the filtered rows, before slicing.
func Apply[T any](items []T, q Query, f Fields[T]) Page[T] {
	q = q.Normalize()
	filtered := Filter(items, q, f)
	Sort(filtered, q.Sort, q.Desc, f)
	if q.Unbounded {
		return NewPage(filtered, len(filtered), q)
	}
	return NewPage(Paginate(filtered, q.Page, q.PageSize), len(filtered), q)
}

// Page is one slice of a list plus the counts a pager needs.
type Page[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// NewPage wraps items already sliced for q.
func NewPage[T any](items []T, total int, q Query) Page[T] {
	q = q.Normalize()
	if items == nil {
		items = []T{}
	}
	size := q.PageSize
	if q.Unbounded {
		size = len(items)
	}
	pages := 1
	if size > 0 && total > 0 {
		pages = (total + size - 1) / size
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       q.Page,
		PageSize:   size,
		TotalPages: pages,
	}
}

// ByString compares a string field case-insensitively.
func ByString[T any](get func(T) string) func(a, b T) int {
	return func(a, b T) int {
		return cmp.Compare(strings.ToLower(get(a)), strings.ToLower(get(b)))
	}
}

// ByTime compares a time field.
func ByTime[T any](get func(T) time.Time) func(a, b T) int {
	return func(a, b T) int {
		return get(a).Compare(get(b))
	}
}

// ByOrdered compares any ordered field (ints, floats).
func ByOrdered[T any, V cmp.Ordered](get func(T) V) func(a, b T) int {
	return func(a, b T) int {
		return cmp.Compare(get(a), get(b))
	}
}
