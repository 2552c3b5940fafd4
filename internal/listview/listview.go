// Package listview derives the visible slice of a screen from a raw
// collection: search filtering, locale-aware sorting and page slicing.
package listview

import (
	"bytes"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultPageSize is used whenever a caller passes a non-positive size.
const DefaultPageSize = 10

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection maps anything other than "desc" to Asc.
func ParseDirection(v string) Direction {
	if strings.EqualFold(strings.TrimSpace(v), string(Desc)) {
		return Desc
	}
	return Asc
}

// Toggle flips the direction.
func (d Direction) Toggle() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// Spec describes which fields of T are searchable and how T sorts.
type Spec[T any] struct {
	// SearchFields are matched case-insensitively against the query.
	SearchFields []func(T) string
	// SortKey is compared with the collation rules of Locale.
	SortKey func(T) string
	// Compare replaces SortKey for keys that are not text, such as timestamps.
	Compare func(a, b T) int
	Locale  language.Tag
}

type Options struct {
	Query     string
	Direction Direction
	PageSize  int
	Page      int
}

// View is the derived, render-ready state of a list.
type View[T any] struct {
	Items         []T `json:"items"`
	Page          int `json:"page"`
	PageSize      int `json:"pageSize"`
	TotalPages    int `json:"totalPages"`
	FilteredCount int `json:"filteredCount"`
}

// Compute filters, sorts and paginates items in one pass.
func Compute[T any](items []T, opts Options, spec Spec[T]) View[T] {
	filtered := Derive(items, opts.Query, opts.Direction, spec)
	return Paginate(filtered, opts.Page, opts.PageSize)
}

// Derive returns the filtered and sorted collection. The input is not modified.
func Derive[T any](items []T, query string, dir Direction, spec Spec[T]) []T {
	out := filter(items, query, spec.SearchFields)
	sortItems(out, spec)
	if dir == Desc && (spec.Compare != nil || spec.SortKey != nil) {
		slices.Reverse(out)
	}
	return out
}

// Paginate slices one page out of filtered. A page at or beyond the last
// page resets to 0 instead of producing an empty page.
func Paginate[T any](filtered []T, page, size int) View[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := TotalPages(len(filtered), size)
	if page < 0 || page >= total {
		page = 0
	}
	start := page * size
	end := min(start+size, len(filtered))
	items := []T{}
	if start < end {
		items = filtered[start:end]
	}
	return View[T]{
		Items:         items,
		Page:          page,
		PageSize:      size,
		TotalPages:    total,
		FilteredCount: len(filtered),
	}
}

// TotalPages is ceil(count/size).
func TotalPages(count, size int) int {
	if count <= 0 || size <= 0 {
		return 0
	}
	return (count + size - 1) / size
}

func filter[T any](items []T, query string, fields []func(T) string) []T {
	if query == "" || len(fields) == 0 {
		return slices.Clone(items)
	}
	fold := cases.Fold()
	needle := fold.String(query)
	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, field := range fields {
			if strings.Contains(fold.String(field(item)), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

type keyed[T any] struct {
	item T
	key  []byte
}

func sortItems[T any](items []T, spec Spec[T]) {
	switch {
	case spec.Compare != nil:
		slices.SortStableFunc(items, spec.Compare)
	case spec.SortKey != nil:
		col := collate.New(spec.Locale)
		var buf collate.Buffer
		entries := make([]keyed[T], len(items))
		for i, item := range items {
			entries[i] = keyed[T]{item: item, key: col.KeyFromString(&buf, spec.SortKey(item))}
		}
		slices.SortStableFunc(entries, func(a, b keyed[T]) int {
			return bytes.Compare(a.key, b.key)
		})
		for i := range entries {
			items[i] = entries[i].item
		}
	}
}
