// Package dashboard holds the per-session screen state: fetched
// collections, their list settings and the write flows on top of them.
package dashboard

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"orderdesk/internal/domain"
	"orderdesk/internal/listview"
	"orderdesk/internal/logx"
	"orderdesk/internal/lookup"
	"orderdesk/internal/pagination"
	"orderdesk/internal/validation"
)

// Fetcher loads a whole collection for the given server-side filters.
type Fetcher[T any] func(ctx context.Context, filters map[string]string) ([]T, error)

// Query carries the list settings a client asks for. Nil fields keep the
// current value.
type Query struct {
	Search    *string
	Direction *listview.Direction
	Page      *int
	PageSize  *int
	Filters   map[string]string
	Refresh   bool
}

type Snapshot[T any] struct {
	Items          []T                 `json:"items"`
	Page           int                 `json:"page"`
	PageSize       int                 `json:"pageSize"`
	TotalPages     int                 `json:"totalPages"`
	FilteredCount  int                 `json:"filteredCount"`
	TotalCount     int                 `json:"totalCount"`
	Window         []pagination.Marker `json:"window"`
	ShowPagination bool                `json:"showPagination"`
	Query          string              `json:"query"`
	Direction      listview.Direction  `json:"direction"`
	Filters        map[string]string   `json:"filters"`
	FetchedAt      *time.Time          `json:"fetchedAt,omitempty"`
}

// Collection is one screen's list. Refreshes are numbered; a response older
// than the newest applied one, or issued before the last filter change, is
// dropped.
type Collection[T any] struct {
	name       string
	spec       listview.Spec[T]
	idOf       func(T) domain.ID
	fetch      Fetcher[T]
	filterKeys []string

	mu        sync.Mutex
	items     []T
	index     *lookup.Index[T]
	loaded    bool
	stale     bool
	fetchedAt time.Time
	query     string
	dir       listview.Direction
	filters   map[string]string
	pager     *pagination.Controller
	issued    uint64
	applied   uint64
	floor     uint64
}

func NewCollection[T any](name string, spec listview.Spec[T], idOf func(T) domain.ID, fetch Fetcher[T], pageSize int, filterKeys ...string) *Collection[T] {
	return &Collection[T]{
		name:       name,
		spec:       spec,
		idOf:       idOf,
		fetch:      fetch,
		filterKeys: filterKeys,
		dir:        listview.Asc,
		filters:    map[string]string{},
		pager:      pagination.New(pageSize),
	}
}

func (c *Collection[T]) Name() string { return c.name }

// FilterKeys lists the server-side filters this collection accepts.
func (c *Collection[T]) FilterKeys() []string { return slices.Clone(c.filterKeys) }

func (c *Collection[T]) SetQuery(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setQuery(q)
}

func (c *Collection[T]) setQuery(q string) bool {
	if q == c.query {
		return false
	}
	c.query = q
	c.pager.SetFilter()
	return true
}

func (c *Collection[T]) SetDirection(d listview.Direction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setDirection(d)
}

func (c *Collection[T]) ToggleDirection() listview.Direction {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setDirection(c.dir.Toggle())
	return c.dir
}

func (c *Collection[T]) setDirection(d listview.Direction) bool {
	if d == c.dir {
		return false
	}
	c.dir = d
	c.pager.SetFilter()
	return true
}

// SetFilter changes a server-side filter. An empty value clears it. It
// reports whether the collection has to be refetched.
func (c *Collection[T]) SetFilter(key, value string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setFilter(key, value)
}

func (c *Collection[T]) setFilter(key, value string) (bool, error) {
	if !slices.Contains(c.filterKeys, key) {
		return false, validation.Field(key, fmt.Sprintf("is not a filter of %s", c.name))
	}
	if c.filters[key] == value {
		return false, nil
	}
	if value == "" {
		delete(c.filters, key)
	} else {
		c.filters[key] = value
	}
	c.pager.SetFilter()
	c.floor = c.issued + 1
	return true, nil
}

func (c *Collection[T]) SetPageSize(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pager.SetPageSize(n)
}

// GoToPage moves to p, clamped to the pages of the current filtered view.
func (c *Collection[T]) GoToPage(p int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.derive()
	c.pager.GoToPage(p)
}

// Refresh refetches the whole collection. On error the current items stay.
func (c *Collection[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	gen := c.issued
	filters := maps.Clone(c.filters)
	c.mu.Unlock()

	items, err := c.fetch(ctx, filters)
	if err != nil {
		return fmt.Errorf("refresh %s: %w", c.name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen < c.applied || gen < c.floor {
		logx.Debug().Str("collection", c.name).Uint64("generation", gen).Msg("dropping stale response")
		return nil
	}
	c.items = items
	c.index = lookup.Build(items, c.idOf)
	c.applied = gen
	c.loaded = true
	c.stale = false
	c.fetchedAt = time.Now().UTC()
	return nil
}

// EnsureLoaded fetches the collection the first time it is needed.
func (c *Collection[T]) EnsureLoaded(ctx context.Context) error {
	c.mu.Lock()
	loaded := c.loaded
	c.mu.Unlock()
	if loaded {
		return nil
	}
	return c.Refresh(ctx)
}

// Apply updates the list settings from q, fetches when needed and returns
// the resulting view. An explicit page is ignored when the same query
// changed the search, sort, filters or page size. When the fetch fails the
// previous settings are put back.
func (c *Collection[T]) Apply(ctx context.Context, q Query) (Snapshot[T], error) {
	c.mu.Lock()
	prev := c.settings()
	reset := false
	refetch := q.Refresh || !c.loaded || c.stale
	if q.PageSize != nil && *q.PageSize != c.pager.PageSize() {
		c.pager.SetPageSize(*q.PageSize)
		reset = true
	}
	if q.Search != nil && c.setQuery(*q.Search) {
		reset = true
	}
	if q.Direction != nil && c.setDirection(*q.Direction) {
		reset = true
	}
	for _, key := range slices.Sorted(maps.Keys(q.Filters)) {
		changed, err := c.setFilter(key, q.Filters[key])
		if err != nil {
			c.restore(prev)
			c.mu.Unlock()
			return Snapshot[T]{}, err
		}
		if changed {
			reset = true
			refetch = true
		}
	}
	c.mu.Unlock()

	if refetch {
		if err := c.Refresh(ctx); err != nil {
			c.mu.Lock()
			c.restore(prev)
			c.mu.Unlock()
			return Snapshot[T]{}, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if q.Page != nil && !reset {
		c.derive()
		c.pager.GoToPage(*q.Page)
	}
	return c.snapshot(), nil
}

type settings struct {
	query   string
	dir     listview.Direction
	filters map[string]string
	pager   pagination.State
}

func (c *Collection[T]) settings() settings {
	return settings{query: c.query, dir: c.dir, filters: maps.Clone(c.filters), pager: c.pager.State()}
}

func (c *Collection[T]) restore(s settings) {
	c.query = s.query
	c.dir = s.dir
	c.filters = s.filters
	c.pager.Restore(s.pager)
}

// Invalidate marks the items as outdated so the next Apply refetches.
func (c *Collection[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stale = true
}

func (c *Collection[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Collection[T]) snapshot() Snapshot[T] {
	filtered := c.derive()
	view := listview.Paginate(filtered, c.pager.CurrentPage(), c.pager.PageSize())
	s := Snapshot[T]{
		Items:          view.Items,
		Page:           view.Page,
		PageSize:       view.PageSize,
		TotalPages:     view.TotalPages,
		FilteredCount:  view.FilteredCount,
		TotalCount:     len(c.items),
		Window:         c.pager.Window(),
		ShowPagination: c.pager.Visible(),
		Query:          c.query,
		Direction:      c.dir,
		Filters:        maps.Clone(c.filters),
	}
	if c.loaded {
		at := c.fetchedAt
		s.FetchedAt = &at
	}
	return s
}

// derive filters and sorts the items and syncs the pager. Callers hold mu.
func (c *Collection[T]) derive() []T {
	filtered := listview.Derive(c.items, c.query, c.dir, c.spec)
	c.pager.Sync(len(filtered))
	return filtered
}

// Items returns a copy of the fetched items in backend order.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Find looks an item up by id among the fetched items.
func (c *Collection[T]) Find(id domain.ID) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index.Get(id)
}
