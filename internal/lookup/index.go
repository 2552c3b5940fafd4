// Package lookup builds id-keyed indexes over entity lists fetched from the
// backend so screens can resolve related records in constant time.
package lookup

import "orderdesk/internal/domain"

// Index maps normalized ids to entities.
type Index[T any] struct {
	byID map[domain.ID]T
}

// Build indexes items by the id returned from idOf. Items without a usable
// id are skipped; a later item replaces an earlier one with the same id.
func Build[T any](items []T, idOf func(T) domain.ID) *Index[T] {
	idx := &Index[T]{byID: make(map[domain.ID]T, len(items))}
	for _, item := range items {
		id := idOf(item)
		if id.IsZero() {
			continue
		}
		idx.byID[id] = item
	}
	return idx
}

// Get resolves key after coercing it with domain.ParseID, so numeric and
// string forms of the same id hit the same entry.
func (i *Index[T]) Get(key any) (T, bool) {
	var zero T
	if i == nil {
		return zero, false
	}
	id, ok := domain.ParseID(key)
	if !ok {
		return zero, false
	}
	v, ok := i.byID[id]
	return v, ok
}

// Has reports whether key resolves to an entity.
func (i *Index[T]) Has(key any) bool {
	_, ok := i.Get(key)
	return ok
}

func (i *Index[T]) Len() int {
	if i == nil {
		return 0
	}
	return len(i.byID)
}
