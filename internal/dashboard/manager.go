package dashboard

import (
	"context"
	"fmt"

	"orderdesk/internal/backend"
	"orderdesk/internal/domain"
	"orderdesk/internal/logx"
	"orderdesk/internal/validation"
)

// Outcome describes what a write did. Written is false when the edit was
// identical to the stored item and nothing was sent.
// When the write went through but the refetch after it failed, Stale is set
// and the list is reloaded on the next read.
type Outcome[T any] struct {
	Written   bool `json:"written"`
	Refetched bool `json:"refetched"`
	Stale     bool `json:"stale,omitempty"`
	Item      T    `json:"item"`
}

type normalizer interface {
	Normalize()
}

// Manager adds create, update and delete flows on top of a Collection.
type Manager[T, In any] struct {
	*Collection[T]

	client    *backend.Client
	resource  backend.Resource
	validator *validation.Validator

	// unchanged reports that in would not modify orig.
	unchanged func(in In, orig T) bool
	// prepare completes in before validation.
	prepare func(ctx context.Context, in *In) error
}

func NewManager[T, In any](coll *Collection[T], client *backend.Client, res backend.Resource, v *validation.Validator) *Manager[T, In] {
	return &Manager[T, In]{
		Collection: coll,
		client:     client,
		resource:   res,
		validator:  v,
	}
}

func (m *Manager[T, In]) Resource() backend.Resource { return m.resource }

func (m *Manager[T, In]) check(ctx context.Context, in *In) error {
	if n, ok := any(in).(normalizer); ok {
		n.Normalize()
	}
	if m.prepare != nil {
		if err := m.prepare(ctx, in); err != nil {
			return err
		}
	}
	return m.validator.Validate(*in)
}

func (m *Manager[T, In]) Create(ctx context.Context, in In) (Outcome[T], error) {
	if err := m.check(ctx, &in); err != nil {
		return Outcome[T]{}, err
	}
	item, mut, err := backend.Create[T](ctx, m.client, m.resource, in)
	if err != nil {
		return Outcome[T]{}, fmt.Errorf("create %s: %w", m.resource, err)
	}
	return m.after(ctx, item, mut)
}

// Update validates in, skips the write when nothing changed and otherwise
// sends it and refetches the collection.
func (m *Manager[T, In]) Update(ctx context.Context, id domain.ID, in In) (Outcome[T], error) {
	if err := m.check(ctx, &in); err != nil {
		return Outcome[T]{}, err
	}
	if orig, ok := m.Find(id); ok && m.unchanged != nil && m.unchanged(in, orig) {
		logx.Debug().Str("resource", string(m.resource)).Str("id", id.String()).Msg("edit unchanged, skipping write")
		return Outcome[T]{Item: orig}, nil
	}
	item, mut, err := backend.Update[T](ctx, m.client, m.resource, id, in)
	if err != nil {
		return Outcome[T]{}, fmt.Errorf("update %s %s: %w", m.resource, id, err)
	}
	return m.after(ctx, item, mut)
}

func (m *Manager[T, In]) Delete(ctx context.Context, id domain.ID) (Outcome[T], error) {
	orig, _ := m.Find(id)
	mut, err := backend.Delete(ctx, m.client, m.resource, id)
	if err != nil {
		return Outcome[T]{}, fmt.Errorf("delete %s %s: %w", m.resource, id, err)
	}
	return m.after(ctx, orig, mut)
}

func (m *Manager[T, In]) after(ctx context.Context, item T, mut backend.Mutation) (Outcome[T], error) {
	out := Outcome[T]{Written: true, Item: item}
	if !mut.Refetch {
		return out, nil
	}
	if err := m.Refresh(ctx); err != nil {
		logx.Warn().Err(err).Str("resource", string(m.resource)).Msg("refetch after write failed")
		m.Invalidate()
		out.Stale = true
		return out, nil
	}
	out.Refetched = true
	if fresh, ok := m.Find(m.idOf(item)); ok {
		out.Item = fresh
	}
	return out, nil
}
