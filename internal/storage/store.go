// Package storage is the durable key-value store behind session tokens
// and consent records.
package storage

import (
	"context"
	"strings"
)

// Store keeps string values by key. A missing key is reported with ok=false,
// never as an error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Pinger is implemented by stores that talk to a remote server.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks s when it supports it.
func Ping(ctx context.Context, s Store) error {
	if p, ok := s.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

type prefixed struct {
	inner  Store
	prefix string
}

// Prefixed namespaces every key of inner under prefix.
func Prefixed(inner Store, prefix string) Store {
	return &prefixed{inner: inner, prefix: strings.TrimSuffix(prefix, ":") + ":"}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Remove(ctx context.Context, key string) error {
	return p.inner.Remove(ctx, p.prefix+key)
}

func (p *prefixed) Ping(ctx context.Context) error {
	return Ping(ctx, p.inner)
}
