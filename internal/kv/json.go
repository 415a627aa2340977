package kv

import (
	"context"
	"encoding/json"
	"log"
	"sync"
)

// Locker serialises writers of one key across processes.
// redisclient.Locker satisfies it.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// JSONBlob is a single JSON document stored under one key. All
// read-modify-write cycles go through Update, which holds the blob's mutex
// and, when configured, the cross-process lock.
type JSONBlob[T any] struct {
	store    Store
	key      string
	defaults func() T
	locker   Locker

	mu sync.Mutex
}

func NewJSONBlob[T any](store Store, key string, defaults func() T) *JSONBlob[T] {
	return &JSONBlob[T]{store: store, key: key, defaults: defaults}
}

// WithLocker adds a cross-process lock around Update and Save.
func (b *JSONBlob[T]) WithLocker(l Locker) *JSONBlob[T] {
	b.locker = l
	return b
}

func (b *JSONBlob[T]) Key() string { return b.key }

// Load returns the stored document, or the defaults when it is missing or
// does not decode. On a backend failure it returns the defaults and the error.
func (b *JSONBlob[T]) Load(ctx context.Context) (T, error) {
	raw, ok, err := b.store.Get(ctx, b.key)
	if err != nil {
		return b.defaults(), err
	}
	if !ok {
		return b.defaults(), nil
	}

	v := b.defaults()
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Printf("blob=%s unreadable, falling back to defaults: %v", b.key, err)
		return b.defaults(), nil
	}
	return v, nil
}

func (b *JSONBlob[T]) Save(ctx context.Context, v T) error {
	return b.serialised(ctx, func(ctx context.Context) error {
		return b.put(ctx, v)
	})
}

// Update loads, applies fn and stores the result as one serialised step.
// If fn fails nothing is written.
func (b *JSONBlob[T]) Update(ctx context.Context, fn func(*T) error) (T, error) {
	var out T
	err := b.serialised(ctx, func(ctx context.Context) error {
		v, err := b.Load(ctx)
		if err != nil {
			return err
		}
		if err := fn(&v); err != nil {
			return err
		}
		if err := b.put(ctx, v); err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// Delete drops the document; the next Load sees the defaults.
func (b *JSONBlob[T]) Delete(ctx context.Context) error {
	return b.serialised(ctx, func(ctx context.Context) error {
		return b.store.Delete(ctx, b.key)
	})
}

func (b *JSONBlob[T]) put(ctx context.Context, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.store.Put(ctx, b.key, raw)
}

func (b *JSONBlob[T]) serialised(ctx context.Context, fn func(ctx context.Context) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.locker == nil {
		return fn(ctx)
	}
	return b.locker.WithLock(ctx, b.key, fn)
}
