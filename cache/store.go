package cache

import (
	"context"
	"errors"
)

// ErrInvalidResultType is returned when a cached value cannot be converted
// to the type the caller requested. It indicates a key collision across
// value types, which should not happen when scopes are used correctly.
var ErrInvalidResultType = errors.New("cache: cached value has unexpected type")

// FetchFn is the function signature Store expects when fetching from the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// Store exposes the fetch-or-populate operations the query cache is built on.
// It is exported so that other packages can provide alternate cache backends.
//
// Contract:
//   - GetOrFetch executes fetchFn at most once per key between deletions,
//     including under concurrent calls for the same key.
//   - A fetchFn failure is propagated unchanged and nothing is stored, so
//     absence from the store remains the only miss signal.
//   - Delete and Clear are idempotent; deleting an absent key is a no-op.
type Store interface {
	GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error)
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// GetOrFetch is a type-safe wrapper function that provides generic support for Store.
func GetOrFetch[T any](ctx context.Context, store Store, key string, fetchFn FetchFn[T]) (T, error) {
	var zero T
	result, err := store.GetOrFetch(ctx, key, fetchFn)
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, ErrInvalidResultType
	}
	return typed, nil
}
