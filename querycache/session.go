package querycache

import (
	"context"

	"github.com/goliatone/go-query-cache/cache"
	"go.uber.org/zap"
)

// Key scopes for the two result stores. Both stores live in the session's
// single backend; the scope prefix keeps them fully independent: a query may
// be cached in one, both, or neither, and invalidating one never touches the
// other.
const (
	scopeObjects = "objects"
	scopeList    = "list"
)

// Executor is the data-access collaborator a session fetches from on a cache
// miss. Implementations execute the literal query text and return the rows in
// backend order. Execution failures (bad syntax, insufficient access,
// unavailable backend) are returned as-is; the session never wraps, retries,
// or caches them.
type Executor[T any] interface {
	Execute(ctx context.Context, query string) ([]T, error)
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc[T any] func(ctx context.Context, query string) ([]T, error)

// Execute calls f(ctx, query).
func (f ExecutorFunc[T]) Execute(ctx context.Context, query string) ([]T, error) {
	return f(ctx, query)
}

// IdentifierFunc extracts the unique identifier the objects store keys a
// record under.
type IdentifierFunc[T any] func(record T) (string, error)

// Session memoizes query results for one logical transaction. It owns two
// independent result stores keyed by literal query text: an identifier-keyed
// store (FetchObjects) and an ordered list store (ListRecords). Each distinct
// query text is executed at most once per store between invalidations.
//
// A session assumes exclusive ownership of its backing Store. Construct one
// session per unit of work and drop it when the work ends; ClearCache exists
// for mid-transaction resets, not for cross-transaction reuse.
//
// Cached results are returned as the live stored instance, not a defensive
// copy. Two callers issuing the same query text share state, so callers must
// treat returned maps and slices as read-only.
type Session[T any] struct {
	exec       Executor[T]
	store      cache.Store
	serializer cache.KeySerializer
	identify   IdentifierFunc[T]
	logger     *zap.Logger
}

// Option configures a Session.
type Option[T any] func(*Session[T])

// WithLogger sets the logger the session emits debug events on
// (population, invalidation, clear). Defaults to a no-op logger.
func WithLogger[T any](logger *zap.Logger) Option[T] {
	return func(s *Session[T]) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIdentifierFunc overrides how the objects store derives a record's
// identifier. The default reflects over common identifier field names; pass
// an explicit function when the record type names its key differently or
// when reflection is too slow for the workload.
func WithIdentifierFunc[T any](fn IdentifierFunc[T]) Option[T] {
	return func(s *Session[T]) {
		if fn != nil {
			s.identify = fn
		}
	}
}

// WithKeySerializer overrides the key serializer. The serializer must keep
// the query text opaque; it exists for namespacing, not normalization.
func WithKeySerializer[T any](serializer cache.KeySerializer) Option[T] {
	return func(s *Session[T]) {
		if serializer != nil {
			s.serializer = serializer
		}
	}
}

// New creates a Session that fetches through exec and stores results in store.
// Both are required; the zero-config path is:
//
//	store, err := cache.NewStore(cache.DefaultConfig())
//	session := querycache.New[Account](executor, store)
func New[T any](exec Executor[T], store cache.Store, opts ...Option[T]) *Session[T] {
	s := &Session[T]{
		exec:       exec,
		store:      store,
		serializer: cache.NewDefaultKeySerializer(),
		identify:   ReflectIdentifier[T],
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// FetchObjects returns the identifier-to-record map for the given query text,
// executing the query only if this session has not cached it in the objects
// store. When the backend returns multiple rows with the same identifier the
// last row wins; a well-formed query should not produce duplicates.
//
// Execution errors propagate unchanged and nothing is cached for the key, so
// the next call executes again.
func (s *Session[T]) FetchObjects(ctx context.Context, query string) (map[string]T, error) {
	key := s.serializer.SerializeKey(scopeObjects, query)
	return cache.GetOrFetch(ctx, s.store, key, func(ctx context.Context) (map[string]T, error) {
		records, err := s.exec.Execute(ctx, query)
		if err != nil {
			return nil, err
		}

		byID := make(map[string]T, len(records))
		for _, record := range records {
			id, err := s.identify(record)
			if err != nil {
				return nil, err
			}
			byID[id] = record
		}

		s.logger.Debug("objects store populated",
			zap.String("query", query),
			zap.Int("records", len(byID)))
		return byID, nil
	})
}

// ListRecords returns the ordered result list for the given query text,
// executing the query only if this session has not cached it in the list
// store. Row order and duplicates are preserved exactly as the backend
// returned them. The list store is independent of the objects store even for
// an identical query.
func (s *Session[T]) ListRecords(ctx context.Context, query string) ([]T, error) {
	key := s.serializer.SerializeKey(scopeList, query)
	return cache.GetOrFetch(ctx, s.store, key, func(ctx context.Context) ([]T, error) {
		records, err := s.exec.Execute(ctx, query)
		if err != nil {
			return nil, err
		}

		s.logger.Debug("list store populated",
			zap.String("query", query),
			zap.Int("records", len(records)))
		return records, nil
	})
}

// InvalidateMap removes the objects store entry for the given query text.
// Absent keys are a silent no-op. The list store is unaffected.
func (s *Session[T]) InvalidateMap(ctx context.Context, query string) error {
	s.logger.Debug("objects store invalidated", zap.String("query", query))
	return s.store.Delete(ctx, s.serializer.SerializeKey(scopeObjects, query))
}

// InvalidateList removes the list store entry for the given query text.
// Absent keys are a silent no-op. The objects store is unaffected.
func (s *Session[T]) InvalidateList(ctx context.Context, query string) error {
	s.logger.Debug("list store invalidated", zap.String("query", query))
	return s.store.Delete(ctx, s.serializer.SerializeKey(scopeList, query))
}

// ClearCache empties both stores. The next call for any previously cached
// query executes it again. Intended for mid-transaction resets when staleness
// or memory pressure is a concern; sessions discarded at end of transaction
// do not need an explicit clear.
func (s *Session[T]) ClearCache(ctx context.Context) error {
	s.logger.Debug("query cache cleared")
	return s.store.Clear(ctx)
}
