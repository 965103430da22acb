package cacheinfra

import (
	"context"
	"reflect"
	"time"

	"github.com/viccon/sturdyc"
)

// Config holds the configuration for the sturdyc store adapter.
type Config struct {
	// Capacity defines the maximum number of entries that the store can hold.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Higher values improve concurrency but increase memory overhead.
	// Must be greater than 0.
	NumShards int

	// TTL is the time-to-live for stored entries. The query cache manages
	// entry lifetime manually (invalidation and clear), so TTL is a backstop,
	// not the primary expiry mechanism. Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the store reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often the store checks for expired entries.
	// Zero value uses the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          64,
		TTL:                time.Hour,
		EvictionPercentage: 10,
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// sturdycStore wraps a sturdyc client providing fetch-or-populate behaviour.
//
// sturdyc deduplicates in-flight fetches per key, which is what gives the
// query cache its at-most-one-execution-per-key guarantee under concurrent
// callers. Fetch errors are propagated without being stored: missing-record
// storage is intentionally never enabled, because the query cache treats
// absence from the store as its only miss signal.
type sturdycStore struct {
	client *sturdyc.Client[any]
}

// NewSturdycStore creates a new sturdyc store adapter.
// It validates the configuration and initializes a sturdyc client with the
// provided settings. Each call produces an independent store; the query cache
// constructs one per session so transactions never share state.
func NewSturdycStore(cfg Config) (*sturdycStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var options []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		options...,
	)

	return &sturdycStore{client: client}, nil
}

// validateFetchFn ensures fetchFn matches the expected signature:
// func(context.Context) (T, error)
func validateFetchFn(fetchFn any) error {
	if fetchFn == nil {
		return &ConfigError{Field: "fetchFn", Message: "cannot be nil"}
	}

	fnType := reflect.TypeOf(fetchFn)
	if fnType.Kind() != reflect.Func {
		return &ConfigError{Field: "fetchFn", Message: "must be a function"}
	}

	if fnType.NumIn() != 1 || fnType.NumOut() != 2 {
		return &ConfigError{Field: "fetchFn", Message: "must have signature func(context.Context) (T, error)"}
	}

	contextType := reflect.TypeOf((*context.Context)(nil)).Elem()
	if !fnType.In(0).Implements(contextType) {
		return &ConfigError{Field: "fetchFn", Message: "first parameter must be context.Context"}
	}

	errorType := reflect.TypeOf((*error)(nil)).Elem()
	if !fnType.Out(1).Implements(errorType) {
		return &ConfigError{Field: "fetchFn", Message: "second return value must be error"}
	}

	return nil
}

// GetOrFetch implements cache.Store.GetOrFetch.
// It attempts to retrieve a value from the store using the provided key. If
// the key is absent, it executes fetchFn to get a fresh value, stores it, and
// returns it. The fetchFn parameter must be of type cache.FetchFn[T].
func (s *sturdycStore) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	// Validate fetchFn completely before calling sturdyc to avoid ErrInvalidType conversion
	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}

	return s.client.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return callFetchFn(ctx, fetchFn)
	})
}

// callFetchFn invokes any function matching the FetchFn[T] signature and
// erases the result type. fetchFn is guaranteed valid by validateFetchFn.
func callFetchFn(ctx context.Context, fetchFn any) (any, error) {
	// Direct type assertion for the common case
	if fn, ok := fetchFn.(func(context.Context) (any, error)); ok {
		return fn(ctx)
	}

	results := reflect.ValueOf(fetchFn).Call([]reflect.Value{reflect.ValueOf(ctx)})

	var result any
	if v := results[0]; v.IsValid() && v.CanInterface() {
		result = v.Interface()
	}

	var err error
	if v := results[1]; v.IsValid() && !v.IsNil() {
		err = v.Interface().(error)
	}

	return result, err
}

// Delete implements cache.Store.Delete.
// Removes a single entry from the store using the provided key. Deleting an
// absent key is a no-op; subsequent GetOrFetch calls fetch fresh data.
func (s *sturdycStore) Delete(ctx context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// Clear implements cache.Store.Clear.
// Removes every entry from the store. Used for the session-level cache reset
// within a long-running transaction.
func (s *sturdycStore) Clear(ctx context.Context) error {
	for _, key := range s.client.ScanKeys() {
		s.client.Delete(key)
	}
	return nil
}
