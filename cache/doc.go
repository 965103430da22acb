// Package cache provides the storage interfaces and key handling the query
// cache is built on.
//
// # Overview
//
// This package exports two main interfaces and their default implementations:
//
//   - Store: fetch-or-populate storage with per-key deletion and a global clear
//   - KeySerializer: builds cache keys from a store scope and literal query text
//
// The cache package is deliberately agnostic of what a query is. Keys are
// opaque strings; the querycache package layers the two result stores
// (identifier-keyed and list) on top by scoping keys before they reach a
// Store.
//
// # Key Identity
//
// The cache's lookup contract is textual identity. The default serializer
// only prefixes the query text with a scope:
//
//	serializer := cache.NewDefaultKeySerializer()
//	key := serializer.SerializeKey("objects", "SELECT id, name FROM accounts")
//	// "objects::SELECT id, name FROM accounts"
//
// No normalization of the query text is ever performed. Two semantically
// equivalent but differently formatted queries are distinct keys, which is
// exactly the behavior callers of a memoizing query layer should expect.
//
// # Fetch-or-populate
//
// Store.GetOrFetch executes the supplied fetch function at most once per key
// between deletions, including when concurrent callers race on the same key.
// Use the generic wrapper for type safety:
//
//	records, err := cache.GetOrFetch(ctx, store, key, func(ctx context.Context) ([]Account, error) {
//		return executor.Execute(ctx, query)
//	})
//
// A fetch failure propagates to the caller unchanged and nothing is stored
// for that key, so the next call fetches again.
//
// # See Also
//
// For the session-level API (the two result stores, invalidation, clear),
// see the querycache package. For the sturdyc-backed Store implementation,
// see internal/cacheinfra.
package cache
