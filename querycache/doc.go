// Package querycache memoizes declarative query results within one logical
// unit of work.
//
// # Overview
//
// A Session executes a query expressed as literal text at most once per
// unique text and serves subsequent identical requests from memory, in two
// result shapes:
//
//   - FetchObjects: an identifier-indexed map of the returned records
//   - ListRecords: the records in backend order, duplicates preserved
//
// The two shapes are backed by independent stores. Caching one never
// populates the other, and invalidation is always per store:
//
//	session := querycache.New[Account](executor, store)
//
//	byID, err := session.FetchObjects(ctx, "SELECT id, name FROM accounts")
//	// same text again: served from memory, no second execution
//	byID, err = session.FetchObjects(ctx, "SELECT id, name FROM accounts")
//
//	// the list store is still cold for this text
//	rows, err := session.ListRecords(ctx, "SELECT id, name FROM accounts")
//
// # Key Identity
//
// The cache key is the query text itself, case-sensitive and unnormalized.
// Two semantically equivalent but differently formatted queries are distinct
// keys. Callers composing query text dynamically should build it through one
// code path (see the predicate package for IN-clause fragments) so equal
// intents produce equal text.
//
// # Lifecycle
//
// A Session is transaction-scoped state. Construct one at the start of a
// unit of work, pass it explicitly to the code that needs it, and let it be
// garbage collected when the work ends. Invalidation is entirely manual:
//
//   - InvalidateMap / InvalidateList drop a single query's entry in one store
//   - ClearCache empties both stores
//
// All invalidation operations are idempotent and silent for absent keys.
//
// # Shared Results
//
// Fetch-or-populate returns the stored instance, not a copy. Mutating a
// returned map or slice corrupts the cache for every later reader of that
// query, so treat results as read-only. This mirrors the cost model callers
// expect from a memoization layer: hits are pointer-cheap.
//
// # Concurrency
//
// Sessions are safe for concurrent use. Concurrent fetches for the same
// query text in the same store execute the query once; the remaining callers
// block and share the result. Failed executions are never stored, and the
// executor's error reaches every waiting caller unchanged.
//
// # See Also
//
// For the storage backend see the cache package, for literal IN-clause
// construction see the predicate package, and for a bun-backed executor see
// querycache/bunexec.
package querycache
