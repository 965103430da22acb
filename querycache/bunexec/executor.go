// Package bunexec provides a bun-backed query executor for the query cache.
package bunexec

import (
	"context"

	"github.com/goliatone/go-query-cache/querycache"
	"github.com/uptrace/bun"
)

// Interface assertion to ensure Executor implements querycache.Executor[T]
var _ querycache.Executor[any] = (*Executor[any])(nil)

// Executor executes literal query text against a bun database handle and
// scans the rows into T. It performs no query building or sanitization; the
// text is sent to the backend as-is, which is exactly the contract the query
// cache keys on.
type Executor[T any] struct {
	db bun.IDB
}

// New creates an Executor backed by the given bun database or transaction.
func New[T any](db bun.IDB) *Executor[T] {
	return &Executor[T]{db: db}
}

// Execute runs the query and returns the rows in backend order. Backend
// errors are returned unchanged.
func (e *Executor[T]) Execute(ctx context.Context, query string) ([]T, error) {
	var records []T
	if err := e.db.NewRaw(query).Scan(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
