// Package store defines the single capability the analytics core consumes:
// executing a parameterized statement against the transaction store.
package store

import (
	"context"

	"github.com/dvloznov/senate-trades/internal/query"
)

// Store is a transaction store backend.
type Store interface {
	// Dialect returns the fragments statements for this backend are built from.
	Dialect() query.Dialect

	// Acquire checks out a connection. Callers must Release it.
	Acquire(ctx context.Context) (Conn, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases all backend resources.
	Close() error
}

// Conn is a connection scoped to one request.
type Conn interface {
	// Query executes stmt and calls scan once per result row.
	Query(ctx context.Context, stmt query.Statement, scan func(Row) error) error

	// Release returns the connection to its pool. It is safe to call once.
	Release()
}

// Row is a single result row.
type Row interface {
	Scan(dest ...any) error
}
