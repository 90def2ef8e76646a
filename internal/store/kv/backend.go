// Package kv provides the textual key-value backends behind the sigmax
// store. Every backend keeps opaque values under string keys; absent keys
// are reported with common.ErrorNotFound.
package kv

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sigmax/internal/config"
)

// Backend is a flat key-value store. Implementations must be safe for
// concurrent use.
type Backend interface {
	// Get returns the value under key or common.ErrorNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put overwrites the value under key.
	Put(ctx context.Context, key string, value []byte) error
	// PutMany overwrites several keys at once; either all of them are
	// written or none is.
	PutMany(ctx context.Context, values map[string][]byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open returns the backend selected by kind, located at dsn.
func Open(ctx context.Context, kind, dsn string) (Backend, error) {
	switch kind {
	case config.StoreMemory:
		return NewMemory(), nil
	case config.StorePebble:
		return OpenPebble(dsn)
	case config.StoreSQLite:
		return OpenSQLite(ctx, dsn)
	case config.StorePostgres:
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}
