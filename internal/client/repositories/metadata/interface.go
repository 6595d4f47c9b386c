// Package metadata is the local key/value store. It backs the CID cache
// (one key holding a JSON list) and any other small per-device settings.
package metadata

import (
	"context"
)

// Repository is a byte-valued key/value store. Get returns (nil, nil) for
// a missing key. *SQLiteRepository also implements cidcache.Updater.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
