// Package metadata stores small key/value pairs in the local database. The
// session token and the authenticated flag live here.
package metadata

import (
	"context"
)

// Repository is a durable string-keyed byte store. Get returns (nil, nil)
// for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
