package storage

import "context"

// KV is the session persistence adapter: a flat key-value store holding
// the cart snapshot and the daily stats blobs. Last write wins; there is
// no concurrency contract beyond that.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
