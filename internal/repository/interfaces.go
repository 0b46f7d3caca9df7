package repository

import "context"

// KVStore is a fallible key/value backend for persisted snapshots.
// Load returns ErrNotFound when the key has never been written or was deleted.
type KVStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
