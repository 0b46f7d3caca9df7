// Package redis provides a Redis-backed key/value store for the durable medium.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/ganot/studyvault/internal/repository"
	goredis "github.com/redis/go-redis/v9"
)

const (
	defaultURL    = "redis://localhost:6379/0"
	defaultPrefix = "studyvault:"
)

// KVStore implements repository.KVStore with plain string keys and no expiry.
type KVStore struct {
	client goredis.UniversalClient
	prefix string
}

var _ repository.KVStore = (*KVStore)(nil)

// Open parses url (falls back to defaultURL), connects and pings the server.
func Open(ctx context.Context, url string) (*KVStore, error) {
	if url == "" {
		url = defaultURL
	}
	opt, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opt)
	store := NewWithClient(client, defaultPrefix)
	if err := store.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return store, nil
}

// NewWithClient wraps an existing client. Keys are stored as prefix+key.
func NewWithClient(client goredis.UniversalClient, prefix string) *KVStore {
	return &KVStore{client: client, prefix: prefix}
}

// Ping checks the connection.
func (s *KVStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Load returns the value stored under key.
func (s *KVStore) Load(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Save overwrites key with value.
func (s *KVStore) Save(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	removed, err := s.client.Del(ctx, s.prefix+key).Result()
	if err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	if removed == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Close releases the client.
func (s *KVStore) Close() error {
	return s.client.Close()
}
