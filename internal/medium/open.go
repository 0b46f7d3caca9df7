package medium

import (
	"context"
	"fmt"
	"io"

	"github.com/ganot/studyvault/internal/config"
	"github.com/ganot/studyvault/internal/postgres"
	"github.com/ganot/studyvault/internal/redis"
	"github.com/ganot/studyvault/internal/repository"
	"github.com/ganot/studyvault/internal/s3"
	"github.com/ganot/studyvault/internal/sqlite"
)

// Open builds the adapter selected by cfg. When the backend cannot be opened the
// failure is logged once and an unavailable adapter is returned, so the stores
// keep working in memory.
func Open(ctx context.Context, cfg config.MediumConfig, opts ...Option) *Adapter {
	probe := New(nil, opts...)
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		probe.logger.Warn("durable medium unavailable, running in memory only", "driver", cfg.Driver, "error", err)
		return probe
	}
	if backend == nil {
		probe.logger.Info("durable medium disabled", "driver", cfg.Driver)
		return probe
	}
	probe.logger.Info("durable medium ready", "driver", cfg.Driver)
	return New(backend, opts...)
}

func openBackend(ctx context.Context, cfg config.MediumConfig) (repository.KVStore, error) {
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.Path)
	case "sqlite":
		db, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, err
		}
		return closingKV{KVStore: sqlite.NewKVStore(db), Closer: db}, nil
	case "postgres":
		return postgres.Open(ctx, cfg.DSN)
	case "redis":
		return redis.Open(ctx, cfg.DSN)
	case "s3":
		return s3.New(ctx, s3.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			Prefix:    cfg.S3.Prefix,
			PathStyle: cfg.S3.PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown medium driver %q", cfg.Driver)
	}
}

// closingKV pairs a store with the resource it must release.
type closingKV struct {
	repository.KVStore
	io.Closer
}

// Ping checks backends that support it. A detached medium reports nil since the
// stores are expected to run in memory in that case.
func (a *Adapter) Ping(ctx context.Context) error {
	if !a.Available() {
		return nil
	}
	if pinger, ok := a.backend.(interface{ Ping(context.Context) error }); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

// Close releases the backend if it holds resources.
func (a *Adapter) Close() error {
	if !a.Available() {
		return nil
	}
	if closer, ok := a.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

