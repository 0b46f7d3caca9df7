// Package medium provides the durable key/value surface the entity stores mirror
// their snapshots to. Every operation is best effort: backend failures are logged
// and counted but never returned, and a missing backend turns the adapter into a
// memory-only no-op.
package medium

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/ganot/studyvault/internal/repository"
)

// Medium is the never-failing key/value contract consumed by the stores.
type Medium interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Remove(key string)
}

// Observer receives the outcome of each backend call.
type Observer interface {
	ObserveMediumOp(op string, err error)
}

// Adapter wraps a fallible backend behind the Medium contract.
type Adapter struct {
	backend  repository.KVStore
	logger   *slog.Logger
	observer Observer
}

var _ Medium = (*Adapter)(nil)

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger used to report swallowed backend errors.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithObserver attaches an operation observer (typically metrics).
func WithObserver(observer Observer) Option {
	return func(a *Adapter) { a.observer = observer }
}

// New creates an adapter over backend. A nil backend yields an unavailable medium.
func New(backend repository.KVStore, opts ...Option) *Adapter {
	a := &Adapter{
		backend: backend,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Unavailable returns an adapter with no backend.
func Unavailable() *Adapter {
	return New(nil)
}

// Available reports whether a backend is attached.
func (a *Adapter) Available() bool {
	return a != nil && a.backend != nil
}

// Get returns the bytes stored under key.
func (a *Adapter) Get(key string) ([]byte, bool) {
	if !a.Available() {
		return nil, false
	}
	data, err := a.backend.Load(context.Background(), key)
	if errors.Is(err, repository.ErrNotFound) {
		a.observe("get", nil)
		return nil, false
	}
	a.observe("get", err)
	if err != nil {
		a.logger.Warn("medium read failed", "key", key, "error", err)
		return nil, false
	}
	return data, true
}

// Set stores value under key.
func (a *Adapter) Set(key string, value []byte) {
	if !a.Available() {
		return
	}
	err := a.backend.Save(context.Background(), key, value)
	a.observe("set", err)
	if err != nil {
		a.logger.Warn("medium write failed", "key", key, "bytes", len(value), "error", err)
	}
}

// Remove deletes key. Removing an absent key is not an error.
func (a *Adapter) Remove(key string) {
	if !a.Available() {
		return
	}
	err := a.backend.Delete(context.Background(), key)
	if errors.Is(err, repository.ErrNotFound) {
		err = nil
	}
	a.observe("remove", err)
	if err != nil {
		a.logger.Warn("medium remove failed", "key", key, "error", err)
	}
}

func (a *Adapter) observe(op string, err error) {
	if a.observer != nil {
		a.observer.ObserveMediumOp(op, err)
	}
}
