// Package persist mirrors an entity sequence to the durable medium as a
// versioned snapshot and reads it back through a migration chain.
package persist

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/ganot/studyvault/internal/medium"
	"github.com/ganot/studyvault/internal/migrate"
)

// Snapshot load outcomes reported to the Observer.
const (
	OutcomeAbsent   = "absent"
	OutcomeLoaded   = "loaded"
	OutcomeMigrated = "migrated"
	OutcomeFallback = "fallback"
)

// Observer receives snapshot load outcomes.
type Observer interface {
	ObserveSnapshotLoad(key, outcome string)
}

// Persister reads and writes the snapshot of one store under a fixed key.
type Persister[T any] struct {
	key      string
	chain    *migrate.Chain
	medium   medium.Medium
	logger   *slog.Logger
	observer Observer
}

// New creates a persister. A nil medium disables persistence.
func New[T any](m medium.Medium, key string, chain *migrate.Chain, logger *slog.Logger, observer Observer) *Persister[T] {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Persister[T]{
		key:      key,
		chain:    chain,
		medium:   m,
		logger:   logger,
		observer: observer,
	}
}

// Key returns the medium key the snapshot is stored under.
func (p *Persister[T]) Key() string { return p.key }

// Load returns the persisted entities. ok is false when no usable snapshot
// exists, in which case callers start from their initial state.
func (p *Persister[T]) Load() (entities []T, ok bool) {
	if p.medium == nil {
		p.observe(OutcomeAbsent)
		return []T{}, false
	}
	raw, found := p.medium.Get(p.key)
	if !found {
		p.observe(OutcomeAbsent)
		return []T{}, false
	}

	doc, from, err := p.chain.Load(raw)
	if err != nil {
		p.logger.Warn("discarding unreadable snapshot", "key", p.key, "error", err)
		p.observe(OutcomeFallback)
		return []T{}, false
	}

	encoded, err := json.Marshal(doc.Entities(p.chain.Field()))
	if err == nil {
		err = json.Unmarshal(encoded, &entities)
	}
	if err != nil {
		p.logger.Warn("discarding snapshot with malformed entities", "key", p.key, "error", err)
		p.observe(OutcomeFallback)
		return []T{}, false
	}
	if entities == nil {
		entities = []T{}
	}

	if from < p.chain.Current() {
		p.logger.Info("migrated snapshot", "key", p.key, "from", from, "to", p.chain.Current())
		p.observe(OutcomeMigrated)
	} else {
		p.observe(OutcomeLoaded)
	}
	return entities, true
}

// Save writes entities at the chain's current version.
func (p *Persister[T]) Save(entities []T) {
	if p.medium == nil {
		return
	}
	if entities == nil {
		entities = []T{}
	}
	data, err := json.Marshal(map[string]any{
		p.chain.Field():      entities,
		migrate.VersionField: p.chain.Current(),
	})
	if err != nil {
		p.logger.Error("failed to encode snapshot", "key", p.key, "error", err)
		return
	}
	p.medium.Set(p.key, data)
}

func (p *Persister[T]) observe(outcome string) {
	if p.observer != nil {
		p.observer.ObserveSnapshotLoad(p.key, outcome)
	}
}
