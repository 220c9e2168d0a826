// Package usage persists the usage snapshot so lifetime counters
// survive process restarts.
package usage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/tokenmeter/internal/db"
	domusage "github.com/kailas-cloud/tokenmeter/internal/domain/usage"
)

// store is the consumer interface for snapshot persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Store saves and loads the full usage snapshot as one JSON value.
// Writes are whole-snapshot replacements, so a partially applied
// update can never be observed on reload.
type Store struct {
	store     store
	keyPrefix string
}

// New creates a snapshot store. keyPrefix namespaces the key the same
// way all other keys of the deployment are namespaced.
func New(s store, keyPrefix string) *Store {
	return &Store{store: s, keyPrefix: keyPrefix}
}

func (s *Store) key() string {
	return s.keyPrefix + "usage:snapshot"
}

// Save replaces the persisted snapshot.
func (s *Store) Save(ctx context.Context, snap domusage.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("snapshot marshal: %w", err)
	}
	if err := s.store.Set(ctx, s.key(), data); err != nil {
		return fmt.Errorf("snapshot SET %s: %w", s.key(), err)
	}
	return nil
}

// Load returns the persisted snapshot. The second return is false when
// nothing has been persisted yet.
func (s *Store) Load(ctx context.Context) (domusage.Snapshot, bool, error) {
	data, err := s.store.Get(ctx, s.key())
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domusage.Snapshot{}, false, nil
		}
		return domusage.Snapshot{}, false, fmt.Errorf("snapshot GET %s: %w", s.key(), err)
	}

	var snap domusage.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domusage.Snapshot{}, false, fmt.Errorf("snapshot GET %s parse: %w", s.key(), err)
	}
	if snap.Models == nil {
		snap.Models = make(map[string]domusage.ModelStats)
	}
	return snap, true, nil
}
