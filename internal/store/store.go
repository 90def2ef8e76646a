// Package store is the local store of sigmax: whole-namespace JSON
// documents kept in a kv.Backend. Reads decode the full snapshot;
// mutations rewrite the namespaces they touch.
//
// Writers in one process are serialized by Update. Writers in different
// processes sharing a backend are last-writer-wins.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/sigmax/internal/common"
	"github.com/dmitrijs2005/sigmax/internal/logging"
	"github.com/dmitrijs2005/sigmax/internal/store/kv"
)

var snapshotNamespaces = []Namespace{NamespaceUsers, NamespaceChats, NamespaceMessages}

type Store struct {
	backend kv.Backend
	logger  logging.Logger
	mu      sync.Mutex
}

func New(backend kv.Backend, logger logging.Logger) *Store {
	return &Store{backend: backend, logger: logger.With("module", "store")}
}

// Read returns the current snapshot. Namespaces never written come back
// as empty maps.
func (s *Store) Read(ctx context.Context) (*Snapshot, error) {
	snap := newSnapshot()
	for _, ns := range snapshotNamespaces {
		data, err := s.backend.Get(ctx, string(ns))
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", ns, err)
		}
		if err := snap.decode(ns, data); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// Write serializes value and overwrites namespace ns with it.
func (s *Store) Write(ctx context.Context, ns Namespace, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ns, err)
	}
	if err := s.backend.Put(ctx, string(ns), data); err != nil {
		return fmt.Errorf("write %s: %w", ns, err)
	}
	return nil
}

// Update reads the snapshot, lets fn mutate it and persists the
// namespaces fn reports as changed. fn returning an error aborts the
// update with nothing written. Updates never interleave within a process.
func (s *Store) Update(ctx context.Context, fn func(*Snapshot) ([]Namespace, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.Read(ctx)
	if err != nil {
		return err
	}

	dirty, err := fn(snap)
	if err != nil {
		return err
	}
	if len(dirty) == 0 {
		return nil
	}

	values := make(map[string][]byte, len(dirty))
	for _, ns := range dirty {
		data, err := snap.encode(ns)
		if err != nil {
			return err
		}
		values[string(ns)] = data
	}
	if err := s.backend.PutMany(ctx, values); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}

	s.logger.Debug(ctx, "snapshot updated", "namespaces", dirty)
	return nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
