// Package storage persists the segmented customer table. A new upload
// fully replaces prior data; on failure nothing is written. Backends:
// Postgres (relational, one typed column per dataset column),
// ClickHouse (document, one JSON document per record), and an
// in-memory store for tests and local runs.
package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"customer-segmentation/internal/dataset"
)

// Store is the persistence boundary of the pipeline.
type Store interface {
	// Replace atomically swaps the stored table for t. The previous
	// upload is discarded only if the new one is fully written.
	Replace(ctx context.Context, uploadID uuid.UUID, t *dataset.Table) error

	// Load returns the stored table, or (nil, nil) when the store is
	// empty. Column order and row order are preserved from the upload.
	Load(ctx context.Context) (*dataset.Table, error)

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	Close() error
}

// MemoryStore keeps the table in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	table *dataset.Table
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Replace(_ context.Context, _ uuid.UUID, t *dataset.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = t.Clone()
	return nil
}

func (s *MemoryStore) Load(_ context.Context) (*dataset.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return nil, nil
	}
	return s.table.Clone(), nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
