package catalog

import (
	"sync/atomic"

	"github.com/fibsem-portal/server/internal/dataset"
)

// Store holds the current catalog snapshot. Snapshots are immutable and
// replaced wholesale, so readers get a consistent view without locking.
type Store struct {
	snap atomic.Pointer[Snapshot]
}

// NewStore creates a store holding an empty snapshot.
func NewStore() *Store {
	s := &Store{}
	s.snap.Store(EmptySnapshot())
	return s
}

// Snapshot returns the current snapshot. Never nil.
func (s *Store) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Swap replaces the current snapshot.
func (s *Store) Swap(snap *Snapshot) {
	if snap == nil {
		snap = EmptySnapshot()
	}
	s.snap.Store(snap)
}

// Dataset looks up a dataset in the current snapshot.
func (s *Store) Dataset(key string) (*dataset.Dataset, bool) {
	return s.Snapshot().Dataset(key)
}

// Count returns the number of datasets in the current snapshot.
func (s *Store) Count() int {
	return len(s.Snapshot().Keys)
}
