// Package memory provides in-memory store implementations for tests and
// the --use-memory server mode.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/storage"
)

// SnapshotStore is an in-memory implementation of storage.SnapshotStore.
type SnapshotStore struct {
	mu     sync.RWMutex
	byID   []*domain.StatsSnapshot
	blocks map[int64]struct{}
	nextID int64
}

// NewSnapshotStore creates a new in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		blocks: make(map[int64]struct{}),
		nextID: 1,
	}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Insert adds a new snapshot. Returns ErrDuplicateKey if block_number exists.
func (s *SnapshotStore) Insert(_ context.Context, snap *domain.StatsSnapshot) error {
	if snap == nil || snap.BlockNumber <= 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.blocks[snap.BlockNumber]; exists {
		return storage.ErrDuplicateKey
	}

	stored := *snap
	stored.ID = s.nextID
	stored.CreatedAt = time.Now().UnixMilli()
	s.nextID++

	s.byID = append(s.byID, &stored)
	s.blocks[snap.BlockNumber] = struct{}{}
	return nil
}

// GetLatest retrieves the snapshot with the highest block number.
// Returns ErrNotFound when empty.
func (s *SnapshotStore) GetLatest(_ context.Context) (*domain.StatsSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.StatsSnapshot
	for _, snap := range s.byID {
		if latest == nil || snap.BlockNumber > latest.BlockNumber {
			latest = snap
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}

	snapCopy := *latest
	return &snapCopy, nil
}

// GetByTimeRange retrieves snapshots within [start, end] ms (inclusive),
// ordered by timestamp ASC.
func (s *SnapshotStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.StatsSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.StatsSnapshot
	for _, snap := range s.byID {
		if snap.TimestampMs >= start && snap.TimestampMs <= end {
			snapCopy := *snap
			result = append(result, &snapCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].TimestampMs != result[j].TimestampMs {
			return result[i].TimestampMs < result[j].TimestampMs
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}
