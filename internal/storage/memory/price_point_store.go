package memory

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/storage"
)

// PricePointStore is an in-memory implementation of storage.PricePointStore.
type PricePointStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PricePoint // keyed by (pool, timestamp_ms)
}

// NewPricePointStore creates a new in-memory price point store.
func NewPricePointStore() *PricePointStore {
	return &PricePointStore{
		data: make(map[string]*domain.PricePoint),
	}
}

// Compile-time interface check.
var _ storage.PricePointStore = (*PricePointStore)(nil)

// priceKey generates a unique key for a price point.
func priceKey(pool string, timestampMs int64) string {
	return fmt.Sprintf("%s|%d", pool, timestampMs)
}

// InsertBulk adds multiple points. Fails entire batch on duplicate.
func (s *PricePointStore) InsertBulk(_ context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: check for duplicates (existing + intra-batch)
	batchKeys := make(map[string]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.Pool == "" || p.PriceX18 == nil {
			return storage.ErrInvalidInput
		}
		key := priceKey(p.Pool, p.TimestampMs)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, p := range points {
		s.data[priceKey(p.Pool, p.TimestampMs)] = copyPoint(p)
	}

	return nil
}

// GetByPool retrieves all points for a pool, ordered by timestamp ASC.
func (s *PricePointStore) GetByPool(_ context.Context, pool string) ([]*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PricePoint
	for _, p := range s.data {
		if p.Pool == pool {
			result = append(result, copyPoint(p))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})

	return result, nil
}

// GetByTimeRange retrieves points for a pool within [start, end] ms
// (inclusive), ordered by timestamp ASC.
func (s *PricePointStore) GetByTimeRange(_ context.Context, pool string, start, end int64) ([]*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PricePoint
	for _, p := range s.data {
		if p.Pool == pool && p.TimestampMs >= start && p.TimestampMs <= end {
			result = append(result, copyPoint(p))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})

	return result, nil
}

// copyPoint deep-copies a point so callers cannot mutate stored state.
func copyPoint(p *domain.PricePoint) *domain.PricePoint {
	pointCopy := *p
	pointCopy.PriceX18 = new(big.Int).Set(p.PriceX18)
	return &pointCopy
}
