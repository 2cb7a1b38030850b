package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/storage"
)

// ActionStore is an in-memory implementation of storage.ActionStore.
type ActionStore struct {
	mu     sync.RWMutex
	byID   []*domain.StakeAction
	hashes map[string]struct{}
	nextID int64
}

// NewActionStore creates a new in-memory action store.
func NewActionStore() *ActionStore {
	return &ActionStore{
		hashes: make(map[string]struct{}),
		nextID: 1,
	}
}

// Compile-time interface check.
var _ storage.ActionStore = (*ActionStore)(nil)

// Insert adds a new action. Returns ErrDuplicateKey if tx_hash exists.
func (s *ActionStore) Insert(_ context.Context, a *domain.StakeAction) error {
	if a == nil || a.Wallet == "" || a.TxHash == "" {
		return storage.ErrInvalidInput
	}
	if a.Kind != domain.ActionKindStake && a.Kind != domain.ActionKindUnstake {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	hash := strings.ToLower(a.TxHash)
	if _, exists := s.hashes[hash]; exists {
		return storage.ErrDuplicateKey
	}

	stored := *a
	stored.ID = s.nextID
	stored.Wallet = strings.ToLower(a.Wallet)
	stored.TxHash = hash
	stored.CreatedAt = time.Now().UnixMilli()
	s.nextID++

	s.byID = append(s.byID, &stored)
	s.hashes[hash] = struct{}{}
	return nil
}

// GetRecent retrieves the newest actions, ordered by timestamp DESC.
func (s *ActionStore) GetRecent(_ context.Context, limit int) ([]*domain.StakeAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.StakeAction, 0, len(s.byID))
	for _, a := range s.byID {
		actionCopy := *a
		result = append(result, &actionCopy)
	}
	return newestFirst(result, limit), nil
}

// GetByWallet retrieves the newest actions for a wallet, ordered by
// timestamp DESC.
func (s *ActionStore) GetByWallet(_ context.Context, wallet string, limit int) ([]*domain.StakeAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := strings.ToLower(wallet)
	var result []*domain.StakeAction
	for _, a := range s.byID {
		if a.Wallet == w {
			actionCopy := *a
			result = append(result, &actionCopy)
		}
	}
	return newestFirst(result, limit), nil
}

// newestFirst sorts by timestamp DESC (id DESC tiebreak) and truncates.
func newestFirst(actions []*domain.StakeAction, limit int) []*domain.StakeAction {
	sort.Slice(actions, func(i, j int) bool {
		if actions[i].TimestampMs != actions[j].TimestampMs {
			return actions[i].TimestampMs > actions[j].TimestampMs
		}
		return actions[i].ID > actions[j].ID
	})
	if limit > 0 && len(actions) > limit {
		actions = actions[:limit]
	}
	return actions
}
