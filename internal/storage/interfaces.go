package storage

import (
	"context"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
)

// SnapshotStore provides access to stats_snapshots storage.
type SnapshotStore interface {
	// Insert adds a new snapshot. Returns ErrDuplicateKey if block_number exists.
	Insert(ctx context.Context, s *domain.StatsSnapshot) error

	// GetLatest retrieves the most recent snapshot. Returns ErrNotFound when empty.
	GetLatest(ctx context.Context) (*domain.StatsSnapshot, error)

	// GetByTimeRange retrieves snapshots within [start, end] ms (inclusive),
	// ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.StatsSnapshot, error)
}

// ActionStore provides access to stake_actions storage.
type ActionStore interface {
	// Insert adds a new action. Returns ErrDuplicateKey if tx_hash exists.
	Insert(ctx context.Context, a *domain.StakeAction) error

	// GetRecent retrieves the newest actions, ordered by timestamp DESC.
	GetRecent(ctx context.Context, limit int) ([]*domain.StakeAction, error)

	// GetByWallet retrieves the newest actions for a wallet, ordered by
	// timestamp DESC.
	GetByWallet(ctx context.Context, wallet string, limit int) ([]*domain.StakeAction, error)
}

// PricePointStore provides access to price_points storage.
type PricePointStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate
	// (pool, timestamp_ms).
	InsertBulk(ctx context.Context, points []*domain.PricePoint) error

	// GetByPool retrieves all points for a pool, ordered by timestamp ASC.
	GetByPool(ctx context.Context, pool string) ([]*domain.PricePoint, error)

	// GetByTimeRange retrieves points for a pool within [start, end] ms
	// (inclusive), ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, pool string, start, end int64) ([]*domain.PricePoint, error)
}
