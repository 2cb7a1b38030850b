package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/observability"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using PostgreSQL.
type SnapshotStore struct {
	pool *Pool
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(pool *Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

// Insert adds a new snapshot. Returns ErrDuplicateKey if block_number exists.
func (s *SnapshotStore) Insert(ctx context.Context, snap *domain.StatsSnapshot) error {
	if snap == nil || snap.BlockNumber <= 0 {
		return storage.ErrInvalidInput
	}

	// Raw values travel as text and are cast server-side; NUMERIC(78,0)
	// holds full uint256 range without rounding.
	query := `
		INSERT INTO stats_snapshots (
			block_number, timestamp_ms, total_supply, total_shares, share_rate,
			price_mon_x18, price_usd_x18, created_at
		) VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric,
		          NULLIF($6, '')::numeric, NULLIF($7, '')::numeric, $8)
	`

	start := time.Now()
	_, err := s.pool.Exec(ctx, query,
		snap.BlockNumber,
		snap.TimestampMs,
		snap.TotalSupply,
		snap.TotalShares,
		snap.ShareRate,
		snap.PriceMonX18,
		snap.PriceUsdX18,
		time.Now().UnixMilli(),
	)
	observability.RecordDBQuery("postgres", "snapshots_insert", time.Since(start).Seconds(), err)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent snapshot. Returns ErrNotFound when empty.
func (s *SnapshotStore) GetLatest(ctx context.Context) (*domain.StatsSnapshot, error) {
	query := `
		SELECT id, block_number, timestamp_ms,
		       total_supply::text, total_shares::text, share_rate::text,
		       COALESCE(price_mon_x18::text, ''), COALESCE(price_usd_x18::text, ''), created_at
		FROM stats_snapshots
		ORDER BY block_number DESC
		LIMIT 1
	`

	start := time.Now()
	snap, err := scanSnapshot(s.pool.QueryRow(ctx, query))
	observability.RecordDBQuery("postgres", "snapshots_get_latest", time.Since(start).Seconds(), err)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest snapshot: %w", err)
	}
	return snap, nil
}

// GetByTimeRange retrieves snapshots within [start, end] ms (inclusive),
// ordered by timestamp ASC.
func (s *SnapshotStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.StatsSnapshot, error) {
	query := `
		SELECT id, block_number, timestamp_ms,
		       total_supply::text, total_shares::text, share_rate::text,
		       COALESCE(price_mon_x18::text, ''), COALESCE(price_usd_x18::text, ''), created_at
		FROM stats_snapshots
		WHERE timestamp_ms >= $1 AND timestamp_ms <= $2
		ORDER BY timestamp_ms ASC, id ASC
	`

	queryStart := time.Now()
	rows, err := s.pool.Query(ctx, query, start, end)
	observability.RecordDBQuery("postgres", "snapshots_get_by_time_range", time.Since(queryStart).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("get snapshots by time range: %w", err)
	}
	defer rows.Close()

	var snaps []*domain.StatsSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return snaps, nil
}

// scanSnapshot scans one row into a StatsSnapshot.
func scanSnapshot(row pgx.Row) (*domain.StatsSnapshot, error) {
	var snap domain.StatsSnapshot
	err := row.Scan(
		&snap.ID,
		&snap.BlockNumber,
		&snap.TimestampMs,
		&snap.TotalSupply,
		&snap.TotalShares,
		&snap.ShareRate,
		&snap.PriceMonX18,
		&snap.PriceUsdX18,
		&snap.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}
