package clickhouse

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/observability"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/storage"
)

// PricePointStore implements storage.PricePointStore using ClickHouse.
// Prices are stored as 1e18-scaled decimal strings so no precision is
// lost to floating point on the way in or out.
type PricePointStore struct {
	conn *Conn
}

// NewPricePointStore creates a new PricePointStore.
func NewPricePointStore(conn *Conn) *PricePointStore {
	return &PricePointStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PricePointStore = (*PricePointStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate
// (pool, timestamp_ms). MergeTree does not enforce uniqueness, so
// duplicates are checked explicitly before the batch is sent.
func (s *PricePointStore) InsertBulk(ctx context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	type key struct {
		pool        string
		timestampMs int64
	}
	seen := make(map[key]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.Pool == "" || p.PriceX18 == nil {
			return storage.ErrInvalidInput
		}
		k := key{p.Pool, p.TimestampMs}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, p := range points {
		exists, err := s.exists(ctx, p.Pool, p.TimestampMs)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_points (
			pool, timestamp_ms, block_number, price_x18
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.Pool, uint64(p.TimestampMs), uint64(p.BlockNumber),
			p.PriceX18.String(),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	start := time.Now()
	err = batch.Send()
	observability.RecordDBQuery("clickhouse", "price_points_insert_bulk", time.Since(start).Seconds(), err)
	if err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByPool retrieves all points for a pool, ordered by timestamp ASC.
func (s *PricePointStore) GetByPool(ctx context.Context, pool string) ([]*domain.PricePoint, error) {
	query := `
		SELECT pool, timestamp_ms, block_number, price_x18
		FROM price_points
		WHERE pool = ?
		ORDER BY timestamp_ms ASC
	`

	start := time.Now()
	rows, err := s.conn.Query(ctx, query, pool)
	observability.RecordDBQuery("clickhouse", "price_points_get_by_pool", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("query by pool: %w", err)
	}
	defer rows.Close()

	return scanPricePoints(rows)
}

// GetByTimeRange retrieves points for a pool within [start, end] ms
// (inclusive), ordered by timestamp ASC.
func (s *PricePointStore) GetByTimeRange(ctx context.Context, pool string, start, end int64) ([]*domain.PricePoint, error) {
	query := `
		SELECT pool, timestamp_ms, block_number, price_x18
		FROM price_points
		WHERE pool = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	queryStart := time.Now()
	rows, err := s.conn.Query(ctx, query, pool, uint64(start), uint64(end))
	observability.RecordDBQuery("clickhouse", "price_points_get_by_time_range", time.Since(queryStart).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanPricePoints(rows)
}

// exists checks if a point with the given key exists.
func (s *PricePointStore) exists(ctx context.Context, pool string, timestampMs int64) (bool, error) {
	query := `
		SELECT count(*) FROM price_points
		WHERE pool = ? AND timestamp_ms = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, pool, uint64(timestampMs)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// chRows is the subset of driver.Rows the scanners need.
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanPricePoints scans multiple rows.
func scanPricePoints(rows chRows) ([]*domain.PricePoint, error) {
	var points []*domain.PricePoint

	for rows.Next() {
		var p domain.PricePoint
		var timestampMs, blockNumber uint64
		var priceX18 string

		err := rows.Scan(&p.Pool, &timestampMs, &blockNumber, &priceX18)
		if err != nil {
			return nil, fmt.Errorf("scan price point row: %w", err)
		}

		p.TimestampMs = int64(timestampMs)
		p.BlockNumber = int64(blockNumber)
		p.PriceX18, err = parsePriceX18(priceX18)
		if err != nil {
			return nil, fmt.Errorf("parse price point row: %w", err)
		}
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price point rows: %w", err)
	}

	return points, nil
}

// parsePriceX18 parses a stored decimal string back into a big integer.
func parsePriceX18(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("malformed price_x18 %q", s)
	}
	return v, nil
}
