package postgres

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/observability"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/storage"
)

func testSnapshot(block, ts int64) *domain.StatsSnapshot {
	return &domain.StatsSnapshot{
		BlockNumber: block,
		TimestampMs: ts,
		TotalSupply: "1000000000000000000000000",
		TotalShares: "250000000000000000000000",
		ShareRate:   "1000000000000000000",
		PriceMonX18: "250000000000000000",
		PriceUsdX18: "1000000000000000000",
	}
}

func TestSnapshotStore_InsertAndGetLatest(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	store := NewSnapshotStore(pool)

	require.NoError(t, store.Insert(ctx, testSnapshot(100, 1000)))
	require.NoError(t, store.Insert(ctx, testSnapshot(102, 3000)))
	require.NoError(t, store.Insert(ctx, testSnapshot(101, 2000)))

	latest, err := store.GetLatest(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(102), latest.BlockNumber)
	assert.Equal(t, "1000000000000000000000000", latest.TotalSupply)
	assert.Equal(t, "250000000000000000", latest.PriceMonX18)
	assert.NotZero(t, latest.ID)
	assert.NotZero(t, latest.CreatedAt)
}

func TestSnapshotStore_DuplicateBlock(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	store := NewSnapshotStore(pool)

	require.NoError(t, store.Insert(ctx, testSnapshot(100, 1000)))

	err := store.Insert(ctx, testSnapshot(100, 2000))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestSnapshotStore_EmptyPricesRoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	store := NewSnapshotStore(pool)

	snap := testSnapshot(100, 1000)
	snap.PriceMonX18 = ""
	snap.PriceUsdX18 = ""
	require.NoError(t, store.Insert(ctx, snap))

	latest, err := store.GetLatest(ctx)
	require.NoError(t, err)

	// NULL columns come back as empty strings, not "0"
	assert.Empty(t, latest.PriceMonX18)
	assert.Empty(t, latest.PriceUsdX18)
}

func TestSnapshotStore_GetLatestEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSnapshotStore(pool)

	_, err := store.GetLatest(context.Background())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSnapshotStore_GetByTimeRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	store := NewSnapshotStore(pool)

	require.NoError(t, store.Insert(ctx, testSnapshot(100, 1000)))
	require.NoError(t, store.Insert(ctx, testSnapshot(101, 2000)))
	require.NoError(t, store.Insert(ctx, testSnapshot(102, 3000)))

	snaps, err := store.GetByTimeRange(ctx, 1000, 2000)
	require.NoError(t, err)

	require.Len(t, snaps, 2)
	assert.Equal(t, int64(1000), snaps[0].TimestampMs)
	assert.Equal(t, int64(2000), snaps[1].TimestampMs)
}

func TestSnapshotStore_RecordsQueryMetrics(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	store := NewSnapshotStore(pool)

	require.NoError(t, store.Insert(ctx, testSnapshot(100, 1000)))
	_, err := store.GetLatest(ctx)
	require.NoError(t, err)

	n := testutil.CollectAndCount(observability.DefaultMetrics.DBQueryDuration,
		"bnote_dashboard_database_query_duration_seconds")
	assert.GreaterOrEqual(t, n, 2, "insert and get_latest should each record a duration series")
}

func TestSnapshotStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	store := NewSnapshotStore(pool)

	assert.ErrorIs(t, store.Insert(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(ctx, testSnapshot(0, 1000)), storage.ErrInvalidInput)
}
