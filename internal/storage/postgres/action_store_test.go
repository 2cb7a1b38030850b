package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/storage"
)

func testAction(wallet, hash string, ts int64) *domain.StakeAction {
	return &domain.StakeAction{
		Wallet:      wallet,
		Kind:        domain.ActionKindStake,
		AmountRaw:   "5000000000000000000",
		LockDays:    90,
		TxHash:      hash,
		TimestampMs: ts,
	}
}

func TestActionStore_InsertAndGetRecent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	store := NewActionStore(pool)

	for i := 0; i < 5; i++ {
		a := testAction("0xAbC123", fmt.Sprintf("0xhash%d", i), int64(1000+i))
		require.NoError(t, store.Insert(ctx, a))
	}

	actions, err := store.GetRecent(ctx, 3)
	require.NoError(t, err)

	require.Len(t, actions, 3)
	assert.Equal(t, int64(1004), actions[0].TimestampMs)
	assert.Equal(t, "0xabc123", actions[0].Wallet) // stored lowercase
	assert.Equal(t, "5000000000000000000", actions[0].AmountRaw)
}

func TestActionStore_DuplicateTxHash(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	store := NewActionStore(pool)

	require.NoError(t, store.Insert(ctx, testAction("0xabc", "0xHASH", 1000)))

	// same hash, different case
	err := store.Insert(ctx, testAction("0xdef", "0xhash", 2000))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestActionStore_GetByWallet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	store := NewActionStore(pool)

	require.NoError(t, store.Insert(ctx, testAction("0xAAA", "0x1", 1000)))
	require.NoError(t, store.Insert(ctx, testAction("0xBBB", "0x2", 2000)))
	require.NoError(t, store.Insert(ctx, testAction("0xaaa", "0x3", 3000)))

	actions, err := store.GetByWallet(ctx, "0xAaA", 10)
	require.NoError(t, err)

	require.Len(t, actions, 2)
	assert.Equal(t, int64(3000), actions[0].TimestampMs)
}

func TestActionStore_UnstakeKind(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	store := NewActionStore(pool)

	a := testAction("0xabc", "0x1", 1000)
	a.Kind = domain.ActionKindUnstake
	a.LockDays = 0
	require.NoError(t, store.Insert(ctx, a))

	actions, err := store.GetRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, domain.ActionKindUnstake, actions[0].Kind)
	assert.Zero(t, actions[0].LockDays)
}

func TestActionStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	store := NewActionStore(pool)

	assert.ErrorIs(t, store.Insert(ctx, nil), storage.ErrInvalidInput)

	a := testAction("0xabc", "0x1", 1000)
	a.Kind = "withdraw"
	assert.ErrorIs(t, store.Insert(ctx, a), storage.ErrInvalidInput)
}
