package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/storage"
)

func snapshot(block, ts int64) *domain.StatsSnapshot {
	return &domain.StatsSnapshot{
		BlockNumber: block,
		TimestampMs: ts,
		TotalSupply: "1000000000000000000000000",
		TotalShares: "250000000000000000000000",
		ShareRate:   "1000000000000000000",
	}
}

func TestSnapshotStore_InsertAndGetLatest(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	if err := store.Insert(ctx, snapshot(100, 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, snapshot(102, 3000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, snapshot(101, 2000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	latest, err := store.GetLatest(ctx)
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if latest.BlockNumber != 102 {
		t.Errorf("Expected block 102, got %d", latest.BlockNumber)
	}
	if latest.ID == 0 || latest.CreatedAt == 0 {
		t.Errorf("Expected assigned id and created_at, got %d/%d", latest.ID, latest.CreatedAt)
	}
}

func TestSnapshotStore_DuplicateBlock(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	if err := store.Insert(ctx, snapshot(100, 1000)); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, snapshot(100, 2000))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestSnapshotStore_GetLatestEmpty(t *testing.T) {
	store := NewSnapshotStore()

	_, err := store.GetLatest(context.Background())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSnapshotStore_GetByTimeRange(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	for _, s := range []*domain.StatsSnapshot{
		snapshot(100, 1000),
		snapshot(101, 2000),
		snapshot(102, 3000),
	} {
		if err := store.Insert(ctx, s); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.GetByTimeRange(ctx, 1000, 2000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 snapshots, got %d", len(result))
	}
	if result[0].TimestampMs != 1000 || result[1].TimestampMs != 2000 {
		t.Errorf("Wrong order: %d, %d", result[0].TimestampMs, result[1].TimestampMs)
	}
}

func TestSnapshotStore_InvalidInput(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
	if err := store.Insert(ctx, snapshot(0, 1000)); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for block 0, got %v", err)
	}
}

func TestSnapshotStore_CopyOnRead(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	if err := store.Insert(ctx, snapshot(100, 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	first, _ := store.GetLatest(ctx)
	first.TotalSupply = "mutated"

	second, _ := store.GetLatest(ctx)
	if second.TotalSupply == "mutated" {
		t.Error("Stored snapshot mutated through returned copy")
	}
}
