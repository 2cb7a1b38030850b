package memory

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/storage"
)

func point(pool string, ts int64, price int64) *domain.PricePoint {
	return &domain.PricePoint{
		Pool:        pool,
		TimestampMs: ts,
		BlockNumber: ts / 1000,
		PriceX18:    big.NewInt(price),
	}
}

func TestPricePointStore_InsertBulkAndGet(t *testing.T) {
	store := NewPricePointStore()
	ctx := context.Background()

	points := []*domain.PricePoint{
		point("p1", 1000, 100),
		point("p1", 2000, 110),
		point("p2", 1500, 900),
	}
	if err := store.InsertBulk(ctx, points); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByPool(ctx, "p1")
	if err != nil {
		t.Fatalf("GetByPool failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(result))
	}
	if result[0].TimestampMs != 1000 || result[1].TimestampMs != 2000 {
		t.Errorf("Wrong order: %d, %d", result[0].TimestampMs, result[1].TimestampMs)
	}
}

func TestPricePointStore_DuplicateKey(t *testing.T) {
	store := NewPricePointStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.PricePoint{point("p1", 1000, 100)}); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.InsertBulk(ctx, []*domain.PricePoint{point("p1", 1000, 200)})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestPricePointStore_IntraBatchDuplicate(t *testing.T) {
	store := NewPricePointStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.PricePoint{
		point("p1", 1000, 100),
		point("p1", 1000, 200),
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// failed batch must not be partially applied
	result, err := store.GetByPool(ctx, "p1")
	if err != nil {
		t.Fatalf("GetByPool failed: %v", err)
	}
	if len(result) != 0 {
		t.Errorf("Expected 0 points after failed batch, got %d", len(result))
	}
}

func TestPricePointStore_GetByTimeRange(t *testing.T) {
	store := NewPricePointStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.PricePoint{
		point("p1", 1000, 100),
		point("p1", 2000, 110),
		point("p1", 3000, 120),
	}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByTimeRange(ctx, "p1", 1500, 3000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(result))
	}
}

func TestPricePointStore_InvalidInput(t *testing.T) {
	store := NewPricePointStore()
	ctx := context.Background()

	cases := [][]*domain.PricePoint{
		{nil},
		{{TimestampMs: 1000, PriceX18: big.NewInt(1)}}, // no pool
		{{Pool: "p1", TimestampMs: 1000}},              // nil price
	}
	for i, points := range cases {
		if err := store.InsertBulk(ctx, points); !errors.Is(err, storage.ErrInvalidInput) {
			t.Errorf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestPricePointStore_CopyOnRead(t *testing.T) {
	store := NewPricePointStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.PricePoint{point("p1", 1000, 100)}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	first, _ := store.GetByPool(ctx, "p1")
	first[0].PriceX18.SetInt64(999)

	second, _ := store.GetByPool(ctx, "p1")
	if second[0].PriceX18.Int64() != 100 {
		t.Error("Stored price mutated through returned copy")
	}
}
