package staking

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
)

var testOwner = common.HexToAddress("0x20780bF9eb35235cA33c62976CF6de5AA3395561")

func TestBuildWalletStakes_DropsEmptySlots(t *testing.T) {
	rows := []domain.StakeRow{
		{}, // unused slot
		{StartTimestamp: 1700000000, LockDays: 30, Amount: tokens(10), Shares: tokens(12)},
		{}, // unused slot
	}

	got := BuildWalletStakes(testOwner, rows, 18)

	if got.StakeCount != 1 {
		t.Fatalf("stakeCount = %d, want 1", got.StakeCount)
	}
	if got.Stakes[0].Index != 1 {
		t.Errorf("surviving stake kept index %d, want original index 1", got.Stakes[0].Index)
	}
}

func TestBuildWalletStakes_KeepsZeroStartWithAmount(t *testing.T) {
	// a row with no timestamp but a live amount is not an empty slot
	rows := []domain.StakeRow{
		{StartTimestamp: 0, LockDays: 30, Amount: tokens(5), Shares: new(big.Int)},
	}
	got := BuildWalletStakes(testOwner, rows, 18)
	if got.StakeCount != 1 {
		t.Errorf("stakeCount = %d, want 1", got.StakeCount)
	}
}

func TestBuildWalletStakes_NewestFirst(t *testing.T) {
	rows := []domain.StakeRow{
		{StartTimestamp: 1600000000, LockDays: 90, Amount: tokens(1), Shares: tokens(1)},
		{StartTimestamp: 1700000000, LockDays: 30, Amount: tokens(2), Shares: tokens(2)},
		{StartTimestamp: 1650000000, LockDays: 60, Amount: tokens(3), Shares: tokens(3)},
	}

	got := BuildWalletStakes(testOwner, rows, 18)

	if len(got.Stakes) != 3 {
		t.Fatalf("len(stakes) = %d, want 3", len(got.Stakes))
	}
	for i := 1; i < len(got.Stakes); i++ {
		if got.Stakes[i].StartTimestamp > got.Stakes[i-1].StartTimestamp {
			t.Fatalf("stakes not ordered newest first at position %d", i)
		}
	}
}

func TestBuildWalletStakes_EndTimestamp(t *testing.T) {
	rows := []domain.StakeRow{
		{StartTimestamp: 1700000000, LockDays: 30, Amount: tokens(1), Shares: tokens(1)},
	}
	got := BuildWalletStakes(testOwner, rows, 18)
	want := int64(1700000000 + 30*86400)
	if got.Stakes[0].EndTimestamp != want {
		t.Errorf("endTimestamp = %d, want %d", got.Stakes[0].EndTimestamp, want)
	}
}

func TestBuildWalletStakes_FormatsAtTokenDecimals(t *testing.T) {
	rows := []domain.StakeRow{
		{StartTimestamp: 1700000000, LockDays: 30, Amount: big.NewInt(1500000), Shares: big.NewInt(2000000)},
	}
	got := BuildWalletStakes(testOwner, rows, 6)
	if got.Stakes[0].Amount != "1.5" {
		t.Errorf("amount = %q, want %q", got.Stakes[0].Amount, "1.5")
	}
	if got.Stakes[0].Shares != "2" {
		t.Errorf("shares = %q, want %q", got.Stakes[0].Shares, "2")
	}
}

func TestBuildWalletStakes_Empty(t *testing.T) {
	got := BuildWalletStakes(testOwner, nil, 18)
	if got.StakeCount != 0 || len(got.Stakes) != 0 {
		t.Errorf("expected empty view, got %+v", got)
	}
}
