package chain

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/evm"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/evm/stub"
)

var (
	tokenAddr = common.HexToAddress("0x20780bF9eb35235cA33c62976CF6de5AA3395561")
	ownerAddr = common.HexToAddress("0x760AfE86e5de5fa0Ee542fc7B7B713e1c5425701")
)

func uintWord(v *big.Int) []byte {
	out := make([]byte, 32)
	b := v.Bytes()
	copy(out[32-len(b):], b)
	return out
}

func respondUint(c *stub.Client, to common.Address, sel [4]byte, v *big.Int) {
	c.Respond(to, evm.Calldata(sel), uintWord(v))
}

func stringReturn(s string) []byte {
	out := make([]byte, 0, 96)
	out = append(out, uintWord(big.NewInt(32))...)
	out = append(out, uintWord(big.NewInt(int64(len(s))))...)
	packed := make([]byte, 32)
	copy(packed, s)
	return append(out, packed...)
}

func TestPreviewParams(t *testing.T) {
	c := stub.NewClient()
	respondUint(c, tokenAddr, evm.SelBasis, big.NewInt(10000))
	respondUint(c, tokenAddr, evm.SelShareRate, big.NewInt(1e18))
	respondUint(c, tokenAddr, evm.SelLpbPerYearBps, big.NewInt(2000))
	respondUint(c, tokenAddr, evm.SelLpbMaxYears, big.NewInt(10))
	respondUint(c, tokenAddr, evm.SelBpbMaxBps, big.NewInt(1000))
	respondUint(c, tokenAddr, evm.SelBpbCap, new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(1e18)))

	r := NewStakingReader(c, tokenAddr)
	p, err := r.PreviewParams(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.BasisPoints.Int64() != 10000 {
		t.Errorf("basis = %s", p.BasisPoints)
	}
	if p.BonusPerYearBps.Int64() != 2000 || p.BonusMaxYears.Int64() != 10 {
		t.Errorf("time bonus params = %s/%s", p.BonusPerYearBps, p.BonusMaxYears)
	}
	if p.SizeBonusMaxBps.Int64() != 1000 {
		t.Errorf("sizeBonusMaxBps = %s", p.SizeBonusMaxBps)
	}
}

func TestPreviewParams_PartialFailureFailsWhole(t *testing.T) {
	c := stub.NewClient()
	respondUint(c, tokenAddr, evm.SelBasis, big.NewInt(10000))
	// remaining params unregistered

	r := NewStakingReader(c, tokenAddr)
	if _, err := r.PreviewParams(context.Background()); !errors.Is(err, stub.ErrNoResponse) {
		t.Errorf("expected stub.ErrNoResponse, got %v", err)
	}
}

func TestStakesOf(t *testing.T) {
	data := make([]byte, 0, 7*32)
	data = append(data, uintWord(big.NewInt(0x20))...)
	data = append(data, uintWord(big.NewInt(1))...)
	data = append(data, uintWord(big.NewInt(1700000000))...)
	data = append(data, uintWord(big.NewInt(90))...)
	data = append(data, uintWord(new(big.Int).Mul(big.NewInt(5), big.NewInt(1e18)))...)
	data = append(data, uintWord(new(big.Int).Mul(big.NewInt(6), big.NewInt(1e18)))...)
	data = append(data, uintWord(big.NewInt(0))...)

	c := stub.NewClient()
	c.Respond(tokenAddr, evm.CalldataAddress(evm.SelStakesOf, ownerAddr), data)

	r := NewStakingReader(c, tokenAddr)
	rows, err := r.StakesOf(context.Background(), ownerAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	row := rows[0]
	if row.StartTimestamp != 1700000000 || row.LockDays != 90 {
		t.Errorf("row start/lock = %d/%d", row.StartTimestamp, row.LockDays)
	}
	if row.AutoRenew {
		t.Error("autoRenew = true, want false")
	}
}

func TestGlobalReads(t *testing.T) {
	c := stub.NewClient()
	respondUint(c, tokenAddr, evm.SelTotalSupply, big.NewInt(777))
	respondUint(c, tokenAddr, evm.SelTotalShares, big.NewInt(555))
	respondUint(c, tokenAddr, evm.SelShareRate, big.NewInt(333))

	r := NewStakingReader(c, tokenAddr)
	ctx := context.Background()

	if v, err := r.TotalSupply(ctx); err != nil || v.Int64() != 777 {
		t.Errorf("totalSupply = %v, %v", v, err)
	}
	if v, err := r.TotalShares(ctx); err != nil || v.Int64() != 555 {
		t.Errorf("totalShares = %v, %v", v, err)
	}
	if v, err := r.ShareRate(ctx); err != nil || v.Int64() != 333 {
		t.Errorf("shareRate = %v, %v", v, err)
	}
}

func TestERC20Decimals_FallsBackTo18(t *testing.T) {
	c := stub.NewClient() // decimals() unregistered -> read fails
	r := NewERC20Reader(c)
	if got := r.Decimals(context.Background(), tokenAddr); got != 18 {
		t.Errorf("decimals = %d, want fallback 18", got)
	}
}

func TestERC20Decimals(t *testing.T) {
	c := stub.NewClient()
	respondUint(c, tokenAddr, evm.SelDecimals, big.NewInt(6))
	r := NewERC20Reader(c)
	if got := r.Decimals(context.Background(), tokenAddr); got != 6 {
		t.Errorf("decimals = %d, want 6", got)
	}
}

func TestERC20Symbol(t *testing.T) {
	c := stub.NewClient()
	c.Respond(tokenAddr, evm.Calldata(evm.SelSymbol), stringReturn("BNOTE"))
	r := NewERC20Reader(c)
	if got := r.Symbol(context.Background(), tokenAddr); got != "BNOTE" {
		t.Errorf("symbol = %q", got)
	}
}

func TestERC20Symbol_EmptyOnFailure(t *testing.T) {
	c := stub.NewClient()
	r := NewERC20Reader(c)
	if got := r.Symbol(context.Background(), tokenAddr); got != "" {
		t.Errorf("symbol = %q, want empty", got)
	}
}
