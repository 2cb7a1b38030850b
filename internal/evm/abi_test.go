package evm

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex literal: %v", err)
	}
	return b
}

func TestCalldataAddress(t *testing.T) {
	addr := common.HexToAddress("0x20780bF9eb35235cA33c62976CF6de5AA3395561")
	data := CalldataAddress(SelBalanceOf, addr)

	if len(data) != 36 {
		t.Fatalf("calldata length = %d, want 36", len(data))
	}
	if !bytes.Equal(data[:4], SelBalanceOf[:]) {
		t.Errorf("selector = %x", data[:4])
	}
	// 12 zero bytes of padding, then the address
	if !bytes.Equal(data[4:16], make([]byte, 12)) {
		t.Errorf("padding not zero: %x", data[4:16])
	}
	if !bytes.Equal(data[16:], addr[:]) {
		t.Errorf("address = %x, want %x", data[16:], addr[:])
	}
}

func TestDecodeUint256(t *testing.T) {
	data := mustHex(t, "00000000000000000000000000000000000000000000d3c21bcecceda1000000")
	got, err := DecodeUint256(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, _ := new(big.Int).SetString("1000000000000000000000000", 10)
	if got.Cmp(want) != 0 {
		t.Errorf("value = %s, want %s", got, want)
	}
}

func TestDecodeUint256_ShortData(t *testing.T) {
	if _, err := DecodeUint256(mustHex(t, "deadbeef")); err == nil {
		t.Error("expected error for short return data")
	}
}

func TestDecodeUint8(t *testing.T) {
	data := make([]byte, 32)
	data[31] = 18
	got, err := DecodeUint8(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 18 {
		t.Errorf("value = %d, want 18", got)
	}

	data[30] = 1 // 274, out of uint8 range
	if _, err := DecodeUint8(data); err == nil {
		t.Error("expected range error")
	}
}

func TestDecodeAddress(t *testing.T) {
	data := mustHex(t, "000000000000000000000000760afe86e5de5fa0ee542fc7b7b713e1c5425701")
	got, err := DecodeAddress(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := common.HexToAddress("0x760AfE86e5de5fa0Ee542fc7B7B713e1c5425701")
	if got != want {
		t.Errorf("address = %s, want %s", got, want)
	}
}

func TestDecodeString(t *testing.T) {
	// offset 0x20, length 5, "BNOTE" packed left-aligned
	data := mustHex(t,
		"0000000000000000000000000000000000000000000000000000000000000020"+
			"0000000000000000000000000000000000000000000000000000000000000005"+
			"424e4f5445000000000000000000000000000000000000000000000000000000")
	got, err := DecodeString(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "BNOTE" {
		t.Errorf("string = %q, want %q", got, "BNOTE")
	}
}

func TestDecodeString_BadOffset(t *testing.T) {
	data := mustHex(t, "00000000000000000000000000000000000000000000000000000000000001ff")
	if _, err := DecodeString(data); err == nil {
		t.Error("expected error for out-of-range offset")
	}
}

func TestDecodeBool(t *testing.T) {
	data := make([]byte, 32)
	got, err := DecodeBool(data)
	if err != nil || got {
		t.Errorf("zero word = %v (err %v), want false", got, err)
	}
	data[31] = 1
	got, err = DecodeBool(data)
	if err != nil || !got {
		t.Errorf("one word = %v (err %v), want true", got, err)
	}
}

func TestDecodeStakeSlots(t *testing.T) {
	// two rows: (1700000000, 30, 10e18, 12e18, true) and an empty slot
	amount := new(big.Int).Mul(big.NewInt(10), big.NewInt(1e18))
	shares := new(big.Int).Mul(big.NewInt(12), big.NewInt(1e18))

	data := make([]byte, 0, 12*32)
	data = append(data, leftPad(big.NewInt(0x20))...) // offset
	data = append(data, leftPad(big.NewInt(2))...)    // length
	data = append(data, leftPad(big.NewInt(1700000000))...)
	data = append(data, leftPad(big.NewInt(30))...)
	data = append(data, leftPad(amount)...)
	data = append(data, leftPad(shares)...)
	data = append(data, leftPad(big.NewInt(1))...)
	for i := 0; i < 5; i++ {
		data = append(data, leftPad(big.NewInt(0))...)
	}

	slots, err := DecodeStakeSlots(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("len(slots) = %d, want 2", len(slots))
	}

	got := slots[0]
	if got.StartTimestamp != 1700000000 || got.LockDays != 30 {
		t.Errorf("slot0 start/lock = %d/%d", got.StartTimestamp, got.LockDays)
	}
	if got.Amount.Cmp(amount) != 0 || got.Shares.Cmp(shares) != 0 {
		t.Errorf("slot0 amount/shares = %s/%s", got.Amount, got.Shares)
	}
	if !got.AutoRenew {
		t.Error("slot0 autoRenew = false, want true")
	}

	empty := slots[1]
	if empty.StartTimestamp != 0 || empty.Amount.Sign() != 0 || empty.AutoRenew {
		t.Errorf("slot1 not empty: %+v", empty)
	}
}

func TestDecodeStakeSlots_EmptyArray(t *testing.T) {
	data := append(leftPad(big.NewInt(0x20)), leftPad(big.NewInt(0))...)
	slots, err := DecodeStakeSlots(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("len(slots) = %d, want 0", len(slots))
	}
}

func TestDecodeStakeSlots_Truncated(t *testing.T) {
	// claims one row but provides no body
	data := append(leftPad(big.NewInt(0x20)), leftPad(big.NewInt(1))...)
	if _, err := DecodeStakeSlots(data); err == nil {
		t.Error("expected error for truncated array body")
	}
}

func leftPad(v *big.Int) []byte {
	out := make([]byte, 32)
	b := v.Bytes()
	copy(out[32-len(b):], b)
	return out
}
