package evm

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Function selectors for the fixed contract read surface. Each is the
// first four bytes of the keccak-256 hash of the canonical signature.
var (
	// staking token contract
	SelBasis         = [4]byte{0x52, 0x8c, 0xfa, 0x98} // BASIS()
	SelShareRate     = [4]byte{0xfb, 0x80, 0x2a, 0x65} // shareRate()
	SelLpbPerYearBps = [4]byte{0xd7, 0x94, 0xcb, 0x00} // LPB_PER_YEAR_BPS()
	SelLpbMaxYears   = [4]byte{0x28, 0xde, 0x80, 0xc4} // LPB_MAX_YEARS()
	SelBpbMaxBps     = [4]byte{0x03, 0x84, 0x1f, 0x9a} // BPB_MAX_BPS()
	SelBpbCap        = [4]byte{0xc6, 0xcb, 0x0a, 0xd2} // BPB_CAP()
	SelTotalShares   = [4]byte{0x3a, 0x98, 0xef, 0x39} // totalShares()
	SelStakesOf      = [4]byte{0x33, 0xb6, 0x9c, 0x4c} // stakesOf(address)

	// ERC-20
	SelTotalSupply = [4]byte{0x18, 0x16, 0x0d, 0xdd} // totalSupply()
	SelDecimals    = [4]byte{0x31, 0x3c, 0xe5, 0x67} // decimals()
	SelSymbol      = [4]byte{0x95, 0xd8, 0x9b, 0x41} // symbol()
	SelBalanceOf   = [4]byte{0x70, 0xa0, 0x82, 0x31} // balanceOf(address)

	// V3 pool
	SelSlot0  = [4]byte{0x38, 0x50, 0xc7, 0xbd} // slot0()
	SelToken0 = [4]byte{0x0d, 0xfe, 0x16, 0x81} // token0()
	SelToken1 = [4]byte{0xd2, 0x12, 0x20, 0xa7} // token1()
)

const wordSize = 32

// Calldata builds calldata for a zero-argument call.
func Calldata(selector [4]byte) []byte {
	return selector[:]
}

// CalldataAddress builds calldata for a single-address-argument call.
// The address is left-padded to a full 32-byte word.
func CalldataAddress(selector [4]byte, addr common.Address) []byte {
	data := make([]byte, 4+wordSize)
	copy(data, selector[:])
	copy(data[4+wordSize-common.AddressLength:], addr[:])
	return data
}

// word returns the i-th 32-byte word of return data.
func word(data []byte, i int) ([]byte, error) {
	off := i * wordSize
	if len(data) < off+wordSize {
		return nil, fmt.Errorf("return data too short: need word %d, have %d bytes", i, len(data))
	}
	return data[off : off+wordSize], nil
}

// DecodeUint256 decodes a single uint256 return value.
func DecodeUint256(data []byte) (*big.Int, error) {
	w, err := word(data, 0)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(w), nil
}

// DecodeUint8 decodes a single uint8 return value.
func DecodeUint8(data []byte) (uint8, error) {
	v, err := DecodeUint256(data)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() || v.Uint64() > 255 {
		return 0, fmt.Errorf("uint8 out of range: %s", v)
	}
	return uint8(v.Uint64()), nil
}

// DecodeBool decodes a single bool return value.
func DecodeBool(data []byte) (bool, error) {
	v, err := DecodeUint256(data)
	if err != nil {
		return false, err
	}
	return v.Sign() != 0, nil
}

// DecodeAddress decodes a single address return value.
func DecodeAddress(data []byte) (common.Address, error) {
	w, err := word(data, 0)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(w), nil
}

// DecodeString decodes a single dynamic string return value: an offset
// word pointing at a length word followed by the packed bytes.
func DecodeString(data []byte) (string, error) {
	offWord, err := word(data, 0)
	if err != nil {
		return "", err
	}
	off := new(big.Int).SetBytes(offWord)
	if !off.IsInt64() || off.Int64()+wordSize > int64(len(data)) {
		return "", fmt.Errorf("string offset out of range: %s", off)
	}
	o := int(off.Int64())

	length := new(big.Int).SetBytes(data[o : o+wordSize])
	if !length.IsInt64() || int64(o+wordSize)+length.Int64() > int64(len(data)) {
		return "", fmt.Errorf("string length out of range: %s", length)
	}
	n := int(length.Int64())
	return string(data[o+wordSize : o+wordSize+n]), nil
}

// Slot0 holds the decoded head of a V3 pool's slot0 return. Only the
// price field is consumed; the remaining tick and fee words are ignored.
type Slot0 struct {
	SqrtPriceX96 *big.Int
}

// DecodeSlot0 decodes the first word of a slot0() return.
func DecodeSlot0(data []byte) (Slot0, error) {
	price, err := DecodeUint256(data)
	if err != nil {
		return Slot0{}, err
	}
	return Slot0{SqrtPriceX96: price}, nil
}

// StakeSlot is one decoded row of a stakesOf return.
type StakeSlot struct {
	StartTimestamp int64
	LockDays       int
	Amount         *big.Int
	Shares         *big.Int
	AutoRenew      bool
}

// stakeSlotWords is the word count per row of the static stake tuple
// (startTimestamp, lockDays, amount, shares, autoRenew).
const stakeSlotWords = 5

// DecodeStakeSlots decodes a stakesOf(address) return: a dynamic array
// of static 5-field tuples, laid out as an offset word, a length word,
// then five words per row.
func DecodeStakeSlots(data []byte) ([]StakeSlot, error) {
	offWord, err := word(data, 0)
	if err != nil {
		return nil, err
	}
	off := new(big.Int).SetBytes(offWord)
	if !off.IsInt64() || off.Int64()+wordSize > int64(len(data)) {
		return nil, fmt.Errorf("array offset out of range: %s", off)
	}
	body := data[off.Int64():]

	length := new(big.Int).SetBytes(body[:wordSize])
	if !length.IsInt64() {
		return nil, fmt.Errorf("array length out of range: %s", length)
	}
	n := int(length.Int64())
	if len(body) < wordSize+n*stakeSlotWords*wordSize {
		return nil, fmt.Errorf("return data too short for %d stake rows", n)
	}

	slots := make([]StakeSlot, n)
	for i := 0; i < n; i++ {
		row := body[wordSize+i*stakeSlotWords*wordSize:]

		start := new(big.Int).SetBytes(row[:wordSize])
		lock := new(big.Int).SetBytes(row[wordSize : 2*wordSize])
		if !start.IsInt64() || !lock.IsInt64() {
			return nil, fmt.Errorf("stake row %d: timestamp or lock out of range", i)
		}

		slots[i] = StakeSlot{
			StartTimestamp: start.Int64(),
			LockDays:       int(lock.Int64()),
			Amount:         new(big.Int).SetBytes(row[2*wordSize : 3*wordSize]),
			Shares:         new(big.Int).SetBytes(row[3*wordSize : 4*wordSize]),
			AutoRenew:      new(big.Int).SetBytes(row[4*wordSize : 5*wordSize]).Sign() != 0,
		}
	}
	return slots, nil
}
