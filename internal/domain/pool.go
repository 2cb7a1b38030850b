package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PoolState is a snapshot of a V3-style pool: slot0 price plus the token
// metadata needed to orient and scale it. Fetched in one refresh cycle,
// never mutated afterwards.
type PoolState struct {
	Pool           common.Address
	SqrtPriceX96   *big.Int // uint160 on chain, square root of the raw ratio, Q96
	Token0         common.Address
	Token1         common.Address
	Token0Decimals uint8
	Token1Decimals uint8
	Token0Symbol   string
	Token1Symbol   string
}

// PricePoint is one resolved price observation for a pool.
// Corresponds to price_points table in ClickHouse.
type PricePoint struct {
	Pool        string   // pool address, lowercase hex
	TimestampMs int64    // observation time, unix ms
	BlockNumber int64    // chain head at observation time
	PriceX18    *big.Int // base token priced in quote token, 1e18 scale
}
