package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PreviewParams holds the staking constants read from the token contract.
// All values are unsigned on chain; they are immutable per computation.
type PreviewParams struct {
	BasisPoints     *big.Int // denominator representing 100% (10000 on mainnet)
	ShareRate       *big.Int // cost of one share in token units, 1e18 scale
	BonusPerYearBps *big.Int // time bonus granted per 365-day lock period
	BonusMaxYears   *big.Int // cap on time-bonus accrual, in years
	SizeBonusMaxBps *big.Int // maximum size bonus
	SizeBonusCap    *big.Int // stake amount (1e18 units) where size bonus saturates
}

// StakePreview is the result of reproducing the contract's share-issuance
// formula off chain. All fields are derived; nothing here is persisted.
type StakePreview struct {
	TimeBonusBps  *big.Int
	SizeBonusBps  *big.Int
	TotalBonusBps *big.Int
	SharesRaw     *big.Int // estimated shares, 1e18 scale
	MultiplierNum *big.Int // BasisPoints + TotalBonusBps
	BasisPoints   *big.Int
	ShareRate     *big.Int // normalized rate the estimate was computed with
}

// StakeRow is one raw stakesOf(user) tuple as decoded from the chain:
// (startTimestamp uint40, lockDays uint16, amount uint256, shares uint256,
// autoRenew bool).
type StakeRow struct {
	StartTimestamp int64
	LockDays       int
	Amount         *big.Int
	Shares         *big.Int
	AutoRenew      bool
}

// WalletStake is one row of stakesOf(user), decoded and enriched for display.
type WalletStake struct {
	Index          int
	StartTimestamp int64 // unix seconds
	LockDays       int
	EndTimestamp   int64 // StartTimestamp + LockDays in seconds
	AmountRaw      *big.Int
	SharesRaw      *big.Int
	AutoRenew      bool
	Amount         string // formatted, token decimals applied
	Shares         string
}

// WalletStakes is the full stake view for one wallet, newest first.
type WalletStakes struct {
	Owner      common.Address
	StakeCount int
	Stakes     []WalletStake
}
