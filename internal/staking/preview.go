// Package staking reproduces the token contract's stake accounting off
// chain: the share-issuance preview shown before a transaction is sent,
// and the per-wallet stake list view. All computations are pure integer
// arithmetic so the displayed estimate matches what the contract computes.
package staking

import (
	"errors"
	"math/big"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/fixedpoint"
)

// DaysPerYear is the contract's year length for time-bonus accrual.
const DaysPerYear = 365

// maxRateScalePasses bounds the share-rate normalization loop.
const maxRateScalePasses = 6

// ErrZeroBasis is returned when the basis-points denominator reads as zero.
// No valid contract state has a zero denominator, so this is a terminal
// input error rather than a degenerate case to compute through.
var ErrZeroBasis = errors.New("basis points denominator is zero")

// NormalizeShareRate scales rate up by 10 until it is >= basis, at most
// six times. Some deployments store shareRate one decimal place short of
// what the basis expects, which makes shares come out ~10x too large.
//
// This is a bounded heuristic, not a guaranteed-correct inverse: the
// authoritative fix would be reading the rate's scale from the contract.
// Kept as is for parity with the deployed frontend.
func NormalizeShareRate(basis, rate *big.Int) *big.Int {
	out := new(big.Int).Set(nz(rate))
	b := nz(basis)
	if b.Sign() == 0 || out.Sign() == 0 {
		return out
	}

	ten := big.NewInt(10)
	for i := 0; i < maxRateScalePasses && out.Cmp(b) < 0; i++ {
		out.Mul(out, ten)
	}
	return out
}

// ComputePreview reproduces the contract's bonus and share-issuance formula
// for a stake of amountRaw (1e18 token units) locked for lockDays.
//
// Time bonus: floor(effectiveDays * bonusPerYear / 365), where effectiveDays
// is capped at bonusMaxYears worth of days, and the result is capped again
// at bonusMaxYears * bonusPerYear to guard against rounding overshoot.
// Size bonus: linear ramp from 0 at zero stake to sizeBonusMaxBps at the
// cap amount, flat beyond it.
// Shares: floor(amount * (basis + totalBonus) / shareRate).
//
// Degenerate-but-valid chain states (zero share rate, zero size-bonus cap)
// yield zero-valued results, not errors. lockDays <= 0 clamps to zero days.
// Every division floors; rounding up would overstate the user's entitlement
// relative to the contract.
func ComputePreview(amountRaw *big.Int, lockDays int, p domain.PreviewParams) (*domain.StakePreview, error) {
	basis := nz(p.BasisPoints)
	if basis.Sign() == 0 {
		return nil, ErrZeroBasis
	}

	amount := nz(amountRaw)
	rate := NormalizeShareRate(basis, p.ShareRate)

	days := int64(lockDays)
	if days < 0 {
		days = 0
	}

	// Time bonus
	perYear := nz(p.BonusPerYearBps)
	maxYears := nz(p.BonusMaxYears)
	maxDays := new(big.Int).Mul(maxYears, big.NewInt(DaysPerYear))
	effectiveDays := big.NewInt(days)
	if effectiveDays.Cmp(maxDays) > 0 {
		effectiveDays.Set(maxDays)
	}
	timeBonus := fixedpoint.MulDiv(effectiveDays, perYear, big.NewInt(DaysPerYear))
	timeBonusMax := new(big.Int).Mul(maxYears, perYear)
	if timeBonus.Cmp(timeBonusMax) > 0 {
		timeBonus.Set(timeBonusMax)
	}

	// Size bonus
	cap := nz(p.SizeBonusCap)
	sizeBonus := new(big.Int)
	if cap.Sign() > 0 {
		capped := amount
		if capped.Cmp(cap) > 0 {
			capped = cap
		}
		sizeBonus = fixedpoint.MulDiv(capped, nz(p.SizeBonusMaxBps), cap)
	}

	// Total bonus and shares
	totalBonus := new(big.Int).Add(timeBonus, sizeBonus)
	multiplierNum := new(big.Int).Add(basis, totalBonus)

	shares := new(big.Int)
	if rate.Sign() > 0 {
		shares = fixedpoint.MulDiv(amount, multiplierNum, rate)
	}

	return &domain.StakePreview{
		TimeBonusBps:  timeBonus,
		SizeBonusBps:  sizeBonus,
		TotalBonusBps: totalBonus,
		SharesRaw:     shares,
		MultiplierNum: multiplierNum,
		BasisPoints:   new(big.Int).Set(basis),
		ShareRate:     rate,
	}, nil
}

// nz treats a nil big integer as zero without allocating for non-nil input.
func nz(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
