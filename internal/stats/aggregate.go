// Package stats aggregates one refresh cycle of chain reads into the
// dashboard statistics payload. It is a pure function of already-fetched
// values: missing inputs propagate as absent fields, never as fabricated
// zeros, and all arithmetic is exact (big integers for token math,
// shopspring decimals for ratios).
package stats

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/fixedpoint"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/poolprice"
)

// Inputs is everything one aggregation needs, fetched upstream in a single
// refresh cycle. Pointer fields are nil when the corresponding chain read
// failed or the pool is not deployed.
type Inputs struct {
	BlockNumber int64
	UpdatedAtMs int64

	// token contract reads (required)
	TotalSupply *big.Int
	TotalShares *big.Int
	ShareRate   *big.Int

	// token identity for pool orientation
	Token       common.Address
	TokenSymbol string

	// pools (optional)
	MonPool    *domain.PoolState // token/WMON
	UsdPool    *domain.PoolState // token/USDC
	MonUsdPool *domain.PoolState // WMON/USDC cross

	// ERC-20 balances held by MonPool's two tokens (optional, TVL input)
	MonPoolBalance0 *big.Int
	MonPoolBalance1 *big.Int

	// treasury vesting balance (optional, circulating-supply input)
	VestingBalance *big.Int
}

// Aggregate computes the display payload and the raw snapshot for one
// cycle. Deterministic: same inputs, same outputs.
func Aggregate(in Inputs) (domain.GlobalStats, domain.StatsSnapshot) {
	supply := val(in.TotalSupply)
	shares := val(in.TotalShares)
	rate := val(in.ShareRate)

	out := domain.GlobalStats{
		TotalSupply: fixedpoint.WithCommas(fixedpoint.FormatTruncated(supply, 18, 0)),
		TotalShares: fixedpoint.WithCommas(fixedpoint.FormatTruncated(shares, 18, 0)),
		ShareRate:   fixedpoint.FixedDecimals(rate, 18, 3),
		BlockNumber: big.NewInt(in.BlockNumber).String(),
		UpdatedAtMs: in.UpdatedAtMs,
	}

	// token priced in MON
	var priceMon *big.Int
	if in.MonPool != nil {
		if p, err := poolprice.Resolve(*in.MonPool, in.Token, in.TokenSymbol); err == nil {
			priceMon = p
			out.PriceMon = poolprice.FormatPrice(p)
		}
	}

	// MON priced in USD via the WMON/USDC cross pool
	var monUsd *big.Int
	if in.MonUsdPool != nil {
		if p, ok := resolveMonUsd(*in.MonUsdPool); ok {
			monUsd = p
			out.MonUsd = poolprice.FormatPrice(p)
		}
	}

	// token priced in USD: direct pool preferred, MON cross as fallback
	var priceUsd *big.Int
	if in.UsdPool != nil {
		if p, err := poolprice.Resolve(*in.UsdPool, in.Token, in.TokenSymbol); err == nil {
			priceUsd = p
		}
	}
	if priceUsd == nil && priceMon != nil && monUsd != nil {
		priceUsd = fixedpoint.MulX18(priceMon, monUsd)
	}
	if priceUsd != nil {
		out.PriceUsd = poolprice.FormatPrice(priceUsd)
	}

	// pool reserves and TVL (2x the MON-side balance)
	var tvlMon *big.Int
	if in.MonPool != nil && in.MonPoolBalance0 != nil && in.MonPoolBalance1 != nil {
		out.PoolReserves = reserveString(*in.MonPool, in.MonPoolBalance0, in.MonPoolBalance1)
		tvlMon = poolTvlMon(*in.MonPool, in.MonPoolBalance0, in.MonPoolBalance1)
		if tvlMon != nil {
			out.PoolTvlMon = fixedpoint.WithCommas(fixedpoint.FormatTruncated(tvlMon, 18, 4))
		}
	}
	if tvlMon != nil && monUsd != nil {
		tvlUsd := fixedpoint.MulX18(tvlMon, monUsd)
		out.PoolTvlUsd = fixedpoint.WithCommas(fixedpoint.FormatTruncated(tvlUsd, 18, 2))
	}

	// market cap
	if priceMon != nil {
		mcap := fixedpoint.MulX18(supply, priceMon)
		out.MarketCapMon = fixedpoint.WithCommas(fixedpoint.FormatTruncated(mcap, 18, 2))
	}
	if priceUsd != nil {
		mcap := fixedpoint.MulX18(supply, priceUsd)
		out.MarketCapUsd = fixedpoint.WithCommas(fixedpoint.FormatTruncated(mcap, 18, 2))
	}

	// staked estimate: totalShares valued at the current share rate
	stakedEst := fixedpoint.MulX18(shares, rate)
	out.StakedEst = fixedpoint.WithCommas(fixedpoint.FormatTruncated(stakedEst, 18, 0))
	if supply.Sign() > 0 {
		pct := decimal.NewFromBigInt(stakedEst, 0).
			Div(decimal.NewFromBigInt(supply, 0)).
			Mul(decimal.NewFromInt(100))
		out.StakedPct = pct.Truncate(2).String() + "%"
	}

	// circulating supply: total minus the treasury vesting balance
	if in.VestingBalance != nil {
		circ := new(big.Int).Sub(supply, in.VestingBalance)
		out.CirculatingSupply = fixedpoint.WithCommas(fixedpoint.FormatTruncated(circ, 18, 0))
	}

	snap := domain.StatsSnapshot{
		BlockNumber: in.BlockNumber,
		TimestampMs: in.UpdatedAtMs,
		TotalSupply: supply.String(),
		TotalShares: shares.String(),
		ShareRate:   rate.String(),
	}
	if priceMon != nil {
		snap.PriceMonX18 = priceMon.String()
	}
	if priceUsd != nil {
		snap.PriceUsdX18 = priceUsd.String()
	}

	return out, snap
}

// resolveMonUsd orients the WMON/USDC cross pool by symbol class, since
// neither side is the dashboard token.
func resolveMonUsd(state domain.PoolState) (*big.Int, bool) {
	if state.SqrtPriceX96 == nil || state.SqrtPriceX96.Sign() == 0 {
		return nil, false
	}
	raw := poolprice.PriceX18FromSqrtPriceX96(state.SqrtPriceX96, state.Token0Decimals, state.Token1Decimals)
	if raw.Sign() == 0 {
		return nil, false
	}

	t0Mon, t1Mon := isMonSymbol(state.Token0Symbol), isMonSymbol(state.Token1Symbol)
	t0Usd, t1Usd := isUsdSymbol(state.Token0Symbol), isUsdSymbol(state.Token1Symbol)

	switch {
	case t0Mon && t1Usd:
		return raw, true
	case t1Mon && t0Usd:
		return fixedpoint.InvX18(raw), true
	default:
		return nil, false
	}
}

// poolTvlMon approximates TVL as twice the MON-side balance, scaled to
// 1e18. Returns nil when neither side is MON.
func poolTvlMon(state domain.PoolState, bal0, bal1 *big.Int) *big.Int {
	two := big.NewInt(2)
	if isMonSymbol(state.Token0Symbol) {
		scaled := fixedpoint.MulDiv(bal0, fixedpoint.X18(), fixedpoint.Pow10(int(state.Token0Decimals)))
		return scaled.Mul(scaled, two)
	}
	if isMonSymbol(state.Token1Symbol) {
		scaled := fixedpoint.MulDiv(bal1, fixedpoint.X18(), fixedpoint.Pow10(int(state.Token1Decimals)))
		return scaled.Mul(scaled, two)
	}
	return nil
}

// reserveString renders "X SYM0 / Y SYM1" at 4dp.
func reserveString(state domain.PoolState, bal0, bal1 *big.Int) string {
	a0 := fixedpoint.WithCommas(fixedpoint.FormatTruncated(bal0, int(state.Token0Decimals), 4))
	a1 := fixedpoint.WithCommas(fixedpoint.FormatTruncated(bal1, int(state.Token1Decimals), 4))
	return a0 + " " + state.Token0Symbol + " / " + a1 + " " + state.Token1Symbol
}

func isMonSymbol(s string) bool {
	return strings.Contains(strings.ToUpper(s), "MON")
}

func isUsdSymbol(s string) bool {
	return strings.Contains(strings.ToUpper(s), "USD")
}

func val(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
