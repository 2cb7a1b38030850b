// Package poolprice converts a V3 pool's square-root price representation
// into a human exchange rate at 1e18 scale. The stored sqrtPriceX96 is the
// square root of the raw token1/token0 ratio scaled by 2^96; squaring it
// yields a Q192 ratio, which is rescaled and decimal-adjusted with exact
// integer arithmetic only.
package poolprice

import (
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/fixedpoint"
)

// ErrPriceUnavailable is returned when a pool cannot produce a usable
// price: uninitialized slot0, the base token not present on either side,
// or a zero ratio on the inversion path. Callers must render a
// placeholder, never a zero price.
var ErrPriceUnavailable = errors.New("pool price unavailable")

// priceDP is the display convention for prices.
const priceDP = 6

// q192 is 2^192, the scale of a squared sqrtPriceX96.
var q192 = new(big.Int).Lsh(big.NewInt(1), 192)

// PriceX18FromSqrtPriceX96 returns the token1-per-token0 price at 1e18
// scale, adjusted for the decimal difference between the two tokens.
// The squared intermediate is up to 320 bits wide; everything stays in
// math/big so nothing truncates silently.
func PriceX18FromSqrtPriceX96(sqrtPriceX96 *big.Int, dec0, dec1 uint8) *big.Int {
	if sqrtPriceX96 == nil {
		return new(big.Int)
	}

	// raw token1/token0 ratio scaled to 1e18
	ratio := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	ratio.Mul(ratio, fixedpoint.X18())
	ratio.Quo(ratio, q192)

	// human price = raw price * 10^(dec0 - dec1)
	if dec0 > dec1 {
		ratio.Mul(ratio, fixedpoint.Pow10(int(dec0-dec1)))
	} else if dec1 > dec0 {
		ratio.Quo(ratio, fixedpoint.Pow10(int(dec1-dec0)))
	}

	return ratio
}

// Resolve returns the price of the base token in units of the pool's other
// token, at 1e18 scale. The base side is found by address match first, then
// by case-insensitive symbol match as a fallback for wrapped variants.
// When the base turns out to be token1, the raw ratio is inverted; a zero
// ratio there is unrecoverable and reported as unavailable.
func Resolve(state domain.PoolState, baseToken common.Address, baseSymbol string) (*big.Int, error) {
	if state.SqrtPriceX96 == nil || state.SqrtPriceX96.Sign() == 0 {
		return nil, ErrPriceUnavailable
	}

	raw := PriceX18FromSqrtPriceX96(state.SqrtPriceX96, state.Token0Decimals, state.Token1Decimals)

	baseIsToken0, ok := orient(state, baseToken, baseSymbol)
	if !ok {
		return nil, ErrPriceUnavailable
	}

	if baseIsToken0 {
		if raw.Sign() == 0 {
			return nil, ErrPriceUnavailable
		}
		return raw, nil
	}

	if raw.Sign() == 0 {
		return nil, ErrPriceUnavailable
	}
	return fixedpoint.InvX18(raw), nil
}

// FormatPrice renders a 1e18-scaled price for display, truncated to six
// decimal places.
func FormatPrice(priceX18 *big.Int) string {
	return fixedpoint.FormatTruncated(priceX18, 18, priceDP)
}

// orient reports which side of the pool the base token sits on.
func orient(state domain.PoolState, baseToken common.Address, baseSymbol string) (baseIsToken0, ok bool) {
	if state.Token0 == baseToken {
		return true, true
	}
	if state.Token1 == baseToken {
		return false, true
	}

	sym := strings.ToUpper(baseSymbol)
	if sym == "" {
		return false, false
	}
	if strings.ToUpper(state.Token0Symbol) == sym {
		return true, true
	}
	if strings.ToUpper(state.Token1Symbol) == sym {
		return false, true
	}
	return false, false
}
